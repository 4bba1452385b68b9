// Package pool implements the bounded connection pool (the "P" component,
// spec.md §4.6): acquisition with FIFO wait-queue suspension, validation
// on acquire, idle eviction, and disposal. It is a generic coordinator —
// a single mutex owns both the idle set and the wait queue, following the
// teacher's decorator style (dialect/sql/stats.go) of wrapping a Conn
// rather than re-deriving a ledger from scratch.
package pool

import (
	"container/list"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/veloxdb/velox"
)

// Conn is the minimum capability a pooled resource must offer. A dialect
// driver connection (dialect.Driver) satisfies this trivially via its
// Close method.
type Conn interface {
	Close() error
}

// Factory creates a new Conn, e.g. by dialing the database.
type Factory[C Conn] func(ctx context.Context) (C, error)

// Validator reports whether a pooled Conn is still healthy. Used on
// acquire when configured; an unhealthy connection is discarded and
// replaced rather than handed to the caller.
type Validator[C Conn] func(ctx context.Context, c C) bool

// Config holds the pool's bounds (spec.md §6 "Connection configuration
// surface": minPoolSize, maxPoolSize, idleTimeout, ...).
type Config struct {
	MinSize           int
	MaxSize           int
	AcquireTimeout    time.Duration
	IdleTimeout       time.Duration
	ValidateOnAcquire bool
}

func (c Config) withDefaults() Config {
	if c.MaxSize <= 0 {
		c.MaxSize = 10
	}
	if c.MinSize < 0 {
		c.MinSize = 0
	}
	if c.MinSize > c.MaxSize {
		c.MinSize = c.MaxSize
	}
	if c.AcquireTimeout <= 0 {
		c.AcquireTimeout = 30 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 10 * time.Minute
	}
	return c
}

type idleConn[C Conn] struct {
	conn    C
	since   time.Time
	element *list.Element
}

// waiter is a suspended acquirer sitting in the FIFO queue.
type waiter[C Conn] struct {
	ch chan result[C]
}

type result[C Conn] struct {
	conn C
	err  error
}

// Pool is a bounded pool of Conn values created by a Factory. Safe for
// concurrent use (spec.md §5 "Shared-resource policy").
type Pool[C Conn] struct {
	cfg     Config
	factory Factory[C]
	validate Validator[C]
	log     *slog.Logger

	mu       sync.Mutex
	idle     *list.List // of *idleConn[C], front = most recently released
	inUse    int
	waiters  *list.List // of *waiter[C]
	disposed bool

	reapStop chan struct{}
	reapDone chan struct{}
}

// New returns a Pool backed by factory, with cfg's bounds applied (zero
// values fall back to sane defaults).
func New[C Conn](cfg Config, factory Factory[C], validate Validator[C]) *Pool[C] {
	p := &Pool[C]{
		cfg:      cfg.withDefaults(),
		factory:  factory,
		validate: validate,
		log:      slog.Default().With("component", "pool"),
		idle:     list.New(),
		waiters:  list.New(),
	}
	if p.cfg.IdleTimeout > 0 {
		p.reapStop = make(chan struct{})
		p.reapDone = make(chan struct{})
		go p.reapLoop()
	}
	return p
}

// Stats is a snapshot of the pool's counters (spec.md §3 "ConnectionPool
// state").
type Stats struct {
	Total   int
	Idle    int
	InUse   int
	Waiting int
}

// Stats returns a point-in-time snapshot of the pool's state.
func (p *Pool[C]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Total:   p.inUse + p.idle.Len(),
		Idle:    p.idle.Len(),
		InUse:   p.inUse,
		Waiting: p.waiters.Len(),
	}
}

// Acquire returns an idle connection (validating it first when
// configured), creates a new one if under capacity, or blocks in FIFO
// order until one is released, the context is cancelled, or
// AcquireTimeout elapses (spec.md §4.6 "acquire").
func (p *Pool[C]) Acquire(ctx context.Context) (C, error) {
	var zero C
	ctx, cancel := context.WithTimeout(ctx, p.cfg.AcquireTimeout)
	defer cancel()

	for {
		p.mu.Lock()
		if p.disposed {
			p.mu.Unlock()
			return zero, velox.NewObjectDisposedError("pool")
		}
		if el := p.idle.Front(); el != nil {
			ic := p.idle.Remove(el).(*idleConn[C])
			p.inUse++
			p.mu.Unlock()
			if p.validate != nil && p.cfg.ValidateOnAcquire && !p.validate(ctx, ic.conn) {
				_ = ic.conn.Close()
				p.mu.Lock()
				p.inUse--
				p.mu.Unlock()
				continue
			}
			return ic.conn, nil
		}
		if p.inUse+p.idle.Len() < p.cfg.MaxSize {
			p.inUse++
			p.mu.Unlock()
			c, err := p.factory(ctx)
			if err != nil {
				p.mu.Lock()
				p.inUse--
				p.mu.Unlock()
				return zero, velox.NewConnectionError(err)
			}
			return c, nil
		}

		w := &waiter[C]{ch: make(chan result[C], 1)}
		el := p.waiters.PushBack(w)
		p.mu.Unlock()

		select {
		case r := <-w.ch:
			if r.err != nil {
				return zero, r.err
			}
			return r.conn, nil
		case <-ctx.Done():
			p.mu.Lock()
			p.waiters.Remove(el)
			p.mu.Unlock()
			select {
			case r := <-w.ch:
				// Raced with a release that already handed us a
				// connection; honour it rather than dropping it.
				if r.err == nil {
					return r.conn, nil
				}
			default:
			}
			if ctx.Err() == context.Canceled {
				return zero, velox.NewCancelledError("pool.acquire")
			}
			return zero, velox.NewTimeoutError("pool.acquire")
		}
	}
}

// Release returns conn to the pool. If a waiter is queued, the connection
// is handed directly to it without passing through the idle set
// (spec.md §4.6: "no race where another thread steals the connection").
// A disposed pool, or a conn the caller flags broken, is closed instead.
func (p *Pool[C]) Release(conn C, broken bool) {
	p.mu.Lock()
	if p.disposed || broken {
		p.inUse--
		p.mu.Unlock()
		if err := conn.Close(); err != nil {
			p.log.Warn("close released connection", "error", err)
		}
		return
	}
	if el := p.waiters.Front(); el != nil {
		w := p.waiters.Remove(el).(*waiter[C])
		p.mu.Unlock()
		w.ch <- result[C]{conn: conn}
		return
	}
	p.inUse--
	p.idle.PushFront(&idleConn[C]{conn: conn, since: time.Now()})
	p.mu.Unlock()
}

// reapLoop periodically evicts idle connections older than IdleTimeout,
// never dropping the idle+in-use total below MinSize (spec.md §4.6
// "reapIdle").
func (p *Pool[C]) reapLoop() {
	defer close(p.reapDone)
	t := time.NewTicker(p.cfg.IdleTimeout / 2)
	defer t.Stop()
	for {
		select {
		case <-p.reapStop:
			return
		case <-t.C:
			p.reapOnce()
		}
	}
}

func (p *Pool[C]) reapOnce() {
	now := time.Now()
	var toClose []C
	p.mu.Lock()
	for el := p.idle.Back(); el != nil; {
		prev := el.Prev()
		ic := el.Value.(*idleConn[C])
		if p.inUse+p.idle.Len() <= p.cfg.MinSize {
			break
		}
		if now.Sub(ic.since) >= p.cfg.IdleTimeout {
			p.idle.Remove(el)
			toClose = append(toClose, ic.conn)
		}
		el = prev
	}
	p.mu.Unlock()
	for _, c := range toClose {
		if err := c.Close(); err != nil {
			p.log.Warn("close reaped idle connection", "error", err)
		}
	}
}

// Dispose rejects new acquirers with ObjectDisposedError, drains idle
// connections, and wakes every waiter with that error (spec.md §4.6
// "dispose").
func (p *Pool[C]) Dispose() error {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return nil
	}
	p.disposed = true
	var toClose []C
	for el := p.idle.Front(); el != nil; el = el.Next() {
		toClose = append(toClose, el.Value.(*idleConn[C]).conn)
	}
	p.idle.Init()
	for el := p.waiters.Front(); el != nil; el = el.Next() {
		w := el.Value.(*waiter[C])
		w.ch <- result[C]{err: velox.NewObjectDisposedError("pool")}
	}
	p.waiters.Init()
	p.mu.Unlock()

	if p.reapStop != nil {
		close(p.reapStop)
		<-p.reapDone
	}

	var errs []error
	for _, c := range toClose {
		if cerr := c.Close(); cerr != nil {
			errs = append(errs, cerr)
		}
	}
	if len(errs) > 0 {
		return velox.NewAggregateError(errs...)
	}
	return nil
}
