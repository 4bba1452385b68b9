package sql

import "time"

// nowFuncs maps each dialect to the intrinsic its driver evaluates as the
// current timestamp. sqlserver's own binding documents the same choice
// (SYSDATETIME over GETDATE) in dialect/sql/sqlserver; the others are the
// dialect's usual high-precision "now" call.
var nowFuncs = map[string]string{
	"postgres":  "now()",
	"mysql":     "CURRENT_TIMESTAMP(6)",
	"sqlite3":   "CURRENT_TIMESTAMP",
	"sqlserver": "SYSDATETIME()",
}

// NowFunc returns the current-timestamp intrinsic for dialectName, or ""
// if the dialect isn't recognised.
func NowFunc(dialectName string) string {
	return nowFuncs[dialectName]
}

// cmpRaw renders "column op raw" with raw written verbatim, not bound as a
// parameter - the counterpart to cmp for the few cases where the
// right-hand side must be a SQL expression rather than a literal.
func cmpRaw(op, column, raw string) *Predicate {
	p := P()
	p.prec = precCmp
	p.fns = []func(*Builder){func(b *Builder) {
		b.Ident(column).Pad().WriteString(op).Pad().WriteString(raw)
	}}
	return p
}

// CmpNow builds a "column op value" predicate. When epsilon is positive and
// value is within epsilon of the time this call runs, it binds the
// dialect's current-timestamp intrinsic instead of the literal value; this
// is the opt-in promotion querylanguage.TimeConst.AsNow requests, resolved
// here (the V/S formatting layer) rather than automatically for every
// timestamp constant.
func CmpNow(dialectName, op, column string, value time.Time, epsilon time.Duration) *Predicate {
	var p *Predicate
	if epsilon > 0 {
		if d := time.Since(value); -epsilon <= d && d <= epsilon {
			if fn := nowFuncs[dialectName]; fn != "" {
				p = cmpRaw(op, column, fn)
			}
		}
	}
	if p == nil {
		p = cmp(op, column, value)
	}
	p.SetDialect(dialectName)
	return p
}
