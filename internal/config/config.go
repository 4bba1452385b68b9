// Package config loads and hot-reloads the connection configuration
// surface spec.md §6 names (hostname, port, database, username, password,
// connection timeout, pool bounds, TLS and authentication mode),
// round-tripping it through a YAML file the way the teacher's own
// configuration-adjacent packages favour struct tags plus a single
// marshal/unmarshal pair over a bespoke parser.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/veloxdb/velox"
	"github.com/veloxdb/velox/pool"
)

// Config is the connection configuration surface (spec.md §6).
type Config struct {
	Hostname               string        `yaml:"hostname"`
	Port                   int           `yaml:"port"`
	Database               string        `yaml:"database"`
	Username               string        `yaml:"username"`
	Password               string        `yaml:"password"`
	IntegratedSecurity     bool          `yaml:"integratedSecurity"`
	ConnectionTimeout      time.Duration `yaml:"connectionTimeout"`
	Pooling                bool          `yaml:"pooling"`
	MinPoolSize            int           `yaml:"minPoolSize"`
	MaxPoolSize            int           `yaml:"maxPoolSize"`
	IdleTimeout            time.Duration `yaml:"idleTimeout"`
	Encrypt                bool          `yaml:"encrypt"`
	TrustServerCertificate bool          `yaml:"trustServerCertificate"`
}

// withDefaults mirrors pool.Config.withDefaults' port/timeout conventions,
// applied only for fields the YAML file left at its zero value.
func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = 1433
	}
	if c.ConnectionTimeout == 0 {
		c.ConnectionTimeout = 15 * time.Second
	}
	if c.Pooling && c.MaxPoolSize == 0 {
		c.MaxPoolSize = 100
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 10 * time.Minute
	}
	return c
}

// Validate reports a velox.ConfigError if c is missing a hostname or
// database name, the two fields every dialect binding needs to dial at
// all (spec.md §6 "required fields"), or a username when
// IntegratedSecurity is not set.
func (c Config) Validate() error {
	if c.Hostname == "" {
		return velox.NewConfigError("hostname", "must not be empty")
	}
	if c.Database == "" {
		return velox.NewConfigError("database", "must not be empty")
	}
	if !c.IntegratedSecurity && c.Username == "" {
		return velox.NewConfigError("username", "must not be empty unless integratedSecurity is set")
	}
	return nil
}

// PoolConfig bridges to the pool.Config the P component consumes,
// translating the camelCase connection-string vocabulary of spec.md §6
// into the pool's own field names.
func (c Config) PoolConfig() pool.Config {
	return pool.Config{
		MinSize:        c.MinPoolSize,
		MaxSize:        c.MaxPoolSize,
		AcquireTimeout: c.ConnectionTimeout,
		IdleTimeout:    c.IdleTimeout,
	}
}

// Load reads and validates a Config from a YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, velox.NewConfigError("", fmt.Sprintf("read %s: %v", path, err))
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, velox.NewConfigError("", fmt.Sprintf("parse %s: %v", path, err))
	}
	c = c.withDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Save writes c to path as YAML.
func Save(path string, c Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return velox.NewConfigError("", fmt.Sprintf("marshal: %v", err))
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return velox.NewConfigError("", fmt.Sprintf("write %s: %v", path, err))
	}
	return nil
}

// ParseConnectionString parses a "key=value;key=value" connection string
// (the DSN form SQL Server client libraries traditionally accept) into a
// Config, as an alternative entry point to a YAML file.
func ParseConnectionString(s string) (Config, error) {
	c := Config{Pooling: true}
	for _, part := range splitPairs(s) {
		k, v, ok := cutPair(part)
		if !ok {
			continue
		}
		switch normalizeKey(k) {
		case "server", "host", "hostname", "data source":
			c.Hostname = v
		case "port":
			fmt.Sscanf(v, "%d", &c.Port)
		case "database", "initial catalog":
			c.Database = v
		case "user id", "username", "uid":
			c.Username = v
		case "password", "pwd":
			c.Password = v
		case "integrated security", "trusted_connection":
			c.IntegratedSecurity = isTruthy(v)
		case "encrypt":
			c.Encrypt = isTruthy(v)
		case "trustservercertificate":
			c.TrustServerCertificate = isTruthy(v)
		case "pooling":
			c.Pooling = isTruthy(v)
		case "min pool size", "minpoolsize":
			fmt.Sscanf(v, "%d", &c.MinPoolSize)
		case "max pool size", "maxpoolsize":
			fmt.Sscanf(v, "%d", &c.MaxPoolSize)
		case "connection timeout", "connect timeout":
			secs := 0
			fmt.Sscanf(v, "%d", &secs)
			c.ConnectionTimeout = time.Duration(secs) * time.Second
		}
	}
	c = c.withDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// ConnectionString renders c as a "key=value;..." connection string, the
// inverse of ParseConnectionString.
func (c Config) ConnectionString() string {
	pairs := []string{
		fmt.Sprintf("Server=%s,%d", c.Hostname, c.Port),
		fmt.Sprintf("Database=%s", c.Database),
	}
	if c.IntegratedSecurity {
		pairs = append(pairs, "Integrated Security=true")
	} else {
		pairs = append(pairs, fmt.Sprintf("User Id=%s", c.Username), fmt.Sprintf("Password=%s", c.Password))
	}
	pairs = append(pairs,
		fmt.Sprintf("Encrypt=%t", c.Encrypt),
		fmt.Sprintf("TrustServerCertificate=%t", c.TrustServerCertificate),
		fmt.Sprintf("Connection Timeout=%d", int(c.ConnectionTimeout.Seconds())),
	)
	if c.Pooling {
		pairs = append(pairs,
			fmt.Sprintf("Min Pool Size=%d", c.MinPoolSize),
			fmt.Sprintf("Max Pool Size=%d", c.MaxPoolSize),
		)
	} else {
		pairs = append(pairs, "Pooling=false")
	}
	out := pairs[0]
	for _, p := range pairs[1:] {
		out += ";" + p
	}
	return out
}

// Watcher watches a YAML config file and re-parses it on write, pushing
// the new Config to OnChange (spec.md §6 "a running pool picks up
// maxPoolSize/idleTimeout edits without a restart").
type Watcher struct {
	OnChange func(Config)
	OnError  func(error)

	path string
	log  *slog.Logger
}

// NewWatcher returns a Watcher for the file at path. Run must be called to
// start watching.
func NewWatcher(path string) *Watcher {
	return &Watcher{path: path, log: slog.Default().With("component", "config")}
}
