// Package config loads flowlens settings.
//
// Settings are layered, later layers winning:
//
//  1. built-in defaults ([Default]);
//  2. flowlens.toml in the working directory, or the file named by
//     --config / FLOWLENS_CONFIG;
//  3. FLOWLENS_* environment variables, after loading .env if present
//     (FLOWLENS_CACHE_REDIS_ADDR sets cache.redis.addr);
//  4. command-line flags that were set explicitly.
package config

import (
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/maps"
	tomlparser "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/layout"
	"github.com/matzehuels/flowlens/pkg/render"
)

const (
	// FileName is the config file looked up in the working directory.
	FileName = "flowlens.toml"
	// EnvPrefix prefixes every environment variable.
	EnvPrefix = "FLOWLENS_"
)

// Cache backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config is the merged configuration.
type Config struct {
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`
	Layout   LayoutConfig   `koanf:"layout" toml:"layout"`
	Render   RenderConfig   `koanf:"render" toml:"render"`
	Cache    CacheConfig    `koanf:"cache" toml:"cache"`
	Server   ServerConfig   `koanf:"server" toml:"server"`
	Watch    WatchConfig    `koanf:"watch" toml:"watch"`
}

type AnalysisConfig struct {
	Patterns []string `koanf:"patterns" toml:"patterns"`
	Tests    bool     `koanf:"tests" toml:"tests"`
}

type LayoutConfig struct {
	Algorithm  string  `koanf:"algorithm" toml:"algorithm"`
	Collapse   bool    `koanf:"collapse" toml:"collapse"`
	Iterations int     `koanf:"iterations" toml:"iterations"`
	Seed       uint64  `koanf:"seed" toml:"seed"`
	Radius     float64 `koanf:"radius" toml:"radius"`
}

type RenderConfig struct {
	Format     string `koanf:"format" toml:"format"`
	Graphviz   bool   `koanf:"graphviz" toml:"graphviz"`
	Statements bool   `koanf:"statements" toml:"statements"`
}

type CacheConfig struct {
	Backend string      `koanf:"backend" toml:"backend"`
	Dir     string      `koanf:"dir" toml:"dir"` // empty: the user cache directory
	Entries int         `koanf:"entries" toml:"entries"`
	Redis   RedisConfig `koanf:"redis" toml:"redis"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr" toml:"addr"`
	Password string `koanf:"password" toml:"password"`
	DB       int    `koanf:"db" toml:"db"`
}

type ServerConfig struct {
	Addr    string `koanf:"addr" toml:"addr"`
	Root    string `koanf:"root" toml:"root"`
	Timeout string `koanf:"timeout" toml:"timeout"`
}

type WatchConfig struct {
	Debounce string `koanf:"debounce" toml:"debounce"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Analysis: AnalysisConfig{Patterns: []string{"./..."}},
		Layout: LayoutConfig{
			Algorithm:  string(layout.AlgorithmHierarchical),
			Iterations: layout.DefaultIterations,
			Seed:       layout.DefaultSeed,
			Radius:     layout.DefaultRadius,
		},
		Render: RenderConfig{Format: string(render.FormatSVG)},
		Cache:  CacheConfig{Backend: BackendFile, Entries: 512},
		Server: ServerConfig{Addr: ":8080", Root: ".", Timeout: "2m"},
		Watch:  WatchConfig{Debounce: "300ms"},
	}
}

// defaults flattens Default into koanf keys.
func defaults() map[string]any {
	d := Default()
	return maps.Unflatten(map[string]any{
		"analysis.patterns":    d.Analysis.Patterns,
		"analysis.tests":       d.Analysis.Tests,
		"layout.algorithm":     d.Layout.Algorithm,
		"layout.collapse":      d.Layout.Collapse,
		"layout.iterations":    d.Layout.Iterations,
		"layout.seed":          d.Layout.Seed,
		"layout.radius":        d.Layout.Radius,
		"render.format":        d.Render.Format,
		"render.graphviz":      d.Render.Graphviz,
		"render.statements":    d.Render.Statements,
		"cache.backend":        d.Cache.Backend,
		"cache.dir":            d.Cache.Dir,
		"cache.entries":        d.Cache.Entries,
		"cache.redis.addr":     d.Cache.Redis.Addr,
		"cache.redis.password": d.Cache.Redis.Password,
		"cache.redis.db":       d.Cache.Redis.DB,
		"server.addr":          d.Server.Addr,
		"server.root":          d.Server.Root,
		"server.timeout":       d.Server.Timeout,
		"watch.debounce":       d.Watch.Debounce,
	}, ".")
}

// FlagKeys maps command-line flag names onto config keys. Flags not listed
// here do not take part in configuration; --format is absent because it
// takes a list.
var FlagKeys = map[string]string{
	"tests":      "analysis.tests",
	"algorithm":  "layout.algorithm",
	"collapse":   "layout.collapse",
	"iterations": "layout.iterations",
	"seed":       "layout.seed",
	"radius":     "layout.radius",
	"graphviz":   "render.graphviz",
	"statements": "render.statements",
	"cache":      "cache.backend",
	"cache-dir":  "cache.dir",
	"redis":      "cache.redis.addr",
	"addr":       "server.addr",
	"root":       "server.root",
	"timeout":    "server.timeout",
	"debounce":   "watch.debounce",
}

// LoadOptions controls [Load].
type LoadOptions struct {
	// File overrides the config file path. A named file must exist; the
	// default one is optional.
	File string
	// Flags are applied last. Nil skips the flag layer.
	Flags *pflag.FlagSet
	// DotEnv is loaded into the process environment before the env layer.
	// Empty means ".env"; a missing file is ignored.
	DotEnv string
}

// Load merges all layers and validates the result.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(mapProvider(defaults()), nil); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load defaults")
	}

	path, required := opts.File, true
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path == "" {
		path, required = FileName, false
	}
	if err := k.Load(file.Provider(path), tomlparser.Parser()); err != nil {
		if required || !stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
		}
	}

	dotenv := opts.DotEnv
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := godotenv.Load(dotenv); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", dotenv)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read environment")
	}

	if opts.Flags != nil {
		provider := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := FlagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns FLOWLENS_CACHE_REDIS_ADDR into cache.redis.addr. FLOWLENS_CONFIG
// is consumed by Load itself.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	if s == "CONFIG" {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(s), "_", ".")
}

// Validate checks enumerations and durations.
func (c *Config) Validate() error {
	if _, err := layout.ParseAlgorithm(c.Layout.Algorithm); err != nil {
		return err
	}
	if _, err := render.ParseFormat(c.Render.Format); err != nil {
		return err
	}
	if c.Layout.Iterations < 0 || c.Layout.Radius < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout iterations and radius must not be negative")
	}
	backends := []string{BackendFile, BackendMemory, BackendRedis, BackendNone}
	if !slices.Contains(backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (want %s)", c.Cache.Backend, strings.Join(backends, ", "))
	}
	if c.Cache.Backend == BackendRedis && c.Cache.Redis.Addr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache.redis.addr is required for the redis backend")
	}
	if _, err := c.Server.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.Watch.DebounceDuration(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration parses Timeout. Zero disables the request timeout.
func (s ServerConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("server.timeout", s.Timeout)
}

// DebounceDuration parses Debounce.
func (w WatchConfig) DebounceDuration() (time.Duration, error) {
	return parseDuration("watch.debounce", w.Debounce)
}

func parseDuration(key, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s: invalid duration %q", key, s)
	}
	return d, nil
}

// Write encodes c as TOML.
func Write(w io.Writer, c Config) error {
	return toml.NewEncoder(w).Encode(c)
}

// Init writes the defaults to path. It refuses to overwrite an existing
// file unless force is set.
func Init(path string, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if stderrors.Is(err, fs.ErrExist) {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "%s already exists (use --force)", path)
		}
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	if err := Write(f, Default()); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return f.Close()
}

// mapProvider feeds a literal map to koanf.
type mapProvider map[string]any

func (p mapProvider) Read() (map[string]any, error) { return p, nil }

func (p mapProvider) ReadBytes() ([]byte, error) {
	return nil, stderrors.New("mapProvider does not support ReadBytes")
}
