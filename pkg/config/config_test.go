package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowlens/pkg/errors"
)

// chdir moves into a fresh directory so a stray flowlens.toml or .env
// cannot leak into the test.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)
	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoadLayers(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`
[layout]
algorithm = "force"
iterations = 10

[cache]
backend = "memory"
`), 0o644))
	t.Setenv("FLOWLENS_LAYOUT_ITERATIONS", "20")
	t.Setenv("FLOWLENS_SERVER_ADDR", ":9999")
	t.Setenv("FLOWLENS_RENDER_GRAPHVIZ", "false")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("algorithm", "hierarchical", "")
	flags.Int("iterations", 0, "")
	flags.Bool("graphviz", false, "")
	flags.Bool("verbose", false, "")
	require.NoError(t, flags.Parse([]string{"--graphviz", "--verbose"}))

	cfg, err := Load(LoadOptions{Flags: flags})
	require.NoError(t, err)

	assert.Equal(t, "force", cfg.Layout.Algorithm, "unset flag must not override the file")
	assert.Equal(t, 20, cfg.Layout.Iterations, "env overrides the file")
	assert.True(t, cfg.Render.Graphviz, "explicit flag overrides env")
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, []string{"./..."}, cfg.Analysis.Patterns)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("FLOWLENS_CACHE_BACKEND=redis\nFLOWLENS_CACHE_REDIS_ADDR=localhost:6380\n"), 0o644))
	t.Setenv("FLOWLENS_CACHE_BACKEND", "")
	os.Unsetenv("FLOWLENS_CACHE_BACKEND")
	t.Setenv("FLOWLENS_CACHE_REDIS_ADDR", "")
	os.Unsetenv("FLOWLENS_CACHE_REDIS_ADDR")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "localhost:6380", cfg.Cache.Redis.Addr)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		code errors.Code
	}{
		{"bad toml", "[layout\n", errors.ErrCodeInvalidInput},
		{"bad algorithm", "[layout]\nalgorithm = \"spiral\"\n", errors.ErrCodeInvalidAlgorithm},
		{"bad format", "[render]\nformat = \"pdf\"\n", errors.ErrCodeInvalidFormat},
		{"bad backend", "[cache]\nbackend = \"s3\"\n", errors.ErrCodeInvalidInput},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", errors.ErrCodeInvalidInput},
		{"bad duration", "[watch]\ndebounce = \"soon\"\n", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := chdir(t)
			path := filepath.Join(dir, "custom.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.file), 0o644))
			_, err := Load(LoadOptions{File: path})
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), "err = %v", err)
		})
	}
}

func TestLoadMissingNamedFile(t *testing.T) {
	dir := chdir(t)
	_, err := Load(LoadOptions{File: filepath.Join(dir, "nope.toml")})
	assert.Error(t, err)
}

func TestInit(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, FileName)
	require.NoError(t, Init(path, false))

	err := Init(path, false)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPath), "got %v", err)
	require.NoError(t, Init(path, true))

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Default()))
	assert.Contains(t, buf.String(), "[layout]")
	assert.Contains(t, buf.String(), `algorithm = "hierarchical"`)
}

func TestDurations(t *testing.T) {
	d, err := Default().Server.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, d)

	d, err = ServerConfig{}.TimeoutDuration()
	require.NoError(t, err)
	assert.Zero(t, d)

	_, err = WatchConfig{Debounce: "-1s"}.DebounceDuration()
	assert.Error(t, err)
}
