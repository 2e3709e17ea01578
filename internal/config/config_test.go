package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/symlump/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "symlump.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[input]
dir = "data/saucy"

[output]
dir = "results"

[analysis]
workers = 3
timeout = "45s"
alphabet = 3
verify = true

[oracle]
kind = "gap"
gap_path = "/opt/gap/bin/gap"
concurrency = 2

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/1"

[mongo]
uri = "mongodb://localhost:27017"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "data/saucy", cfg.Input.Dir)
	assert.Equal(t, "data/saucy", cfg.StatsDir())
	assert.Equal(t, "results", cfg.Output.Dir)
	assert.Equal(t, OracleGAP, cfg.Oracle.Kind)
	assert.Equal(t, 2, cfg.Oracle.Concurrency)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, "symlump", cfg.Mongo.Database, "defaults survive partial sections")
	assert.Equal(t, ":8080", cfg.Server.Addr)

	opts := cfg.PipelineOptions()
	assert.Equal(t, 3, opts.Workers)
	assert.Equal(t, 45*time.Second, opts.Timeout)
	assert.Equal(t, 3, opts.Alphabet)
	assert.True(t, opts.Verify)
}

func TestLoadMissingDefaultPath(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"syntax", "[analysis\nworkers = 1", errors.ErrCodeParse},
		{"unknown key", "[analysis]\nthreads = 4\n", errors.ErrCodeInvalidInput},
		{"bad oracle", "[oracle]\nkind = \"sage\"\n", errors.ErrCodeInvalidInput},
		{"negative workers", "[analysis]\nworkers = -1\n", errors.ErrCodeInvalidInput},
		{"redis without url", "[cache]\nbackend = \"redis\"\n", errors.ErrCodeInvalidInput},
		{"mongo without database", "[mongo]\nuri = \"mongodb://x\"\ndatabase = \"\"\n", errors.ErrCodeInvalidInput},
		{"verify too large", "[analysis]\nverify_max_nodes = 40\n", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.True(t, errors.Is(err, tt.code), "got %v, want %s", err, tt.code)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound), "got %v", err)
}

func TestValidationMessage(t *testing.T) {
	cfg := Default()
	cfg.Oracle.Kind = "sage"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle.kind must be one of: closure gap")
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "examples", "symlump.toml"))
	require.NoError(t, err)
	assert.Equal(t, "examples/networks", cfg.Input.Dir)
	assert.Equal(t, 2*time.Minute, cfg.Analysis.Timeout)
	assert.True(t, cfg.Analysis.Verify)
	assert.Equal(t, OracleClosure, cfg.Oracle.Kind)
	assert.Equal(t, CacheFile, cfg.Cache.Backend)
}
