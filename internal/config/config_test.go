package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/bookclub/pkg/database"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "ISO-8859-1", cfg.Files.Encoding)
	assert.Equal(t, ';', cfg.Files.Delimiter)
	assert.Equal(t, Rules{MinYear: 1800, MaxYear: 2025, MinAge: 6, MaxAge: 120}, cfg.Rules)
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.Equal(t, 50000, cfg.ChunkSize)
	assert.False(t, cfg.Mongo.Enabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loader.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_driver: postgres\nbatch_size: 250\nmin_year: 1900\n"), 0o600))

	t.Setenv(KeyBatchSize, "10")
	t.Setenv(KeyMongoConnString, "mongodb://localhost:27017")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 1900, cfg.Rules.MinYear)
	assert.True(t, cfg.Mongo.Enabled())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func(t *testing.T) *Config {
		t.Setenv(KeyDBDriver, "sqlite")
		t.Setenv(KeyDBName, "bookclub.db")
		t.Chdir(t.TempDir())
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"ok", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, "unknown database driver"},
		{"no host", func(c *Config) { c.Database = database.Params{Driver: "mysql"} }, "DB_DSN or DB_HOST"},
		{"inverted years", func(c *Config) { c.Rules.MinYear = 2030 }, "MIN_YEAR"},
		{"inverted ages", func(c *Config) { c.Rules.MinAge = 200 }, "invalid age range"},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }, "BATCH_SIZE"},
		{"zero chunk", func(c *Config) { c.ChunkSize = 0 }, "CHUNK_SIZE"},
		{"quote delimiter", func(c *Config) { c.Files.Delimiter = '"' }, "CSV_DELIMITER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
