package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/config"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/logger"
)

const sheet = "Mario Rossi RSSMRA80A01H501U a@b.it\n" +
	"CG Labrador M 01/02/2015 Fido\n" +
	"05/03/24 Visita di controllo\n"

func baseConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte(sheet), 0o644))
	return &config.Config{
		Storage: config.StorageConfig{Driver: "memory"},
		Source:  config.SourceConfig{Kind: "fs", Dir: dir},
		Cache:   config.CacheConfig{Kind: "lru", Size: 8},
	}
}

func TestNew_MemoryImportAndExport(t *testing.T) {
	a, err := New(context.Background(), baseConfig(t), logger.NewNop())
	require.NoError(t, err)
	defer a.Close()

	rep, err := a.Importer.ImportAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Stats.Succeeded)

	b, err := a.Export.XLSX(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}

func TestNew_SQLiteAutoMigrate(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Storage = config.StorageConfig{
		Driver:      "sqlite",
		DSN:         "file:" + filepath.Join(t.TempDir(), "vet.db"),
		AutoMigrate: true,
	}
	a, err := New(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)

	rep, err := a.Importer.ImportAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Stats.Succeeded)

	owners, err := a.Records.ListOwners(context.Background())
	require.NoError(t, err)
	assert.Len(t, owners, 1)
	assert.NoError(t, a.Close())
}

func TestNew_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig(t)
	cfg.Cache = config.CacheConfig{Kind: "redis", TTL: time.Hour, Redis: config.RedisConfig{Addr: mr.Addr()}}

	a, err := New(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Documents.Parse(context.Background(), "a.txt", false)
	require.NoError(t, err)
	assert.Len(t, mr.Keys(), 1)
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Storage.Driver = "oracle"
	_, err := New(context.Background(), cfg, logger.NewNop())
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
