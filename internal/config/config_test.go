package config

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmemo/internal/logger"
	"cmemo/internal/storage"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "path_config.json")
	return NewManager(path, storage.NewStore(logger.Nop()), logger.Nop()), dir
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	m, dir := newTestManager(t)

	cfg := m.Load(Defaults(dir))

	assert.False(t, cfg.AutoBackup.Enabled)
	assert.Equal(t, DefaultCron, cfg.AutoBackup.Cron)
	assert.Equal(t, DefaultRetention, cfg.AutoBackup.Retention)
	assert.Equal(t, filepath.Join(dir, "backups"), cfg.AutoBackup.Folder)
}

func TestLoadClampsRetention(t *testing.T) {
	tests := []struct {
		name   string
		stored int
		want   int
	}{
		{"zero clamps up", 0, 1},
		{"negative clamps up", -3, 1},
		{"huge clamps down", 500, 100},
		{"in range passes", 7, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, dir := newTestManager(t)
			content := `{"auto_backup": {"enabled": true, "cron": "0 * * * *", "folder": "/tmp/b", "retention": ` +
				strconv.Itoa(tt.stored) + `}}`
			require.NoError(t, os.WriteFile(m.Path(), []byte(content), 0o644))

			cfg := m.Load(Defaults(dir))
			assert.Equal(t, tt.want, cfg.AutoBackup.Retention)
		})
	}
}

func TestValidate(t *testing.T) {
	m, dir := newTestManager(t)
	good := DefaultAutoBackup(dir)
	good.Enabled = true

	require.NoError(t, m.Validate(good))

	bad := good
	bad.Cron = "not a cron"
	assert.Error(t, m.Validate(bad))

	bad = good
	bad.Retention = 0
	assert.Error(t, m.Validate(bad))

	bad = good
	bad.Retention = 101
	assert.Error(t, m.Validate(bad))

	bad = good
	bad.Folder = ""
	assert.Error(t, m.Validate(bad))
}

func TestSavePersistsLoadedConfigVerbatim(t *testing.T) {
	// Load tolerates a hand-edited invalid cron, so Save must be able to
	// write the same config back unchanged (relocation rewrites it wholesale).
	m, dir := newTestManager(t)
	cfg := Defaults(dir)
	cfg.AutoBackup.Cron = "61 * * * *"

	require.NoError(t, m.Save(cfg))

	loaded := m.Load(Defaults(dir))
	assert.Equal(t, "61 * * * *", loaded.AutoBackup.Cron)
}

func TestSaveAndReload(t *testing.T) {
	m, dir := newTestManager(t)
	cfg := Defaults(dir)
	cfg.LastStoragePath = filepath.Join(dir, "memo_storage.json")
	cfg.AutoBackup.Enabled = true
	cfg.AutoBackup.Cron = "*/30 * * * *"

	require.NoError(t, m.Save(cfg))

	loaded := m.Load(Defaults(dir))
	assert.Equal(t, cfg, loaded)
}

func TestStoragePathResolution(t *testing.T) {
	dir := t.TempDir()
	fallback := filepath.Join(dir, "memo_storage.json")

	cfg := Defaults(dir)
	assert.Equal(t, fallback, cfg.StoragePath(fallback))

	cfg.LastStoragePath = filepath.Join(dir, "gone", "memo_storage.json")
	assert.Equal(t, fallback, cfg.StoragePath(fallback), "dangling directory falls back")

	kept := filepath.Join(dir, "kept")
	require.NoError(t, os.Mkdir(kept, 0o755))
	cfg.LastStoragePath = filepath.Join(kept, "memo_storage.json")
	assert.Equal(t, cfg.LastStoragePath, cfg.StoragePath(fallback))
}
