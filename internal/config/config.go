package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adhocore/gronx"
	"github.com/go-playground/validator/v10"

	"cmemo/internal/logger"
	"cmemo/internal/storage"
)

const (
	MinRetention     = 1
	MaxRetention     = 100
	DefaultRetention = 5
	DefaultCron      = "0 * * * *" // hourly
)

// AutoBackupConfig describes the scheduled-backup behavior. It lives in the
// path config file, not the memo storage file.
type AutoBackupConfig struct {
	Enabled   bool   `json:"enabled"`
	Cron      string `json:"cron" validate:"required"`
	Folder    string `json:"folder" validate:"required"`
	Retention int    `json:"retention" validate:"min=1,max=100"`
}

// PathConfig is persisted independently of memo state so that relocating the
// storage file never rewrites memo content.
type PathConfig struct {
	LastStoragePath string           `json:"last_storage_path,omitempty"`
	AutoBackup      AutoBackupConfig `json:"auto_backup"`
}

func DefaultAutoBackup(baseDir string) AutoBackupConfig {
	return AutoBackupConfig{
		Enabled:   false,
		Cron:      DefaultCron,
		Folder:    filepath.Join(baseDir, "backups"),
		Retention: DefaultRetention,
	}
}

func Defaults(baseDir string) PathConfig {
	return PathConfig{AutoBackup: DefaultAutoBackup(baseDir)}
}

// Manager loads and persists the path config file.
type Manager struct {
	path     string
	store    *storage.Store
	log      logger.Logger
	validate *validator.Validate
	gron     *gronx.Gronx
}

func NewManager(path string, store *storage.Store, log logger.Logger) *Manager {
	return &Manager{
		path:     path,
		store:    store,
		log:      log,
		validate: validator.New(),
		gron:     gronx.New(),
	}
}

func (m *Manager) Path() string {
	return m.path
}

// Load reads the config file, falling back to defaults when it is missing or
// unreadable. Retention is clamped on the way in; a cron expression that was
// hand-edited into an invalid state is kept as-is and simply never fires.
func (m *Manager) Load(defaults PathConfig) PathConfig {
	cfg := defaults
	if !m.store.ReadJSON(m.path, &cfg) {
		return defaults
	}
	if cfg.AutoBackup.Cron == "" {
		cfg.AutoBackup.Cron = defaults.AutoBackup.Cron
	}
	if cfg.AutoBackup.Folder == "" {
		cfg.AutoBackup.Folder = defaults.AutoBackup.Folder
	}
	cfg.AutoBackup.Retention = ClampRetention(cfg.AutoBackup.Retention)
	return cfg
}

// Save writes the whole config atomically. Save does not re-validate: Load
// tolerates a hand-edited invalid cron, and relocation must be able to
// re-persist that config verbatim. New settings are checked with Validate at
// the dialog write-back boundary.
func (m *Manager) Save(cfg PathConfig) error {
	if err := m.store.WriteJSON(m.path, cfg); err != nil {
		return fmt.Errorf("save path config: %w", err)
	}
	m.log.Info("PathConfig", "config saved", map[string]interface{}{
		"path": m.path,
	})
	return nil
}

// Validate checks an AutoBackupConfig written back from the settings dialog.
func (m *Manager) Validate(cfg AutoBackupConfig) error {
	if err := m.validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid auto-backup settings: %w", err)
	}
	if !m.gron.IsValid(cfg.Cron) {
		return fmt.Errorf("invalid cron expression %q", cfg.Cron)
	}
	return nil
}

// StoragePath resolves the active storage file: the remembered path wins only
// when its directory still exists, otherwise the default location is used.
func (cfg PathConfig) StoragePath(fallback string) string {
	if cfg.LastStoragePath == "" {
		return fallback
	}
	if info, err := os.Stat(filepath.Dir(cfg.LastStoragePath)); err != nil || !info.IsDir() {
		return fallback
	}
	return cfg.LastStoragePath
}

func ClampRetention(n int) int {
	if n < MinRetention {
		return MinRetention
	}
	if n > MaxRetention {
		return MaxRetention
	}
	return n
}
