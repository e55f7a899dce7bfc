package manager

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"cmemo/internal/backup"
	"cmemo/internal/config"
	"cmemo/internal/logger"
	"cmemo/internal/state"
	"cmemo/internal/storage"
)

const (
	component = "MemoManager"

	// Mutation bursts within this window collapse into one disk write.
	saveDebounce = 1500 * time.Millisecond

	StorageFileName    = "memo_storage.json"
	PathConfigFileName = "path_config.json"
)

// Manager is the single owned context object of the core: it holds the memo
// mapping, global style settings, the debounced save scheduler, and the
// backup machinery. All of its state is mutated only from the event loop
// goroutine (see loop.go); foreign threads hand work off via Post.
type Manager struct {
	log     logger.Logger
	store   *storage.Store
	codec   *state.Codec
	paths   *config.Manager
	rotator *backup.Rotator
	sched   *backup.Scheduler

	factory WindowFactory
	windows map[string]MemoWindow
	global  state.GlobalSettings

	storagePath string
	pathCfg     config.PathConfig

	debounce  time.Duration
	saveTimer *time.Timer
	saves     int

	// Reentrancy guard: save requests arriving while state is being bulk
	// restored from disk are swallowed.
	restoring bool

	tasks        chan func()
	done         chan struct{}
	shutdownOnce sync.Once
}

// New builds the manager rooted at baseDir, restores persisted state, and
// guarantees at least one memo exists. A nil factory runs the core headless.
func New(baseDir string, factory WindowFactory, log logger.Logger) *Manager {
	if factory == nil {
		factory = newRecordWindow
	}

	store := storage.NewStore(log)
	m := &Manager{
		log:      log,
		store:    store,
		codec:    state.NewCodec(log),
		paths:    config.NewManager(filepath.Join(baseDir, PathConfigFileName), store, log),
		rotator:  backup.NewRotator(log),
		sched:    backup.NewScheduler(log),
		factory:  factory,
		windows:  make(map[string]MemoWindow),
		global:   state.DefaultGlobalSettings(),
		debounce: saveDebounce,
		tasks:    make(chan func(), 64),
		done:     make(chan struct{}),
	}

	m.pathCfg = m.paths.Load(config.Defaults(baseDir))
	m.storagePath = m.pathCfg.StoragePath(filepath.Join(baseDir, StorageFileName))

	m.loadState()
	if len(m.windows) == 0 {
		m.CreateMemo()
	}

	log.Info(component, "manager initialized", map[string]interface{}{
		"storage_path":   m.storagePath,
		"memo_count":     len(m.windows),
		"backup_enabled": m.pathCfg.AutoBackup.Enabled,
	})
	return m
}

// loadState restores all memo windows from the storage file. A structurally
// broken file logs and leaves a fresh empty state; a missing file is normal
// on first launch.
func (m *Manager) loadState() {
	m.restoring = true
	defer func() { m.restoring = false }()

	var raw map[string]interface{}
	if !m.store.ReadJSON(m.storagePath, &raw) {
		return
	}

	st, err := m.codec.Normalize(raw)
	if err != nil {
		m.log.Error(component, err, map[string]interface{}{
			"path": m.storagePath,
		})
		return
	}

	m.global = st.Global
	for id, rec := range st.Memos {
		m.windows[id] = m.factory(id, rec, m.global)
	}
	m.refreshStyles()
}

// snapshot collects the current state from every open window.
func (m *Manager) snapshot() state.AppState {
	memos := make(map[string]state.MemoRecord, len(m.windows))
	for id, w := range m.windows {
		memos[id] = w.Snapshot()
	}
	return state.AppState{Global: m.global, Memos: memos}
}

// RequestSave schedules a disk write. The default path is debounced: each
// call rearms the timer, so a burst of mutations produces exactly one write
// after the quiet period. immediate=true flushes synchronously.
func (m *Manager) RequestSave(immediate bool) {
	if m.restoring {
		return
	}
	if immediate {
		m.stopSaveTimer()
		if err := m.performSave(); err != nil {
			m.log.Error(component, err, nil)
		}
		return
	}
	if m.saveTimer == nil {
		m.saveTimer = time.NewTimer(m.debounce)
		return
	}
	if !m.saveTimer.Stop() {
		select {
		case <-m.saveTimer.C:
		default:
		}
	}
	m.saveTimer.Reset(m.debounce)
}

func (m *Manager) stopSaveTimer() {
	if m.saveTimer == nil {
		return
	}
	if !m.saveTimer.Stop() {
		select {
		case <-m.saveTimer.C:
		default:
		}
	}
	m.saveTimer = nil
}

func (m *Manager) performSave() error {
	return m.performSaveTo(m.storagePath)
}

func (m *Manager) performSaveTo(path string) error {
	if err := m.store.WriteJSON(path, m.codec.Serialize(m.snapshot())); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	m.saves++
	m.log.Debug(component, "state saved", map[string]interface{}{
		"path":       path,
		"memo_count": len(m.windows),
		"write_seq":  m.saves,
	})
	return nil
}

// CreateMemo opens a fresh memo with a randomized pastel background and
// returns its id. Ids are generated once and never reused.
func (m *Manager) CreateMemo() string {
	id := uuid.NewString()
	rec := state.NewMemoRecord(time.Now(), state.RandomPastel())
	m.windows[id] = m.factory(id, rec, m.global)
	m.RequestSave(false)
	return id
}

// NotifyContentChanged is called by a window after any content, geometry, or
// style mutation.
func (m *Manager) NotifyContentChanged() {
	m.RequestSave(false)
}

// NotifyClosed removes a window's record after the user closed it.
func (m *Manager) NotifyClosed(id string) {
	if _, ok := m.windows[id]; !ok {
		return
	}
	delete(m.windows, id)
	m.RequestSave(false)
}

func (m *Manager) MemoCount() int {
	return len(m.windows)
}

func (m *Manager) MemoIDs() []string {
	ids := make([]string, 0, len(m.windows))
	for id := range m.windows {
		ids = append(ids, id)
	}
	return ids
}

func (m *Manager) Global() state.GlobalSettings {
	return m.global
}

// Global style setters: each mutates the shared settings, restyles every open
// window, and schedules a save.

func (m *Manager) SetTheme(theme string) {
	m.global.Theme = theme
	m.refreshStyles()
	m.RequestSave(false)
}

func (m *Manager) SetFontFamily(family string) {
	m.global.FontFamily = family
	m.refreshStyles()
	m.RequestSave(false)
}

func (m *Manager) SetFontSize(size int) {
	if size < state.MinFontSize {
		size = state.MinFontSize
	}
	m.global.FontSize = size
	m.refreshStyles()
	m.RequestSave(false)
}

func (m *Manager) SetTitleFontSize(size int) {
	m.global.TitleFontSize = size
	m.refreshStyles()
	m.RequestSave(false)
}

func (m *Manager) SetTitleBold(bold bool) {
	m.global.TitleBold = bold
	m.refreshStyles()
	m.RequestSave(false)
}

func (m *Manager) refreshStyles() {
	for _, w := range m.windows {
		w.ApplyStyle(m.global)
	}
}

// StoragePath reports the active storage file location.
func (m *Manager) StoragePath() string {
	return m.storagePath
}

// AutoBackup returns the current scheduled-backup settings for the dialog.
func (m *Manager) AutoBackup() config.AutoBackupConfig {
	return m.pathCfg.AutoBackup
}

// SetAutoBackup validates and persists a replacement scheduled-backup
// configuration written back from the settings dialog.
func (m *Manager) SetAutoBackup(cfg config.AutoBackupConfig) error {
	if err := m.paths.Validate(cfg); err != nil {
		return err
	}
	next := m.pathCfg
	next.AutoBackup = cfg
	if err := m.paths.Save(next); err != nil {
		return err
	}
	m.pathCfg = next
	return nil
}

// Relocate moves the storage file and its sibling backups folder to a new
// location. The move is all-or-nothing: pointers advance only after both the
// state save and the path-config save succeed.
func (m *Manager) Relocate(newPath string) error {
	backupDir := filepath.Join(filepath.Dir(newPath), "backups")
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		m.log.Warning(component, "cannot create backups folder", map[string]interface{}{
			"folder": backupDir,
			"error":  err.Error(),
		})
	}

	if err := m.performSaveTo(newPath); err != nil {
		return fmt.Errorf("relocate to %s: %w", newPath, err)
	}

	next := m.pathCfg
	next.LastStoragePath = newPath
	next.AutoBackup.Folder = backupDir
	if err := m.paths.Save(next); err != nil {
		return fmt.Errorf("relocate to %s: %w", newPath, err)
	}

	m.pathCfg = next
	m.storagePath = newPath
	m.log.Info(component, "storage relocated", map[string]interface{}{
		"path":          newPath,
		"backup_folder": backupDir,
	})
	return nil
}

// ImportBackup replaces the current state with the contents of a backup
// file. The candidate must decode cleanly before anything is touched; a
// best-effort pre-restore snapshot of the current state is written first.
func (m *Manager) ImportBackup(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read backup %s: %w", path, err)
	}
	imported, err := m.codec.Decode(data)
	if err != nil {
		return fmt.Errorf("backup %s is not readable: %w", path, err)
	}

	m.writePreRestoreSnapshot()

	if err := m.store.WriteJSON(m.storagePath, m.codec.Serialize(imported)); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}

	for _, w := range m.windows {
		w.Close()
	}
	m.windows = make(map[string]MemoWindow)
	m.loadState()
	if len(m.windows) == 0 {
		m.CreateMemo()
	}

	m.log.Info(component, "backup imported", map[string]interface{}{
		"source":     path,
		"memo_count": len(m.windows),
	})
	return nil
}

// writePreRestoreSnapshot preserves the pre-restore state in the backups
// folder. Failure does not block the restore, only gets reported.
func (m *Manager) writePreRestoreSnapshot() {
	folder := m.pathCfg.AutoBackup.Folder
	if err := os.MkdirAll(folder, 0o755); err != nil {
		m.log.Warning(component, "pre-restore snapshot skipped", map[string]interface{}{
			"folder": folder,
			"error":  err.Error(),
		})
		return
	}
	snapPath := filepath.Join(folder, backup.PreRestoreName(time.Now()))
	if err := m.store.WriteJSON(snapPath, m.codec.Serialize(m.snapshot())); err != nil {
		m.log.Warning(component, "pre-restore snapshot failed", map[string]interface{}{
			"path":  snapPath,
			"error": err.Error(),
		})
		return
	}
	m.log.Info(component, "pre-restore snapshot written", map[string]interface{}{
		"path": snapPath,
	})
}

// ManualBackup writes the current state to a caller-chosen path,
// synchronously. Failure surfaces to the caller for display.
func (m *Manager) ManualBackup(path string) error {
	if err := m.performSaveTo(path); err != nil {
		return fmt.Errorf("backup to %s: %w", path, err)
	}
	return nil
}

// BackupPathConfig copies the path config file to a caller-chosen location.
func (m *Manager) BackupPathConfig(dst string) error {
	src := m.paths.Path()
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("no path config to back up: %w", err)
	}
	return m.store.CopyFile(src, dst)
}

// checkScheduledBackup runs one scheduler tick and fires a backup when due.
// Backup failures are logged and never propagate; the next matching minute
// retries naturally.
func (m *Manager) checkScheduledBackup(now time.Time) {
	fireAt, due := m.sched.Tick(m.pathCfg.AutoBackup, now)
	if !due {
		return
	}
	m.runAutoBackup(fireAt)
}

func (m *Manager) runAutoBackup(fireAt time.Time) {
	folder := m.pathCfg.AutoBackup.Folder
	if err := os.MkdirAll(folder, 0o755); err != nil {
		m.log.Error(component, err, map[string]interface{}{
			"folder": folder,
		})
		return
	}

	path := filepath.Join(folder, backup.ScheduledName(fireAt))
	if err := m.store.WriteJSON(path, m.codec.Serialize(m.snapshot())); err != nil {
		m.log.Error(component, err, map[string]interface{}{
			"path": path,
		})
		return
	}
	m.log.Info(component, "scheduled backup written", map[string]interface{}{
		"path":     path,
		"fired_at": fireAt,
	})

	m.rotator.Rotate(folder, m.pathCfg.AutoBackup.Retention)
}

// Shutdown performs the final synchronous save. Pending debounce timers are
// abandoned; the state they would have written is persisted here. While the
// loop is running, only Run may call this (it does so on cancellation);
// everyone else waits on Done.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		m.stopSaveTimer()
		if err := m.performSave(); err != nil {
			m.log.Error(component, err, nil)
			return
		}
		m.log.Info(component, "final state saved", map[string]interface{}{
			"path": m.storagePath,
		})
	})
}
