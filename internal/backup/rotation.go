package backup

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"cmemo/internal/config"
	"cmemo/internal/logger"
)

const (
	scheduledPrefix  = "memo_storage_"
	manualPrefix     = "memo_backup_"
	preRestorePrefix = "memo_pre_restore_"
	backupExt        = ".json"
)

// ScheduledName is the file name for an automatic backup fired at t.
func ScheduledName(t time.Time) string {
	return scheduledPrefix + t.Format("200601021504") + backupExt
}

// ManualName is the suggested file name for a user-initiated backup.
func ManualName(t time.Time) string {
	return manualPrefix + t.Format("200601021504") + backupExt
}

// PreRestoreName is the file name for the snapshot taken before a restore.
// Seconds granularity keeps repeated restores within a minute distinct.
func PreRestoreName(t time.Time) string {
	return preRestorePrefix + t.Format("20060102150405") + backupExt
}

// Rotator prunes old automatic backups from a folder. Only files matching the
// scheduled naming pattern are candidates; manual backups and pre-restore
// snapshots are never touched.
type Rotator struct {
	log logger.Logger
}

func NewRotator(log logger.Logger) *Rotator {
	return &Rotator{log: log}
}

// Rotate deletes the oldest automatic backups until at most retention remain.
// Files are ordered by modification time, not name, since names can collide
// within the same minute under rapid scheduling. Individual delete failures
// are logged and skipped.
func (r *Rotator) Rotate(folder string, retention int) {
	retention = config.ClampRetention(retention)

	entries, err := os.ReadDir(folder)
	if err != nil {
		r.log.Warning("BackupRotation", "cannot list backup folder", map[string]interface{}{
			"folder": folder,
			"error":  err.Error(),
		})
		return
	}

	type candidate struct {
		path    string
		modTime time.Time
	}
	var candidates []candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, scheduledPrefix) || !strings.HasSuffix(name, backupExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{
			path:    filepath.Join(folder, name),
			modTime: info.ModTime(),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].modTime.Before(candidates[j].modTime)
	})

	for i := 0; len(candidates)-i > retention; i++ {
		old := candidates[i]
		if err := os.Remove(old.path); err != nil {
			r.log.Warning("BackupRotation", "delete failed", map[string]interface{}{
				"path":  old.path,
				"error": err.Error(),
			})
			continue
		}
		r.log.Info("BackupRotation", "old backup deleted", map[string]interface{}{
			"path": old.path,
		})
	}
}
