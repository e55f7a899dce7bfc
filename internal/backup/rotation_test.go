package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmemo/internal/logger"
)

// seedBackups creates n scheduled backup files with strictly increasing
// modification times and returns their paths, oldest first.
func seedBackups(t *testing.T, dir string, n int) []string {
	t.Helper()
	base := time.Now().Add(-time.Duration(n+1) * time.Hour)
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("memo_storage_20260824%04d.json", i)
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))
		mod := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(path, mod, mod))
		paths = append(paths, path)
	}
	return paths
}

func remaining(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRotateDeletesOldestBeyondRetention(t *testing.T) {
	dir := t.TempDir()
	paths := seedBackups(t, dir, 8)

	NewRotator(logger.Nop()).Rotate(dir, 5)

	left := remaining(t, dir)
	assert.Len(t, left, 5)
	for _, old := range paths[:3] {
		assert.NoFileExists(t, old)
	}
	for _, kept := range paths[3:] {
		assert.FileExists(t, kept)
	}
}

func TestRotateIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	seedBackups(t, dir, 6)

	manual := filepath.Join(dir, "memo_backup_202608241200.json")
	snapshot := filepath.Join(dir, "memo_pre_restore_20260824120000.json")
	stray := filepath.Join(dir, "notes.txt")
	for _, p := range []string{manual, snapshot, stray} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
		old := time.Now().Add(-240 * time.Hour)
		require.NoError(t, os.Chtimes(p, old, old))
	}

	NewRotator(logger.Nop()).Rotate(dir, 2)

	assert.FileExists(t, manual)
	assert.FileExists(t, snapshot)
	assert.FileExists(t, stray)
	assert.Len(t, remaining(t, dir), 5) // 2 scheduled + 3 foreign
}

func TestRotateRetentionBelowOneTreatedAsOne(t *testing.T) {
	dir := t.TempDir()
	seedBackups(t, dir, 4)

	NewRotator(logger.Nop()).Rotate(dir, 0)

	assert.Len(t, remaining(t, dir), 1)
}

func TestRotateMissingFolderIsHarmless(t *testing.T) {
	NewRotator(logger.Nop()).Rotate(filepath.Join(t.TempDir(), "absent"), 5)
}
