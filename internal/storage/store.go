package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cmemo/internal/logger"
)

// Store writes JSON files atomically: content lands in a temporary file in
// the target's directory, is forced to durable storage, then renamed over the
// target. The target is either untouched or fully replaced, never partially
// written.
type Store struct {
	log logger.Logger
}

func NewStore(log logger.Logger) *Store {
	return &Store{log: log}
}

func (s *Store) WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return s.WriteBytes(path, data)
}

func (s *Store) WriteBytes(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}

	s.log.Debug("FileStore", "file replaced", map[string]interface{}{
		"path":  path,
		"bytes": len(data),
	})
	return nil
}

// ReadJSON loads a JSON file into v. A missing file or parse failure is
// logged and reported as ok=false; it never propagates to the caller, which
// falls back to its default.
func (s *Store) ReadJSON(path string, v interface{}) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warning("FileStore", "read failed", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.log.Warning("FileStore", "parse failed", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return false
	}
	return true
}

// CopyFile duplicates src to dst through the same atomic replace path.
func (s *Store) CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	return s.WriteBytes(dst, data)
}
