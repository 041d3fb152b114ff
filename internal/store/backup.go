package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/salacoste/swagger-mcp-server/internal/logging"
)

// backupRetention is how many backups CreateBackup keeps before pruning
// the oldest.
const backupRetention = 10

// CreateBackup copies the database file at dbPath into a sibling
// backups/ directory as "{stem}_{YYYYMMDD_HHMMSS}{suffix}", and prunes
// older backups of the same database beyond backupRetention.
func CreateBackup(dbPath string) (string, error) {
	timer := logging.StartTimer(logging.CategoryStore, "CreateBackup")
	defer timer.Stop()

	dir := filepath.Join(filepath.Dir(dbPath), "backups")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create backups directory: %w", err)
	}

	base := filepath.Base(dbPath)
	suffix := filepath.Ext(base)
	stem := base[:len(base)-len(suffix)]
	timestamp := time.Now().UTC().Format("20060102_150405")
	backupPath := filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, timestamp, suffix))

	if err := copyFile(dbPath, backupPath); err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	logging.Store("database backup created: %s", backupPath)

	if err := pruneOldBackups(dir, stem, suffix); err != nil {
		logging.Get(logging.CategoryStore).Warn("backup pruning failed: %v", err)
	}
	return backupPath, nil
}

// RestoreBackup overwrites the database file at dbPath with the contents
// of backupPath.
func RestoreBackup(dbPath, backupPath string) error {
	timer := logging.StartTimer(logging.CategoryStore, "RestoreBackup")
	defer timer.Stop()

	if err := copyFile(backupPath, dbPath); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}
	logging.Store("database restored from backup: %s", backupPath)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return out.Sync()
}

// pruneOldBackups removes backups of the stem/suffix pair in dir beyond
// backupRetention, oldest first.
func pruneOldBackups(dir, stem, suffix string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list backup directory: %w", err)
	}

	var names []string
	prefix := stem + "_"
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if len(name) > len(prefix)+len(suffix) && name[:len(prefix)] == prefix && name[len(name)-len(suffix):] == suffix {
			names = append(names, name)
		}
	}
	sort.Strings(names) // timestamp component sorts lexicographically = chronologically
	if len(names) <= backupRetention {
		return nil
	}
	for _, name := range names[:len(names)-backupRetention] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("remove old backup %s: %w", name, err)
		}
		logging.StoreDebug("pruned old backup: %s", name)
	}
	return nil
}
