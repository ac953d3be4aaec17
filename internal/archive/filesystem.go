package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"vaultwars/internal/vw"
)

// FileSystemArchive stores snapshots as files, typically on a mounted
// network or removable drive:
//
//	<root>/
//	  snapshots/
//	    <name>.snap      (sealed snapshot)
//	    <name>.version   (operation id it was taken at)
type FileSystemArchive struct {
	root string
	dir  string
}

// NewFileSystemArchive creates the directory layout under root.
func NewFileSystemArchive(root string) (*FileSystemArchive, error) {
	dir := filepath.Join(root, "snapshots")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileSystemArchive{root: root, dir: dir}, nil
}

// PutSnapshot writes the snapshot first and the version marker second, so a
// reader never sees a version whose snapshot is missing.
func (a *FileSystemArchive) PutSnapshot(name string, r io.Reader, size int64, version int64) error {
	if err := writeFileAtomic(filepath.Join(a.dir, name+".snap"), r, size); err != nil {
		return err
	}
	data := strconv.FormatInt(version, 10)
	return writeFileAtomic(filepath.Join(a.dir, name+".version"), strings.NewReader(data), int64(len(data)))
}

// GetSnapshot copies the snapshot file to w.
func (a *FileSystemArchive) GetSnapshot(name string, w io.Writer) error {
	f, err := os.Open(filepath.Join(a.dir, name+".snap"))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("snapshot not found: %s", name)
		}
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	return nil
}

// GetSnapshotVersion returns 0 if no version file exists.
func (a *FileSystemArchive) GetSnapshotVersion(name string) (int64, error) {
	data, err := os.ReadFile(filepath.Join(a.dir, name+".version"))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading version file: %w", err)
	}

	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

// ValidateSetup verifies that the archive directories exist.
func (a *FileSystemArchive) ValidateSetup() error {
	for _, dir := range []string{a.root, a.dir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("archive directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("archive path is not a directory: %s", dir)
		}
	}
	return nil
}

// writeFileAtomic writes r to destPath through a temp file and rename.
func writeFileAtomic(destPath string, r io.Reader, expectedSize int64) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

var _ vw.Archive = (*FileSystemArchive)(nil)
