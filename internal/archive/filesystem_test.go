package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileSystemArchive(t *testing.T) {
	root := filepath.Join(t.TempDir(), "archive")

	a, err := NewFileSystemArchive(root)
	if err != nil {
		t.Fatalf("NewFileSystemArchive() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "snapshots")); err != nil {
		t.Errorf("snapshots directory not created: %v", err)
	}
	if err := a.ValidateSetup(); err != nil {
		t.Errorf("ValidateSetup() error = %v", err)
	}
}

func TestFileSystemArchive_PutSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		size    int64
		wantErr bool
	}{
		{name: "store snapshot", data: "sealed bytes", size: 12},
		{name: "size mismatch", data: "short", size: 100, wantErr: true},
		{name: "empty snapshot", data: "", size: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewFileSystemArchive(t.TempDir())
			if err != nil {
				t.Fatalf("NewFileSystemArchive() error = %v", err)
			}

			err = a.PutSnapshot("player-1", strings.NewReader(tt.data), tt.size, 7)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PutSnapshot() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if _, err := os.Stat(filepath.Join(a.dir, "player-1.snap")); !os.IsNotExist(err) {
					t.Error("snapshot file should not exist after failed write")
				}
				return
			}

			var buf bytes.Buffer
			if err := a.GetSnapshot("player-1", &buf); err != nil {
				t.Fatalf("GetSnapshot() error = %v", err)
			}
			if buf.String() != tt.data {
				t.Errorf("GetSnapshot() = %q, want %q", buf.String(), tt.data)
			}
		})
	}
}

func TestFileSystemArchive_Versions(t *testing.T) {
	a, err := NewFileSystemArchive(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemArchive() error = %v", err)
	}

	v, err := a.GetSnapshotVersion("player-1")
	if err != nil {
		t.Fatalf("GetSnapshotVersion() error = %v", err)
	}
	if v != 0 {
		t.Errorf("GetSnapshotVersion() = %d, want 0 before any snapshot", v)
	}

	for _, want := range []int64{3, 9} {
		if err := a.PutSnapshot("player-1", strings.NewReader("x"), 1, want); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}
		got, err := a.GetSnapshotVersion("player-1")
		if err != nil {
			t.Fatalf("GetSnapshotVersion() error = %v", err)
		}
		if got != want {
			t.Errorf("GetSnapshotVersion() = %d, want %d", got, want)
		}
	}
}

func TestFileSystemArchive_GetSnapshotMissing(t *testing.T) {
	a, err := NewFileSystemArchive(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemArchive() error = %v", err)
	}

	var buf bytes.Buffer
	if err := a.GetSnapshot("nobody", &buf); err == nil {
		t.Error("GetSnapshot() expected error for missing snapshot")
	}
}

func TestFileSystemArchive_ValidateSetupMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "gone")
	a, err := NewFileSystemArchive(root)
	if err != nil {
		t.Fatalf("NewFileSystemArchive() error = %v", err)
	}
	if err := os.RemoveAll(root); err != nil {
		t.Fatalf("RemoveAll() error = %v", err)
	}

	if err := a.ValidateSetup(); err == nil {
		t.Error("ValidateSetup() expected error after root removed")
	}
}
