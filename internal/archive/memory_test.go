package archive

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemoryArchive(t *testing.T) {
	a := NewMemoryArchive()

	if err := a.PutSnapshot("p", strings.NewReader("abc"), 3, 4); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}
	if err := a.PutSnapshot("p", strings.NewReader("abc"), 10, 5); err == nil {
		t.Error("PutSnapshot() expected size mismatch error")
	}

	var buf bytes.Buffer
	if err := a.GetSnapshot("p", &buf); err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if buf.String() != "abc" {
		t.Errorf("GetSnapshot() = %q, want %q", buf.String(), "abc")
	}

	v, _ := a.GetSnapshotVersion("p")
	if v != 4 {
		t.Errorf("GetSnapshotVersion() = %d, want 4", v)
	}
	if err := a.GetSnapshot("missing", &buf); err == nil {
		t.Error("GetSnapshot() expected error for missing snapshot")
	}
}
