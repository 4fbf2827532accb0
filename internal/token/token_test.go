package token

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	s := NewStore(path)

	// Missing file reads as an empty token, not an error.
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load before save: %v", err)
	}
	if got != "" {
		t.Errorf("Load before save: got %q, want empty", got)
	}

	if err := s.Save("tok-abc"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err = s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "tok-abc" {
		t.Errorf("Load: got %q, want %q", got, "tok-abc")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file mode: got %o, want 600", perm)
	}
}

func TestStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s := NewStore(path)

	// Clearing a store that never saved is a no-op.
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear on empty store: %v", err)
	}

	if err := s.Save("tok"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load after clear: %v", err)
	}
	if got != "" {
		t.Errorf("Load after clear: got %q, want empty", got)
	}
}
