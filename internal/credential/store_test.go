package credential

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_AbsentFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "token"))

	token, ok := s.Get()
	if ok || token != "" {
		t.Fatalf("expected guest session, got token %q", token)
	}
}

func TestStore_SetPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")

	s := NewStore(path)
	if err := s.Set("abc123"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	token, ok := s.Get()
	if !ok || token != "abc123" {
		t.Fatalf("Get = %q, %v; want abc123, true", token, ok)
	}

	// New store over the same file must see the persisted token.
	restarted := NewStore(path)
	token, ok = restarted.Get()
	if !ok || token != "abc123" {
		t.Fatalf("restarted Get = %q, %v; want abc123, true", token, ok)
	}
}

func TestStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")

	s := NewStore(path)
	if err := s.Set("abc123"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}

	if _, ok := s.Get(); ok {
		t.Fatalf("expected cleared store")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("token file must be removed, stat err = %v", err)
	}
}

func TestStore_ClearWithoutFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "token"))

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear on absent file must not fail: %v", err)
	}
}
