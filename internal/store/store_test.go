package store

import (
	"path/filepath"
	"testing"
)

func exercise(t *testing.T, s Store) {
	t.Helper()
	if _, ok, err := s.Get(KeyHighScore); err != nil || ok {
		t.Fatalf("fresh store should miss: ok=%v err=%v", ok, err)
	}
	if err := s.Set(KeyHighScore, "42"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(KeyHighScore, "77"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.Get(KeyHighScore)
	if err != nil || !ok || v != "77" {
		t.Fatalf("get after overwrite = %q,%v,%v", v, ok, err)
	}
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemory())
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suika.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	exercise(t, s)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Get(KeyHighScore); err != ErrClosed {
		t.Fatalf("get after close err=%v, want ErrClosed", err)
	}

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	v, ok, err := s2.Get(KeyHighScore)
	if err != nil || !ok || v != "77" {
		t.Fatalf("value not persisted: %q,%v,%v", v, ok, err)
	}
}

func TestOpenSQLiteRejectsEmptyPath(t *testing.T) {
	if _, err := OpenSQLite(""); err == nil {
		t.Fatalf("empty path must error")
	}
}
