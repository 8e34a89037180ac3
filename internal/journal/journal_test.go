package journal_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/xtding233/suika-backend/internal/journal"
)

type line struct {
	Kind  string `json:"kind"`
	Score int    `json:"score"`
}

func TestWriteThenReadAll(t *testing.T) {
	dir := t.TempDir()
	w := journal.NewWriter(dir, "session")
	if err := w.Write(line{}); !errors.Is(err, journal.ErrNotOpen) {
		t.Fatalf("write before rotate: %v", err)
	}
	if err := w.Rotate("1"); err != nil {
		t.Fatal(err)
	}
	path := w.Path()
	if filepath.Base(path) != "session-1.jsonl.zst" {
		t.Fatalf("unexpected path %s", path)
	}
	for i := 0; i < 100; i++ {
		if err := w.Write(line{Kind: "score", Score: i}); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Rotate("2"); err != nil {
		t.Fatal(err)
	}
	_ = w.Write(line{Kind: "state"})
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := journal.ReadAll[line](path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 100 || got[99].Score != 99 {
		t.Fatalf("read %d lines, last=%+v", len(got), got[len(got)-1])
	}

	files, err := journal.List(dir, "session")
	if err != nil || len(files) != 2 {
		t.Fatalf("list: %v %v", files, err)
	}
}
