package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory_Persist(t *testing.T) {
	path := filepath.Join(t.TempDir(), historyFile)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load of missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{"1 + 2", modeEval},
		{"set x 3", modeCtrl},
		{"  x * 2  ", modeEval},
		{"x * 2", modeEval},
		{"", modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q): %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{"1 + 2", modeEval},
		{"set x 3", modeCtrl},
		{"x * 2", modeEval},
	}

	if got := h.Entries(); !slices.Equal(got, want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := string(data); got != "E:1 + 2\nC:set x 3\nE:x * 2\n" {
		t.Errorf("file = %q", got)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	if got := reloaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("reloaded = %v, want %v", got, want)
	}
}

func TestHistory_MoveDuplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), historyFile)
	h := NewHistory(path)

	for _, line := range []string{"a", "b", "c", "a"} {
		if err := h.Add(line, modeEval); err != nil {
			t.Fatal(err)
		}
	}

	// Same text in another mode is a distinct entry.
	if err := h.Add("a", modeCtrl); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := string(data); got != "E:b\nE:c\nE:a\nC:a\n" {
		t.Errorf("file = %q", got)
	}
}

func TestHistory_InMemory(t *testing.T) {
	h := NewHistory("")

	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	if err := h.Add("1", modeEval); err != nil {
		t.Fatal(err)
	}

	if h.Len() != 1 {
		t.Fatalf("len = %d", h.Len())
	}

	if e, err := h.Entry(0); err != nil || e.Line != "1" {
		t.Errorf("Entry(0) = %v, %v", e, err)
	}

	for _, i := range []int{-1, 1} {
		if _, err := h.Entry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Entry(%d) err = %v", i, err)
		}
	}
}

func TestDecodeEntry(t *testing.T) {
	tests := map[string]HistoryEntry{
		"E:1 + 2": {"1 + 2", modeEval},
		"C:vars":  {"vars", modeCtrl},
		"legacy":  {"legacy", modeEval},
	}

	for line, want := range tests {
		if got := decodeEntry(line); got != want {
			t.Errorf("decodeEntry(%q) = %v, want %v", line, got, want)
		}
	}
}
