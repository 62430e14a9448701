package feedback

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mindwell-ai/mindwell/internal/domain"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feedback.jsonl")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, path
}

func readEntries(t *testing.T, path string) []Entry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("malformed line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestAppend(t *testing.T) {
	store, path := newTestStore(t)

	entry, err := store.Append("like", "That breathing tip helped", []string{"hi"}, "companion")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if entry.ID == "" {
		t.Error("entry id is empty")
	}
	if entry.Timestamp.IsZero() {
		t.Error("entry timestamp is zero")
	}

	entries := readEntries(t, path)
	if len(entries) != 1 {
		t.Fatalf("persisted entries = %d, want 1", len(entries))
	}
	got := entries[0]
	if got.ID != entry.ID || got.Rating != "like" || got.Message != "That breathing tip helped" {
		t.Errorf("persisted entry = %+v", got)
	}
	if got.Persona != "companion" {
		t.Errorf("persona = %q", got.Persona)
	}
}

func TestAppend_NormalizesRating(t *testing.T) {
	store, path := newTestStore(t)

	if _, err := store.Append("  DISLIKE ", "msg", nil, ""); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if got := readEntries(t, path)[0].Rating; got != "dislike" {
		t.Errorf("rating = %q, want dislike", got)
	}
}

func TestAppend_InvalidInput(t *testing.T) {
	store, _ := newTestStore(t)

	tests := []struct {
		name    string
		rating  string
		message string
	}{
		{"unknown rating", "meh", "msg"},
		{"empty rating", "", "msg"},
		{"empty message", "like", "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Append(tt.rating, tt.message, nil, "")
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("Append() error = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestAppend_Concurrent(t *testing.T) {
	store, path := newTestStore(t)

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			if _, err := store.Append("like", "concurrent message", nil, ""); err != nil {
				t.Errorf("Append() error = %v", err)
			}
		}()
	}
	wg.Wait()

	entries := readEntries(t, path)
	if len(entries) != writers {
		t.Fatalf("persisted entries = %d, want %d", len(entries), writers)
	}
	seen := make(map[string]struct{}, writers)
	for _, e := range entries {
		if _, dup := seen[e.ID]; dup {
			t.Errorf("duplicate id %s", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
}

func TestNewStore_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "feedback.jsonl")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	store.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("feedback file not created: %v", err)
	}
}
