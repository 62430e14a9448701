// Package feedback persists user reactions to bot replies as an append-only
// JSON-lines file, one entry per line.
package feedback

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mindwell-ai/mindwell/internal/domain"
)

// Ratings accepted from clients.
const (
	RatingLike    = "like"
	RatingDislike = "dislike"
)

// Entry is one persisted feedback record.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Rating    string    `json:"rating"`
	Message   string    `json:"message"`
	History   []string  `json:"history,omitempty"`
	Persona   string    `json:"persona,omitempty"`
}

// Store appends feedback entries to a JSONL file. Safe for concurrent use;
// a mutex serializes writes so lines never interleave.
type Store struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewStore opens (creating if needed) the feedback file for appending.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create feedback directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open feedback file: %w", err)
	}

	return &Store{file: f, enc: json.NewEncoder(f)}, nil
}

// Append validates and persists one feedback entry, assigning it an id and
// timestamp. The stored entry is returned.
func (s *Store) Append(rating, message string, history []string, persona string) (Entry, error) {
	rating = strings.ToLower(strings.TrimSpace(rating))
	if rating != RatingLike && rating != RatingDislike {
		return Entry{}, fmt.Errorf("%w: rating must be %q or %q", domain.ErrInvalidRequest, RatingLike, RatingDislike)
	}
	if strings.TrimSpace(message) == "" {
		return Entry{}, fmt.Errorf("%w: empty message", domain.ErrInvalidRequest)
	}

	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Rating:    rating,
		Message:   message,
		History:   history,
		Persona:   persona,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(entry); err != nil {
		return Entry{}, fmt.Errorf("append feedback: %w", err)
	}
	return entry, nil
}

// Close flushes and closes the underlying file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
