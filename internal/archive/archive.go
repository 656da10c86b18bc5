// Package archive keeps saved paper discussions in a local bbolt database.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/csheth/papertalk/internal/arxiv"
	"github.com/csheth/papertalk/internal/chat"
)

var transcriptsBucket = []byte("transcripts")

// ErrNotFound is returned by Load when no transcript is stored under a key.
var ErrNotFound = errors.New("archive: transcript not found")

// Record is one saved discussion. Saving the same paper again replaces the
// messages but keeps ID and CreatedAt.
type Record struct {
	ID        string         `json:"id"`
	Key       string         `json:"key"`
	Paper     arxiv.Paper    `json:"paper"`
	Messages  []chat.Message `json:"messages"`
	CreatedAt time.Time      `json:"createdAt"`
	SavedAt   time.Time      `json:"savedAt"`
}

// Summary is the listing view of a Record.
type Summary struct {
	Key      string
	Title    string
	Messages int
	SavedAt  time.Time
}

// Store is an open archive file.
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// Open opens (creating if needed) the archive at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("archive: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(transcriptsBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("archive: init: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path reports the database file location.
func (s *Store) Path() string {
	return s.db.Path()
}

// Save stores messages for paper under paper.Key().
func (s *Store) Save(paper arxiv.Paper, messages []chat.Message) (Record, error) {
	key := paper.Key()
	now := s.now().UTC()
	var rec Record
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(transcriptsBucket)
		rec = Record{ID: uuid.NewString(), CreatedAt: now}
		if raw := b.Get([]byte(key)); raw != nil {
			var prev Record
			if err := json.Unmarshal(raw, &prev); err == nil {
				rec.ID = prev.ID
				rec.CreatedAt = prev.CreatedAt
			}
		}
		rec.Key = key
		rec.Paper = paper
		rec.Messages = chat.Clone(messages)
		rec.SavedAt = now
		enc, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), enc)
	})
	if err != nil {
		return Record{}, fmt.Errorf("archive: save %s: %w", key, err)
	}
	return rec, nil
}

// Load returns the record stored under key.
func (s *Store) Load(key string) (Record, error) {
	var rec Record
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(transcriptsBucket).Get([]byte(key))
		if raw == nil {
			return ErrNotFound
		}
		return json.Unmarshal(raw, &rec)
	})
	if err != nil {
		return Record{}, fmt.Errorf("archive: load %s: %w", key, err)
	}
	return rec, nil
}

// List returns every saved transcript, most recently saved first.
func (s *Store) List() ([]Summary, error) {
	out := []Summary{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(transcriptsBucket).ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				// Skip malformed entries instead of failing the whole listing.
				return nil
			}
			out = append(out, Summary{
				Key:      string(k),
				Title:    rec.Paper.Title,
				Messages: len(rec.Messages),
				SavedAt:  rec.SavedAt,
			})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("archive: list: %w", err)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SavedAt.After(out[j].SavedAt)
	})
	return out, nil
}
