// ABOUTME: Persistent record of suggestions a user has dismissed
// ABOUTME: Backed by BadgerDB with one key per deal and suggestion ID
package dismissals

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "dismissed/"

// Store keeps dismissed suggestion IDs so they stay hidden on later requests.
type Store struct {
	db *badger.DB
}

// Open opens or creates the dismissal store in dir. A nil logger silences badger.
func Open(dir string, logger logrus.FieldLogger) (*Store, error) {
	return open(badger.DefaultOptions(dir), logger)
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), nil)
}

func open(opts badger.Options, logger logrus.FieldLogger) (*Store, error) {
	if logger != nil {
		opts = opts.WithLogger(newBadgerLogger(logger))
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open dismissal store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func dealPrefix(dealID uuid.UUID) []byte {
	return []byte(keyPrefix + dealID.String() + "/")
}

func dismissalKey(dealID uuid.UUID, suggestionID string) []byte {
	return append(dealPrefix(dealID), suggestionID...)
}

// Dismiss hides a suggestion for the deal. Dismissing twice is a no-op.
func (s *Store) Dismiss(dealID uuid.UUID, suggestionID string) error {
	suggestionID = strings.TrimSpace(suggestionID)
	if suggestionID == "" {
		return errors.New("suggestion id is required")
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(dismissalKey(dealID, suggestionID), []byte(time.Now().UTC().Format(time.RFC3339)))
	})
}

func (s *Store) IsDismissed(dealID uuid.UUID, suggestionID string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(dismissalKey(dealID, suggestionID))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListForDeal returns the dismissed suggestion IDs for a deal in key order.
func (s *Store) ListForDeal(dealID uuid.UUID) ([]string, error) {
	prefix := dealPrefix(dealID)
	ids := []string{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			ids = append(ids, string(key[len(prefix):]))
		}
		return nil
	})
	return ids, err
}

// ClearDeal forgets every dismissal for a deal and returns how many were removed.
func (s *Store) ClearDeal(dealID uuid.UUID) (int, error) {
	ids, err := s.ListForDeal(dealID)
	if err != nil {
		return 0, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := txn.Delete(dismissalKey(dealID, id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
