package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rpggio/mobility/internal/fault"
	"github.com/rpggio/mobility/internal/repository"
)

// Store serializes writers per document. Reads go straight to the medium
// and see the last committed document.
//
// Two Stores sharing one Medium do not coordinate: concurrent mutations from
// different Stores can still lose an update.
type Store struct {
	medium Medium
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a Store over the given medium.
func NewStore(medium Medium, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		medium: medium,
		logger: logger,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

// SetClock overrides the time source used for updatedAt stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) lock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

type document map[string]json.RawMessage

// load returns the raw document. A missing document is empty, never an error.
func (s *Store) load(ctx context.Context, name string) (document, error) {
	data, err := s.medium.Load(ctx, name)
	if errors.Is(err, ErrDocumentMissing) {
		return document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, errors.Join(err, fault.ErrStorage))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return document{}, nil
	}
	doc := document{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, errors.Join(err, repository.ErrCorruptDocument))
	}
	if doc == nil {
		doc = document{}
	}
	return doc, nil
}

func (s *Store) save(ctx context.Context, name string, doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, errors.Join(err, fault.ErrStorage))
	}
	if err := s.medium.Save(ctx, name, append(data, '\n')); err != nil {
		return fmt.Errorf("saving %s: %w", name, errors.Join(err, fault.ErrStorage))
	}
	return nil
}
