package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/mobility/internal/repository"
)

// Schema describes how records of type T live inside a document field.
type Schema[T any] struct {
	// Document is the medium-level document name.
	Document string
	// Field is the top-level array field holding the records.
	Field string
	// Key returns the record's identifier.
	Key func(T) string
	// Sequence and Assign are set for collections whose ids are assigned on insert.
	Sequence func(T) int64
	Assign   func(*T, int64)
	// Stamp records the update time on a patched record.
	Stamp func(*T, time.Time)
	// Validate rejects malformed records on load and before write.
	Validate func(T) error
}

// Collection is a typed view over one array field of a document.
type Collection[T any] struct {
	store  *Store
	schema Schema[T]
}

// NewCollection binds a schema to a store.
func NewCollection[T any](store *Store, schema Schema[T]) *Collection[T] {
	return &Collection[T]{store: store, schema: schema}
}

func (c *Collection[T]) decode(doc document) ([]T, error) {
	raw, ok := doc[c.schema.Field]
	if !ok || string(raw) == "null" {
		return []T{}, nil
	}
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decoding %s.%s: %v: %w", c.schema.Document, c.schema.Field, err, repository.ErrCorruptDocument)
	}
	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		if c.schema.Validate != nil {
			if err := c.schema.Validate(rec); err != nil {
				// Only the corrupt-document kind is wrapped.
				return nil, fmt.Errorf("%s.%s[%d]: %v: %w", c.schema.Document, c.schema.Field, i, err, repository.ErrCorruptDocument)
			}
		}
		key := c.schema.Key(rec)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%s.%s: duplicate key %q: %w", c.schema.Document, c.schema.Field, key, repository.ErrCorruptDocument)
		}
		seen[key] = struct{}{}
	}
	return records, nil
}

func (c *Collection[T]) encode(doc document, records []T) error {
	if records == nil {
		records = []T{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding %s.%s: %w", c.schema.Document, c.schema.Field, err)
	}
	doc[c.schema.Field] = raw
	return nil
}

// All returns every record. Unreadable or corrupt documents degrade to an empty result.
func (c *Collection[T]) All(ctx context.Context) []T {
	doc, err := c.store.load(ctx, c.schema.Document)
	if err != nil {
		c.store.logger.Warn("document unreadable, serving empty collection", "document", c.schema.Document, "error", err)
		return []T{}
	}
	records, err := c.decode(doc)
	if err != nil {
		c.store.logger.Error("document corrupt, serving empty collection", "document", c.schema.Document, "field", c.schema.Field, "error", err)
		return []T{}
	}
	return records
}

// Get returns the records matching pred, in stored order. A nil pred matches everything.
func (c *Collection[T]) Get(ctx context.Context, pred func(T) bool) []T {
	all := c.All(ctx)
	if pred == nil {
		return all
	}
	out := make([]T, 0, len(all))
	for _, rec := range all {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// GetByID returns the record with the given key.
func (c *Collection[T]) GetByID(ctx context.Context, key string) (T, error) {
	for _, rec := range c.All(ctx) {
		if c.schema.Key(rec) == key {
			return rec, nil
		}
	}
	var zero T
	return zero, repository.ErrNotFound
}

// mutate runs fn against a strictly loaded snapshot under the document lock and
// persists the whole document when fn succeeds.
func (c *Collection[T]) mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	l := c.store.lock(c.schema.Document)
	l.Lock()
	defer l.Unlock()

	doc, err := c.store.load(ctx, c.schema.Document)
	if err != nil {
		return err
	}
	records, err := c.decode(doc)
	if err != nil {
		return err
	}
	next, err := fn(records)
	if err != nil {
		return err
	}
	if err := c.encode(doc, next); err != nil {
		return err
	}
	return c.store.save(ctx, c.schema.Document, doc)
}

// Insert appends rec. Sequenced collections assign max(existing)+1, or 1 when empty.
func (c *Collection[T]) Insert(ctx context.Context, rec T) (T, error) {
	return c.InsertIf(ctx, rec, nil)
}

// InsertIf is Insert with a guard evaluated against the stored records under the
// document lock. A guard error aborts the insert and is returned unchanged.
func (c *Collection[T]) InsertIf(ctx context.Context, rec T, guard func([]T) error) (T, error) {
	err := c.mutate(ctx, func(records []T) ([]T, error) {
		if guard != nil {
			if err := guard(records); err != nil {
				return nil, err
			}
		}
		if c.schema.Assign != nil {
			c.schema.Assign(&rec, NextSequence(records, c.schema.Sequence))
		}
		if c.schema.Validate != nil {
			if err := c.schema.Validate(rec); err != nil {
				return nil, errors.Join(err, repository.ErrInvalidInput)
			}
		}
		key := c.schema.Key(rec)
		for _, existing := range records {
			if c.schema.Key(existing) == key {
				return nil, repository.ErrConflict
			}
		}
		return append(records, rec), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

// Update applies patch to the record with the given key. Fields the patch does not
// touch are preserved. A patch error aborts the write and is returned unchanged.
func (c *Collection[T]) Update(ctx context.Context, key string, patch func(*T) error) (T, error) {
	var updated T
	err := c.mutate(ctx, func(records []T) ([]T, error) {
		for i := range records {
			if c.schema.Key(records[i]) != key {
				continue
			}
			rec := records[i]
			if err := patch(&rec); err != nil {
				return nil, err
			}
			if c.schema.Key(rec) != key {
				return nil, fmt.Errorf("patch changed key %q: %w", key, repository.ErrInvalidInput)
			}
			if c.schema.Stamp != nil {
				c.schema.Stamp(&rec, c.store.now())
			}
			if c.schema.Validate != nil {
				if err := c.schema.Validate(rec); err != nil {
					return nil, errors.Join(err, repository.ErrInvalidInput)
				}
			}
			records[i] = rec
			updated = rec
			return records, nil
		}
		return nil, repository.ErrNotFound
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return updated, nil
}

// Remove deletes the record with the given key and returns it.
func (c *Collection[T]) Remove(ctx context.Context, key string) (T, error) {
	var removed T
	err := c.mutate(ctx, func(records []T) ([]T, error) {
		for i := range records {
			if c.schema.Key(records[i]) == key {
				removed = records[i]
				return append(records[:i:i], records[i+1:]...), nil
			}
		}
		return nil, repository.ErrNotFound
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return removed, nil
}

// NextSequence returns max(seq)+1 over records, or 1 when there are none.
func NextSequence[T any](records []T, seq func(T) int64) int64 {
	var max int64
	for _, rec := range records {
		if v := seq(rec); v > max {
			max = v
		}
	}
	return max + 1
}
