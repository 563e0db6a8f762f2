package docstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rpggio/mobility/internal/docstore"
	"github.com/stretchr/testify/require"
)

// memoryMedium keeps documents in a map.
type memoryMedium struct {
	mu      sync.Mutex
	docs    map[string][]byte
	loadErr error
	saveErr error
	saves   int
}

func newMemoryMedium() *memoryMedium {
	return &memoryMedium{docs: make(map[string][]byte)}
}

func (m *memoryMedium) Load(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	data, ok := m.docs[name]
	if !ok {
		return nil, docstore.ErrDocumentMissing
	}
	return append([]byte(nil), data...), nil
}

func (m *memoryMedium) Save(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.docs[name] = append([]byte(nil), data...)
	m.saves++
	return nil
}

func (m *memoryMedium) put(name, data string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[name] = []byte(data)
}

func (m *memoryMedium) raw(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.docs[name])
}

type (
	holdSaveKey struct{}
	loadedKey   struct{}
)

// gatedMedium lets a test park one writer between its load and its save.
// A Save whose context carries holdSaveKey waits for that channel to close;
// a Load whose context carries loadedKey closes that channel afterwards.
type gatedMedium struct {
	*memoryMedium
}

func (g gatedMedium) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := g.memoryMedium.Load(ctx, name)
	if ch, ok := ctx.Value(loadedKey{}).(chan struct{}); ok {
		close(ch)
	}
	return data, err
}

func (g gatedMedium) Save(ctx context.Context, name string, data []byte) error {
	if ch, ok := ctx.Value(holdSaveKey{}).(chan struct{}); ok {
		<-ch
	}
	return g.memoryMedium.Save(ctx, name, data)
}

func TestFileMedium_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m, err := docstore.NewFileMedium(t.TempDir())
	require.NoError(t, err)

	_, err = m.Load(ctx, "projects")
	require.True(t, errors.Is(err, docstore.ErrDocumentMissing))

	require.NoError(t, m.Save(ctx, "projects", []byte(`{"projects":[]}`)))
	require.NoError(t, m.Save(ctx, "projects", []byte(`{"projects":[{"id":1}]}`)))

	data, err := m.Load(ctx, "projects")
	require.NoError(t, err)
	require.JSONEq(t, `{"projects":[{"id":1}]}`, string(data))
}
