package memory

import (
	"context"
	"sync"
)

// Backend keeps collections in process memory.
type Backend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func New() *Backend {
	return &Backend{data: make(map[string][]byte)}
}

func (b *Backend) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	raw, ok := b.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (b *Backend) Write(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	b.mu.Lock()
	b.data[key] = stored
	b.mu.Unlock()
	return nil
}

func (b *Backend) Ping(ctx context.Context) error {
	return ctx.Err()
}

