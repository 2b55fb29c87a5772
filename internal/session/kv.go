package session

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by KV.Get when the key has no value.
var ErrKeyNotFound = errors.New("session: key not found")

// KV is a small persistent key/value store holding the session entries.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Closer is implemented by backends holding an open handle.
type Closer interface {
	Close() error
}

// memoryKV backs tests and the "none" persistence mode.
type memoryKV struct {
	values map[string]string
}

// NewMemoryKV returns a process-local KV. It is not safe for concurrent use; Store serializes access.
func NewMemoryKV() KV {
	return &memoryKV{values: map[string]string{}}
}

func (m *memoryKV) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, ok := m.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (m *memoryKV) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.values[key] = value
	return nil
}

func (m *memoryKV) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	delete(m.values, key)
	return nil
}
