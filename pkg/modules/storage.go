package modules

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/morezero/webview-bridge/pkg/bridge"
	"github.com/morezero/webview-bridge/pkg/capability"
	"github.com/morezero/webview-bridge/pkg/db"
	"github.com/morezero/webview-bridge/pkg/jsonval"
)

// StorageBackend persists storage-module entries. Values are JSON text; found
// is false when the key has no entry.
type StorageBackend interface {
	Get(ctx context.Context, scope, key string) (value string, found bool, err error)
	Set(ctx context.Context, scope, key, value string) error
	Delete(ctx context.Context, scope, key string) error
	Keys(ctx context.Context, scope string) ([]string, error)
}

// Storage gives the web content a key/value store. Values round-trip as
// arbitrary JSON. The scope isolates different hosted apps sharing a backend.
type Storage struct {
	scope   string
	backend StorageBackend
}

var _ capability.Capability = (*Storage)(nil)

// NewStorage creates the storage module. A nil backend stores entries in
// memory for the lifetime of the process.
func NewStorage(scope string, backend StorageBackend) *Storage {
	if backend == nil {
		backend = newMemoryBackend()
	}
	return &Storage{scope: scope, backend: backend}
}

func (s *Storage) Name() string { return "storage" }

func (s *Storage) Actions() []string { return []string{"get", "set", "remove", "keys"} }

func (s *Storage) Handle(ctx context.Context, action string, payload *jsonval.Value, _ *capability.Invocation) (*jsonval.Value, error) {
	switch action {
	case "get":
		key, ok := payload.Get("key").AsString()
		if !ok || key == "" {
			return nil, bridge.InvalidPayload("key must be a non-empty string")
		}
		raw, found, err := s.backend.Get(ctx, s.scope, key)
		if err != nil {
			return nil, err
		}
		if !found {
			return jsonval.Object(map[string]*jsonval.Value{
				"key":    jsonval.String(key),
				"exists": jsonval.Bool(false),
			}), nil
		}
		value, err := jsonval.Parse([]byte(raw))
		if err != nil {
			return nil, err
		}
		return jsonval.Object(map[string]*jsonval.Value{
			"key":    jsonval.String(key),
			"value":  value,
			"exists": jsonval.Bool(true),
		}), nil

	case "set":
		key, ok := payload.Get("key").AsString()
		if !ok || key == "" {
			return nil, bridge.InvalidPayload("key must be a non-empty string")
		}
		value := payload.Get("value")
		if value == nil {
			return nil, bridge.InvalidPayload("value is required")
		}
		raw, err := value.Encode()
		if err != nil {
			return nil, err
		}
		return nil, s.backend.Set(ctx, s.scope, key, string(raw))

	case "remove":
		key, ok := payload.Get("key").AsString()
		if !ok || key == "" {
			return nil, bridge.InvalidPayload("key must be a non-empty string")
		}
		return nil, s.backend.Delete(ctx, s.scope, key)

	default: // keys
		keys, err := s.backend.Keys(ctx, s.scope)
		if err != nil {
			return nil, err
		}
		elems := make([]*jsonval.Value, 0, len(keys))
		for _, k := range keys {
			elems = append(elems, jsonval.String(k))
		}
		return jsonval.Object(map[string]*jsonval.Value{
			"keys": jsonval.Array(elems...),
		}), nil
	}
}

// KVBackend adapts db.KVStore to the StorageBackend interface.
type KVBackend struct {
	store *db.KVStore
}

// NewKVBackend wraps a database-backed key/value store.
func NewKVBackend(store *db.KVStore) *KVBackend {
	return &KVBackend{store: store}
}

func (b *KVBackend) Get(ctx context.Context, scope, key string) (string, bool, error) {
	value, err := b.store.Get(ctx, scope, key)
	if errors.Is(err, db.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (b *KVBackend) Set(ctx context.Context, scope, key, value string) error {
	return b.store.Set(ctx, scope, key, value)
}

func (b *KVBackend) Delete(ctx context.Context, scope, key string) error {
	return b.store.Delete(ctx, scope, key)
}

func (b *KVBackend) Keys(ctx context.Context, scope string) ([]string, error) {
	return b.store.Keys(ctx, scope)
}

// memoryBackend is the in-process fallback used when no database is
// configured.
type memoryBackend struct {
	mu      sync.RWMutex
	entries map[string]map[string]string
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{entries: make(map[string]map[string]string)}
}

func (b *memoryBackend) Get(_ context.Context, scope, key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	value, ok := b.entries[scope][key]
	return value, ok, nil
}

func (b *memoryBackend) Set(_ context.Context, scope, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.entries[scope] == nil {
		b.entries[scope] = make(map[string]string)
	}
	b.entries[scope][key] = value
	return nil
}

func (b *memoryBackend) Delete(_ context.Context, scope, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries[scope], key)
	return nil
}

func (b *memoryBackend) Keys(_ context.Context, scope string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.entries[scope]))
	for k := range b.entries[scope] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
