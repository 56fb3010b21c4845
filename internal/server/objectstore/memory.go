package objectstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/countdown/internal/common"
)

type memoryObject struct {
	data        []byte
	version     int64
	contentType string
	publicRead  bool
}

// MemoryStore keeps blobs in process memory. Version checks are enforced.
// It backs the "memory" storage mode and the tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func (s *MemoryStore) Fetch(ctx context.Context, key string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", key, common.ErrNotFound)
	}

	return &Object{
		Key:     key,
		Data:    append([]byte(nil), obj.data...),
		Version: strconv.FormatInt(obj.version, 10),
	}, nil
}

func (s *MemoryStore) Write(ctx context.Context, key string, data []byte, opts WriteOptions) (*WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.objects[key]
	if opts.IfAbsent && exists {
		return nil, fmt.Errorf("object %s exists: %w", key, common.ErrVersionConflict)
	}
	if opts.PreviousVersion != "" {
		if !exists || strconv.FormatInt(current.version, 10) != opts.PreviousVersion {
			return nil, fmt.Errorf("object %s: %w", key, common.ErrVersionConflict)
		}
	}

	next := memoryObject{
		data:        append([]byte(nil), data...),
		version:     current.version + 1,
		contentType: opts.ContentType,
		publicRead:  opts.PublicRead,
	}
	s.objects[key] = next

	return &WriteResult{
		Location: "memory://" + key,
		Version:  strconv.FormatInt(next.version, 10),
	}, nil
}

func (s *MemoryStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Attributes reports the content type and ACL a key was stored with.
func (s *MemoryStore) Attributes(key string) (contentType string, publicRead bool, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj.contentType, obj.publicRead, ok
}
