package service

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"time"

	"github.com/noah-isme/court-facilities-api/internal/models"
	appErrors "github.com/noah-isme/court-facilities-api/pkg/errors"
)

// memCacheRepo is an in-memory CacheRepository that round-trips values
// through JSON like the Redis-backed store does.
type memCacheRepo struct {
	mu          sync.Mutex
	items       map[string][]byte
	invalidated []string
}

func newMemCacheRepo() *memCacheRepo {
	return &memCacheRepo{items: make(map[string][]byte)}
}

func (m *memCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = raw
	return nil
}

func (m *memCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, pattern)
	for key := range m.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.items, key)
		}
	}
	return nil
}

func (m *memCacheRepo) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

type memAudit struct {
	mu   sync.Mutex
	logs []*models.AuditLog
}

func (m *memAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *memAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.logs))
	for _, l := range m.logs {
		out = append(out, l.Action)
	}
	return out
}

func strPtr(v string) *string { return &v }

func actor() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-1", Role: models.RoleFacilitiesManager}
}
