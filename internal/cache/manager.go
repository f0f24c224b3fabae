package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/campusgrid/lms-dashboard-api/pkg/errors"
)

// envelope wraps every persisted payload with its write time so validity
// can be judged on read. Expiry is lazy: stale entries sit in storage until
// the next access deletes them.
type envelope struct {
	Payload   json.RawMessage `json:"payload"`
	WrittenAt time.Time       `json:"written_at"`
}

// ManagerParams groups Manager dependencies.
type ManagerParams struct {
	// Session is the unbounded-lifetime scratch tier, consulted ahead of
	// the TTL-bounded tier for data pinned to the current visit.
	Session Store
	// Persistent is the TTL-bounded tier.
	Persistent Store
	Logger     *zap.Logger
	Now        func() time.Time

	// OnHit / OnMiss feed cache metrics when set.
	OnHit  func()
	OnMiss func()
}

// Manager serves stale-but-fast snapshots over two physical tiers. Reads
// never fail: storage or decoding trouble is logged and reported as a miss,
// and a read never returns an entry older than its TTL.
type Manager struct {
	session    Store
	persistent Store
	logger     *zap.Logger
	now        func() time.Time
	onHit      func()
	onMiss     func()
}

// NewManager builds a cache manager over the given tiers.
func NewManager(params ManagerParams) *Manager {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	session := params.Session
	if session == nil {
		session = NewMemoryStore()
	}
	persistent := params.Persistent
	if persistent == nil {
		persistent = NewMemoryStore()
	}
	return &Manager{
		session:    session,
		persistent: persistent,
		logger:     logger,
		now:        now,
		onHit:      params.OnHit,
		onMiss:     params.OnMiss,
	}
}

// Key namespaces a feature cache per user so two users never collide.
func Key(feature, userID string) string {
	return feature + ":" + userID
}

// Get loads the entry at key into dest when it exists and is younger than
// ttl. Stale and malformed entries are dropped and reported as a miss.
func (m *Manager) Get(ctx context.Context, key string, ttl time.Duration, dest interface{}) bool {
	raw, err := m.persistent.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			m.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		m.miss()
		return false
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		m.logger.Warn("dropping malformed cache entry", zap.String("key", key), zap.Error(err))
		m.remove(ctx, key)
		m.miss()
		return false
	}

	if m.now().Sub(env.WrittenAt) >= ttl {
		m.remove(ctx, key)
		m.miss()
		return false
	}

	if err := json.Unmarshal(env.Payload, dest); err != nil {
		m.logger.Warn("dropping undecodable cache payload", zap.String("key", key), zap.Error(err))
		m.remove(ctx, key)
		m.miss()
		return false
	}

	m.hit()
	return true
}

// Set wraps payload with the current timestamp and overwrites any prior
// entry at key.
func (m *Manager) Set(ctx context.Context, key string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(envelope{Payload: body, WrittenAt: m.now()})
	if err != nil {
		return err
	}
	if err := m.persistent.Set(ctx, key, string(raw)); err != nil {
		m.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Pin stores a visit-scoped value in the session tier. Pinned entries have
// no TTL; they live as long as the session store does.
func (m *Manager) Pin(ctx context.Context, key string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := m.session.Set(ctx, key, string(body)); err != nil {
		m.logger.Warn("session pin failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Pinned loads a visit-scoped value. Call sites that pin check this tier
// first and fall back to Get, which falls back to network.
func (m *Manager) Pinned(ctx context.Context, key string, dest interface{}) bool {
	raw, err := m.session.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		_ = m.session.Remove(ctx, key)
		return false
	}
	return true
}

// Invalidate drops the entry at key from both tiers.
func (m *Manager) Invalidate(ctx context.Context, key string) {
	_ = m.session.Remove(ctx, key)
	m.remove(ctx, key)
}

func (m *Manager) remove(ctx context.Context, key string) {
	if err := m.persistent.Remove(ctx, key); err != nil {
		m.logger.Warn("cache evict failed", zap.String("key", key), zap.Error(err))
	}
}

func (m *Manager) hit() {
	if m.onHit != nil {
		m.onHit()
	}
}

func (m *Manager) miss() {
	if m.onMiss != nil {
		m.onMiss()
	}
}
