package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"github.com/shopsphere/shopsphere-backend/pkg/config"
	"github.com/shopsphere/shopsphere-backend/pkg/enums"
	redisclient "github.com/shopsphere/shopsphere-backend/pkg/redis"
)

// ErrNoSession signals a missing or expired session.
var ErrNoSession = errors.New("session not found")

// Principal is the identity snapshot stored against a session id. It is
// written at login; role changes only take effect on the next login.
type Principal struct {
	UserID   uuid.UUID  `json:"user_id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     enums.Role `json:"role"`
	Phone    string     `json:"phone,omitempty"`
}

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Manager mints opaque session ids and resolves them back to principals.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Resolver exposes the read-only surface needed by middleware.
type Resolver interface {
	Resolve(ctx context.Context, sessionID string) (*Principal, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.SessionConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.TTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}

	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
	}, nil
}

// Create stores the principal under a fresh session id and returns the id.
func (m *Manager) Create(ctx context.Context, principal Principal) (string, error) {
	if principal.UserID == uuid.Nil {
		return "", fmt.Errorf("principal user id is required")
	}

	payload, err := json.Marshal(principal)
	if err != nil {
		return "", fmt.Errorf("encoding principal: %w", err)
	}

	sessionID := uuid.NewString()
	if err := m.store.Set(ctx, m.keyer.SessionKey(sessionID), string(payload), m.ttl); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Resolve looks up the principal for a session id. Returns ErrNoSession for
// unknown or expired ids.
func (m *Manager) Resolve(ctx context.Context, sessionID string) (*Principal, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrNoSession
	}

	payload, err := m.store.Get(ctx, m.keyer.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	var principal Principal
	if err := json.Unmarshal([]byte(payload), &principal); err != nil {
		return nil, fmt.Errorf("decoding principal: %w", err)
	}
	return &principal, nil
}

// Destroy deletes the session. Deleting an unknown id is a no-op.
func (m *Manager) Destroy(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return m.store.Del(ctx, m.keyer.SessionKey(sessionID))
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}
