// Package session holds the signed-in user as an explicit value with a defined lifetime.
// Sessions live in a transient store; the users collection stays the source of truth.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-ombor/internal/access"
	"go-ombor/internal/model"
	"go-ombor/pkg/jwt"
	"go-ombor/pkg/kvstore"
)

var ErrNoSession = errors.New("session not found or expired")

const keyPrefix = "ombor_session:"

type Session struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	Username    string             `json:"username"`
	FullName    string             `json:"full_name"`
	Permissions []model.Permission `json:"permissions"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Can reports whether the session may open page.
func (s *Session) Can(page access.Page) bool {
	return access.Allowed(s.Permissions, page)
}

// Apply copies the user's current identity and permissions into the session.
func (s *Session) Apply(u *model.User) {
	s.UserID = u.ID
	s.Username = u.Username
	s.FullName = u.FullName
	s.Permissions = append([]model.Permission(nil), u.Permissions...)
}

type Manager struct {
	store kvstore.Store
	ttl   time.Duration
}

func NewManager(store kvstore.Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = jwt.DefaultTTL
	}
	return &Manager{store: store, ttl: ttl}
}

// Start opens a session for u and returns it with the bearer token that addresses it.
func (m *Manager) Start(ctx context.Context, u *model.User) (*Session, string, error) {
	s := &Session{ID: model.NewID(), CreatedAt: time.Now()}
	s.Apply(u)
	if err := m.Save(ctx, s); err != nil {
		return nil, "", err
	}
	token, err := jwt.GenerateToken(s.ID, s.UserID, s.Username, m.ttl)
	if err != nil {
		m.store.Delete(ctx, keyPrefix+s.ID)
		return nil, "", fmt.Errorf("sign session token: %w", err)
	}
	return s, token, nil
}

// Resolve validates token and loads the session it names.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	claims, err := jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return m.Get(ctx, claims.SessionID)
}

func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := m.store.Get(ctx, keyPrefix+id)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if time.Since(s.CreatedAt) > m.ttl {
		m.store.Delete(ctx, keyPrefix+id)
		return nil, ErrNoSession
	}
	return &s, nil
}

func (m *Manager) Save(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, keyPrefix+s.ID, raw)
}

// End tears the session down. Ending an unknown session is not an error.
func (m *Manager) End(ctx context.Context, id string) error {
	return m.store.Delete(ctx, keyPrefix+id)
}
