package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-ombor/internal/access"
	"go-ombor/internal/model"
	"go-ombor/pkg/kvstore"
)

func TestManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewManager(kvstore.NewMemoryStore(), time.Hour)
	u := &model.User{ID: "u1", Username: "ali", FullName: "Ali", Permissions: []model.Permission{model.PermOutbound}}

	s, token, err := m.Start(ctx, u)
	if err != nil {
		t.Fatal(err)
	}
	if token == "" || s.ID == "" {
		t.Fatal("expected token and session id")
	}

	got, err := m.Resolve(ctx, token)
	if err != nil {
		t.Fatal(err)
	}
	if got.Username != "ali" || !got.Can(access.PageOutbound) || got.Can(access.PageInbound) {
		t.Fatalf("unexpected session %+v", got)
	}

	if err := m.End(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Resolve(ctx, token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after logout, got %v", err)
	}
}

func TestManager_ApplyCopiesPermissions(t *testing.T) {
	u := &model.User{ID: "u1", Permissions: []model.Permission{model.PermInbound}}
	var s Session
	s.Apply(u)
	u.Permissions[0] = model.PermAdmin
	if s.Permissions[0] != model.PermInbound {
		t.Fatal("session permissions alias the user's slice")
	}
}

func TestManager_ExpiredSession(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	m := NewManager(store, time.Minute)

	old := &Session{ID: "old", UserID: "u1", CreatedAt: time.Now().Add(-2 * time.Minute)}
	if err := m.Save(ctx, old); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get(ctx, "old"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected expired session to be rejected, got %v", err)
	}
	if _, err := store.Get(ctx, keyPrefix+"old"); !errors.Is(err, kvstore.ErrNotFound) {
		t.Fatal("expired session should be removed from the store")
	}
}
