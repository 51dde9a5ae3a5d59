package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/flipcashindia/fieldops/internal/domain"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "fieldops.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	loaded, err := s.LoadSession(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected no session in fresh store, got %+v", loaded)
	}

	sess := &domain.Session{
		Tokens:   domain.TokenPair{Access: "a1", Refresh: "r1"},
		User:     domain.User{ID: "u1", Phone: "9876543210", Role: domain.RoleAgent},
		DeviceID: "dev-1",
		IssuedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := s.SaveSession(ctx, sess); err != nil {
		t.Fatalf("failed to save session: %v", err)
	}

	loaded, err = s.LoadSession(ctx)
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected session after save")
	}
	if loaded.Tokens.Access != "a1" || loaded.Tokens.Refresh != "r1" {
		t.Fatalf("unexpected tokens: %+v", loaded.Tokens)
	}
	if loaded.User.ID != "u1" || loaded.User.Role != domain.RoleAgent {
		t.Fatalf("unexpected user: %+v", loaded.User)
	}

	// Save again with rotated tokens; the row is replaced, not duplicated.
	sess.Tokens.Access = "a2"
	if err := s.SaveSession(ctx, sess); err != nil {
		t.Fatalf("failed to replace session: %v", err)
	}
	loaded, err = s.LoadSession(ctx)
	if err != nil {
		t.Fatalf("failed to reload session: %v", err)
	}
	if loaded.Tokens.Access != "a2" {
		t.Fatalf("expected rotated access token, got %q", loaded.Tokens.Access)
	}

	if err := s.ClearSession(ctx); err != nil {
		t.Fatalf("failed to clear session: %v", err)
	}
	loaded, err = s.LoadSession(ctx)
	if err != nil {
		t.Fatalf("unexpected error after clear: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected nil session after clear, got %+v", loaded)
	}
}

func TestDeviceIDSurvivesSessionClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.DeviceID(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "" {
		t.Fatalf("expected empty device id, got %q", id)
	}

	if err := s.SaveDeviceID(ctx, "dev-42"); err != nil {
		t.Fatalf("failed to save device id: %v", err)
	}
	if err := s.ClearSession(ctx); err != nil {
		t.Fatalf("failed to clear session: %v", err)
	}

	id, err = s.DeviceID(ctx)
	if err != nil {
		t.Fatalf("failed to reload device id: %v", err)
	}
	if id != "dev-42" {
		t.Fatalf("expected device id to survive logout, got %q", id)
	}
}

func TestProfileCacheRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	payload, err := s.LoadProfileCache(ctx, domain.RolePartner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload != nil {
		t.Fatalf("expected empty cache, got %s", payload)
	}

	if err := s.SaveProfileCache(ctx, domain.RolePartner, []byte(`{"business_name":"Acme"}`)); err != nil {
		t.Fatalf("failed to save cache: %v", err)
	}
	payload, err = s.LoadProfileCache(ctx, domain.RolePartner)
	if err != nil {
		t.Fatalf("failed to load cache: %v", err)
	}
	if string(payload) != `{"business_name":"Acme"}` {
		t.Fatalf("unexpected cache payload: %s", payload)
	}

	if err := s.ClearProfileCaches(ctx); err != nil {
		t.Fatalf("failed to clear caches: %v", err)
	}
	payload, err = s.LoadProfileCache(ctx, domain.RolePartner)
	if err != nil {
		t.Fatalf("unexpected error after clear: %v", err)
	}
	if payload != nil {
		t.Fatalf("expected cleared cache, got %s", payload)
	}
}
