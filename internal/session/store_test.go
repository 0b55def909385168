package session

import (
	"path/filepath"
	"testing"
	"time"

	"quiztour/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestFileStoreLifecycle(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "session.yaml"))

	if _, ok, err := store.Load(); err != nil || ok {
		t.Fatalf("expected empty store, ok=%v err=%v", ok, err)
	}

	sess := Session{Username: "alice", Role: domain.RolePlayer, Token: "tok-1"}
	if err := store.Save(sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("load after save: ok=%v err=%v", ok, err)
	}
	if loaded != sess {
		t.Fatalf("expected %+v, got %+v", sess, loaded)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := store.Load(); ok {
		t.Fatalf("expected session removed")
	}
	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestTokenHidesExpiredSessions(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "session.yaml"))

	expired := Session{Username: "alice", Role: domain.RolePlayer, Token: signedToken(t, time.Now().Add(-time.Hour))}
	if err := store.Save(expired); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok := store.Token(); ok {
		t.Fatalf("expected expired token to be hidden")
	}

	fresh := Session{Username: "alice", Role: domain.RolePlayer, Token: signedToken(t, time.Now().Add(time.Hour))}
	if err := store.Save(fresh); err != nil {
		t.Fatalf("save: %v", err)
	}
	if token, ok := store.Token(); !ok || token != fresh.Token {
		t.Fatalf("expected fresh token, ok=%v", ok)
	}
}

func TestOpaqueTokensNeverExpire(t *testing.T) {
	sess := Session{Token: "not-a-jwt"}
	if sess.Expired(time.Now().Add(100 * 365 * 24 * time.Hour)) {
		t.Fatalf("opaque tokens must not expire client-side")
	}
}

func TestMemStore(t *testing.T) {
	store := NewMemStore()
	if _, ok := store.Token(); ok {
		t.Fatalf("expected no token")
	}
	_ = store.Save(Session{Username: "bob", Role: domain.RoleAdmin, Token: "tok"})
	if token, ok := store.Token(); !ok || token != "tok" {
		t.Fatalf("expected stored token, got %q ok=%v", token, ok)
	}
	_ = store.Clear()
	if _, ok, _ := store.Load(); ok {
		t.Fatalf("expected cleared store")
	}
}
