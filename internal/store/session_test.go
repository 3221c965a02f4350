package store

import (
	"testing"
	"time"

	"github.com/JPedro1988/app-kidquest/internal/database"
)

func setupSessionTestDB(t *testing.T) (*UserStore, func(ttl time.Duration) *SessionStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewUserStore(db), func(ttl time.Duration) *SessionStore {
		return NewSessionStore(db, ttl)
	}
}

func TestSessionCreateAndGet(t *testing.T) {
	users, newSessions := setupSessionTestDB(t)
	sessions := newSessions(time.Hour)

	code := "SES001"
	user, err := users.Create("s@example.com", "S", "parent", "hash", &code, nil, nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	sess, err := sessions.Create(user.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if sess.Token == "" {
		t.Error("empty session token")
	}
	if sess.UserID != user.ID {
		t.Errorf("user_id = %d, want %d", sess.UserID, user.ID)
	}

	got, err := sessions.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got == nil || got.ID != sess.ID {
		t.Errorf("got = %+v", got)
	}

	if got, err := sessions.GetByToken("no-such-token"); err != nil || got != nil {
		t.Errorf("unknown token = %+v, %v, want nil, nil", got, err)
	}
}

func TestSessionExpiry(t *testing.T) {
	users, newSessions := setupSessionTestDB(t)
	sessions := newSessions(-time.Minute)

	code := "SES002"
	user, err := users.Create("exp@example.com", "E", "parent", "hash", &code, nil, nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	sess, err := sessions.Create(user.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if got, err := sessions.GetByToken(sess.Token); err != nil || got != nil {
		t.Errorf("expired session resolved: %+v, %v", got, err)
	}

	n, err := sessions.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d sessions, want 1", n)
	}
}

func TestSessionDelete(t *testing.T) {
	users, newSessions := setupSessionTestDB(t)
	sessions := newSessions(time.Hour)

	code := "SES003"
	user, err := users.Create("del@example.com", "D", "parent", "hash", &code, nil, nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	sess, err := sessions.Create(user.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := sessions.Delete(sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, err := sessions.GetByToken(sess.Token); err != nil || got != nil {
		t.Errorf("deleted session still resolves: %+v, %v", got, err)
	}
}
