package memory

import (
	"testing"

	"brandquiz-bot/internal/app"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	if _, ok := store.Get(100); ok {
		t.Fatal("expected no session before Put")
	}

	store.Put(app.NewSession(100))
	session, ok := store.Get(100)
	if !ok {
		t.Fatal("expected session after Put")
	}
	if session.TelegramID() != 100 {
		t.Fatalf("unexpected owner %d", session.TelegramID())
	}

	store.Delete(100)
	if _, ok := store.Get(100); ok {
		t.Fatal("expected session gone after Delete")
	}
}

func TestSessionStorePutReplaces(t *testing.T) {
	store := NewSessionStore()

	first := app.NewSession(100)
	second := app.NewSession(100)
	store.Put(first)
	store.Put(second)

	got, ok := store.Get(100)
	if !ok {
		t.Fatal("expected session")
	}
	if got != second {
		t.Fatal("expected the later session to replace the earlier one")
	}
}
