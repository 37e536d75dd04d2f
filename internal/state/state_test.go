package state

import (
	"path/filepath"
	"testing"

	"github.com/smartexpense/smartexpense/internal/model"
	"github.com/smartexpense/smartexpense/internal/store"
)

func openStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storage.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestSession_LoginPersistsAcrossReload(t *testing.T) {
	st, path := openStore(t)
	sess := NewSession(st)

	if _, ok := sess.User(); ok {
		t.Fatal("fresh session should have no user")
	}

	u := model.User{ID: 3, Username: "ravi", Email: "ravi@example.com"}
	if err := sess.Login(u); err != nil {
		t.Fatal(err)
	}
	if err := sess.SetEarning(model.Earning{UserID: 3, EarningDate: "2024-03-01"}); err != nil {
		t.Fatal(err)
	}
	_ = st.Close()

	st2, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = st2.Close() }()

	restored := NewSession(st2)
	got, ok := restored.User()
	if !ok || got != u {
		t.Fatalf("restored user = %+v (ok=%v), want %+v", got, ok, u)
	}
	e, ok := restored.Earning()
	if !ok || e.EarningDate != "2024-03-01" {
		t.Fatalf("restored earning = %+v (ok=%v)", e, ok)
	}
}

func TestSession_LogoutClearsAndNotifies(t *testing.T) {
	st, _ := openStore(t)
	sess := NewSession(st)

	var events []*model.User
	unsub := sess.Subscribe(func(u *model.User) { events = append(events, u) })

	_ = sess.Login(model.User{ID: 1, Username: "a"})
	_ = sess.SetEarning(model.Earning{EarningDate: "2024-01-01"})
	if err := sess.Logout(); err != nil {
		t.Fatal(err)
	}

	if len(events) != 2 || events[0] == nil || events[1] != nil {
		t.Fatalf("events = %v, want [user, nil]", events)
	}
	if _, ok := sess.Earning(); ok {
		t.Error("earning snapshot should be cleared on logout")
	}

	unsub()
	unsub()
	_ = sess.Login(model.User{ID: 2})
	if len(events) != 2 {
		t.Errorf("unsubscribed observer still called, events = %d", len(events))
	}
	if n := sess.subs.count(); n != 0 {
		t.Errorf("subscriber count = %d, want 0", n)
	}
}

func TestSession_LoginAsOtherUserDropsEarning(t *testing.T) {
	st, path := openStore(t)
	sess := NewSession(st)

	_ = sess.Login(model.User{ID: 1, Username: "a"})
	if err := sess.SetEarning(model.Earning{UserID: 1, EarningDate: "2024-03-01"}); err != nil {
		t.Fatal(err)
	}

	// Logging in again as the same user keeps the snapshot.
	_ = sess.Login(model.User{ID: 1, Username: "a"})
	if _, ok := sess.Earning(); !ok {
		t.Fatal("same-user login dropped the earning snapshot")
	}

	if err := sess.Login(model.User{ID: 2, Username: "b"}); err != nil {
		t.Fatal(err)
	}
	if e, ok := sess.Earning(); ok {
		t.Fatalf("earning = %+v after switching user, want none", e)
	}
	_ = st.Close()

	st2, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = st2.Close() }()
	if e, ok := NewSession(st2).Earning(); ok {
		t.Fatalf("restored earning = %+v, want none", e)
	}
}

func TestSession_RestoreIgnoresOtherUsersEarning(t *testing.T) {
	st, _ := openStore(t)
	if err := st.SetJSON(store.KeyUser, model.User{ID: 2}); err != nil {
		t.Fatal(err)
	}
	if err := st.SetJSON(store.KeyCurrentEarning, model.Earning{UserID: 1, EarningDate: "2024-03-01"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := NewSession(st).Earning(); ok {
		t.Error("restored a snapshot belonging to another user")
	}
}

func TestTheme_ToggleAndRestore(t *testing.T) {
	st, _ := openStore(t)

	th := NewTheme(st, true)
	if !th.Dark() {
		t.Fatal("default should be dark")
	}

	var seen []bool
	defer th.Subscribe(func(d bool) { seen = append(seen, d) })()

	dark, err := th.Toggle()
	if err != nil {
		t.Fatal(err)
	}
	if dark {
		t.Error("toggle from dark should give light")
	}

	restored := NewTheme(st, true)
	if restored.Dark() {
		t.Error("stored light mode should beat the dark default")
	}
	if len(seen) != 1 || seen[0] {
		t.Errorf("observer saw %v, want [false]", seen)
	}
}

func TestTheme_InMemory(t *testing.T) {
	th := NewTheme(nil, false)
	if err := th.Set(true); err != nil {
		t.Fatal(err)
	}
	if !th.Dark() {
		t.Error("Set(true) not applied")
	}
}
