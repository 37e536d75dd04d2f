package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/smartexpense/smartexpense/internal/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "storage.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetMissingKey(t *testing.T) {
	s := openTemp(t)
	if _, err := s.Get(KeyUser); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing = %v, want ErrNotFound", err)
	}
}

func TestSetReplacesAndDelete(t *testing.T) {
	s := openTemp(t)

	if err := s.Set(KeyTheme, "dark"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(KeyTheme, "light"); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(KeyTheme)
	if err != nil {
		t.Fatal(err)
	}
	if got != "light" {
		t.Errorf("theme = %q, want light", got)
	}

	if err := s.Delete(KeyTheme); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(KeyTheme); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := s.Get(KeyTheme); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete err = %v", err)
	}
}

func TestJSONRoundTripSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	u := model.User{ID: 7, Username: "asha", Email: "asha@example.com"}
	if err := s.SetJSON(KeyUser, u); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()

	var got model.User
	if err := s.GetJSON(KeyUser, &got); err != nil {
		t.Fatal(err)
	}
	if got != u {
		t.Errorf("user = %+v, want %+v", got, u)
	}
}
