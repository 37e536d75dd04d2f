package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/smartexpense/smartexpense/internal/model"
)

type fakeLister struct {
	cats  []model.Category
	err   error
	calls int
}

func (f *fakeLister) Categories(context.Context) ([]model.Category, error) {
	f.calls++
	return f.cats, f.err
}

func testRegistry() *Registry {
	return NewRegistry([]model.Category{
		{ID: 10, Name: "Food"},
		{ID: 11, Name: " Rent "},
		{ID: 12, Name: "health care"},
	})
}

func TestRegistryLookup(t *testing.T) {
	r := testRegistry()

	tests := []struct {
		name   string
		wantOK bool
		pos    int
	}{
		{"food", true, 1},
		{"FOOD", true, 1},
		{"  Rent", true, 2},
		{"Health Care", true, 3},
		{"xyz", false, 0},
		{"", false, 0},
	}
	for _, tt := range tests {
		cat, pos, ok := r.Lookup(tt.name)
		if ok != tt.wantOK || pos != tt.pos {
			t.Errorf("Lookup(%q) = (%d, %v), want (%d, %v)", tt.name, pos, ok, tt.pos, tt.wantOK)
		}
		if ok && cat.Name != normalizeCategory(tt.name) {
			t.Errorf("Lookup(%q).Name = %q", tt.name, cat.Name)
		}
	}
}

func TestRegistryNames(t *testing.T) {
	got := testRegistry().Names()
	want := []string{"Food", "Rent", "Health Care"}
	if len(got) != len(want) {
		t.Fatalf("Names() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistryDuplicateKeepsFirst(t *testing.T) {
	r := NewRegistry([]model.Category{{Name: "Food"}, {Name: "food"}})
	if _, pos, _ := r.Lookup("food"); pos != 1 {
		t.Errorf("pos = %d, want 1", pos)
	}
}

func TestLoadRegistryFailure(t *testing.T) {
	boom := errors.New("boom")
	l := &fakeLister{err: boom}
	r, err := LoadRegistry(context.Background(), l)
	if !errors.Is(err, boom) || r != nil {
		t.Fatalf("LoadRegistry = (%v, %v)", r, err)
	}
	if l.calls != 1 {
		t.Errorf("calls = %d, want exactly one fetch", l.calls)
	}
}
