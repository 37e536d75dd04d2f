// Package ingest turns user-supplied expense files and manual entries into a
// validated batch and submits it to the API.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/smartexpense/smartexpense/internal/model"
)

// CategoryLister fetches the server's category list.
type CategoryLister interface {
	Categories(ctx context.Context) ([]model.Category, error)
}

// Registry is the set of known category names, in server order.
type Registry struct {
	cats  []model.Category
	index map[string]int
}

// LoadRegistry fetches the category list once. Any failure is fatal for
// the caller: nothing can be validated without a registry.
func LoadRegistry(ctx context.Context, l CategoryLister) (*Registry, error) {
	cats, err := l.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	return NewRegistry(cats), nil
}

// NewRegistry builds a registry from cats. Names are trimmed and
// lower-cased; when a name repeats, the first occurrence wins.
func NewRegistry(cats []model.Category) *Registry {
	r := &Registry{
		cats:  make([]model.Category, 0, len(cats)),
		index: make(map[string]int, len(cats)),
	}
	for _, c := range cats {
		name := normalizeCategory(c.Name)
		r.cats = append(r.cats, model.Category{ID: c.ID, Name: name})
		if _, dup := r.index[name]; !dup && name != "" {
			r.index[name] = len(r.cats) // 1-based
		}
	}
	return r
}

// Lookup finds name case-insensitively. The returned position is the
// 1-based index into the server list, which is the id a batch row carries.
func (r *Registry) Lookup(name string) (model.Category, int, bool) {
	pos, ok := r.index[normalizeCategory(name)]
	if !ok {
		return model.Category{}, 0, false
	}
	return r.cats[pos-1], pos, true
}

// Len returns the number of categories.
func (r *Registry) Len() int { return len(r.cats) }

// Names returns display names in server order.
func (r *Registry) Names() []string {
	title := cases.Title(language.English)
	names := make([]string, len(r.cats))
	for i, c := range r.cats {
		names[i] = title.String(c.Name)
	}
	return names
}

func normalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
