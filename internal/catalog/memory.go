package catalog

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/yanizio/storefront/internal/i18n"
)

// Memory is an immutable in-process Repository.
type Memory struct {
	order    []*Product
	byHandle map[string]*Product
}

// NewMemory indexes ps.  Empty handles are derived from the default-locale
// title; duplicate handles are an error.
func NewMemory(ps []*Product) (*Memory, error) {
	m := &Memory{byHandle: make(map[string]*Product, len(ps))}
	for _, p := range ps {
		if p.Handle == "" {
			p.Handle = i18n.Slug(p.Title[DefaultLocale])
		}
		if _, dup := m.byHandle[p.Handle]; dup {
			return nil, fmt.Errorf("catalog: duplicate handle %q", p.Handle)
		}
		m.byHandle[p.Handle] = p
		m.order = append(m.order, p)
	}
	sortProducts(m.order)
	return m, nil
}

// LoadYAML reads the `products:` list from a seed file.
func LoadYAML(path string) (*Memory, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	var ps []*Product
	if err := k.Unmarshal("products", &ps); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return NewMemory(ps)
}

// List implements Repository.
func (m *Memory) List(context.Context) ([]*Product, error) {
	return append([]*Product(nil), m.order...), nil
}

// Get implements Repository.
func (m *Memory) Get(_ context.Context, handle string) (*Product, error) {
	if p, ok := m.byHandle[handle]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}
