// Package registry holds the static catalog of tools, categories and pricing plans.
package registry

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pdftools/backend/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrToolNotFound is returned when a tool id or route is not in the registry.
var ErrToolNotFound = errors.New("tool not found")

// ImageCategory is the category rendered on its own page rather than in the PDF sections.
const ImageCategory = "image"

// catalogFile mirrors the layout of catalog.yaml.
type catalogFile struct {
	Categories []models.Category `yaml:"categories"`
	Tools      []models.Tool     `yaml:"tools"`
	Plans      []models.Plan     `yaml:"plans"`
	FAQ        []models.FAQ      `yaml:"faq"`
}

// Registry is an immutable, ordered catalog. It is safe for concurrent use.
type Registry struct {
	categories []models.Category
	tools      []models.Tool
	plans      []models.Plan
	faq        []models.FAQ
	byID       map[string]int
	byRoute    map[string]int
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded catalog.
// It panics if the embedded catalog is invalid, which is caught by tests.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Load(bytes.NewReader(defaultCatalog))
		if err != nil {
			panic(fmt.Sprintf("registry: embedded catalog: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Load parses a YAML catalog from r.
func Load(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	reg, err := New(file.Categories, file.Tools, file.Plans)
	if err != nil {
		return nil, err
	}
	reg.faq = append([]models.FAQ(nil), file.FAQ...)
	return reg, nil
}

// New builds a registry from already decoded entries.
func New(categories []models.Category, tools []models.Tool, plans []models.Plan) (*Registry, error) {
	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		if c.ID == "" {
			return nil, errors.New("category with empty id")
		}
		if known[c.ID] {
			return nil, fmt.Errorf("duplicate category %q", c.ID)
		}
		known[c.ID] = true
	}

	reg := &Registry{
		categories: append([]models.Category(nil), categories...),
		tools:      append([]models.Tool(nil), tools...),
		plans:      append([]models.Plan(nil), plans...),
		byID:       make(map[string]int, len(tools)),
		byRoute:    make(map[string]int, len(tools)),
	}

	for i, t := range reg.tools {
		if t.ID == "" {
			return nil, fmt.Errorf("tool %d has empty id", i)
		}
		if _, dup := reg.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate tool %q", t.ID)
		}
		if !known[t.Category] {
			return nil, fmt.Errorf("tool %q: unknown category %q", t.ID, t.Category)
		}
		if t.Route != "/"+t.ID {
			return nil, fmt.Errorf("tool %q: route %q must be /%s", t.ID, t.Route, t.ID)
		}
		reg.byID[t.ID] = i
		reg.byRoute[t.Route] = i
	}

	return reg, nil
}

// Tools returns every tool in registry order.
func (r *Registry) Tools() []models.Tool {
	return append([]models.Tool(nil), r.tools...)
}

// ToolByID returns the tool with the given id. The boolean is false when
// the id is not registered.
func (r *Registry) ToolByID(id string) (models.Tool, bool) {
	i, ok := r.byID[id]
	if !ok {
		return models.Tool{}, false
	}
	return r.tools[i], true
}

// ToolByRoute resolves a page path such as "/merge-pdf".
func (r *Registry) ToolByRoute(path string) (models.Tool, bool) {
	i, ok := r.byRoute[path]
	if !ok {
		return models.Tool{}, false
	}
	return r.tools[i], true
}

// Lookup is ToolByID with an error for callers that propagate failures.
func (r *Registry) Lookup(id string) (models.Tool, error) {
	t, ok := r.ToolByID(id)
	if !ok {
		return models.Tool{}, fmt.Errorf("%w: %s", ErrToolNotFound, id)
	}
	return t, nil
}

// ToolsByCategory returns the tools of a category in registry order.
func (r *Registry) ToolsByCategory(categoryID string) []models.Tool {
	out := make([]models.Tool, 0)
	for _, t := range r.tools {
		if t.Category == categoryID {
			out = append(out, t)
		}
	}
	return out
}

// Categories returns every category in registry order.
func (r *Registry) Categories() []models.Category {
	return append([]models.Category(nil), r.categories...)
}

// Category returns the category with the given id.
func (r *Registry) Category(id string) (models.Category, bool) {
	for _, c := range r.categories {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}

// CatalogCategories returns the categories shown as sections on the home
// page, which is every category except the image one.
func (r *Registry) CatalogCategories() []models.Category {
	out := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		if c.ID != ImageCategory {
			out = append(out, c)
		}
	}
	return out
}

// Plans returns the pricing plans.
func (r *Registry) Plans() []models.Plan {
	return append([]models.Plan(nil), r.plans...)
}

// FAQ returns the pricing questions and answers.
func (r *Registry) FAQ() []models.FAQ {
	return append([]models.FAQ(nil), r.faq...)
}

// Extensions splits an accepted-files string like ".jpg,.png" for display.
func Extensions(accepted string) []string {
	parts := strings.Split(accepted, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
