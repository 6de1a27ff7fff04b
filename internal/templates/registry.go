package templates

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"dossier/internal/domain"
)

//go:embed *.yaml
var templateFiles embed.FS

// Well-known template keys
const (
	IECTD       = "iectd"
	FDAGuidance = "fda-guidance"
)

// Registry holds folder templates by key
type Registry struct {
	templates map[string]*Template
	mu        sync.RWMutex
}

// NewRegistry creates a registry and loads every embedded template file
func NewRegistry() (*Registry, error) {
	r := &Registry{
		templates: make(map[string]*Template),
	}

	entries, err := templateFiles.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		if err := r.loadFile(entry.Name()); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// loadFile parses one embedded template file
func (r *Registry) loadFile(filename string) error {
	data, err := templateFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	tmpl, err := Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	return r.Register(tmpl)
}

// Register adds a template; keys must be unique
func (r *Registry) Register(tmpl *Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[tmpl.Key]; exists {
		return fmt.Errorf("duplicate template key %q", tmpl.Key)
	}
	r.templates[tmpl.Key] = tmpl
	return nil
}

// Get returns the template registered under key
func (r *Registry) Get(key string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tmpl, ok := r.templates[key]
	if !ok {
		return nil, domain.NewNotFound("template", key)
	}
	return tmpl, nil
}

// Keys returns all registered template keys, sorted
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.templates))
	for key := range r.templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
