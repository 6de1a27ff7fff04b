package templates

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Node is one folder in a template tree
type Node struct {
	Name     string `yaml:"name" json:"name"`
	Children []Node `yaml:"children,omitempty" json:"children,omitempty"`
}

// Count returns the number of nodes in the subtree rooted at n, n included
func (n Node) Count() int {
	total := 1
	for _, child := range n.Children {
		total += child.Count()
	}
	return total
}

// Child returns the direct child with the given name
func (n Node) Child(name string) (Node, bool) {
	for _, child := range n.Children {
		if child.Name == name {
			return child, true
		}
	}
	return Node{}, false
}

// Template is a named folder skeleton. Phases split the root's direct
// children into provisioning stages; a template without phases is created in
// one pass.
type Template struct {
	Key    string     `yaml:"key" json:"key"`
	Title  string     `yaml:"title" json:"title"`
	System bool       `yaml:"system" json:"system"` // created folders are protected
	Phases [][]string `yaml:"phases,omitempty" json:"phases,omitempty"`
	Root   Node       `yaml:"root" json:"root"`
}

// Parse decodes and validates a template definition
func Parse(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("unmarshal template: %w", err)
	}
	if err := tmpl.validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (t *Template) validate() error {
	if strings.TrimSpace(t.Key) == "" {
		return fmt.Errorf("template key is required")
	}
	if err := validateNode(t.Root, t.Root.Name); err != nil {
		return fmt.Errorf("template %s: %w", t.Key, err)
	}

	seen := make(map[string]bool)
	for i, phase := range t.Phases {
		if len(phase) == 0 {
			return fmt.Errorf("template %s: phase %d is empty", t.Key, i+1)
		}
		for _, name := range phase {
			if _, ok := t.Root.Child(name); !ok {
				return fmt.Errorf("template %s: phase %d names unknown module %q", t.Key, i+1, name)
			}
			if seen[name] {
				return fmt.Errorf("template %s: module %q appears in more than one phase", t.Key, name)
			}
			seen[name] = true
		}
	}
	return nil
}

func validateNode(n Node, path string) error {
	if strings.TrimSpace(n.Name) == "" {
		return fmt.Errorf("empty folder name under %q", path)
	}
	for _, child := range n.Children {
		if err := validateNode(child, path+"/"+child.Name); err != nil {
			return err
		}
	}
	return nil
}

// PhaseCount returns the number of provisioning phases
func (t *Template) PhaseCount() int {
	return len(t.Phases)
}

// PhaseModules returns the root children provisioned in the given 1-based phase
func (t *Template) PhaseModules(phase int) ([]Node, error) {
	if phase < 1 || phase > len(t.Phases) {
		return nil, fmt.Errorf("template %s has no phase %d", t.Key, phase)
	}

	modules := make([]Node, 0, len(t.Phases[phase-1]))
	for _, name := range t.Phases[phase-1] {
		child, _ := t.Root.Child(name)
		modules = append(modules, child)
	}
	return modules, nil
}

// ModuleNames returns the names of the root's direct children, in order
func (t *Template) ModuleNames() []string {
	names := make([]string, 0, len(t.Root.Children))
	for _, child := range t.Root.Children {
		names = append(names, child.Name)
	}
	return names
}
