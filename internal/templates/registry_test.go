package templates

import (
	"strings"
	"testing"
)

func TestNewRegistry_LoadsEmbeddedTemplates(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	keys := r.Keys()
	if len(keys) != 2 || keys[0] != FDAGuidance || keys[1] != IECTD {
		t.Fatalf("Keys() = %v, want [%s %s]", keys, FDAGuidance, IECTD)
	}

	ectd, err := r.Get(IECTD)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", IECTD, err)
	}
	if ectd.Root.Name != "ieCTD/Drugs" {
		t.Errorf("root name = %q, want %q", ectd.Root.Name, "ieCTD/Drugs")
	}
	if !ectd.System {
		t.Error("iectd template should create system folders")
	}
	if got := ectd.ModuleNames(); strings.Join(got, ",") != "m1,m2,m3,m4,m5" {
		t.Errorf("ModuleNames() = %v", got)
	}
	if ectd.PhaseCount() != 2 {
		t.Errorf("PhaseCount() = %d, want 2", ectd.PhaseCount())
	}
	if n := ectd.Root.Count(); n != 145 {
		t.Errorf("Root.Count() = %d, want 145", n)
	}

	guidance, err := r.Get(FDAGuidance)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", FDAGuidance, err)
	}
	if guidance.Root.Name != "Guidance for Industry" {
		t.Errorf("root name = %q", guidance.Root.Name)
	}
	if guidance.PhaseCount() != 0 {
		t.Errorf("guidance template should not be phased")
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if _, err := r.Get("nope"); err == nil {
		t.Error("Get(unknown) expected error")
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := &Registry{templates: make(map[string]*Template)}
	tmpl := &Template{Key: "x", Root: Node{Name: "x"}}
	if err := r.Register(tmpl); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	if err := r.Register(tmpl); err == nil {
		t.Error("second Register() expected duplicate error")
	}
}

func TestPhaseModules(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	ectd, _ := r.Get(IECTD)

	tests := []struct {
		phase   int
		want    []string
		wantErr bool
	}{
		{phase: 1, want: []string{"m1", "m2"}},
		{phase: 2, want: []string{"m3", "m4", "m5"}},
		{phase: 0, wantErr: true},
		{phase: 3, wantErr: true},
	}

	for _, tt := range tests {
		modules, err := ectd.PhaseModules(tt.phase)
		if tt.wantErr {
			if err == nil {
				t.Errorf("PhaseModules(%d) expected error", tt.phase)
			}
			continue
		}
		if err != nil {
			t.Fatalf("PhaseModules(%d) error = %v", tt.phase, err)
		}
		var names []string
		for _, m := range modules {
			names = append(names, m.Name)
		}
		if strings.Join(names, ",") != strings.Join(tt.want, ",") {
			t.Errorf("PhaseModules(%d) = %v, want %v", tt.phase, names, tt.want)
		}
	}

	m2, _ := ectd.Root.Child("m2")
	if len(m2.Children) != 6 {
		t.Errorf("m2 children = %d, want 6", len(m2.Children))
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "valid",
			yaml: "key: t\nroot:\n  name: r\n  children:\n  - name: a\n",
		},
		{
			name:    "missing key",
			yaml:    "root:\n  name: r\n",
			wantErr: "key is required",
		},
		{
			name:    "empty child name",
			yaml:    "key: t\nroot:\n  name: r\n  children:\n  - name: ''\n",
			wantErr: "empty folder name",
		},
		{
			name:    "phase names unknown module",
			yaml:    "key: t\nphases:\n- [b]\nroot:\n  name: r\n  children:\n  - name: a\n",
			wantErr: "unknown module",
		},
		{
			name:    "module in two phases",
			yaml:    "key: t\nphases:\n- [a]\n- [a]\nroot:\n  name: r\n  children:\n  - name: a\n",
			wantErr: "more than one phase",
		},
		{
			name:    "bad yaml",
			yaml:    "key: [",
			wantErr: "unmarshal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Parse() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Parse() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
