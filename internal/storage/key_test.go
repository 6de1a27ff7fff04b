package storage

import (
	"strings"
	"testing"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name     string
		wantBase string
	}{
		{name: "report.pdf", wantBase: "report.pdf"},
		{name: "../../etc/passwd", wantBase: "passwd"},
		{name: `C:\docs\scan.png`, wantBase: "scan.png"},
		{name: "", wantBase: "file"},
	}

	for _, tt := range tests {
		key := ObjectKey(tt.name)
		prefix, base, ok := strings.Cut(key, "/")
		if !ok {
			t.Fatalf("ObjectKey(%q) = %q, missing separator", tt.name, key)
		}
		if len(prefix) != 36 {
			t.Errorf("ObjectKey(%q) prefix = %q, want uuid", tt.name, prefix)
		}
		if base != tt.wantBase {
			t.Errorf("ObjectKey(%q) base = %q, want %q", tt.name, base, tt.wantBase)
		}
	}

	if ObjectKey("a") == ObjectKey("a") {
		t.Error("ObjectKey should be unique per call")
	}
}
