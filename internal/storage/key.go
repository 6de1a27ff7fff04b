// Package storage holds blob store implementations and helpers shared by them.
package storage

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// ObjectKey builds a collision-free object key that keeps the original file
// name readable: "<uuid>/<name>".
func ObjectKey(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "file"
	}
	return uuid.NewString() + "/" + base
}
