package docsystem

import (
	"context"

	"dossier/internal/domain/models/docsystem"
)

// TreeService defines operations for building folder trees
type TreeService interface {
	// GetAccountTree builds the nested folder/file tree visible to the caller
	GetAccountTree(ctx context.Context) (*docsystem.TreeNode, error)
}
