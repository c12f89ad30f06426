package catalog

import (
	"context"
	"fmt"
	"strings"
)

// CategoryNode is a single category in the catalog forest.
type CategoryNode struct {
	ID       string
	Name     string
	ParentID *string
}

// FaultKind classifies malformed category data.
type FaultKind string

const (
	// FaultCycle means walking parent pointers revisits a category.
	FaultCycle FaultKind = "cycle"
	// FaultDanglingParent means a parent id does not resolve to a known category.
	FaultDanglingParent FaultKind = "dangling_parent"
	// FaultDuplicateID means two nodes share an id; the later one wins.
	FaultDuplicateID FaultKind = "duplicate_id"
)

// ConfigError reports malformed category data. It is returned next to
// truncated (still usable) results, never instead of them.
type ConfigError struct {
	Kind       FaultKind
	CategoryID string
	// Chain is the partial ancestor chain collected before the fault.
	Chain []string
}

func (e *ConfigError) Error() string {
	switch e.Kind {
	case FaultCycle:
		return fmt.Sprintf("category %s: parent cycle after [%s]", e.CategoryID, strings.Join(e.Chain, " -> "))
	case FaultDanglingParent:
		return fmt.Sprintf("category %s: parent does not exist", e.CategoryID)
	default:
		return fmt.Sprintf("category %s: %s", e.CategoryID, e.Kind)
	}
}

// Repository is the catalog-read collaborator.
type Repository interface {
	ListCategories(ctx context.Context) ([]CategoryNode, error)
}
