package structure

import (
	"context"
	"fmt"

	"course-search/pkg/db"
	"course-search/pkg/domain"
)

// Resolver resolves a course's published structure through the version
// pointer indirection.
type Resolver struct {
	pointers   db.PointerSource
	structures db.StructureSource
}

// NewResolver creates a new structure resolver.
func NewResolver(pointers db.PointerSource, structures db.StructureSource) *Resolver {
	return &Resolver{pointers: pointers, structures: structures}
}

// ResolvePublished resolves the published structure for a course identifier:
// parse the id, look up the version pointer, read its published branch, fetch
// the structure. Every failure wraps either domain.ErrInvalidCourseID or
// db.ErrNotFound so callers can skip the course and continue.
func (r *Resolver) ResolvePublished(ctx context.Context, courseID string) (*domain.Structure, error) {
	key, err := domain.ParseCourseID(courseID)
	if err != nil {
		return nil, err
	}

	ptr, err := r.pointers.FindVersionPointer(ctx, key.Org, key.Course, key.Run)
	if err != nil {
		return nil, err
	}

	if ptr.PublishedVersion == "" {
		return nil, fmt.Errorf("published branch for %s: %w", courseID, db.ErrNotFound)
	}

	return r.structures.FindStructureByID(ctx, ptr.PublishedVersion)
}
