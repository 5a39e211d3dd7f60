package catalog

import (
	"context"
	"fmt"
	"log"

	"course-search/pkg/db"
	"course-search/pkg/domain"
)

// Resolver enumerates courses from the version pointer collection.
type Resolver struct {
	pointers db.PointerSource
}

// NewResolver creates a new catalog resolver.
func NewResolver(pointers db.PointerSource) *Resolver {
	return &Resolver{pointers: pointers}
}

// ListCourses returns the identity of every course with a version pointer,
// including courses whose structure may later fail to resolve. An empty store
// yields an empty list, not an error.
func (r *Resolver) ListCourses(ctx context.Context) ([]domain.CourseKey, error) {
	pointers, err := r.pointers.FindAllVersionPointers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list version pointers: %w", err)
	}

	courses := make([]domain.CourseKey, 0, len(pointers))
	for _, ptr := range pointers {
		courses = append(courses, ptr.Key())
	}

	log.Printf("Found %d courses", len(courses))
	return courses, nil
}
