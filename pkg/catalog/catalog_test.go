package catalog

import (
	"context"
	"testing"

	"course-search/pkg/domain"
)

// fakePointerSource returns a fixed pointer list.
type fakePointerSource struct {
	pointers []domain.VersionPointer
}

func (f *fakePointerSource) FindAllVersionPointers(_ context.Context) ([]domain.VersionPointer, error) {
	return f.pointers, nil
}

func (f *fakePointerSource) FindVersionPointer(_ context.Context, org, course, run string) (*domain.VersionPointer, error) {
	return nil, nil
}

func TestListCourses(t *testing.T) {
	r := NewResolver(&fakePointerSource{pointers: []domain.VersionPointer{
		{Org: "OrgX", Course: "CS101", Run: "2024", PublishedVersion: "v1"},
		{Org: "OrgY", Course: "MATH1", Run: "2023"}, // no published branch, still listed
	}})

	courses, err := r.ListCourses(context.Background())
	if err != nil {
		t.Fatalf("Failed to list courses: %v", err)
	}

	if len(courses) != 2 {
		t.Fatalf("Expected 2 courses, got %d", len(courses))
	}
	if courses[0].String() != "course-v1:OrgX+CS101+2024" {
		t.Errorf("Expected first course 'course-v1:OrgX+CS101+2024', got '%s'", courses[0])
	}
	if courses[1].String() != "course-v1:OrgY+MATH1+2023" {
		t.Errorf("Expected second course 'course-v1:OrgY+MATH1+2023', got '%s'", courses[1])
	}
}

func TestListCourses_Empty(t *testing.T) {
	r := NewResolver(&fakePointerSource{})

	courses, err := r.ListCourses(context.Background())
	if err != nil {
		t.Fatalf("Expected empty catalog to succeed, got: %v", err)
	}
	if len(courses) != 0 {
		t.Errorf("Expected 0 courses, got %d", len(courses))
	}
}
