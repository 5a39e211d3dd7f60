package domain

import (
	"errors"
	"fmt"
	"strings"
)

// coursePrefix is the scheme prefix used by canonical course identifiers.
const coursePrefix = "course-v1:"

// ErrInvalidCourseID is returned when a course identifier does not match the
// canonical "course-v1:{org}+{course}+{run}" form.
var ErrInvalidCourseID = errors.New("invalid course identifier")

// CourseKey is the composite identity of a course: organization, course code
// and run (typically a semester or cohort).
type CourseKey struct {
	Org    string `bson:"org" json:"org"`
	Course string `bson:"course" json:"course"`
	Run    string `bson:"run" json:"run"`
}

// ParseCourseID parses a canonical course identifier back into its parts.
func ParseCourseID(id string) (CourseKey, error) {
	if !strings.HasPrefix(id, coursePrefix) {
		return CourseKey{}, fmt.Errorf("%w: %q", ErrInvalidCourseID, id)
	}

	parts := strings.Split(id[len(coursePrefix):], "+")
	if len(parts) != 3 {
		return CourseKey{}, fmt.Errorf("%w: %q", ErrInvalidCourseID, id)
	}

	return CourseKey{Org: parts[0], Course: parts[1], Run: parts[2]}, nil
}

// String renders the canonical course identifier.
func (k CourseKey) String() string {
	return fmt.Sprintf("%s%s+%s+%s", coursePrefix, k.Org, k.Course, k.Run)
}
