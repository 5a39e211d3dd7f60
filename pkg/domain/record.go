package domain

import "fmt"

// RecordMetadata carries the lineage and provenance of a content record.
// Module and Section are the display names of the nearest ancestor chapter and
// sequential at the time of traversal; Section is empty on chapter markers.
type RecordMetadata struct {
	CourseID    string `json:"course_id"`
	BlockType   string `json:"block_type"`
	DisplayName string `json:"display_name"`
	Module      string `json:"module"`
	Section     string `json:"section,omitempty"`
	Source      string `json:"source"`
}

// ContentRecord is the normalized output unit handed to the indexing sink.
type ContentRecord struct {
	Text     string         `json:"text"`
	Metadata RecordMetadata `json:"metadata"`
}

// SourcePath builds the synthetic provenance path used as a stable (but not
// globally unique) source key.
func SourcePath(courseID string, blockType BlockType, displayName string) string {
	return fmt.Sprintf("%s/%s/%s", courseID, blockType, displayName)
}
