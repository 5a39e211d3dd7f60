package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"course-search/pkg/domain"
)

// JSONL writes records as JSON lines, one object per record, preserving the
// order it receives. Useful for inspecting extraction output or feeding an
// indexer out of band.
type JSONL struct {
	enc *json.Encoder
}

// NewJSONL creates a JSONL sink writing to w.
func NewJSONL(w io.Writer) *JSONL {
	return &JSONL{enc: json.NewEncoder(w)}
}

// SaveRecords encodes every record as one JSON line.
func (s *JSONL) SaveRecords(ctx context.Context, records []domain.ContentRecord) error {
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.enc.Encode(record); err != nil {
			return fmt.Errorf("encode record %d (%s): %w", i, record.Metadata.Source, err)
		}
	}
	return nil
}
