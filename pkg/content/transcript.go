package content

import (
	"context"
	"io"
	"log"
	"regexp"
	"strings"

	"course-search/pkg/db"
)

var (
	// Subtitle timing line, e.g. "00:00:05,000 --> 00:00:10,000".
	timestampPattern = regexp.MustCompile(`\d{2}:\d{2}:\d{2},\d{3} --> \d{2}:\d{2}:\d{2},\d{3}`)

	// A cue's sequence number on a line of its own.
	sequencePattern = regexp.MustCompile(`(?m)^\d+\s*$`)
)

// TranscriptFetcher fetches and cleans a transcript by filename. Failures are
// reported, never propagated: a fetch that cannot be completed yields "".
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, filename string) string
}

// GridFSFetcher fetches transcript files from the store's blob bucket.
type GridFSFetcher struct {
	blobs db.BlobStore
}

// NewGridFSFetcher creates a transcript fetcher over the given blob store.
func NewGridFSFetcher(blobs db.BlobStore) *GridFSFetcher {
	return &GridFSFetcher{blobs: blobs}
}

// FetchTranscript reads the named transcript file and strips its subtitle
// timing artifacts. Any open or read failure logs a warning and returns "",
// so one broken transcript never aborts a course extraction.
func (f *GridFSFetcher) FetchTranscript(ctx context.Context, filename string) string {
	if filename == "" {
		return ""
	}

	stream, err := f.blobs.OpenBlob(filename)
	if err != nil {
		log.Printf("Warning: could not read transcript %s: %v", filename, err)
		return ""
	}
	defer stream.Close()

	raw, err := io.ReadAll(stream)
	if err != nil {
		log.Printf("Warning: could not read transcript %s: %v", filename, err)
		return ""
	}

	return CleanTranscript(string(raw))
}

// CleanTranscript flattens subtitle-format text into a single line: timing
// lines and bare sequence numbers are stripped, and the remaining trimmed
// non-blank lines are joined with single spaces. Cleaning is idempotent.
func CleanTranscript(raw string) string {
	text := timestampPattern.ReplaceAllString(raw, "")
	text = sequencePattern.ReplaceAllString(text, "")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}
