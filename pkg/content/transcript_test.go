package content

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"course-search/pkg/db"
)

const sampleSRT = `1
00:00:05,000 --> 00:00:10,000
Welcome to the course.

2
00:00:10,500 --> 00:00:15,000
Today we cover variables.
`

func TestCleanTranscript(t *testing.T) {
	got := CleanTranscript(sampleSRT)
	want := "Welcome to the course. Today we cover variables."
	if got != want {
		t.Errorf("Expected '%s', got '%s'", want, got)
	}
}

func TestCleanTranscript_Idempotent(t *testing.T) {
	once := CleanTranscript(sampleSRT)
	twice := CleanTranscript(once)
	if once != twice {
		t.Errorf("Cleaning is not idempotent: '%s' vs '%s'", once, twice)
	}
}

func TestCleanTranscript_KeepsNumbersInsideText(t *testing.T) {
	raw := "1\n00:00:01,000 --> 00:00:02,000\nChapter 3 covers arrays\n"

	got := CleanTranscript(raw)
	if got != "Chapter 3 covers arrays" {
		t.Errorf("Expected 'Chapter 3 covers arrays', got '%s'", got)
	}
}

// fakeBlobStore serves in-memory files for transcript fetch tests.
type fakeBlobStore struct {
	files map[string]string
}

func (f *fakeBlobStore) OpenBlob(filename string) (io.ReadCloser, error) {
	data, ok := f.files[filename]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", filename, db.ErrNotFound)
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

func TestGridFSFetcher_FetchTranscript(t *testing.T) {
	fetcher := NewGridFSFetcher(&fakeBlobStore{files: map[string]string{
		"talk.srt": sampleSRT,
	}})

	got := fetcher.FetchTranscript(context.Background(), "talk.srt")
	want := "Welcome to the course. Today we cover variables."
	if got != want {
		t.Errorf("Expected '%s', got '%s'", want, got)
	}
}

func TestGridFSFetcher_MissingFileYieldsEmpty(t *testing.T) {
	fetcher := NewGridFSFetcher(&fakeBlobStore{files: map[string]string{}})

	if got := fetcher.FetchTranscript(context.Background(), "missing.srt"); got != "" {
		t.Errorf("Expected empty text for missing blob, got '%s'", got)
	}

	if got := fetcher.FetchTranscript(context.Background(), ""); got != "" {
		t.Errorf("Expected empty text for empty filename, got '%s'", got)
	}
}
