package content

import (
	"context"

	"course-search/pkg/domain"
)

// UntitledName is the sentinel display name for blocks with no name of their
// own and none on their definition.
const UntitledName = "Untitled"

// Extractor pulls plain text out of a leaf content block, dispatching on the
// block type. Types without an extraction rule yield empty text, which the
// walker will not emit.
type Extractor struct {
	transcripts TranscriptFetcher
}

// NewExtractor creates a new content extractor.
func NewExtractor(transcripts TranscriptFetcher) *Extractor {
	return &Extractor{transcripts: transcripts}
}

// ExtractText returns the plain text of a block:
//   - html and problem blocks: the definition's data, cleaned of markup.
//     A missing definition yields empty text.
//   - video blocks: the cleaned transcript when one resolves, otherwise a
//     short "Video: {name}" stub when the block has a display name.
//   - anything else: empty text.
func (e *Extractor) ExtractText(ctx context.Context, block *domain.Block, defs map[string]domain.Definition) string {
	switch block.Type {
	case domain.BlockHTML, domain.BlockProblem:
		def, ok := defs[block.Definition]
		if !ok {
			return ""
		}
		return CleanHTML(def.Fields.Data)

	case domain.BlockVideo:
		return e.extractVideo(ctx, block, defs)

	default:
		return ""
	}
}

// extractVideo prefers the English transcript, falls back to any available
// language, and finally to the video's display name.
func (e *Extractor) extractVideo(ctx context.Context, block *domain.Block, defs map[string]domain.Definition) string {
	// Transcript maps live on the block's own fields or, in the live
	// store, on its definition.
	transcripts := block.Fields.Transcripts
	if len(transcripts) == 0 {
		if def, ok := defs[block.Definition]; ok {
			transcripts = def.Fields.Transcripts
		}
	}

	filename := transcripts["en"]
	if filename == "" {
		for _, f := range transcripts {
			filename = f
			break
		}
	}

	if filename != "" && e.transcripts != nil {
		if text := e.transcripts.FetchTranscript(ctx, filename); text != "" {
			return "Video transcript: " + text
		}
	}

	name := block.Fields.DisplayName
	if name == "" {
		if def, ok := defs[block.Definition]; ok {
			name = def.Fields.DisplayName
		}
	}
	if name != "" {
		return "Video: " + name
	}
	return ""
}

// ResolveDisplayName returns the block's display name, falling back to its
// definition's and then to the UntitledName sentinel.
func ResolveDisplayName(block *domain.Block, defs map[string]domain.Definition) string {
	if block.Fields.DisplayName != "" {
		return block.Fields.DisplayName
	}
	if def, ok := defs[block.Definition]; ok && def.Fields.DisplayName != "" {
		return def.Fields.DisplayName
	}
	return UntitledName
}
