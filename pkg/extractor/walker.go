package extractor

import (
	"context"
	"fmt"
	"log"
	"unicode/utf8"

	"course-search/pkg/content"
	"course-search/pkg/domain"
)

// minContentLength is the threshold below which extracted leaf text is
// deliberately dropped: anything at or under 50 characters is too short to be
// worth indexing.
const minContentLength = 50

// StructureResolver resolves a course's published structure.
type StructureResolver interface {
	ResolvePublished(ctx context.Context, courseID string) (*domain.Structure, error)
}

// DefinitionLoader batch-loads content definitions by id.
type DefinitionLoader interface {
	Load(ctx context.Context, ids []string) (map[string]domain.Definition, error)
}

// TextExtractor extracts plain text from a leaf content block.
type TextExtractor interface {
	ExtractText(ctx context.Context, block *domain.Block, defs map[string]domain.Definition) string
}

// Walker traverses a course tree and assembles the flat ordered record
// sequence: marker records for chapters and sequentials, leaf records for
// content blocks with substantial text.
type Walker struct {
	structures  StructureResolver
	definitions DefinitionLoader
	content     TextExtractor
}

// NewWalker creates a new hierarchy walker.
func NewWalker(structures StructureResolver, definitions DefinitionLoader, content TextExtractor) *Walker {
	return &Walker{structures: structures, definitions: definitions, content: content}
}

// ExtractCourse extracts all content records for one course, in walk order:
// course -> chapters -> sequentials -> verticals -> content blocks, driven by
// each block's children list. The error is non-nil only when the structure or
// its definitions cannot be loaded; the caller logs it and skips the course.
func (w *Walker) ExtractCourse(ctx context.Context, key domain.CourseKey) ([]domain.ContentRecord, error) {
	courseID := key.String()

	structure, err := w.structures.ResolvePublished(ctx, courseID)
	if err != nil {
		return nil, err
	}

	defs, err := w.definitions.Load(ctx, referencedDefinitions(structure.Blocks))
	if err != nil {
		return nil, fmt.Errorf("definitions for %s: %w", courseID, err)
	}

	root := findCourseRoot(structure.Blocks)
	if root == nil {
		log.Printf("Warning: no course root block in %s, skipping", courseID)
		return []domain.ContentRecord{}, nil
	}

	records := []domain.ContentRecord{}
	for _, chapterID := range root.Fields.Children {
		chapter := structure.Blocks[chapterID]
		if chapter == nil || chapter.Type != domain.BlockChapter {
			continue
		}
		records = w.walkChapter(ctx, courseID, chapter, structure.Blocks, defs, records)
	}
	return records, nil
}

// walkChapter emits the chapter's module marker and descends into its
// sequentials.
func (w *Walker) walkChapter(ctx context.Context, courseID string, chapter *domain.Block, blocks map[string]*domain.Block, defs map[string]domain.Definition, records []domain.ContentRecord) []domain.ContentRecord {
	moduleName := content.ResolveDisplayName(chapter, defs)

	if moduleName != "" && moduleName != content.UntitledName {
		records = append(records, domain.ContentRecord{
			Text: fmt.Sprintf("Module: %s", moduleName),
			Metadata: domain.RecordMetadata{
				CourseID:    courseID,
				BlockType:   string(domain.BlockChapter),
				DisplayName: moduleName,
				Module:      moduleName,
				Source:      domain.SourcePath(courseID, domain.BlockChapter, moduleName),
			},
		})
	}

	for _, seqID := range chapter.Fields.Children {
		sequential := blocks[seqID]
		if sequential == nil || sequential.Type != domain.BlockSequential {
			continue
		}
		records = w.walkSequential(ctx, courseID, moduleName, sequential, blocks, defs, records)
	}
	return records
}

// walkSequential emits the section marker (carrying its module) and descends
// into the verticals' content blocks.
func (w *Walker) walkSequential(ctx context.Context, courseID, moduleName string, sequential *domain.Block, blocks map[string]*domain.Block, defs map[string]domain.Definition, records []domain.ContentRecord) []domain.ContentRecord {
	sectionName := content.ResolveDisplayName(sequential, defs)

	if sectionName != "" && sectionName != content.UntitledName {
		records = append(records, domain.ContentRecord{
			Text: fmt.Sprintf("Section: %s (in %s)", sectionName, moduleName),
			Metadata: domain.RecordMetadata{
				CourseID:    courseID,
				BlockType:   string(domain.BlockSequential),
				DisplayName: sectionName,
				Module:      moduleName,
				Section:     sectionName,
				Source:      domain.SourcePath(courseID, domain.BlockSequential, sectionName),
			},
		})
	}

	for _, vertID := range sequential.Fields.Children {
		vertical := blocks[vertID]
		if vertical == nil || vertical.Type != domain.BlockVertical {
			continue
		}

		// Verticals never emit records of their own.
		for _, contentID := range vertical.Fields.Children {
			block := blocks[contentID]
			if block == nil || block.Type.IsStructural() {
				continue
			}

			if record, ok := w.leafRecord(ctx, courseID, moduleName, sectionName, block, defs); ok {
				records = append(records, record)
			}
		}
	}
	return records
}

// leafRecord extracts a content block's text and assembles its record. Blocks
// whose extracted text is empty or too short are dropped.
func (w *Walker) leafRecord(ctx context.Context, courseID, moduleName, sectionName string, block *domain.Block, defs map[string]domain.Definition) (domain.ContentRecord, bool) {
	text := w.content.ExtractText(ctx, block, defs)
	if text == "" || utf8.RuneCountInString(text) <= minContentLength {
		return domain.ContentRecord{}, false
	}

	displayName := content.ResolveDisplayName(block, defs)
	return domain.ContentRecord{
		Text: text,
		Metadata: domain.RecordMetadata{
			CourseID:    courseID,
			BlockType:   string(block.Type),
			DisplayName: displayName,
			Module:      moduleName,
			Section:     sectionName,
			Source:      domain.SourcePath(courseID, block.Type, displayName),
		},
	}, true
}

// referencedDefinitions collects the set of definition ids referenced by any
// block, so they can be fetched in one batch.
func referencedDefinitions(blocks map[string]*domain.Block) []string {
	seen := make(map[string]bool, len(blocks))
	ids := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if block.Definition == "" || seen[block.Definition] {
			continue
		}
		seen[block.Definition] = true
		ids = append(ids, block.Definition)
	}
	return ids
}

// findCourseRoot locates the single block with the course type. If a corrupt
// structure carries more than one, the first encountered wins and the
// ambiguity is logged.
func findCourseRoot(blocks map[string]*domain.Block) *domain.Block {
	var root *domain.Block
	count := 0
	for _, block := range blocks {
		if block.Type == domain.BlockCourse {
			count++
			if root == nil {
				root = block
			}
		}
	}
	if count > 1 {
		log.Printf("Warning: structure has %d course-type blocks, using first encountered", count)
	}
	return root
}
