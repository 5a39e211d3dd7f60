package extractor

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"course-search/pkg/content"
	"course-search/pkg/db"
	"course-search/pkg/domain"
)

const testCourseID = "course-v1:OrgX+CS101+2024"

var testCourseKey = domain.CourseKey{Org: "OrgX", Course: "CS101", Run: "2024"}

// fakeResolver serves one structure for one course id.
type fakeResolver struct {
	courseID  string
	structure *domain.Structure
}

func (f *fakeResolver) ResolvePublished(_ context.Context, courseID string) (*domain.Structure, error) {
	if f.structure == nil || courseID != f.courseID {
		return nil, fmt.Errorf("structure for %s: %w", courseID, db.ErrNotFound)
	}
	return f.structure, nil
}

// fakeLoader serves definitions from a fixed table.
type fakeLoader struct {
	definitions map[string]domain.Definition
}

func (f *fakeLoader) Load(_ context.Context, ids []string) (map[string]domain.Definition, error) {
	out := make(map[string]domain.Definition, len(ids))
	for _, id := range ids {
		if def, ok := f.definitions[id]; ok {
			out[id] = def
		}
	}
	return out, nil
}

// fakeTranscripts satisfies content.TranscriptFetcher for the real extractor.
type fakeTranscripts struct {
	transcripts map[string]string
}

func (f *fakeTranscripts) FetchTranscript(_ context.Context, filename string) string {
	return f.transcripts[filename]
}

func structuralBlock(id string, t domain.BlockType, name string, children ...string) *domain.Block {
	return &domain.Block{
		ID:     id,
		Type:   t,
		Fields: domain.BlockFields{DisplayName: name, Children: children},
	}
}

// testTree builds the canonical single-path tree:
// course -> "Intro" chapter -> "Basics" sequential -> vertical -> html block.
func testTree(htmlData string) (*domain.Structure, map[string]domain.Definition) {
	blocks := map[string]*domain.Block{
		"root":  structuralBlock("root", domain.BlockCourse, "", "ch1"),
		"ch1":   structuralBlock("ch1", domain.BlockChapter, "Intro", "seq1"),
		"seq1":  structuralBlock("seq1", domain.BlockSequential, "Basics", "vert1"),
		"vert1": structuralBlock("vert1", domain.BlockVertical, "", "html1"),
		"html1": {ID: "html1", Type: domain.BlockHTML, Definition: "d1", Fields: domain.BlockFields{DisplayName: "Reading"}},
	}
	defs := map[string]domain.Definition{
		"d1": {ID: "d1", Fields: domain.DefinitionFields{Data: htmlData}},
	}
	return &domain.Structure{ID: "v1", Blocks: blocks}, defs
}

func newTestWalker(structure *domain.Structure, defs map[string]domain.Definition, transcripts map[string]string) *Walker {
	return NewWalker(
		&fakeResolver{courseID: testCourseID, structure: structure},
		&fakeLoader{definitions: defs},
		content.NewExtractor(&fakeTranscripts{transcripts: transcripts}),
	)
}

func TestExtractCourse_FullScenario(t *testing.T) {
	longText := strings.Repeat("abcdefgh ", 9) // cleans to 80 characters
	structure, defs := testTree("<p>" + longText + "</p>")
	w := newTestWalker(structure, defs, nil)

	records, err := w.ExtractCourse(context.Background(), testCourseKey)
	if err != nil {
		t.Fatalf("Failed to extract course: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	module := records[0]
	if module.Text != "Module: Intro" {
		t.Errorf("Expected module marker 'Module: Intro', got '%s'", module.Text)
	}
	if module.Metadata.BlockType != "chapter" {
		t.Errorf("Expected block type 'chapter', got '%s'", module.Metadata.BlockType)
	}
	if module.Metadata.Module != "Intro" || module.Metadata.Section != "" {
		t.Errorf("Expected module 'Intro' and empty section, got '%s'/'%s'", module.Metadata.Module, module.Metadata.Section)
	}
	if module.Metadata.Source != testCourseID+"/chapter/Intro" {
		t.Errorf("Unexpected source path: %s", module.Metadata.Source)
	}

	section := records[1]
	if section.Text != "Section: Basics (in Intro)" {
		t.Errorf("Expected section marker 'Section: Basics (in Intro)', got '%s'", section.Text)
	}
	if section.Metadata.BlockType != "sequential" {
		t.Errorf("Expected block type 'sequential', got '%s'", section.Metadata.BlockType)
	}
	if section.Metadata.Module != "Intro" || section.Metadata.Section != "Basics" {
		t.Errorf("Expected lineage Intro/Basics, got '%s'/'%s'", section.Metadata.Module, section.Metadata.Section)
	}

	leaf := records[2]
	if leaf.Metadata.BlockType != "html" {
		t.Errorf("Expected block type 'html', got '%s'", leaf.Metadata.BlockType)
	}
	if len(leaf.Text) != 80 {
		t.Errorf("Expected 80-character text, got %d: '%s'", len(leaf.Text), leaf.Text)
	}
	if leaf.Metadata.Module != "Intro" || leaf.Metadata.Section != "Basics" {
		t.Errorf("Expected lineage Intro/Basics, got '%s'/'%s'", leaf.Metadata.Module, leaf.Metadata.Section)
	}
	if leaf.Metadata.DisplayName != "Reading" {
		t.Errorf("Expected display name 'Reading', got '%s'", leaf.Metadata.DisplayName)
	}
	if leaf.Metadata.CourseID != testCourseID {
		t.Errorf("Expected course id '%s', got '%s'", testCourseID, leaf.Metadata.CourseID)
	}
}

func TestExtractCourse_ShortContentDropped(t *testing.T) {
	structure, defs := testTree("<p>only thirty characters here</p>")
	w := newTestWalker(structure, defs, nil)

	records, err := w.ExtractCourse(context.Background(), testCourseKey)
	if err != nil {
		t.Fatalf("Failed to extract course: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected only the two marker records, got %d", len(records))
	}
	for _, r := range records {
		if r.Metadata.BlockType == "html" {
			t.Errorf("Short html content should not be emitted: %+v", r)
		}
	}
}

func TestExtractCourse_ExactThresholdDropped(t *testing.T) {
	// Exactly 50 characters: the threshold is strict.
	structure, defs := testTree(strings.Repeat("a", 50))
	w := newTestWalker(structure, defs, nil)

	records, err := w.ExtractCourse(context.Background(), testCourseKey)
	if err != nil {
		t.Fatalf("Failed to extract course: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 50-character text to be dropped, got %d records", len(records))
	}
}

func TestExtractCourse_UntitledMarkersSkipped(t *testing.T) {
	longText := strings.Repeat("content ", 10)
	structure, defs := testTree(longText)
	structure.Blocks["ch1"].Fields.DisplayName = ""
	structure.Blocks["seq1"].Fields.DisplayName = ""

	w := newTestWalker(structure, defs, nil)
	records, err := w.ExtractCourse(context.Background(), testCourseKey)
	if err != nil {
		t.Fatalf("Failed to extract course: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("Expected only the leaf record, got %d", len(records))
	}
	leaf := records[0]
	if leaf.Metadata.BlockType != "html" {
		t.Errorf("Expected the surviving record to be the html leaf, got '%s'", leaf.Metadata.BlockType)
	}
	// Lineage still carries the sentinel names.
	if leaf.Metadata.Module != content.UntitledName || leaf.Metadata.Section != content.UntitledName {
		t.Errorf("Expected Untitled lineage, got '%s'/'%s'", leaf.Metadata.Module, leaf.Metadata.Section)
	}
}

func TestExtractCourse_NameFromDefinition(t *testing.T) {
	structure, defs := testTree(strings.Repeat("content ", 10))
	structure.Blocks["ch1"].Fields.DisplayName = ""
	structure.Blocks["ch1"].Definition = "chdef"
	defs["chdef"] = domain.Definition{ID: "chdef", Fields: domain.DefinitionFields{DisplayName: "Named in definition"}}

	w := newTestWalker(structure, defs, nil)
	records, err := w.ExtractCourse(context.Background(), testCourseKey)
	if err != nil {
		t.Fatalf("Failed to extract course: %v", err)
	}

	if records[0].Text != "Module: Named in definition" {
		t.Errorf("Expected definition-level name in marker, got '%s'", records[0].Text)
	}
}

func TestExtractCourse_NoRootYieldsNoRecords(t *testing.T) {
	structure := &domain.Structure{ID: "v1", Blocks: map[string]*domain.Block{
		"ch1": structuralBlock("ch1", domain.BlockChapter, "Orphan"),
	}}
	w := newTestWalker(structure, nil, nil)

	records, err := w.ExtractCourse(context.Background(), testCourseKey)
	if err != nil {
		t.Fatalf("Expected rootless course to succeed with no records, got: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected 0 records, got %d", len(records))
	}
}

func TestExtractCourse_ResolveFailurePropagates(t *testing.T) {
	w := NewWalker(&fakeResolver{}, &fakeLoader{}, content.NewExtractor(&fakeTranscripts{}))

	_, err := w.ExtractCourse(context.Background(), testCourseKey)
	if err == nil {
		t.Fatal("Expected error when structure cannot be resolved")
	}
}

func TestExtractCourse_SkipsMissingAndWrongTypedChildren(t *testing.T) {
	longText := strings.Repeat("content ", 10)
	structure, defs := testTree(longText)

	// Children referencing missing blocks, blocks of the wrong type for
	// their level, and structural blocks nested under a vertical.
	structure.Blocks["root"].Fields.Children = []string{"missing", "seq1", "ch1"}
	structure.Blocks["vert1"].Fields.Children = []string{"ch1", "html1", "gone"}

	w := newTestWalker(structure, defs, nil)
	records, err := w.ExtractCourse(context.Background(), testCourseKey)
	if err != nil {
		t.Fatalf("Failed to extract course: %v", err)
	}

	// Still exactly the canonical three records: the stray references
	// are skipped without aborting the walk.
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if records[2].Metadata.BlockType != "html" {
		t.Errorf("Expected html leaf to survive, got '%s'", records[2].Metadata.BlockType)
	}
}

func TestExtractCourse_OrderFollowsChildren(t *testing.T) {
	mkStructure := func(chapterOrder []string) *domain.Structure {
		blocks := map[string]*domain.Block{
			"root": structuralBlock("root", domain.BlockCourse, "", chapterOrder...),
			"chA":  structuralBlock("chA", domain.BlockChapter, "Alpha"),
			"chB":  structuralBlock("chB", domain.BlockChapter, "Beta"),
			"chC":  structuralBlock("chC", domain.BlockChapter, "Gamma"),
		}
		return &domain.Structure{ID: "v1", Blocks: blocks}
	}

	extract := func(s *domain.Structure) []string {
		w := newTestWalker(s, nil, nil)
		records, err := w.ExtractCourse(context.Background(), testCourseKey)
		if err != nil {
			t.Fatalf("Failed to extract course: %v", err)
		}
		texts := make([]string, len(records))
		for i, r := range records {
			texts[i] = r.Text
		}
		return texts
	}

	forward := extract(mkStructure([]string{"chA", "chB", "chC"}))
	want := []string{"Module: Alpha", "Module: Beta", "Module: Gamma"}
	if !reflect.DeepEqual(forward, want) {
		t.Errorf("Expected %v, got %v", want, forward)
	}

	permuted := extract(mkStructure([]string{"chC", "chA", "chB"}))
	wantPermuted := []string{"Module: Gamma", "Module: Alpha", "Module: Beta"}
	if !reflect.DeepEqual(permuted, wantPermuted) {
		t.Errorf("Expected %v, got %v", wantPermuted, permuted)
	}
}

func TestExtractCourse_BothDiskShapesProduceSameRecords(t *testing.T) {
	blockDoc := func(id, blockType, name string, children ...string) map[string]any {
		childList := make([]any, len(children))
		for i, c := range children {
			childList[i] = c
		}
		doc := map[string]any{
			"block_id":   id,
			"block_type": blockType,
			"fields": map[string]any{
				"children":     childList,
				"display_name": name,
			},
		}
		if blockType == "html" {
			doc["definition"] = "d1"
		}
		return doc
	}

	docs := []map[string]any{
		blockDoc("root", "course", "", "ch1"),
		blockDoc("ch1", "chapter", "Intro", "seq1"),
		blockDoc("seq1", "sequential", "Basics", "vert1"),
		blockDoc("vert1", "vertical", "", "html1"),
		blockDoc("html1", "html", "Reading"),
	}

	mapShape := map[string]any{}
	listShape := []any{}
	for _, doc := range docs {
		mapShape[doc["block_id"].(string)] = doc
		listShape = append(listShape, doc)
	}

	defs := map[string]domain.Definition{
		"d1": {ID: "d1", Fields: domain.DefinitionFields{Data: strings.Repeat("words ", 15)}},
	}

	extract := func(raw any) []domain.ContentRecord {
		blocks, err := domain.NormalizeBlocks(raw)
		if err != nil {
			t.Fatalf("Failed to normalize: %v", err)
		}
		w := newTestWalker(&domain.Structure{ID: "v1", Blocks: blocks}, defs, nil)
		records, err := w.ExtractCourse(context.Background(), testCourseKey)
		if err != nil {
			t.Fatalf("Failed to extract course: %v", err)
		}
		return records
	}

	fromMap := extract(mapShape)
	fromList := extract(listShape)

	if !reflect.DeepEqual(fromMap, fromList) {
		t.Errorf("Record sequences differ between disk shapes:\n%v\nvs\n%v", fromMap, fromList)
	}
	if len(fromMap) != 3 {
		t.Errorf("Expected 3 records, got %d", len(fromMap))
	}
}

func TestExtractCourse_LeafCountMatchesThreshold(t *testing.T) {
	// Three leaves: 80 chars, 10 chars, 120 chars. Exactly two clear the
	// threshold.
	blocks := map[string]*domain.Block{
		"root":  structuralBlock("root", domain.BlockCourse, "", "ch1"),
		"ch1":   structuralBlock("ch1", domain.BlockChapter, "Intro", "seq1"),
		"seq1":  structuralBlock("seq1", domain.BlockSequential, "Basics", "vert1"),
		"vert1": structuralBlock("vert1", domain.BlockVertical, "", "h1", "h2", "h3"),
		"h1":    {ID: "h1", Type: domain.BlockHTML, Definition: "d80"},
		"h2":    {ID: "h2", Type: domain.BlockHTML, Definition: "d10"},
		"h3":    {ID: "h3", Type: domain.BlockHTML, Definition: "d120"},
	}
	defs := map[string]domain.Definition{
		"d80":  {ID: "d80", Fields: domain.DefinitionFields{Data: strings.Repeat("a", 80)}},
		"d10":  {ID: "d10", Fields: domain.DefinitionFields{Data: strings.Repeat("a", 10)}},
		"d120": {ID: "d120", Fields: domain.DefinitionFields{Data: strings.Repeat("a", 120)}},
	}

	w := newTestWalker(&domain.Structure{ID: "v1", Blocks: blocks}, defs, nil)
	records, err := w.ExtractCourse(context.Background(), testCourseKey)
	if err != nil {
		t.Fatalf("Failed to extract course: %v", err)
	}

	leaves := 0
	for _, r := range records {
		if r.Metadata.BlockType == "html" {
			leaves++
		}
	}
	if leaves != 2 {
		t.Errorf("Expected 2 leaf records over the threshold, got %d", leaves)
	}
}
