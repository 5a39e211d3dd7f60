package domain

// BlockType identifies the kind of node a block represents in the course tree.
type BlockType string

// Known block types. Anything else is a leaf content type with no extraction
// rule, which always yields empty text.
const (
	BlockCourse     BlockType = "course"
	BlockChapter    BlockType = "chapter"
	BlockSequential BlockType = "sequential"
	BlockVertical   BlockType = "vertical"
	BlockHTML       BlockType = "html"
	BlockProblem    BlockType = "problem"
	BlockVideo      BlockType = "video"
)

// IsStructural reports whether the type is one of the four tree levels that
// never emit leaf content records.
func (t BlockType) IsStructural() bool {
	switch t {
	case BlockCourse, BlockChapter, BlockSequential, BlockVertical:
		return true
	default:
		return false
	}
}

// BlockFields holds the per-block fields we care about. Children order is the
// authoritative traversal order.
type BlockFields struct {
	Children    []string
	DisplayName string
	Data        string
	Transcripts map[string]string
}

// Block is one node in the course tree. Definition is the hex/string id of the
// content definition it references, or empty.
type Block struct {
	ID         string
	Type       BlockType
	Definition string
	Fields     BlockFields
}

// Structure is a course tree snapshot: an opaque version id plus the canonical
// block lookup produced by NormalizeBlocks.
type Structure struct {
	ID     string
	Blocks map[string]*Block
}

// DefinitionFields is the content payload of a definition. Transcripts appears
// here because the live store keeps video transcript maps on the definition.
type DefinitionFields struct {
	Data        string
	DisplayName string
	Transcripts map[string]string
}

// Definition is the content payload referenced by zero or more blocks.
type Definition struct {
	ID     string
	Fields DefinitionFields
}

// VersionPointer maps a course identity to its currently published structure.
// PublishedVersion is empty when the pointer has no published branch.
type VersionPointer struct {
	Org              string
	Course           string
	Run              string
	PublishedVersion string
}

// Key returns the course identity of the pointer.
func (p VersionPointer) Key() CourseKey {
	return CourseKey{Org: p.Org, Course: p.Course, Run: p.Run}
}
