package domain

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NormalizeBlocks converts either on-disk representation of a structure's
// blocks into the canonical id -> Block lookup:
//   - a mapping keyed by block id, or
//   - a sequence of blocks each carrying its own "block_id".
//
// Both bson-decoded values (bson.M / bson.A) and plain Go maps/slices are
// accepted, so fixtures and live documents go through the same boundary.
// Entries that are not block-shaped are skipped rather than failing the
// whole structure.
func NormalizeBlocks(raw any) (map[string]*Block, error) {
	if raw == nil {
		return map[string]*Block{}, nil
	}

	if m, ok := asMap(raw); ok {
		blocks := make(map[string]*Block, len(m))
		for id, v := range m {
			bm, ok := asMap(v)
			if !ok {
				continue
			}
			blocks[id] = blockFromMap(id, bm)
		}
		return blocks, nil
	}

	if list, ok := asSlice(raw); ok {
		blocks := make(map[string]*Block, len(list))
		for _, v := range list {
			bm, ok := asMap(v)
			if !ok {
				continue
			}
			id := asString(bm["block_id"])
			if id == "" {
				continue
			}
			blocks[id] = blockFromMap(id, bm)
		}
		return blocks, nil
	}

	return nil, fmt.Errorf("unsupported blocks representation %T", raw)
}

// blockFromMap builds a typed Block from one loosely-typed block document.
func blockFromMap(id string, m map[string]any) *Block {
	b := &Block{
		ID:         id,
		Type:       BlockType(asString(m["block_type"])),
		Definition: AsID(m["definition"]),
	}

	fields, ok := asMap(m["fields"])
	if !ok {
		return b
	}

	b.Fields = BlockFields{
		Children:    asStringSlice(fields["children"]),
		DisplayName: asString(fields["display_name"]),
		Data:        asString(fields["data"]),
		Transcripts: asStringMap(fields["transcripts"]),
	}
	return b
}

// DefinitionFromMap builds a typed Definition from one loosely-typed
// definition document.
func DefinitionFromMap(m map[string]any) Definition {
	d := Definition{ID: AsID(m["_id"])}

	fields, ok := asMap(m["fields"])
	if !ok {
		return d
	}

	d.Fields = DefinitionFields{
		Data:        asString(fields["data"]),
		DisplayName: asString(fields["display_name"]),
		Transcripts: asStringMap(fields["transcripts"]),
	}
	return d
}

// AsID renders a document id as a string: ObjectIDs become their hex form,
// strings pass through, anything else is empty.
func AsID(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return ""
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case bson.M:
		return m, true
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case bson.A:
		return s, true
	case []any:
		return s, true
	default:
		return nil, false
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asStringSlice keeps only the string (or id-shaped) elements of a list.
func asStringSlice(v any) []string {
	if ss, ok := v.([]string); ok {
		return ss
	}

	list, ok := asSlice(v)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(list))
	for _, e := range list {
		if id := AsID(e); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func asStringMap(v any) map[string]string {
	if sm, ok := v.(map[string]string); ok {
		return sm
	}

	m, ok := asMap(v)
	if !ok {
		return nil
	}

	out := make(map[string]string, len(m))
	for k, e := range m {
		if s := asString(e); s != "" {
			out[k] = s
		}
	}
	return out
}
