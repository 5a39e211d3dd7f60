package structure

import (
	"context"
	"fmt"

	"course-search/pkg/db"
	"course-search/pkg/domain"
)

// Loader batch-fetches content definitions referenced by a structure's blocks.
type Loader struct {
	definitions db.DefinitionSource
}

// NewLoader creates a new definition loader.
func NewLoader(definitions db.DefinitionSource) *Loader {
	return &Loader{definitions: definitions}
}

// Load fetches all given definition ids in a single batch and returns them as
// a lookup table. Ids with no matching definition are absent from the result.
func (l *Loader) Load(ctx context.Context, ids []string) (map[string]domain.Definition, error) {
	out := make(map[string]domain.Definition, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	defs, err := l.definitions.FindDefinitionsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}

	for _, def := range defs {
		out[def.ID] = def
	}
	return out, nil
}
