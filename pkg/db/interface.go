package db

import (
	"context"
	"database/sql"
	"io"

	"course-search/pkg/domain"
)

// PointerSource reads version pointers (the "live version" collection).
type PointerSource interface {
	// FindAllVersionPointers returns every version pointer in the store.
	FindAllVersionPointers(ctx context.Context) ([]domain.VersionPointer, error)

	// FindVersionPointer looks one pointer up by its course identity.
	// Returns ErrNotFound when the course has no pointer.
	FindVersionPointer(ctx context.Context, org, course, run string) (*domain.VersionPointer, error)
}

// StructureSource reads course structure documents by version id.
type StructureSource interface {
	// FindStructureByID returns the structure with the given id, with its
	// blocks already normalized. Returns ErrNotFound when absent.
	FindStructureByID(ctx context.Context, id string) (*domain.Structure, error)
}

// DefinitionSource batch-reads content definitions.
type DefinitionSource interface {
	// FindDefinitionsByIDs returns the definitions matching the given ids.
	// Ids with no matching definition are simply missing from the result.
	FindDefinitionsByIDs(ctx context.Context, ids []string) ([]domain.Definition, error)
}

// BlobStore reads stored files (transcripts) by filename.
type BlobStore interface {
	// OpenBlob opens the named file for reading. Returns ErrNotFound when
	// no file with that name exists.
	OpenBlob(filename string) (io.ReadCloser, error)
}

// DBProvider is an interface for database clients that provide access to a
// sql.DB handle. This allows both PostgresClient and SupabaseClient to back
// the Postgres record sink interchangeably.
type DBProvider interface {
	DB() *sql.DB
}
