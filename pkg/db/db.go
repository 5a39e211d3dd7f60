package db

import (
	"context"
	"errors"
	"fmt"
	"io"

	"course-search/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Split-modulestore collection names.
const (
	pointersCollection    = "modulestore.active_versions"
	structuresCollection  = "modulestore.structures"
	definitionsCollection = "modulestore.definitions"
)

// publishedBranch is the version reference that points at the live tree.
const publishedBranch = "published-branch"

// ErrNotFound is returned when a pointer, structure, definition or blob is
// absent from the store.
var ErrNotFound = errors.New("not found")

// Client wraps the MongoDB client, the three modulestore collections and the
// GridFS bucket holding transcript files.
type Client struct {
	mongoClient *mongo.Client
	database    *mongo.Database
	pointers    *mongo.Collection
	structures  *mongo.Collection
	definitions *mongo.Collection
	bucket      *gridfs.Bucket
}

// NewClient creates a new store client. Connection errors surface on Connect.
func NewClient(connectionString, databaseName string) *Client {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		return &Client{}
	}

	database := mongoClient.Database(databaseName)
	bucket, err := gridfs.NewBucket(database)
	if err != nil {
		bucket = nil
	}

	return &Client{
		mongoClient: mongoClient,
		database:    database,
		pointers:    database.Collection(pointersCollection),
		structures:  database.Collection(structuresCollection),
		definitions: database.Collection(definitionsCollection),
		bucket:      bucket,
	}
}

// Connect verifies connectivity to the store. A failure here is fatal to the
// whole run; everything after it degrades per-course instead.
func (c *Client) Connect(ctx context.Context) error {
	if c.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return c.mongoClient.Ping(ctx, nil)
}

// Close releases the store connection.
func (c *Client) Close(ctx context.Context) error {
	if c.mongoClient == nil {
		return nil
	}
	return c.mongoClient.Disconnect(ctx)
}

// FindAllVersionPointers returns every version pointer. Documents that fail to
// decode are skipped.
func (c *Client) FindAllVersionPointers(ctx context.Context) ([]domain.VersionPointer, error) {
	if c.pointers == nil {
		return nil, fmt.Errorf("pointer collection not initialized")
	}

	cursor, err := c.pointers.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("query version pointers: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.VersionPointer
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		out = append(out, pointerFromDoc(doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return out, nil
}

// FindVersionPointer looks one pointer up by its course identity.
func (c *Client) FindVersionPointer(ctx context.Context, org, course, run string) (*domain.VersionPointer, error) {
	if c.pointers == nil {
		return nil, fmt.Errorf("pointer collection not initialized")
	}

	var doc bson.M
	filter := bson.M{"org": org, "course": course, "run": run}
	if err := c.pointers.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("version pointer for %s/%s/%s: %w", org, course, run, ErrNotFound)
		}
		return nil, fmt.Errorf("query version pointer: %w", err)
	}

	ptr := pointerFromDoc(doc)
	return &ptr, nil
}

// FindStructureByID fetches a structure document and normalizes its blocks.
func (c *Client) FindStructureByID(ctx context.Context, id string) (*domain.Structure, error) {
	if c.structures == nil {
		return nil, fmt.Errorf("structure collection not initialized")
	}

	var doc bson.M
	if err := c.structures.FindOne(ctx, bson.M{"_id": idValue(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("structure %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("query structure %s: %w", id, err)
	}

	blocks, err := domain.NormalizeBlocks(doc["blocks"])
	if err != nil {
		return nil, fmt.Errorf("normalize structure %s: %w", id, err)
	}

	return &domain.Structure{ID: id, Blocks: blocks}, nil
}

// FindDefinitionsByIDs batch-fetches definitions with a single $in query.
func (c *Client) FindDefinitionsByIDs(ctx context.Context, ids []string) ([]domain.Definition, error) {
	if c.definitions == nil {
		return nil, fmt.Errorf("definition collection not initialized")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	values := make([]any, 0, len(ids))
	for _, id := range ids {
		values = append(values, idValue(id))
	}

	cursor, err := c.definitions.Find(ctx, bson.M{"_id": bson.M{"$in": values}})
	if err != nil {
		return nil, fmt.Errorf("query definitions: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.Definition
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		out = append(out, domain.DefinitionFromMap(doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return out, nil
}

// OpenBlob opens a GridFS file by filename.
func (c *Client) OpenBlob(filename string) (io.ReadCloser, error) {
	if c.bucket == nil {
		return nil, fmt.Errorf("gridfs bucket not initialized")
	}

	stream, err := c.bucket.OpenDownloadStreamByName(filename)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, fmt.Errorf("blob %s: %w", filename, ErrNotFound)
		}
		return nil, fmt.Errorf("open blob %s: %w", filename, err)
	}
	return stream, nil
}

// pointerFromDoc converts a raw active-versions document. The versions map
// values are ObjectIDs in the live store.
func pointerFromDoc(doc bson.M) domain.VersionPointer {
	ptr := domain.VersionPointer{
		Org:    stringField(doc, "org"),
		Course: stringField(doc, "course"),
		Run:    stringField(doc, "run"),
	}

	if versions, ok := doc["versions"].(bson.M); ok {
		ptr.PublishedVersion = domain.AsID(versions[publishedBranch])
	} else if versions, ok := doc["versions"].(map[string]any); ok {
		ptr.PublishedVersion = domain.AsID(versions[publishedBranch])
	}
	return ptr
}

func stringField(doc bson.M, key string) string {
	s, _ := doc[key].(string)
	return s
}

// idValue maps a string id back to its stored form: hex strings become
// ObjectIDs, everything else is queried as a plain string.
func idValue(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}
