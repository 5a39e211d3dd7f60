package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"course-search/pkg/catalog"
	"course-search/pkg/content"
	"course-search/pkg/db"
	"course-search/pkg/domain"
	"course-search/pkg/extractor"
	"course-search/pkg/pipeline"
	"course-search/pkg/sink"
	"course-search/pkg/structure"
)

func main() {
	var (
		mongoURI = flag.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection string for the course store")
		dbName   = flag.String("db", "openedx", "Course store database name")
		workers  = flag.Int("workers", 4, "Number of parallel course extractions")
		outPath  = flag.String("out", "records.jsonl", "Path for the JSONL record output (empty to disable)")

		pgDSN        = flag.String("pg-dsn", "", "Optional Postgres DSN to also save records to")
		supabaseURL  = flag.String("supabase-url", "", "Optional Supabase project URL (used with -supabase-key and -supabase-password)")
		supabaseKey  = flag.String("supabase-key", "", "Supabase API key")
		supabasePass = flag.String("supabase-password", "", "Supabase database password")
	)
	flag.Parse()

	// Ctrl-C aborts outstanding course extractions; completed courses
	// still reach the sinks.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := db.NewClient(*mongoURI, *dbName)
	if err := store.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect to course store: %v", err)
	}
	defer store.Close(context.Background())

	sinks := buildSinks(ctx, *outPath, *pgDSN, *supabaseURL, *supabaseKey, *supabasePass)

	walker := extractor.NewWalker(
		structure.NewResolver(store, store),
		structure.NewLoader(store),
		content.NewExtractor(content.NewGridFSFetcher(store)),
	)

	p, err := pipeline.NewPipeline(pipeline.Config{
		Lister:    catalog.NewResolver(store),
		Extractor: walker,
		Sink:      sinks,
		Workers:   *workers,
	})
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	start := time.Now()
	records, err := p.Run(ctx)
	if err != nil {
		log.Printf("Extraction finished with error: %v", err)
	}
	log.Printf("Done. %d records, duration: %s", len(records), time.Since(start))
}

// buildSinks wires the configured record sinks. Missing configuration just
// means fewer sinks; none at all is fine for a dry run.
func buildSinks(ctx context.Context, outPath, pgDSN, supabaseURL, supabaseKey, supabasePass string) pipeline.RecordSink {
	var sinks multiSink

	if outPath != "" {
		out, err := os.Create(outPath)
		if err != nil {
			log.Fatalf("Failed to create output file %s: %v", outPath, err)
		}
		sinks = append(sinks, sink.NewJSONL(out))
	}

	var provider db.DBProvider
	switch {
	case pgDSN != "":
		pg := db.NewPostgresClient(db.PostgresConfig{DSN: pgDSN})
		if err := pg.Connect(ctx); err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		provider = pg
	case supabaseURL != "":
		sb := db.NewSupabaseClient(db.SupabaseConfig{
			ProjectURL: supabaseURL,
			Key:        supabaseKey,
			Password:   supabasePass,
		})
		if err := sb.Connect(ctx); err != nil {
			log.Fatalf("Failed to connect to Supabase: %v", err)
		}
		provider = sb
	}

	if provider != nil {
		pgSink, err := sink.NewPostgres(provider)
		if err != nil {
			log.Fatalf("Failed to build Postgres sink: %v", err)
		}
		sinks = append(sinks, pgSink)
	}

	if len(sinks) == 0 {
		return nil
	}
	return sinks
}

// multiSink fans records out to every configured sink in order.
type multiSink []pipeline.RecordSink

func (m multiSink) SaveRecords(ctx context.Context, records []domain.ContentRecord) error {
	for _, s := range m {
		if err := s.SaveRecords(ctx, records); err != nil {
			return err
		}
	}
	return nil
}
