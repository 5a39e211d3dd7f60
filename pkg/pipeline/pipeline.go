package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"

	"course-search/pkg/domain"
)

// CourseLister enumerates the courses to extract.
type CourseLister interface {
	ListCourses(ctx context.Context) ([]domain.CourseKey, error)
}

// CourseExtractor extracts the ordered record sequence of a single course.
type CourseExtractor interface {
	ExtractCourse(ctx context.Context, key domain.CourseKey) ([]domain.ContentRecord, error)
}

// RecordSink receives extracted records. The sink is responsible for
// chunking, embedding and storage; this pipeline only guarantees record
// ordering and the emission invariants.
type RecordSink interface {
	SaveRecords(ctx context.Context, records []domain.ContentRecord) error
}

// Pipeline runs course extraction across the catalog with a bounded worker
// pool. Courses are independent, so extraction is parallel across courses
// while each course's traversal stays sequential.
type Pipeline struct {
	lister    CourseLister
	extractor CourseExtractor
	sink      RecordSink
	workers   int
}

// Config wires the pipeline dependencies.
type Config struct {
	Lister    CourseLister
	Extractor CourseExtractor
	Sink      RecordSink // optional
	Workers   int
}

// NewPipeline creates a new extraction pipeline.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if cfg.Lister == nil {
		return nil, fmt.Errorf("course lister is required")
	}
	if cfg.Extractor == nil {
		return nil, fmt.Errorf("course extractor is required")
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	return &Pipeline{
		lister:    cfg.Lister,
		extractor: cfg.Extractor,
		sink:      cfg.Sink,
		workers:   workers,
	}, nil
}

// Run extracts every course in the catalog and returns the assembled records
// in catalog order. Per-course failures are logged and skipped. When ctx is
// cancelled, outstanding courses are abandoned and only fully completed
// courses contribute records; a partially-walked course never does.
func (p *Pipeline) Run(ctx context.Context) ([]domain.ContentRecord, error) {
	courses, err := p.lister.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	if len(courses) == 0 {
		log.Printf("No courses to extract")
		return []domain.ContentRecord{}, nil
	}

	type job struct {
		index int
		key   domain.CourseKey
	}

	jobs := make(chan job, len(courses))
	for i, key := range courses {
		jobs <- job{index: i, key: key}
	}
	close(jobs)

	// Completed courses land in their catalog slot; nil slots mean the
	// course failed or the run was cancelled before it finished.
	results := make([][]domain.ContentRecord, len(courses))
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for j := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				records, err := p.extractor.ExtractCourse(ctx, j.key)
				if err != nil {
					log.Printf("Worker %d: Skipping course %s: %v", workerID, j.key, err)
					continue
				}
				if ctx.Err() != nil {
					// Do not surface records from a walk that
					// raced with cancellation.
					return
				}

				log.Printf("Worker %d: Extracted %d records from %s", workerID, len(records), j.key)
				mu.Lock()
				results[j.index] = records
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	all := make([]domain.ContentRecord, 0)
	for _, records := range results {
		all = append(all, records...)
	}

	if p.sink != nil && len(all) > 0 {
		if err := p.sink.SaveRecords(ctx, all); err != nil {
			return all, fmt.Errorf("save records: %w", err)
		}
	}

	log.Printf("Extraction complete: %d records from %d courses", len(all), len(courses))
	return all, nil
}
