package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/catalog/artifact"
	apperrors "github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/errors"
)

// LoadFunc produces the catalog contents.
type LoadFunc func(ctx context.Context) ([]MovieRecord, []DocumentVector, error)

// Store loads the catalog at most once and then serves the same Snapshot
// to every caller. A failed load is remembered for the life of the Store.
type Store struct {
	load     LoadFunc
	once     sync.Once
	snapshot *Snapshot
	err      error
	loadedAt time.Time
	took     time.Duration
	ready    atomic.Bool
	logger   *slog.Logger
}

// NewStore creates a Store that reads the vector artifact and metadata CSV
// from the given paths.
func NewStore(vectorPath, metadataPath string) *Store {
	return NewStoreFunc(FileLoader(vectorPath, metadataPath))
}

// NewStoreFunc creates a Store backed by an arbitrary loader.
func NewStoreFunc(load LoadFunc) *Store {
	return &Store{
		load:   load,
		logger: slog.Default().With("component", "catalog-store"),
	}
}

// NewStaticStore wraps an already built snapshot.
func NewStaticStore(s *Snapshot) *Store {
	st := &Store{snapshot: s, loadedAt: time.Now(), logger: slog.Default().With("component", "catalog-store")}
	st.once.Do(func() {})
	st.ready.Store(true)
	return st
}

// Load returns the catalog snapshot, building it on the first call.
// Concurrent first callers block until the single build finishes. The
// build ignores cancellation of the caller's ctx, so only I/O and format
// failures are remembered; they are reported as ErrDataUnavailable.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	s.once.Do(func() {
		start := time.Now()
		s.snapshot, s.err = s.build(context.WithoutCancel(ctx))
		s.took = time.Since(start)
		s.loadedAt = time.Now()
		if s.err != nil {
			s.snapshot = nil
			s.logger.Error("catalog load failed", "error", s.err, "took", s.took)
			return
		}
		s.logger.Info("catalog loaded",
			"movies", s.snapshot.Size(),
			"titles", s.snapshot.Titles().Len(),
			"took", s.took,
		)
		s.ready.Store(true)
	})
	return s.snapshot, s.err
}

func (s *Store) build(ctx context.Context) (*Snapshot, error) {
	records, vectors, err := s.load(ctx)
	if err != nil {
		return nil, apperrors.DataUnavailable(err)
	}
	return NewSnapshot(records, vectors)
}

// Loaded reports whether a successful load has completed.
func (s *Store) Loaded() bool {
	return s.ready.Load()
}

// LoadedAt returns when the first load finished.
func (s *Store) LoadedAt() time.Time {
	return s.loadedAt
}

// LoadDuration returns how long the first load took.
func (s *Store) LoadDuration() time.Duration {
	return s.took
}

// FileLoader reads the vector artifact and metadata CSV from disk.
func FileLoader(vectorPath, metadataPath string) LoadFunc {
	return func(_ context.Context) ([]MovieRecord, []DocumentVector, error) {
		_, rows, err := artifact.ReadFile(vectorPath)
		if err != nil {
			return nil, nil, fmt.Errorf("vector artifact %s: %w", vectorPath, err)
		}
		records, err := ReadMetadataFile(metadataPath)
		if err != nil {
			return nil, nil, fmt.Errorf("metadata %s: %w", metadataPath, err)
		}
		if len(records) != len(rows) {
			return nil, nil, fmt.Errorf("metadata has %d rows but vector artifact has %d", len(records), len(rows))
		}
		vectors := make([]DocumentVector, len(rows))
		for i, row := range rows {
			v, err := NewDocumentVector(row.Terms, row.Weights)
			if err != nil {
				return nil, nil, fmt.Errorf("vector row %d: %w", i, err)
			}
			vectors[i] = v
		}
		return records, vectors, nil
	}
}
