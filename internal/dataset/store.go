package dataset

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"klothdash/internal/infrastructure"
	"klothdash/pkg/contracts/domain"
)

// SnapshotTable is the loaded snapshot workbook
type SnapshotTable = Table[domain.AggregatedRecord]

// FactTable is the loaded fact sheet
type FactTable = Table[domain.FactRecord]

// Sources names the files the store reads
type Sources struct {
	SnapshotPath string
	FactPath     string
	FactSheet    string
}

// SourceStatus describes one configured source for health reporting
type SourceStatus struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Sheet  string `json:"sheet,omitempty"`
	Exists bool   `json:"exists"`
	Error  string `json:"error,omitempty"`
}

// Store serves the snapshot and fact tables, reloading a source only when
// its file changes on disk
type Store struct {
	sources   Sources
	loader    *Loader
	snapshots *Cache[*SnapshotTable]
	facts     *Cache[*FactTable]
	logger    *slog.Logger
}

// NewStore creates a new Store
func NewStore(sources Sources, loader *Loader, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if sources.FactSheet == "" {
		sources.FactSheet = domain.DefaultFactSheet
	}
	return &Store{
		sources:   sources,
		loader:    loader,
		snapshots: NewCache[*SnapshotTable](sourceSnapshot, 1, metrics),
		facts:     NewCache[*FactTable](sourceFacts, 1, metrics),
		logger:    logger.With(slog.String("component", "dataset_store")),
	}
}

// Sources returns the configured source locations
func (s *Store) Sources() Sources {
	return s.sources
}

// Snapshot returns the current snapshot table
func (s *Store) Snapshot(ctx context.Context) (*SnapshotTable, error) {
	table, _, err := s.snapshot(ctx)
	return table, err
}

func (s *Store) snapshot(ctx context.Context) (*SnapshotTable, CacheKey, error) {
	key, err := StatKey(s.sources.SnapshotPath, "")
	if err != nil {
		s.snapshots.Invalidate(s.sources.SnapshotPath, "")
		return nil, CacheKey{}, err
	}
	table, err := s.snapshots.GetOrLoad(ctx, key, func() (*SnapshotTable, error) {
		return s.loader.LoadSnapshot(ctx, s.sources.SnapshotPath)
	})
	return table, key, err
}

// Facts returns the current fact table. The state column is derived from the
// snapshot, so a snapshot change reloads the facts too.
func (s *Store) Facts(ctx context.Context) (*FactTable, error) {
	snap, snapKey, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	key, err := StatKey(s.sources.FactPath, s.sources.FactSheet)
	if err != nil {
		s.facts.Invalidate(s.sources.FactPath, s.sources.FactSheet)
		return nil, err
	}
	key.Upstream = snapKey.String()

	return s.facts.GetOrLoad(ctx, key, func() (*FactTable, error) {
		return s.loader.LoadFacts(ctx, s.sources.FactPath, s.sources.FactSheet, NewStateLookup(snap.Rows))
	})
}

// Warm loads both sources concurrently. Any failure is returned.
func (s *Store) Warm(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	var snapRows, factRows int

	g.Go(func() error {
		table, err := s.Snapshot(gctx)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		snapRows = table.Len()
		return nil
	})
	g.Go(func() error {
		table, err := s.Facts(gctx)
		if err != nil {
			return fmt.Errorf("load facts: %w", err)
		}
		factRows = table.Len()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "datasets warmed",
		slog.Int("snapshot_rows", snapRows),
		slog.Int("fact_rows", factRows))
	return nil
}

// Status reports whether each configured source is present on disk
func (s *Store) Status() []SourceStatus {
	check := func(name, path, sheet string) SourceStatus {
		st := SourceStatus{Name: name, Path: path, Sheet: sheet}
		if _, err := StatKey(path, sheet); err != nil {
			st.Error = err.Error()
			return st
		}
		st.Exists = true
		return st
	}
	return []SourceStatus{
		check(sourceSnapshot, s.sources.SnapshotPath, ""),
		check(sourceFacts, s.sources.FactPath, s.sources.FactSheet),
	}
}

// CacheStats returns statistics for both caches
func (s *Store) CacheStats() map[string]interface{} {
	return map[string]interface{}{
		sourceSnapshot: s.snapshots.GetStats(),
		sourceFacts:    s.facts.GetStats(),
	}
}
