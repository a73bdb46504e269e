package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"klothdash/internal/dataset"
	"klothdash/internal/shared/testutil"
	"klothdash/pkg/contracts/domain"
)

// MockDatasetStore is a mock for DatasetStore
type MockDatasetStore struct {
	mock.Mock
}

func (m *MockDatasetStore) Snapshot(ctx context.Context) (*dataset.SnapshotTable, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataset.SnapshotTable), args.Error(1)
}

func (m *MockDatasetStore) Facts(ctx context.Context) (*dataset.FactTable, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataset.FactTable), args.Error(1)
}

// MockSourceReporter is a mock for SourceReporter
type MockSourceReporter struct {
	mock.Mock
}

func (m *MockSourceReporter) Status() []dataset.SourceStatus {
	args := m.Called()
	return args.Get(0).([]dataset.SourceStatus)
}

func (m *MockSourceReporter) CacheStats() map[string]interface{} {
	args := m.Called()
	return args.Get(0).(map[string]interface{})
}

// newFixtureStore writes the sample workbooks and returns a store over them
func newFixtureStore(t *testing.T) *dataset.Store {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	sources := dataset.Sources{
		SnapshotPath: testutil.WriteSnapshotWorkbook(t, t.TempDir(), testutil.SampleSnapshot()),
		FactPath:     testutil.WriteFactWorkbook(t, t.TempDir(), domain.DefaultFactSheet, testutil.SampleFacts()),
	}
	store := dataset.NewStore(sources, dataset.NewLoader(logger, nil), nil, logger)
	require.NoError(t, store.Warm(context.Background()))
	return store
}
