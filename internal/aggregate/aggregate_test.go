package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klothdash/internal/shared/testutil"
	"klothdash/pkg/contracts/domain"
)

var (
	byState      = func(r domain.AggregatedRecord) string { return r.StateTerritory }
	byLocation   = func(r domain.AggregatedRecord) string { return r.LocationName }
	bySite       = func(r domain.AggregatedRecord) string { return r.SiteContractID }
	acceptableKG = func(r domain.AggregatedRecord) float64 { return r.TotalAcceptableKG }
	rejectedKG   = func(r domain.AggregatedRecord) float64 { return r.TotalRejectedKG }
)

func stateRows() []domain.AggregatedRecord {
	return []domain.AggregatedRecord{
		{SiteContractID: "1", StateTerritory: "Selangor", TotalAcceptableKG: 100},
		{SiteContractID: "2", StateTerritory: "Selangor", TotalAcceptableKG: 50},
		{SiteContractID: "3", StateTerritory: "Johor", TotalAcceptableKG: 30},
	}
}

func TestGroupSumByState(t *testing.T) {
	groups := GroupSum(stateRows(), byState, acceptableKG, ByValueDesc)
	assert.Equal(t, []Group{{"Selangor", 150}, {"Johor", 30}}, groups)

	top, err := TopN(groups, 1)
	require.NoError(t, err)
	assert.Equal(t, []Group{{"Selangor", 150}}, top)
}

func TestGroupSumOrdering(t *testing.T) {
	rows := []domain.AggregatedRecord{
		{StateTerritory: "C", TotalAcceptableKG: 5},
		{StateTerritory: "A", TotalAcceptableKG: 5},
		{StateTerritory: "B", TotalAcceptableKG: 9},
	}

	assert.Equal(t, []string{"B", "A", "C"}, Keys(GroupSum(rows, byState, acceptableKG, ByValueDesc)),
		"ties are broken by key ascending")
	assert.Equal(t, []string{"A", "B", "C"}, Keys(GroupSum(rows, byState, acceptableKG, ByKeyAsc)))
	assert.Empty(t, GroupSum(nil, byState, acceptableKG, ByValueDesc))
}

func TestGroupSumConservesTotal(t *testing.T) {
	rows := testutil.SampleSnapshot()
	total := Sum(rows, acceptableKG)

	for name, key := range map[string]func(domain.AggregatedRecord) string{
		"state":    byState,
		"location": byLocation,
		"site":     bySite,
	} {
		t.Run(name, func(t *testing.T) {
			var sum float64
			for _, g := range GroupSum(rows, key, acceptableKG, ByValueDesc) {
				sum += g.Value
			}
			assert.InDelta(t, total, sum, 1e-9)
		})
	}
}

func TestGroupSumIsPure(t *testing.T) {
	rows := testutil.SampleSnapshot()
	before := testutil.SampleSnapshot()

	first := GroupSum(rows, byState, acceptableKG, ByValueDesc)
	second := GroupSum(rows, byState, acceptableKG, ByValueDesc)

	assert.Equal(t, first, second)
	assert.Equal(t, before, rows)
}

func TestGroupSums(t *testing.T) {
	groups := GroupSums(testutil.SampleSnapshot(), byState, acceptableKG, rejectedKG)
	require.Len(t, groups, 3)

	assert.Equal(t, MultiGroup{Key: "NSW", Values: []float64{130, 15}}, groups[0])
	assert.Equal(t, MultiGroup{Key: "VIC", Values: []float64{50, 0}}, groups[1])
	assert.Equal(t, MultiGroup{Key: "QLD", Values: []float64{20, 20}}, groups[2])
	assert.Equal(t, 145.0, groups[0].Total())

	mixed := []domain.AggregatedRecord{
		{StateTerritory: "A", TotalAcceptableKG: 10, TotalRejectedKG: 100},
		{StateTerritory: "B", TotalAcceptableKG: 20},
	}
	assert.Equal(t, "B", GroupSums(mixed, byState, acceptableKG, rejectedKG)[0].Key,
		"ordered by the first value")
}

func TestTopN(t *testing.T) {
	groups := GroupSum(testutil.SampleSnapshot(), byLocation, acceptableKG, ByValueDesc)

	tests := []struct {
		name    string
		n       int
		want    int
		wantErr bool
	}{
		{"zero", 0, 0, true},
		{"negative", -3, 0, true},
		{"one", 1, 1, false},
		{"fewer than groups", 3, 3, false},
		{"exactly all", 4, 4, false},
		{"more than groups", 50, 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top, err := TopN(groups, tt.n)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTopN)
				return
			}
			require.NoError(t, err)
			assert.Len(t, top, tt.want)
			assert.Equal(t, groups[:tt.want], top, "top-n is a prefix")
		})
	}
}

func TestPivot(t *testing.T) {
	facts := testutil.SampleFacts()
	location := func(f domain.FactRecord) string { return f.LocationName }
	day := func(f domain.FactRecord) string { return f.DayOfWeek }
	weight := func(f domain.FactRecord) float64 { return f.WeightKG }

	t.Run("canonical column order", func(t *testing.T) {
		p := Pivot(facts, location, day, weight, domain.Weekdays)

		assert.Equal(t, []string{"Alpha Mall", "Beta Plaza", "Epsilon Hub", "Gamma Centre"}, p.Rows)
		assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Saturday"}, p.Columns)
		assert.Equal(t, []float64{12, 3, 0, 0}, p.Cells[0])
		assert.Equal(t, 7.0, p.Cell("Epsilon Hub", "Saturday"))
		assert.Equal(t, 0.0, p.Cell("Beta Plaza", "Sunday"))
	})

	t.Run("discovery order", func(t *testing.T) {
		shuffled := []domain.FactRecord{facts[3], facts[0], facts[2]}
		p := Pivot(shuffled, location, day, weight, nil)
		assert.Equal(t, []string{"Wednesday", "Monday", "Tuesday"}, p.Columns)
	})

	t.Run("unknown columns follow canonical ones", func(t *testing.T) {
		odd := append([]domain.FactRecord{{LocationName: "Alpha Mall", DayOfWeek: "Funday", WeightKG: 1}}, facts...)
		p := Pivot(odd, location, day, weight, domain.Weekdays)
		assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Saturday", "Funday"}, p.Columns)
	})

	t.Run("restrict rows", func(t *testing.T) {
		p := Pivot(facts, location, day, weight, domain.Weekdays).RestrictRows([]string{"Gamma Centre", "Nowhere", "Alpha Mall"})
		assert.Equal(t, []string{"Gamma Centre", "Alpha Mall"}, p.Rows)
		assert.Equal(t, 5.0, p.Cells[0][2])
	})

	t.Run("empty", func(t *testing.T) {
		p := Pivot(nil, location, day, weight, domain.Weekdays)
		assert.True(t, p.IsEmpty())
		assert.Empty(t, p.Rows)
		assert.Empty(t, p.Columns)
	})
}

func TestAcceptanceRate(t *testing.T) {
	tests := []struct {
		acc, rej, want float64
	}{
		{0, 0, 0},
		{100, 0, 1},
		{0, 10, 0},
		{30, 10, 0.75},
		{1, 2, 1.0 / 3.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, AcceptanceRate(tt.acc, tt.rej), 1e-12, "acc=%v rej=%v", tt.acc, tt.rej)
	}
	assert.Equal(t, 0.0, Mean(10, 0))
	assert.Equal(t, 2.5, Mean(10, 4))
}

func TestScalars(t *testing.T) {
	rows := testutil.SampleSnapshot()

	assert.Equal(t, 200.0, Sum(rows, acceptableKG))
	assert.Equal(t, 3, DistinctCount(rows, byState))
	assert.Equal(t, 4, DistinctCount(rows, bySite))
	assert.Equal(t, 0, DistinctCount([]domain.AggregatedRecord{}, bySite))

	assert.Equal(t, Group{Key: "NSW", Value: 130}, ArgMax(rows, byState, acceptableKG))
	assert.Equal(t, Group{Key: NoGroup}, ArgMax([]domain.AggregatedRecord{}, byState, acceptableKG))
}
