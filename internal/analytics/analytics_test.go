package analytics_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/launchdeck/internal/analytics"
	"github.com/roach88/launchdeck/internal/engine"
	"github.com/roach88/launchdeck/internal/mission"
	"github.com/roach88/launchdeck/internal/store"
	"github.com/roach88/launchdeck/internal/testutil"
)

// backends returns an Analytics per backend over the fixture.
func backends(t *testing.T) map[string]*analytics.Analytics {
	t.Helper()
	ds := testutil.Dataset(t)

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Import(context.Background(), ds))

	return map[string]*analytics.Analytics{
		engine.BackendMemory: analytics.New(engine.New(ds)),
		store.BackendSQLite:  analytics.New(s),
	}
}

func TestTopCompanies(t *testing.T) {
	ctx := context.Background()
	for name, a := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := a.TopCompanies(ctx, 3)
			require.NoError(t, err)
			assert.Equal(t, []analytics.CompanyCount{
				{Company: "SpaceX", Missions: 3},
				{Company: "CASC", Missions: 3},
				{Company: "RVSN USSR", Missions: 2},
			}, got)

			all, err := a.TopCompanies(ctx, 100)
			require.NoError(t, err)
			assert.Len(t, all, 7)

			for _, n := range []int{0, -1} {
				got, err := a.TopCompanies(ctx, n)
				require.NoError(t, err)
				assert.NotNil(t, got)
				assert.Empty(t, got)
			}
		})
	}
}

func TestMissionCount(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		company string
		want    int
	}{
		{"CASC", 3},
		{"Rocket Lab", 1},
		{"casc", 0},
		{"Blue Origin", 0},
		{"", 0},
	}

	for name, a := range backends(t) {
		for _, tc := range testCases {
			t.Run(name+"/"+tc.company, func(t *testing.T) {
				got, err := a.MissionCount(ctx, tc.company)
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			})
		}
	}
}

func TestSuccessRate(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		company string
		want    float64
	}{
		{"SpaceX", 0.67},
		{"CASC", 1},
		{"RVSN USSR", 1},
		{"AMBA", 0.5},
		{"US Navy", 0},
		{"Arianespace", 0},
		{"Blue Origin", 0},
	}

	for name, a := range backends(t) {
		for _, tc := range testCases {
			t.Run(name+"/"+tc.company, func(t *testing.T) {
				got, err := a.SuccessRate(ctx, tc.company)
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			})
		}
	}
}

func TestCompanyDetails(t *testing.T) {
	for name, a := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := a.CompanyDetails(context.Background(), "SpaceX")
			require.NoError(t, err)
			assert.Equal(t, analytics.CompanyDetail{Company: "SpaceX", Missions: 3, SuccessRate: 0.67}, got)
		})
	}
}

func TestMissionsInRange(t *testing.T) {
	ctx := context.Background()
	for name, a := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := a.MissionsInRange(ctx, "1957-10-04", "1957-12-06")
			require.NoError(t, err)
			assert.Equal(t, []string{"Sputnik-1", "Sputnik-2", "Vanguard TV3"}, got)

			got, err = a.MissionsInRange(ctx, "2020-07-04", "2020-07-04")
			require.NoError(t, err)
			assert.Equal(t, []string{"Pics Or It Didn't Happen"}, got)

			got, err = a.MissionsInRange(ctx, "2020-12-31", "1957-01-01")
			require.NoError(t, err)
			assert.Empty(t, got, "reversed range")

			_, err = a.MissionsInRange(ctx, "1957-10-04", "twentyfifteen")
			assert.ErrorContains(t, err, "range end")

			_, err = a.MissionsInRange(ctx, "1957-02-30", "1958-01-01")
			assert.ErrorContains(t, err, "range start")
		})
	}
}

func TestStatusCounts(t *testing.T) {
	for name, a := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := a.StatusCounts(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []analytics.StatusCount{
				{Status: mission.OutcomeSuccess, Missions: 8},
				{Status: mission.OutcomeFailure, Missions: 4},
				{Status: mission.OutcomePartialFailure, Missions: 1},
				{Status: mission.OutcomePrelaunchFailure, Missions: 1},
			}, got)
		})
	}
}

func TestStatusCounts_ZeroFilled(t *testing.T) {
	ds := testutil.Records(testutil.Record("SpaceX", "Success"))
	a := analytics.New(engine.New(ds))

	got, err := a.StatusCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, 1, got[0].Missions)
	for _, c := range got[1:] {
		assert.Zero(t, c.Missions, c.Status)
	}
}

func TestMissionsInYear(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		year int
		want int
	}{
		{1957, 3},
		{1958, 3},
		{2016, 1},
		{2020, 6},
		{1999, 0},
	}

	for name, a := range backends(t) {
		for _, tc := range testCases {
			t.Run(name, func(t *testing.T) {
				got, err := a.MissionsInYear(ctx, tc.year)
				require.NoError(t, err)
				assert.Equal(t, tc.want, got, "year %d", tc.year)
			})
		}
	}
}

func TestMostUsedRocket(t *testing.T) {
	for name, a := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := a.MostUsedRocket(context.Background())
			require.NoError(t, err)
			// Four rockets flew twice; the first to appear wins
			assert.Equal(t, analytics.RocketUsage{Rocket: "Sputnik 8K71PS", Missions: 2}, got)
		})
	}
}

func TestMostUsedRocket_EmptyDataset(t *testing.T) {
	a := analytics.New(engine.New(mission.NewDataset(nil, "empty.csv", "")))

	_, err := a.MostUsedRocket(context.Background())
	assert.ErrorIs(t, err, analytics.ErrEmptyDataset)
}

func TestAverageMissionsPerYear(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		name       string
		start, end int
		want       float64
	}{
		{"two busy years", 1957, 1958, 3},
		{"whole record rounds", 1957, 2020, 0.22},
		{"single year", 2020, 2020, 6},
		{"empty years count", 1959, 1960, 0},
		{"reversed", 2023, 1957, 0},
	}

	for name, a := range backends(t) {
		for _, tc := range testCases {
			t.Run(name+"/"+tc.name, func(t *testing.T) {
				got, err := a.AverageMissionsPerYear(ctx, tc.start, tc.end)
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			})
		}
	}
}

func TestMissionsPerYear(t *testing.T) {
	for name, a := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := a.MissionsPerYear(context.Background())
			require.NoError(t, err)
			require.Len(t, got, 2020-1957+1)

			assert.Equal(t, analytics.YearCount{Year: 1957, Missions: 3}, got[0])
			assert.Equal(t, analytics.YearCount{Year: 1958, Missions: 3}, got[1])
			assert.Equal(t, analytics.YearCount{Year: 1959, Missions: 0}, got[2])
			assert.Equal(t, analytics.YearCount{Year: 2020, Missions: 6}, got[len(got)-1])

			total := 0
			for _, y := range got {
				total += y.Missions
			}
			assert.Equal(t, testutil.FixtureLen, total)
		})
	}
}

func TestMissionsPerYear_EmptyDataset(t *testing.T) {
	a := analytics.New(engine.New(mission.NewDataset(nil, "empty.csv", "")))

	got, err := a.MissionsPerYear(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRoundTo2(t *testing.T) {
	assert.Equal(t, 0.67, analytics.RoundTo2(2.0/3.0))
	assert.Equal(t, 0.22, analytics.RoundTo2(14.0/64.0))
	assert.Equal(t, 0.13, analytics.RoundTo2(0.125))
	assert.Equal(t, 1.0, analytics.RoundTo2(1))
}
