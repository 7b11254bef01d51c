// Package analytics answers the dashboard questions about the launch
// record: top companies, success rates, yearly activity and so on.
//
// Every answer is a query against an engine.Backend, so the in-memory
// core and the SQLite mirror produce the same numbers.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/roach88/launchdeck/internal/engine"
	"github.com/roach88/launchdeck/internal/ir"
	"github.com/roach88/launchdeck/internal/mission"
	"github.com/roach88/launchdeck/internal/queryir"
)

// ErrEmptyDataset is returned by questions that have no answer without data.
var ErrEmptyDataset = errors.New("dataset has no missions")

// Analytics answers dashboard questions against a backend.
type Analytics struct {
	backend engine.Backend
}

// New creates an Analytics over b.
func New(b engine.Backend) *Analytics {
	return &Analytics{backend: b}
}

// CompanyCount is a company and its number of missions.
type CompanyCount struct {
	Company  string `json:"company"`
	Missions int    `json:"missions"`
}

// StatusCount is the number of missions with one outcome.
type StatusCount struct {
	Status   mission.Outcome `json:"status"`
	Missions int             `json:"missions"`
}

// RocketUsage is a rocket and the number of missions it flew.
type RocketUsage struct {
	Rocket   string `json:"rocket"`
	Missions int    `json:"missions"`
}

// YearCount is the number of missions launched in one year.
type YearCount struct {
	Year     int `json:"year"`
	Missions int `json:"missions"`
}

// CompanyDetail is the company panel: total missions and success rate.
type CompanyDetail struct {
	Company     string  `json:"company"`
	Missions    int     `json:"missions"`
	SuccessRate float64 `json:"success_rate"`
}

// TopCompanies returns the n companies with the most missions, most first.
// Ties keep the order in which the companies first appear. n <= 0 returns
// an empty list.
func (a *Analytics) TopCompanies(ctx context.Context, n int) ([]CompanyCount, error) {
	out := []CompanyCount{}
	if n <= 0 {
		return out, nil
	}

	groups, err := a.groups(ctx, queryir.Aggregate{
		GroupBy: "company",
		Sort:    queryir.SortCountDesc,
		Limit:   n,
	})
	if err != nil {
		return nil, fmt.Errorf("top companies: %w", err)
	}
	for _, g := range groups {
		out = append(out, CompanyCount{Company: g.Key, Missions: g.Count})
	}
	return out, nil
}

// MissionCount returns the number of missions flown by company, 0 when the
// company is unknown. Names match exactly.
func (a *Analytics) MissionCount(ctx context.Context, company string) (int, error) {
	d, err := a.CompanyDetails(ctx, company)
	if err != nil {
		return 0, err
	}
	return d.Missions, nil
}

// SuccessRate returns the fraction of company's missions that succeeded,
// rounded to two decimals. A company with no missions has rate 0.
func (a *Analytics) SuccessRate(ctx context.Context, company string) (float64, error) {
	d, err := a.CompanyDetails(ctx, company)
	if err != nil {
		return 0, err
	}
	return d.SuccessRate, nil
}

// CompanyDetails returns the mission count and success rate of company.
func (a *Analytics) CompanyDetails(ctx context.Context, company string) (CompanyDetail, error) {
	groups, err := a.groups(ctx, queryir.Aggregate{
		Filter: queryir.Equals{Field: "company", Value: ir.IRString(company)},
		Stat:   queryir.StatSuccessRate,
	})
	if err != nil {
		return CompanyDetail{}, fmt.Errorf("company %q: %w", company, err)
	}

	d := CompanyDetail{Company: company}
	if len(groups) == 1 {
		d.Missions = groups[0].Count
		if groups[0].Value.Valid {
			d.SuccessRate = RoundTo2(groups[0].Value.Number)
		}
	}
	return d, nil
}

// MissionsInRange returns the names of missions launched between start and
// end inclusive, in dataset order. Dates are YYYY-MM-DD. A reversed range
// is empty; an unparseable date is an error.
func (a *Analytics) MissionsInRange(ctx context.Context, start, end string) ([]string, error) {
	lo, err := ir.ParseIRDate(start)
	if err != nil {
		return nil, fmt.Errorf("range start: %w", err)
	}
	hi, err := ir.ParseIRDate(end)
	if err != nil {
		return nil, fmt.Errorf("range end: %w", err)
	}

	rs, err := a.backend.Execute(ctx, queryir.Select{
		Filter: queryir.Between{Field: "date", Low: lo, High: hi},
	})
	if err != nil {
		return nil, fmt.Errorf("missions in range: %w", err)
	}

	names := make([]string, len(rs.Rows))
	for i, r := range rs.Rows {
		names[i] = r.Mission
	}
	return names, nil
}

// StatusCounts returns the number of missions for every outcome, in the
// order of mission.Outcomes. Outcomes that never occur count 0.
func (a *Analytics) StatusCounts(ctx context.Context) ([]StatusCount, error) {
	groups, err := a.groups(ctx, queryir.Aggregate{GroupBy: "status"})
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}

	counts := make(map[string]int, len(groups))
	for _, g := range groups {
		counts[g.Key] = g.Count
	}

	out := make([]StatusCount, 0, len(mission.Outcomes()))
	for _, o := range mission.Outcomes() {
		out = append(out, StatusCount{Status: o, Missions: counts[string(o)]})
	}
	return out, nil
}

// MissionsInYear returns the number of missions launched in year.
func (a *Analytics) MissionsInYear(ctx context.Context, year int) (int, error) {
	return a.count(ctx, queryir.Equals{Field: "year", Value: ir.IRInt(year)})
}

// MostUsedRocket returns the rocket with the most missions. Ties go to the
// rocket that appears first.
func (a *Analytics) MostUsedRocket(ctx context.Context) (RocketUsage, error) {
	groups, err := a.groups(ctx, queryir.Aggregate{
		GroupBy: "rocket",
		Sort:    queryir.SortCountDesc,
		Limit:   1,
	})
	if err != nil {
		return RocketUsage{}, fmt.Errorf("most used rocket: %w", err)
	}
	if len(groups) == 0 {
		return RocketUsage{}, fmt.Errorf("most used rocket: %w", ErrEmptyDataset)
	}
	return RocketUsage{Rocket: groups[0].Key, Missions: groups[0].Count}, nil
}

// AverageMissionsPerYear returns the missions launched from start to end
// (inclusive) divided by the number of years in the range, rounded to two
// decimals. Years without launches count toward the divisor. A reversed
// range returns 0.
func (a *Analytics) AverageMissionsPerYear(ctx context.Context, start, end int) (float64, error) {
	if start > end {
		return 0, nil
	}

	n, err := a.count(ctx, queryir.Between{
		Field: "year",
		Low:   ir.IRInt(start),
		High:  ir.IRInt(end),
	})
	if err != nil {
		return 0, fmt.Errorf("average missions per year: %w", err)
	}
	return RoundTo2(float64(n) / float64(end-start+1)), nil
}

// MissionsPerYear returns one entry per year from the first to the last
// launch year, including years without launches. Empty for an empty dataset.
func (a *Analytics) MissionsPerYear(ctx context.Context) ([]YearCount, error) {
	groups, err := a.groups(ctx, queryir.Aggregate{GroupBy: "year"})
	if err != nil {
		return nil, fmt.Errorf("missions per year: %w", err)
	}

	out := []YearCount{}
	if len(groups) == 0 {
		return out, nil
	}

	counts := make(map[int]int, len(groups))
	first, last := math.MaxInt, math.MinInt
	for _, g := range groups {
		year, err := strconv.Atoi(g.Key)
		if err != nil {
			return nil, fmt.Errorf("missions per year: group %q: %w", g.Key, err)
		}
		counts[year] = g.Count
		first = min(first, year)
		last = max(last, year)
	}

	for y := first; y <= last; y++ {
		out = append(out, YearCount{Year: y, Missions: counts[y]})
	}
	return out, nil
}

func (a *Analytics) groups(ctx context.Context, agg queryir.Aggregate) ([]engine.Group, error) {
	rs, err := a.backend.Execute(ctx, agg)
	if err != nil {
		return nil, err
	}
	return rs.Groups, nil
}

// count returns the number of missions matching p.
func (a *Analytics) count(ctx context.Context, p queryir.Predicate) (int, error) {
	groups, err := a.groups(ctx, queryir.Aggregate{Filter: p})
	if err != nil {
		return 0, err
	}
	if len(groups) == 0 {
		return 0, nil
	}
	return groups[0].Count, nil
}

// RoundTo2 rounds to 2 decimal places, halves away from zero.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
