package analytics

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/launchdeck/internal/queryir"
)

// Summary is every dashboard panel in one value.
type Summary struct {
	Missions        int             `json:"missions"`
	Companies       int             `json:"companies"`
	FirstYear       int             `json:"first_year,omitempty"`
	LastYear        int             `json:"last_year,omitempty"`
	AveragePerYear  float64         `json:"average_per_year"`
	Statuses        []StatusCount   `json:"statuses"`
	TopCompanies    []CompanyCount  `json:"top_companies"`
	TopSuccessRates []CompanyDetail `json:"top_success_rates"`
	MostUsedRocket  *RocketUsage    `json:"most_used_rocket,omitempty"`
	PerYear         []YearCount     `json:"per_year"`
}

// Summary computes the dashboard for the top n companies.
// An empty dataset yields zero counts and no rocket.
func (a *Analytics) Summary(ctx context.Context, n int) (*Summary, error) {
	s := &Summary{}

	companies, err := a.backend.Execute(ctx, queryir.Aggregate{GroupBy: "company"})
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	s.Companies = companies.Total
	for _, g := range companies.Groups {
		s.Missions += g.Count
	}

	if s.Statuses, err = a.StatusCounts(ctx); err != nil {
		return nil, err
	}
	if s.TopCompanies, err = a.TopCompanies(ctx, n); err != nil {
		return nil, err
	}

	s.TopSuccessRates = make([]CompanyDetail, 0, len(s.TopCompanies))
	for _, c := range s.TopCompanies {
		d, err := a.CompanyDetails(ctx, c.Company)
		if err != nil {
			return nil, err
		}
		s.TopSuccessRates = append(s.TopSuccessRates, d)
	}

	rocket, err := a.MostUsedRocket(ctx)
	switch {
	case errors.Is(err, ErrEmptyDataset):
	case err != nil:
		return nil, err
	default:
		s.MostUsedRocket = &rocket
	}

	if s.PerYear, err = a.MissionsPerYear(ctx); err != nil {
		return nil, err
	}
	if len(s.PerYear) > 0 {
		s.FirstYear = s.PerYear[0].Year
		s.LastYear = s.PerYear[len(s.PerYear)-1].Year
		s.AveragePerYear = RoundTo2(float64(s.Missions) / float64(len(s.PerYear)))
	}

	return s, nil
}
