package queryir

import "fmt"

// Request is the flat form of a query used by command-line flags and test
// scenarios: conditions in ParseCondition syntax plus optional aggregate
// settings. Any aggregate setting turns the request into an Aggregate.
type Request struct {
	Where   []string `yaml:"where,omitempty"`
	GroupBy string   `yaml:"group_by,omitempty"`
	Stat    string   `yaml:"stat,omitempty"`
	Field   string   `yaml:"field,omitempty"`
	Sort    string   `yaml:"sort,omitempty"`
	Limit   int      `yaml:"limit,omitempty"`
}

// IsAggregate reports whether the request builds an Aggregate.
func (r Request) IsAggregate() bool {
	return r.GroupBy != "" || r.Stat != "" || r.Field != "" || r.Sort != ""
}

// Build parses the conditions and assembles the query. Statistic and sort
// names pass through unchecked; engine.Normalize rejects unknown ones.
func (r Request) Build() (Query, error) {
	if r.Limit < 0 {
		return nil, fmt.Errorf("limit must not be negative, got %d", r.Limit)
	}
	filter, err := ParseConditions(r.Where)
	if err != nil {
		return nil, err
	}
	if !r.IsAggregate() {
		return Select{Filter: filter, Limit: r.Limit}, nil
	}
	return Aggregate{
		Filter:  filter,
		GroupBy: r.GroupBy,
		Stat:    Stat(r.Stat),
		Field:   r.Field,
		Sort:    Sort(r.Sort),
		Limit:   r.Limit,
	}, nil
}
