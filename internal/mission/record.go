package mission

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/launchdeck/internal/ir"
)

// Outcome is the result of a launch.
type Outcome string

const (
	OutcomeSuccess          Outcome = "Success"
	OutcomeFailure          Outcome = "Failure"
	OutcomePartialFailure   Outcome = "Partial Failure"
	OutcomePrelaunchFailure Outcome = "Prelaunch Failure"
)

// Outcomes lists every outcome in reporting order.
func Outcomes() []Outcome {
	return []Outcome{
		OutcomeSuccess,
		OutcomeFailure,
		OutcomePartialFailure,
		OutcomePrelaunchFailure,
	}
}

// ParseOutcome resolves an outcome name ignoring case, spaces, hyphens and
// underscores, so "prelaunch_failure" and "Pre-launch Failure" both match.
func ParseOutcome(s string) (Outcome, error) {
	key := normalizeKey(s)
	for _, o := range Outcomes() {
		if normalizeKey(string(o)) == key {
			return o, nil
		}
	}
	return "", fmt.Errorf("unknown mission status %q", s)
}

// Price is an optional launch cost in millions of USD.
type Price struct {
	Amount ir.IRDecimal
	Valid  bool
}

// MarshalJSON renders a missing price as null.
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return p.Amount.MarshalJSON()
}

// Value returns the price as an IR value, IRNull when missing.
func (p Price) Value() ir.IRValue {
	if !p.Valid {
		return ir.IRNull{}
	}
	return p.Amount
}

// String renders the price, or the empty string when missing.
func (p Price) String() string {
	if !p.Valid {
		return ""
	}
	return p.Amount.String()
}

// Record is one launch. Records are values; the Dataset hands out copies.
type Record struct {
	Seq          int       `json:"seq"` // 1-based position in the source
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Date         ir.IRDate `json:"date"`
	Time         string    `json:"time,omitempty"`
	Rocket       string    `json:"rocket"`
	Mission      string    `json:"mission"`
	RocketStatus string    `json:"rocket_status,omitempty"`
	Price        Price     `json:"price"`
	Status       Outcome   `json:"status"`
}

// Year returns the launch year.
func (r Record) Year() int {
	return r.Date.Year
}

// Country returns the last comma-separated segment of the location,
// which the source data uses for the country.
func (r Record) Country() string {
	idx := strings.LastIndex(r.Location, ",")
	if idx < 0 {
		return strings.TrimSpace(r.Location)
	}
	return strings.TrimSpace(r.Location[idx+1:])
}

// Succeeded reports whether the launch was a full success.
func (r Record) Succeeded() bool {
	return r.Status == OutcomeSuccess
}

// MarshalJSON adds the derived country and year fields.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	return json.Marshal(struct {
		plain
		Country string `json:"country"`
		Year    int    `json:"year"`
	}{plain(r), r.Country(), r.Year()})
}
