package mission

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/launchdeck/internal/ir"
)

func TestParseOutcome(t *testing.T) {
	testCases := []struct {
		input    string
		expected Outcome
	}{
		{"Success", OutcomeSuccess},
		{"success", OutcomeSuccess},
		{"FAILURE", OutcomeFailure},
		{"Partial Failure", OutcomePartialFailure},
		{"partial_failure", OutcomePartialFailure},
		{"Prelaunch Failure", OutcomePrelaunchFailure},
		{"Pre-launch Failure", OutcomePrelaunchFailure},
		{" prelaunchfailure ", OutcomePrelaunchFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			o, err := ParseOutcome(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, o)
		})
	}

	_, err := ParseOutcome("Exploded")
	assert.Error(t, err)
	_, err = ParseOutcome("")
	assert.Error(t, err)
}

func TestOutcomesOrder(t *testing.T) {
	assert.Equal(t, []Outcome{
		OutcomeSuccess, OutcomeFailure, OutcomePartialFailure, OutcomePrelaunchFailure,
	}, Outcomes())
}

func TestRecordDerivedFields(t *testing.T) {
	r := Record{
		Location: "LC-39A, Kennedy Space Center, Florida, USA",
		Date:     ir.IRDate{Year: 2020, Month: 5, Day: 30},
		Status:   OutcomeSuccess,
	}

	assert.Equal(t, "USA", r.Country())
	assert.Equal(t, 2020, r.Year())
	assert.True(t, r.Succeeded())

	r.Location = "Kiritimati Launch Area"
	assert.Equal(t, "Kiritimati Launch Area", r.Country())
}

func TestPrice(t *testing.T) {
	missing := Price{}
	assert.Equal(t, ir.IRNull{}, missing.Value())
	assert.Equal(t, "", missing.String())

	p := Price{Amount: 29750, Valid: true}
	assert.Equal(t, ir.IRDecimal(29750), p.Value())
	assert.Equal(t, "29.75", p.String())
}

func TestRecordJSON(t *testing.T) {
	r := Record{
		Seq:      9,
		Company:  "CASC",
		Location: "LC-9, Taiyuan Satellite Launch Center, China",
		Date:     ir.IRDate{Year: 2020, Month: 1, Day: 15},
		Rocket:   "Long March 2D",
		Mission:  "Jilin-1 Kuanfu 01",
		Price:    Price{Amount: 29750, Valid: true},
		Status:   OutcomeSuccess,
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2020-01-15", decoded["date"])
	assert.Equal(t, 29.75, decoded["price"])
	assert.Equal(t, "China", decoded["country"])
	assert.Equal(t, float64(2020), decoded["year"])
	assert.Equal(t, "Success", decoded["status"])
	assert.NotContains(t, decoded, "time", "empty optional strings are omitted")

	r.Price = Price{}
	data, err = json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"price":null`)
}
