package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/launchdeck/internal/ir"
	"github.com/roach88/launchdeck/internal/mission"
)

func TestParamFromValue(t *testing.T) {
	date, err := ir.ParseIRDate("2020-08-07")
	require.NoError(t, err)

	testCases := []struct {
		name  string
		value ir.IRValue
		want  any
	}{
		{"string", ir.IRString("SpaceX"), "SpaceX"},
		{"int", ir.IRInt(1957), int64(1957)},
		{"decimal in thousandths", ir.IRDecimal(50000), int64(50000)},
		{"date as text", date, "2020-08-07"},
		{"bool", ir.IRBool(true), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParamFromValue(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParamFromValue_Rejects(t *testing.T) {
	for _, v := range []ir.IRValue{nil, ir.IRNull{}, ir.IRArray{}, ir.IRObject{}} {
		_, err := ParamFromValue(v)
		assert.Error(t, err, "%T", v)
	}
}

func TestValueFromColumn(t *testing.T) {
	date, err := ir.ParseIRDate("1957-10-04")
	require.NoError(t, err)

	testCases := []struct {
		name string
		kind mission.Kind
		col  any
		want ir.IRValue
	}{
		{"null", mission.KindDecimal, nil, ir.IRNull{}},
		{"string", mission.KindString, "RVSN USSR", ir.IRString("RVSN USSR")},
		{"bytes", mission.KindString, []byte("CASC"), ir.IRString("CASC")},
		{"outcome", mission.KindOutcome, "Success", ir.IRString("Success")},
		{"date", mission.KindDate, "1957-10-04", date},
		{"int", mission.KindInt, int64(1957), ir.IRInt(1957)},
		{"decimal", mission.KindDecimal, int64(62500), ir.IRDecimal(62500)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValueFromColumn(tc.kind, tc.col)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValueFromColumn_Mismatch(t *testing.T) {
	_, err := ValueFromColumn(mission.KindInt, "1957")
	assert.Error(t, err)

	_, err = ValueFromColumn(mission.KindDate, "not a date")
	assert.Error(t, err)
}
