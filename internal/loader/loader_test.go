package loader_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/launchdeck/internal/ir"
	"github.com/roach88/launchdeck/internal/loader"
	"github.com/roach88/launchdeck/internal/mission"
	"github.com/roach88/launchdeck/internal/testutil"
)

const header = "Company,Location,Date,Time,Rocket,Mission,RocketStatus,Price,MissionStatus\n"

func TestLoadFileFixture(t *testing.T) {
	path := testutil.WriteFixture(t)

	ds, err := loader.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, testutil.FixtureLen, ds.Len())

	first := ds.At(0)
	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, "RVSN USSR", first.Company)
	assert.Equal(t, "Site 1/5, Baikonur Cosmodrome, Kazakhstan", first.Location)
	assert.Equal(t, "1957-10-04", first.Date.String())
	assert.Equal(t, "19:28:00", first.Time)
	assert.Equal(t, mission.OutcomeSuccess, first.Status)
	assert.False(t, first.Price.Valid)

	amos := ds.At(6)
	assert.Equal(t, "Amos-6", amos.Mission)
	assert.Equal(t, mission.OutcomePrelaunchFailure, amos.Status)
	assert.Equal(t, ir.IRDecimal(62000), amos.Price.Amount)
	assert.True(t, amos.Price.Valid)

	assert.Equal(t, path, ds.Source())
	assert.Equal(t, ir.DatasetFingerprint([]byte(testutil.FixtureCSV)), ds.Fingerprint())
}

func TestParseHeaderVariants(t *testing.T) {
	csv := "company , LOCATION,date,Rocket,mission,mission_status,cost\n" +
		"SpaceX,\"LC-39A, Kennedy Space Center, Florida, USA\",2020-05-30,Falcon 9 Block 5,Crew Dragon Demo-2,success,\"1,160.5\"\n"

	ds, err := loader.Parse([]byte(csv), "variants.csv")
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())

	r := ds.At(0)
	assert.Equal(t, "SpaceX", r.Company)
	assert.Equal(t, mission.OutcomeSuccess, r.Status)
	assert.Equal(t, ir.IRDecimal(1160500), r.Price.Amount)
	assert.Equal(t, "", r.Time, "optional column absent")
	assert.Equal(t, "", r.RocketStatus)
}

func TestParseStripsBOM(t *testing.T) {
	csv := "\uFEFF" + header + "CASC,\"LC-9, Taiyuan, China\",2020-01-15,,Long March 2D,Jilin-1,Active,29.75,Success\n"

	ds, err := loader.Parse([]byte(csv), "bom.csv")
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, "CASC", ds.At(0).Company)
}

func TestParseNormalizesText(t *testing.T) {
	decomposed := "Arianespace Franc\u0327aise"
	csv := header + decomposed + ",\"ELA-3, Kourou, France\",2018-01-25,,Ariane 5,Test,Retired,,Success\n"

	ds, err := loader.Parse([]byte(csv), "nfc.csv")
	require.NoError(t, err)
	assert.Equal(t, "Arianespace Fran\u00E7aise", ds.At(0).Company)
}

func TestParseHeaderOnlyIsEmptyDataset(t *testing.T) {
	ds, err := loader.Parse([]byte(header), "empty.csv")
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
}

func TestParseAcceptsDateWithTime(t *testing.T) {
	csv := header + "SpaceX,\"SLC-40, USA\",2020-08-07 05:12:00,,Falcon 9,Starlink,Active,,Success\n"

	ds, err := loader.Parse([]byte(csv), "datetime.csv")
	require.NoError(t, err)
	assert.Equal(t, "2020-08-07", ds.At(0).Date.String())
}

func TestParseErrors(t *testing.T) {
	row := func(cells ...string) string { return strings.Join(cells, ",") + "\n" }
	valid := []string{"SpaceX", "\"SLC-40, USA\"", "2020-01-29", "14:07", "Falcon 9", "Starlink", "Active", "67.0", "Success"}
	with := func(i int, v string) string {
		cells := append([]string(nil), valid...)
		cells[i] = v
		return row(cells...)
	}

	testCases := []struct {
		name   string
		input  string
		code   string
		line   int
		column string
	}{
		{"empty file", "", loader.CodeEmpty, 0, ""},
		{"missing required column", "Company,Location,Date,Rocket,Mission\n", loader.CodeMissingColumn, 1, "MissionStatus"},
		{"duplicate column", "Company,Agency,Location,Date,Rocket,Mission,MissionStatus\n", loader.CodeMalformedRow, 1, "Agency"},
		{"short row", header + "SpaceX,USA\n", loader.CodeMalformedRow, 2, ""},
		{"bare quote", header + with(0, "Spa\"ceX"), loader.CodeMalformedRow, 2, ""},
		{"bad date", header + with(2, "29/01/2020"), loader.CodeInvalidValue, 2, "Date"},
		{"impossible date", header + with(2, "2020-02-30"), loader.CodeInvalidValue, 2, "Date"},
		{"bad time", header + with(3, "25:99"), loader.CodeInvalidValue, 2, "Time"},
		{"bad price", header + with(7, "cheap"), loader.CodeInvalidValue, 2, "Price"},
		{"negative price", header + with(7, "-5"), loader.CodeInvalidValue, 2, "Price"},
		{"bad status", header + with(8, "Exploded"), loader.CodeInvalidValue, 2, "MissionStatus"},
		{"empty company", header + row(valid...) + with(0, ""), loader.CodeInvalidValue, 3, "Company"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loader.Parse([]byte(tc.input), "bad.csv")
			require.Error(t, err)
			assert.True(t, loader.IsDataLoadError(err))

			var dle *loader.DataLoadError
			require.True(t, errors.As(err, &dle))
			assert.Equal(t, tc.code, dle.Code)
			assert.Equal(t, "bad.csv", dle.Source)
			assert.Equal(t, tc.line, dle.Line)
			assert.Equal(t, tc.column, dle.Column)
		})
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := loader.LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Equal(t, loader.CodeNotFound, loader.Code(err))
}

func TestLoadFileDirectoryIsReadFailure(t *testing.T) {
	_, err := loader.LoadFile(t.TempDir())
	require.Error(t, err)
	assert.Equal(t, loader.CodeReadFailed, loader.Code(err))
}

func TestLoadReaderFailure(t *testing.T) {
	_, err := loader.Load(failingReader{}, "stdin")
	require.Error(t, err)
	assert.Equal(t, loader.CodeReadFailed, loader.Code(err))
	assert.ErrorIs(t, err, errBoom)
}

func TestDataLoadErrorMessage(t *testing.T) {
	err := &loader.DataLoadError{
		Code:    loader.CodeInvalidValue,
		Source:  "data.csv",
		Line:    7,
		Column:  "Date",
		Message: `invalid date "x"`,
	}
	assert.Equal(t, `data.csv:7: INVALID_VALUE: column "Date": invalid date "x"`, err.Error())

	wrapped := fmt.Errorf("startup: %w", err)
	assert.True(t, loader.IsDataLoadError(wrapped))
	assert.Equal(t, loader.CodeInvalidValue, loader.Code(wrapped))
	assert.Equal(t, "", loader.Code(errBoom))
}

var errBoom = errors.New("boom")

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errBoom }
