// Package testutil holds fixtures and deterministic helpers shared by tests
// across packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/launchdeck/internal/ir"
	"github.com/roach88/launchdeck/internal/loader"
	"github.com/roach88/launchdeck/internal/mission"
)

// FixtureCSV is a 14-launch slice of the space missions dataset covering
// every outcome, missing prices, quoted locations and several years.
//
// Known numbers: SpaceX 3, CASC 3, RVSN USSR 2, US Navy 2, AMBA 2,
// Arianespace 1, Rocket Lab 1. Outcomes: Success 8, Failure 4, Partial
// Failure 1, Prelaunch Failure 1. Seven rows carry a price, summing to 462.4.
const FixtureCSV = `Company,Location,Date,Time,Rocket,Mission,RocketStatus,Price,MissionStatus
RVSN USSR,"Site 1/5, Baikonur Cosmodrome, Kazakhstan",1957-10-04,19:28:00,Sputnik 8K71PS,Sputnik-1,Retired,,Success
RVSN USSR,"Site 1/5, Baikonur Cosmodrome, Kazakhstan",1957-11-03,02:30:00,Sputnik 8K71PS,Sputnik-2,Retired,,Success
US Navy,"LC-18A, Cape Canaveral SFS, Florida, USA",1957-12-06,16:44:00,Vanguard,Vanguard TV3,Retired,,Failure
AMBA,"LC-26A, Cape Canaveral SFS, Florida, USA",1958-02-01,03:48:00,Juno I,Explorer 1,Retired,,Success
US Navy,"LC-18A, Cape Canaveral SFS, Florida, USA",1958-02-05,07:33:00,Vanguard,Vanguard TV3BU,Retired,,Failure
AMBA,"LC-5, Cape Canaveral SFS, Florida, USA",1958-03-05,18:27:00,Juno I,Explorer 2,Retired,,Failure
SpaceX,"SLC-40, Cape Canaveral SFS, Florida, USA",2016-09-01,13:07:00,Falcon 9 Block 3,Amos-6,Retired,62.0,Prelaunch Failure
Arianespace,"ELA-3, Guiana Space Centre, French Guiana, France",2018-01-25,22:20:00,Ariane 5 ECA,SES-14 & Al Yah 3,Retired,200.0,Partial Failure
CASC,"LC-9, Taiyuan Satellite Launch Center, China",2020-01-15,02:53:00,Long March 2D,Jilin-1 Kuanfu 01,Active,29.75,Success
SpaceX,"SLC-40, Cape Canaveral SFS, Florida, USA",2020-01-29,14:07:00,Falcon 9 Block 5,Starlink V1 L3,Active,67.0,Success
CASC,"LC-3, Xichang Satellite Launch Center, China",2020-03-09,11:55:00,Long March 3B/E,Beidou-3 G2,Active,29.15,Success
Rocket Lab,"Rocket Lab LC-1A, Mahia Peninsula, New Zealand",2020-07-04,21:19:00,Electron/Curie,Pics Or It Didn't Happen,Active,7.5,Failure
SpaceX,"SLC-40, Cape Canaveral SFS, Florida, USA",2020-07-20,21:30:00,Falcon 9 Block 5,ANASIS-II,Active,67.0,Success
CASC,"LC-101, Wenchang Satellite Launch Center, China",2020-07-23,04:41:00,Long March 5,Tianwen-1,Active,,Success
`

// FixtureLen is the number of records in FixtureCSV.
const FixtureLen = 14

// WriteFile writes content to name inside a fresh temp dir and returns
// the full path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// WriteFixture writes FixtureCSV to a temp file and returns its path.
func WriteFixture(t testing.TB) string {
	t.Helper()
	return WriteFile(t, "space_missions.csv", FixtureCSV)
}

// Dataset parses FixtureCSV.
func Dataset(t testing.TB) *mission.Dataset {
	t.Helper()
	ds, err := loader.Parse([]byte(FixtureCSV), "fixture.csv")
	require.NoError(t, err)
	require.Equal(t, FixtureLen, ds.Len())
	return ds
}

// Records builds a dataset straight from records, numbering Seq from 1.
func Records(records ...mission.Record) *mission.Dataset {
	for i := range records {
		records[i].Seq = i + 1
	}
	return mission.NewDataset(records, "records", "")
}

// Record returns a minimal valid record for company with the given status
// name. It panics on an unknown status.
func Record(company, status string) mission.Record {
	o, err := mission.ParseOutcome(status)
	if err != nil {
		panic(err)
	}
	return mission.Record{
		Company:  company,
		Location: "Test Site, Nowhere",
		Date:     ir.IRDate{Year: 2000, Month: time.January, Day: 1},
		Rocket:   "Test Rocket",
		Mission:  company + " " + status,
		Status:   o,
	}
}
