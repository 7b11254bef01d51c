// Package harness runs query scenarios: YAML files listing queries against
// a dataset, with expectations on each result.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: space_race
//	description: "Launches of the first two years"
//	dataset: missions.csv        # relative to the scenario file
//	queries: queries.cue         # optional query document
//	backends: [memory, sqlite]   # default: both
//	steps:
//	  - name: spacex
//	    where: ["company=SpaceX"]
//	    expect: { total: 3 }
//	  - name: by_outcome
//	    group_by: status
//	    sort: count_desc
//	  - name: top_spenders       # runs the document query of that name
//	    query: top_spenders
//	  - name: bad_field
//	    where: ["planet=Mars"]
//	    expect: { error: invalid_field }
//	assertions:
//	  - type: row_seqs
//	    step: spacex
//	    seqs: [7, 10, 13]
//	  - type: group_order
//	    step: by_outcome
//	    keys: [Success, Failure, Prelaunch Failure, Partial Failure]
//
// A step either names a document query or spells one out with where,
// group_by, stat, field, sort and limit (see queryir.Request).
//
// # Assertion Types
//
//   - row_seqs: the step returned exactly these record positions, in order
//   - group_order: the step's group keys, in order
//   - group_value: one group's count and/or statistic
//   - same_hash: every listed step normalized to the same query
//
// # Backends
//
// Every step runs on each listed backend. The first backend's results are
// checked against expectations and snapshotted; the others must return
// identical results or the scenario fails.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/space_race.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
package harness
