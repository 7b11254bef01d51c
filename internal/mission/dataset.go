package mission

import (
	"slices"

	"github.com/roach88/launchdeck/internal/ir"
)

// Dataset is the ordered, read-only collection of records loaded at
// startup. Nothing mutates it after construction, so one *Dataset can be
// shared by every query without locking.
type Dataset struct {
	records     []Record
	source      string
	fingerprint string
}

// NewDataset builds a Dataset from records. The slice is copied.
func NewDataset(records []Record, source, fingerprint string) *Dataset {
	return &Dataset{
		records:     slices.Clone(records),
		source:      source,
		fingerprint: fingerprint,
	}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// At returns a copy of the i-th record.
func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// Records returns a copy of all records in source order.
func (d *Dataset) Records() []Record {
	return slices.Clone(d.records)
}

// Source names where the dataset came from (usually a file path).
func (d *Dataset) Source() string {
	return d.source
}

// Fingerprint is the content hash of the raw source bytes.
func (d *Dataset) Fingerprint() string {
	return d.fingerprint
}

// DateRange returns the earliest and latest launch dates.
// ok is false for an empty dataset.
func (d *Dataset) DateRange() (first, last ir.IRDate, ok bool) {
	if len(d.records) == 0 {
		return ir.IRDate{}, ir.IRDate{}, false
	}
	first, last = d.records[0].Date, d.records[0].Date
	for i := 1; i < len(d.records); i++ {
		date := d.records[i].Date
		if date.Compare(first) < 0 {
			first = date
		}
		if date.Compare(last) > 0 {
			last = date
		}
	}
	return first, last, true
}
