package feeder

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Record represents a single row of data with named fields. Workload
// factories consume records to seed worker sessions, e.g. with fixed round
// and player identifiers.
type Record map[string]string

// Feeder provides per-session data from a dataset with deterministic
// round-robin selection; when the dataset is exhausted it cycles back to the
// first record. Implementations must be safe for concurrent use.
type Feeder interface {
	// Next returns the next record in round-robin order.
	Next(ctx context.Context) (Record, error)

	// Close releases any resources held by the feeder.
	Close() error

	// Len returns the total number of records in the dataset.
	Len() int
}

// Open loads a data file, selecting the format from the file extension.
func Open(path string) (Feeder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return NewCSVFeeder(path)
	case ".json":
		return NewJSONFeeder(path)
	default:
		return nil, fmt.Errorf("unsupported data file %q: want .csv or .json", path)
	}
}
