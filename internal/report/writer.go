package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

func lockPath(path string) string {
	return path + ".lock"
}

// WriteSummary persists the summary as JSON at path. It holds an exclusive
// lock on a sibling ".lock" file for the duration of the write and swaps the
// artifact in with a rename, so a concurrent reader never sees a torn file.
func WriteSummary(path string, summary Summary) error {
	lock := flock.New(lockPath(path))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock summary: %w", err)
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp summary: %w", err)
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp summary: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace summary: %w", err)
	}
	return nil
}

// ReadSummary loads a previously written artifact. It takes the shared side
// of the lock WriteSummary holds exclusively, the same protocol a polling
// exporter uses.
func ReadSummary(path string) (Summary, error) {
	lock := flock.New(lockPath(path))
	if err := lock.RLock(); err != nil {
		return Summary{}, fmt.Errorf("lock summary: %w", err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("read summary: %w", err)
	}
	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return Summary{}, fmt.Errorf("decode summary: %w", err)
	}
	return summary, nil
}
