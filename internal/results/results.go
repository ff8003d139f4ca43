// Package results writes the small text files later pipeline stages read.
package results

import (
	"fmt"
	"os"
)

// Write replaces path with data. There is no locking or atomic rename; each
// stage owns its result files for the duration of a run.
func Write(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write result %s: %w", path, err)
	}
	return nil
}

// WriteFleetID stores the raw fleet identifier with no trailing newline.
func WriteFleetID(path, fleetID string) error {
	return Write(path, []byte(fleetID))
}
