package scan

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const (
	// CheckpointVersion gates checkpoint decoding; loading a blob with
	// any other version fails rather than silently misbehaving.
	CheckpointVersion = 1

	// MaxCheckpointPaths bounds the processed-path list in a snapshot.
	MaxCheckpointPaths = 10000
)

// Snapshot is the durable scan-state bundle. It is this tool's own
// format, not a public wire format.
type Snapshot struct {
	FormatVersion  int             `json:"format_version"`
	SavedAt        time.Time       `json:"saved_at"`
	Interrupted    bool            `json:"interrupted"`
	TotalSize      int64           `json:"total_size"`
	ProcessedPaths []string        `json:"processed_paths"`
	Stats          *AggregateStats `json:"stats"`
}

// NewSnapshot bundles the current scan state, truncating the path list
// to the checkpoint bound.
func NewSnapshot(stats *AggregateStats, totalSize int64, paths []string, interrupted bool) *Snapshot {
	if len(paths) > MaxCheckpointPaths {
		paths = paths[:MaxCheckpointPaths]
	}

	return &Snapshot{
		FormatVersion:  CheckpointVersion,
		SavedAt:        time.Now(),
		Interrupted:    interrupted,
		TotalSize:      totalSize,
		ProcessedPaths: paths,
		Stats:          stats,
	}
}

// SaveCheckpoint writes the snapshot to path. Failures are reported to
// the caller and do not invalidate already-computed scan results.
func SaveCheckpoint(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding checkpoint: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing checkpoint %q: %w", path, err)
	}

	return nil
}

// LoadCheckpoint reads and validates a snapshot. Any failure aborts
// the requested operation; no scan should run on a bad checkpoint.
func LoadCheckpoint(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading checkpoint %q: %w", path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding checkpoint %q: %w", path, err)
	}

	if snap.FormatVersion != CheckpointVersion {
		return nil, fmt.Errorf("checkpoint %q has unsupported format version %d (want %d)",
			path, snap.FormatVersion, CheckpointVersion)
	}

	if snap.Stats == nil {
		return nil, fmt.Errorf("checkpoint %q has no aggregate stats", path)
	}

	return &snap, nil
}
