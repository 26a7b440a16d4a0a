package scan

import (
	"fmt"
	"os"
	"runtime"
)

// DefaultSampleSize is the number of entries reported per top list.
const DefaultSampleSize = 20

// Options configures a scan and CLI behavior.
type Options struct {
	// Path is the root of the subtree to scan.
	Path string
	// SampleSize is k for the top-k and top-directory lists.
	SampleSize int
	// DeepScan retains per-file records for rollups and uses the
	// larger top-k working capacity.
	DeepScan bool
	// FindDuplicates enables the duplicate-detection pass.
	FindDuplicates bool
	// FollowSymlinks resolves symlinks and traverses link targets.
	FollowSymlinks bool
	// Excludes contains glob patterns matched against the full path
	// and the base name of every item.
	Excludes []string
	// MaxDepth is the traversal depth ceiling (0 = unlimited). Does
	// not apply to the duplicate-detection pass.
	MaxDepth int
	// AgeDays excludes regular files older than this many days from
	// retained tracking (deep scan only, 0 = disabled).
	AgeDays int
	// Workers sizes the duplicate-hashing pool.
	Workers int
	// SaveState is the checkpoint destination path, if any.
	SaveState string
	// LoadState is the checkpoint source path, if any.
	LoadState string
	// ExportPath writes the aggregate report as JSON, if set.
	ExportPath string
	// Output is the stdout format (table or json).
	Output string
	// Debug enables debug logging.
	Debug bool
}

// Validate normalizes the options and rejects invalid combinations.
func (o *Options) Validate() error {
	if o.Path == "" {
		o.Path = "."
	}

	if o.SampleSize <= 0 {
		o.SampleSize = DefaultSampleSize
	}

	if o.Workers < 1 {
		o.Workers = runtime.NumCPU()
	}

	if o.MaxDepth < 0 {
		return fmt.Errorf("max depth cannot be negative")
	}

	if o.AgeDays < 0 {
		return fmt.Errorf("age filter cannot be negative")
	}

	if o.LoadState == "" {
		info, err := os.Stat(o.Path)
		if err != nil {
			return fmt.Errorf("accessing path %q: %w", o.Path, err)
		}

		if !info.IsDir() {
			return fmt.Errorf("path %q is not a directory", o.Path)
		}
	}

	return nil
}
