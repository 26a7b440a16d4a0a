package scan

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/AScotM/inodestat/internal/logger"
)

const (
	// DefaultProgressInterval is the default cadence for progress
	// updates.
	DefaultProgressInterval = 500 * time.Millisecond

	// deepTrackerCapacity is the top-k working buffer during a deep
	// scan; quick scans use twice the sample size.
	deepTrackerCapacity = 1000
)

// Result is everything one scan produced.
type Result struct {
	Root       string
	ScannedAt  time.Time
	Elapsed    time.Duration
	SampleSize int
	DeepScan   bool

	Stats     *AggregateStats
	TotalSize int64

	LargestFiles []Entry
	OldestFiles  []Entry
	NewestFiles  []Entry

	// TopDirectories is populated by deep scans only.
	TopDirectories []DirectoryStat

	// Duplicates is populated when duplicate detection is enabled.
	Duplicates []DuplicateSet

	// ProcessedPaths holds the first MaxCheckpointPaths walked paths.
	ProcessedPaths []string

	// Interrupted marks a cooperative partial stop.
	Interrupted bool
}

// Run performs one scan and returns aggregated results. Per-item
// failures are absorbed into counters; only configuration-level
// failures return an error. Cancel ctx for a cooperative stop with
// partial results. Progress updates go to progressHook if provided.
func Run(ctx context.Context, opts Options, progressHook func(items, bytes int64)) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(filepath.Clean(opts.Path))
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	now := time.Now()
	classifier := NewClassifier(NewUserResolver(), now)
	stats := NewAggregateStats()

	capacity := 2 * opts.SampleSize
	if opts.DeepScan {
		capacity = deepTrackerCapacity
	}

	largest := NewTracker(capacity, LargerSize)
	oldest := NewTracker(capacity, OlderMtime)
	newest := NewTracker(capacity, NewerMtime)

	var records map[string]*InodeRecord
	if opts.DeepScan {
		records = make(map[string]*InodeRecord)
	}

	var ageCutoff time.Time
	if opts.DeepScan && opts.AgeDays > 0 {
		ageCutoff = now.AddDate(0, 0, -opts.AgeDays)
	}

	// Live counters for the progress reporter goroutine; everything
	// else is single-writer and unlocked.
	var itemCount, byteCount atomic.Int64

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, &itemCount, &byteCount, progressHook, DefaultProgressInterval)

	var (
		totalSize int64
		processed []string
	)

	walker := &Walker{
		Root:     root,
		Excludes: opts.Excludes,
		MaxDepth: opts.MaxDepth,
		Follow:   opts.FollowSymlinks,
		OnDenied: func(string, error) {
			stats.PermissionDenied++
		},
	}

	start := time.Now()

	interrupted := walker.Walk(ctx, func(it Item) {
		cls := classifier.Classify(it.Path, it.Info, it.IsSymlink, it.Entries)

		stats.Add(cls)
		itemCount.Add(1)

		if len(processed) < MaxCheckpointPaths {
			processed = append(processed, it.Path)
		}

		if cls.Kind != KindFile {
			return
		}

		totalSize += cls.Size
		byteCount.Add(cls.Size)

		// The age filter drops old files from retained tracking only;
		// they stay counted above.
		if !ageCutoff.IsZero() && cls.ModTime.Before(ageCutoff) {
			return
		}

		entry := Entry{
			Path:    it.Path,
			Size:    cls.Size,
			ModTime: cls.ModTime,
			Owner:   cls.Owner,
			Group:   cls.Group,
			Perms:   cls.Perms,
		}

		largest.Offer(entry)
		oldest.Offer(entry)
		newest.Offer(entry)

		if records != nil {
			records[it.Path] = &InodeRecord{
				Path:    it.Path,
				Size:    cls.Size,
				ModTime: cls.ModTime,
				Owner:   cls.Owner,
				Group:   cls.Group,
				UID:     cls.UID,
				GID:     cls.GID,
				Perms:   cls.Perms,
				Ext:     cls.Ext,
			}
		}
	})

	res := &Result{
		Root:           root,
		ScannedAt:      now,
		SampleSize:     opts.SampleSize,
		DeepScan:       opts.DeepScan,
		Stats:          stats,
		TotalSize:      totalSize,
		LargestFiles:   largest.Finalize(opts.SampleSize),
		OldestFiles:    oldest.Finalize(opts.SampleSize),
		NewestFiles:    newest.Finalize(opts.SampleSize),
		ProcessedPaths: processed,
		Interrupted:    interrupted,
	}

	if opts.DeepScan {
		res.TopDirectories = TopDirectories(records, opts.SampleSize)
	}

	if opts.FindDuplicates && !interrupted {
		detector := &Detector{
			Root:     root,
			Excludes: opts.Excludes,
			Follow:   opts.FollowSymlinks,
			Workers:  opts.Workers,
		}

		sets, err := detector.Find(ctx)
		if err != nil {
			logger.Get().Warn().Err(err).Msg("duplicate detection failed")
		} else {
			res.Duplicates = sets
		}

		if ctx.Err() != nil {
			res.Interrupted = true
		}
	}

	res.Elapsed = time.Since(start)

	logger.Get().Debug().
		Int64("inodes", stats.TotalInodes()).
		Int64("bytes", totalSize).
		Dur("elapsed", res.Elapsed).
		Bool("interrupted", res.Interrupted).
		Msg("scan finished")

	return res, nil
}

// startProgressReporter invokes hook(items, bytes) on each tick until
// ctx is done.
func startProgressReporter(ctx context.Context, items, bytes *atomic.Int64, hook func(int64, int64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(items.Load(), bytes.Load())
			case <-ctx.Done():
				return
			}
		}
	}()
}
