package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/AScotM/inodestat/internal/scan"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2

	// duplicateSetsShown bounds the per-set detail in the table report.
	duplicateSetsShown = 10
)

// Export is the structured report written by --export or -o json.
type Export struct {
	Root           string               `json:"root"`
	ScannedAt      time.Time            `json:"scanned_at"`
	Interrupted    bool                 `json:"interrupted"`
	DeepScan       bool                 `json:"deep_scan"`
	TotalInodes    int64                `json:"total_inodes"`
	TotalSize      int64                `json:"total_size"`
	TotalSizeHuman string               `json:"total_size_human"`
	ElapsedSeconds float64              `json:"elapsed_seconds"`
	Stats          *scan.AggregateStats `json:"stats"`
	LargestFiles   []scan.Entry         `json:"largest_files"`
	OldestFiles    []scan.Entry         `json:"oldest_files"`
	NewestFiles    []scan.Entry         `json:"newest_files"`
	TopDirectories []scan.DirectoryStat `json:"top_directories,omitempty"`
	Duplicates     []scan.DuplicateSet  `json:"duplicates,omitempty"`
}

// BuildExport maps a scan result to its export form.
func BuildExport(res *scan.Result) *Export {
	return &Export{
		Root:           res.Root,
		ScannedAt:      res.ScannedAt,
		Interrupted:    res.Interrupted,
		DeepScan:       res.DeepScan,
		TotalInodes:    res.Stats.TotalInodes(),
		TotalSize:      res.TotalSize,
		TotalSizeHuman: humanize.IBytes(uint64(res.TotalSize)),
		ElapsedSeconds: res.Elapsed.Seconds(),
		Stats:          res.Stats,
		LargestFiles:   res.LargestFiles,
		OldestFiles:    res.OldestFiles,
		NewestFiles:    res.NewestFiles,
		TopDirectories: res.TopDirectories,
		Duplicates:     res.Duplicates,
	}
}

// PrintJSON writes v as indented JSON.
func PrintJSON(v any, writer io.Writer) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// WriteExport writes the export document to path.
func WriteExport(path string, exp *Export) error {
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing export %q: %w", path, err)
	}

	return nil
}

// PrintReport outputs the human-readable table report.
func PrintReport(res *scan.Result, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	if res.Interrupted {
		fmt.Fprintln(w, "*** PARTIAL RESULTS: scan was interrupted ***")
	}

	stats := res.Stats

	fmt.Fprintf(w, "\nScan of %s\n", res.Root)

	fmt.Fprintln(w, "\nSummary:\t\t")
	fmt.Fprintf(w, "  Files:\t%d\n", stats.TotalFiles)
	fmt.Fprintf(w, "  Directories:\t%d\n", stats.TotalDirs)
	fmt.Fprintf(w, "  Symlinks:\t%d (%d broken)\n", stats.TotalSymlinks, stats.BrokenSymlinks)

	if stats.TotalSockets > 0 {
		fmt.Fprintf(w, "  Sockets:\t%d\n", stats.TotalSockets)
	}

	if stats.TotalFifos > 0 {
		fmt.Fprintf(w, "  FIFOs:\t%d\n", stats.TotalFifos)
	}

	if stats.TotalDevices > 0 {
		fmt.Fprintf(w, "  Devices:\t%d\n", stats.TotalDevices)
	}

	fmt.Fprintf(w, "  Empty files:\t%d\n", stats.EmptyFiles)
	fmt.Fprintf(w, "  Empty dirs:\t%d\n", stats.EmptyDirs)

	if stats.PermissionDenied > 0 {
		fmt.Fprintf(w, "  Permission denied:\t%d\n", stats.PermissionDenied)
	}

	fmt.Fprintf(w, "  Total size:\t%s (%d bytes)\n",
		humanize.IBytes(uint64(res.TotalSize)), res.TotalSize)

	printDistribution(w, "Size distribution:", scan.SizeBuckets, stats.SizeDist, stats.TotalFiles)
	printDistribution(w, "Age distribution:", scan.AgeBuckets, stats.AgeDist, stats.TotalFiles)

	printTopCounts(w, "Top extensions:", stats.Extensions, res.SampleSize)
	printTopCounts(w, "Owners:", stats.Owners, res.SampleSize)

	printEntries(w, "Largest files:", res.LargestFiles, func(e scan.Entry) string {
		return humanize.IBytes(uint64(e.Size))
	})
	printEntries(w, "Oldest files:", res.OldestFiles, func(e scan.Entry) string {
		return e.ModTime.Format("2006-01-02") + " (" + humanize.Time(e.ModTime) + ")"
	})
	printEntries(w, "Newest files:", res.NewestFiles, func(e scan.Entry) string {
		return e.ModTime.Format("2006-01-02 15:04") + " (" + humanize.Time(e.ModTime) + ")"
	})

	if len(res.TopDirectories) > 0 {
		fmt.Fprintln(w, "\nTop directories:\t\t")

		for i, d := range res.TopDirectories {
			fmt.Fprintf(w, "  %d) %s\t%s in %d files (avg %s)\n",
				i+1, d.Path, humanize.IBytes(uint64(d.TotalSize)),
				d.FileCount, humanize.IBytes(uint64(d.AvgSize)))
		}
	}

	printDuplicates(w, res.Duplicates)

	fmt.Fprintf(w, "\nElapsed:\t%v\n", res.Elapsed)

	return w.Flush()
}

// PrintSnapshot renders a loaded checkpoint: counters and
// distributions only, since a snapshot carries no top lists.
func PrintSnapshot(snap *scan.Snapshot, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintf(w, "Checkpoint saved %s\n", snap.SavedAt.Format(time.RFC3339))

	if snap.Interrupted {
		fmt.Fprintln(w, "*** PARTIAL RESULTS: scan was interrupted ***")
	}

	stats := snap.Stats

	fmt.Fprintln(w, "\nSummary:\t\t")
	fmt.Fprintf(w, "  Files:\t%d\n", stats.TotalFiles)
	fmt.Fprintf(w, "  Directories:\t%d\n", stats.TotalDirs)
	fmt.Fprintf(w, "  Symlinks:\t%d (%d broken)\n", stats.TotalSymlinks, stats.BrokenSymlinks)
	fmt.Fprintf(w, "  Empty files:\t%d\n", stats.EmptyFiles)
	fmt.Fprintf(w, "  Empty dirs:\t%d\n", stats.EmptyDirs)
	fmt.Fprintf(w, "  Permission denied:\t%d\n", stats.PermissionDenied)
	fmt.Fprintf(w, "  Total size:\t%s (%d bytes)\n",
		humanize.IBytes(uint64(snap.TotalSize)), snap.TotalSize)

	printDistribution(w, "Size distribution:", scan.SizeBuckets, stats.SizeDist, stats.TotalFiles)
	printDistribution(w, "Age distribution:", scan.AgeBuckets, stats.AgeDist, stats.TotalFiles)

	fmt.Fprintf(w, "\nProcessed paths recorded:\t%d\n", len(snap.ProcessedPaths))

	return w.Flush()
}

func printDistribution(w io.Writer, title string, order []string, dist map[string]int64, total int64) {
	fmt.Fprintf(w, "\n%s\t\t\n", title)

	for _, bucket := range order {
		count := dist[bucket]

		pct := 0.0
		if total > 0 {
			pct = 100.0 * float64(count) / float64(total)
		}

		fmt.Fprintf(w, "  %s:\t%d (%.1f%%)\n", bucket, count, pct)
	}
}

func printTopCounts(w io.Writer, title string, counts map[string]int64, limit int) {
	if len(counts) == 0 {
		return
	}

	type kv struct {
		key   string
		count int64
	}

	list := make([]kv, 0, len(counts))
	for k, v := range counts {
		list = append(list, kv{key: k, count: v})
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}

		return list[i].key < list[j].key
	})

	if len(list) > limit {
		list = list[:limit]
	}

	fmt.Fprintf(w, "\n%s\t\t\n", title)

	for i, item := range list {
		key := item.key
		if key == "" {
			key = "(none)"
		}

		fmt.Fprintf(w, "  %d) %s:\t%d files\n", i+1, key, item.count)
	}
}

func printEntries(w io.Writer, title string, entries []scan.Entry, detail func(scan.Entry) string) {
	if len(entries) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s\t\t\n", title)

	for i, e := range entries {
		fmt.Fprintf(w, "  %d) %s\t%s\t%s %s\n", i+1, e.Path, detail(e), e.Owner, e.Perms)
	}
}

func printDuplicates(w io.Writer, sets []scan.DuplicateSet) {
	if len(sets) == 0 {
		return
	}

	var files int64
	var wasted int64

	for _, s := range sets {
		files += int64(s.Count)
		wasted += s.WastedSpace
	}

	fmt.Fprintln(w, "\nDuplicates:\t\t")
	fmt.Fprintf(w, "  Groups:\t%d\n", len(sets))
	fmt.Fprintf(w, "  Files involved:\t%d\n", files)
	fmt.Fprintf(w, "  Wasted space:\t%s\n", humanize.IBytes(uint64(wasted)))

	shown := sets
	if len(shown) > duplicateSetsShown {
		shown = shown[:duplicateSetsShown]
	}

	for i, s := range shown {
		fmt.Fprintf(w, "  %d) %d x %s\twasting %s\n",
			i+1, s.Count, humanize.IBytes(uint64(s.Size)), humanize.IBytes(uint64(s.WastedSpace)))

		for _, p := range s.Paths {
			fmt.Fprintf(w, "     - %s\n", p)
		}
	}
}
