package cli

import (
	"fmt"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/AScotM/inodestat/internal/config"
	"github.com/AScotM/inodestat/internal/scan"
)

// NewCommand builds the root command for the given version string.
func NewCommand(version string) *cobra.Command {
	var opts scan.Options

	allowedOutputs := []string{"table", "json"}

	cmd := &cobra.Command{
		Use:   "inodestat [flags] [path]",
		Short: "Aggregate inode statistics for a filesystem subtree",
		Long: heredoc.Doc(`
			inodestat walks a directory tree once and reports a census of the
			inodes it finds: counts by type, size/age/permission/owner
			distributions, the largest, oldest and newest files, per-directory
			rollups and content-duplicate groups.

			Quick mode (the default) keeps only counters and bounded top lists.
			--deep retains per-file metadata for directory rollups and enables
			the age filter. --duplicates adds an independent two-phase
			size-and-hash pass over the same tree.

			Per-item errors never abort a scan; they are counted and reported
			in aggregate. Interrupting a scan (Ctrl-C) yields a partial report,
			flagged as such.
		`),
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if len(args) > 0 {
				opts.Path = args[0]
			}

			if !slices.Contains(allowedOutputs, opts.Output) {
				return fmt.Errorf("invalid output format %q: must be one of %v", opts.Output, allowedOutputs)
			}

			// Config file supplies defaults for flags left unset.
			if !cmd.Flags().Changed("sample") {
				opts.SampleSize = cfg.Scan.SampleSize
			}

			if !cmd.Flags().Changed("exclude") && len(cfg.Scan.Excludes) > 0 {
				opts.Excludes = cfg.Scan.Excludes
			}

			if !cmd.Flags().Changed("workers") {
				opts.Workers = cfg.Scan.Workers
			}

			return run(opts, cfg.Logging.Level)
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false

	flags.IntVarP(&opts.SampleSize, "sample", "n", scan.DefaultSampleSize, "Entries per top list")
	flags.BoolVar(&opts.DeepScan, "deep", false, "Retain per-file metadata for rollups")
	flags.BoolVar(&opts.FindDuplicates, "duplicates", false, "Detect content duplicates")
	flags.BoolVar(&opts.FollowSymlinks, "follow-symlinks", false, "Traverse symlinked directories and stat link targets")
	flags.StringSliceVarP(&opts.Excludes, "exclude", "e", nil, "Glob patterns to exclude (matched against path and basename)")
	flags.IntVarP(&opts.MaxDepth, "max-depth", "d", 0, "Traversal depth ceiling (0=unlimited)")
	flags.IntVar(&opts.AgeDays, "age-days", 0, "Drop files older than this from retained tracking (deep scan only)")
	flags.IntVar(&opts.Workers, "workers", 0, "Duplicate-hashing worker count (0=NumCPU)")
	flags.StringVar(&opts.SaveState, "save-state", "", "Write a checkpoint of the scan state to this path")
	flags.StringVar(&opts.LoadState, "load-state", "", "Report from a checkpoint instead of scanning")
	flags.StringVar(&opts.ExportPath, "export", "", "Write the aggregate report as JSON to this path")
	flags.StringVarP(&opts.Output, "output", "o", "table", "Output format: table or json")
	flags.BoolVar(&opts.Debug, "debug", false, "Enable debug logging")

	cmd.SetVersionTemplate("{{.Version}}\n")

	return cmd
}
