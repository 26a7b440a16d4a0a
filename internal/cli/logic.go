package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/AScotM/inodestat/internal/logger"
	"github.com/AScotM/inodestat/internal/scan"
)

func run(opts scan.Options, logLevel string) error {
	logger.Init(logLevel, opts.Debug)

	if opts.LoadState != "" {
		return reportFromCheckpoint(opts)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	enableProgress := strings.ToLower(opts.Output) != "json" &&
		!opts.Debug &&
		isatty.IsTerminal(os.Stderr.Fd())

	// Simple progress callback that prints directly to stderr.
	var progressHook func(items, bytes int64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(os.Stderr, "\033[?25l")
		defer fmt.Fprint(os.Stderr, "\033[?25h")

		progressHook = func(items, bytes int64) {
			msg := fmt.Sprintf("Scanning… %d inodes, %s",
				items, humanize.IBytes(uint64(bytes)))
			fmt.Fprintf(os.Stderr, "\r\033[2K%s\r", msg)
		}
	}

	res, err := scan.Run(ctx, opts, progressHook)

	// Clear the status line.
	if enableProgress {
		fmt.Fprint(os.Stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	if opts.SaveState != "" {
		snap := scan.NewSnapshot(res.Stats, res.TotalSize, res.ProcessedPaths, res.Interrupted)
		if err := scan.SaveCheckpoint(opts.SaveState, snap); err != nil {
			// The scan already succeeded; report and move on.
			logger.Get().Warn().Err(err).Msg("checkpoint save failed")
		}
	}

	if opts.ExportPath != "" {
		if err := WriteExport(opts.ExportPath, BuildExport(res)); err != nil {
			return err
		}
	}

	switch strings.ToLower(opts.Output) {
	case "json":
		return PrintJSON(BuildExport(res), os.Stdout)
	default:
		return PrintReport(res, os.Stdout)
	}
}

// reportFromCheckpoint renders a previously saved scan state. Any load
// failure aborts the whole operation; no scan is attempted.
func reportFromCheckpoint(opts scan.Options) error {
	snap, err := scan.LoadCheckpoint(opts.LoadState)
	if err != nil {
		return err
	}

	if strings.ToLower(opts.Output) == "json" {
		return PrintJSON(snap, os.Stdout)
	}

	return PrintSnapshot(snap, os.Stdout)
}
