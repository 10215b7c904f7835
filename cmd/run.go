package cmd

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"mediadedup/internal/config"
	"mediadedup/internal/logging"
	"mediadedup/internal/processor"
	"mediadedup/internal/quarantine"
	"mediadedup/internal/tui"
)

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	interactive := !flagNoTUI && isTerminal(os.Stdout) && isTerminal(os.Stdin)

	logOut := &heldWriter{out: os.Stderr}
	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: logOut})
	if err != nil {
		return err
	}

	root, ok, err := chooseRoot(args, cfg, interactive)
	if err != nil || !ok {
		return err
	}

	lock, err := lockRoot(root)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := processorOptions(cfg)
	opts.Logger = logger
	logger.Info("scan started", "root", root, "hash", opts.Hash, "webm_identity", opts.WebMIdentity, "dry_run", cfg.DryRun)

	report, err := scanWithProgress(ctx, root, opts, interactive, logOut)
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}

	if cfg.DryRun {
		return printDryRun(cmd.OutOrStdout(), report)
	}

	mover := quarantine.NewMover(logger)
	res, err := mover.Relocate(root, report.Duplicates, report.Counts)
	if err != nil {
		return err
	}
	logger.Info("quarantine complete", "dir", res.Dir, "moved", res.Moved)

	printReport(cmd.OutOrStdout(), report, res)
	return nil
}

// chooseRoot takes the root from args or asks the operator. ok is false when
// the operator chose to exit.
func chooseRoot(args []string, cfg *config.Config, interactive bool) (string, bool, error) {
	if len(args) == 1 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", false, err
		}
		if !info.IsDir() {
			return "", false, fmt.Errorf("%s is not a directory", abs)
		}
		return abs, true, nil
	}

	var (
		choice tui.RootChoice
		err    error
	)
	if interactive {
		choice, err = tui.RunPrompt(cfg.DefaultRoot)
	} else {
		choice, err = tui.PromptLines(os.Stdin, os.Stderr, cfg.DefaultRoot)
	}
	if err != nil {
		return "", false, err
	}
	if choice.Exit {
		return "", false, nil
	}
	return choice.Path, true, nil
}

// lockRoot takes an exclusive lock for root so two runs cannot move files
// out of the same tree at once.
func lockRoot(root string) (*flock.Flock, error) {
	sum := sha256.Sum256([]byte(root))
	path := filepath.Join(os.TempDir(), "mediadedup-"+hex.EncodeToString(sum[:8])+".lock")

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("another mediadedup run is already working on %s", root)
	}
	return lock, nil
}

func scanWithProgress(ctx context.Context, root string, opts processor.Options, interactive bool, logOut *heldWriter) (processor.Report, error) {
	if !interactive {
		return processor.Run(ctx, root, opts, nil)
	}

	logOut.Hold()
	defer logOut.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan processor.ProgressUpdate, 64)
	program := tea.NewProgram(tui.NewModel(updates, cancel))

	uiDone := make(chan struct{})
	go func() {
		defer close(uiDone)
		_, _ = program.Run()
		// the display may quit before the scan does; keep the scan unblocked
		for range updates {
		}
	}()

	report, err := processor.Run(ctx, root, opts, updates)
	close(updates)
	<-uiDone
	return report, err
}

func printReport(w io.Writer, report processor.Report, res quarantine.Result) {
	rows := []tui.SummaryRow{
		{Label: "Files scanned", Value: fmt.Sprintf("%d", report.Files)},
		{Label: "Duplicates quarantined", Value: fmt.Sprintf("%d", res.Moved)},
		{Label: "Space reclaimed", Value: humanize.Bytes(uint64(res.Bytes))},
		{Label: "Files skipped", Value: fmt.Sprintf("%d", len(report.Skipped)), Alert: len(report.Skipped) > 0},
	}
	fmt.Fprintln(w, tui.RenderSummary(rows))
	fmt.Fprintln(w, tui.RenderCounts(report.Counts))
	printSkipped(w, report.Skipped)
	fmt.Fprintf(w, "Quarantine: %s\n", res.Dir)
	fmt.Fprintf(w, "Log: %s\n", filepath.Join(res.Dir, quarantine.LogName))
}

func printDryRun(w io.Writer, report processor.Report) error {
	dir, err := quarantine.Dir(report.Root, time.Now())
	if err != nil {
		return err
	}
	moves := quarantine.Plan(report.Root, dir, report.Duplicates)

	fmt.Fprintln(w, tui.RenderCounts(report.Counts))
	for _, mv := range moves {
		fmt.Fprintf(w, "%s %s %s\n",
			dupStyle.Render(filepath.Join(mv.Record.Duplicate.Subdir, mv.Record.Duplicate.File)),
			dimStyle.Render("duplicates"),
			origStyle.Render(filepath.Join(mv.Record.Original.Subdir, mv.Record.Original.File)),
		)
	}
	printSkipped(w, report.Skipped)
	fmt.Fprintf(w, "Dry run: %d file(s) would be moved to %s\n", len(moves), dir)
	return nil
}

func printSkipped(w io.Writer, skipped []processor.SkippedFile) {
	for _, s := range skipped {
		fmt.Fprintf(w, "%s %s\n", warnStyle.Render("skipped"), s.Err)
	}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// heldWriter buffers log output while the progress display owns the
// terminal and writes straight through otherwise.
type heldWriter struct {
	mu   sync.Mutex
	out  io.Writer
	buf  bytes.Buffer
	held bool
}

func (w *heldWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.held {
		return w.buf.Write(p)
	}
	return w.out.Write(p)
}

func (w *heldWriter) Hold() {
	w.mu.Lock()
	w.held = true
	w.mu.Unlock()
}

func (w *heldWriter) Release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.held = false
	_, _ = w.buf.WriteTo(w.out)
}
