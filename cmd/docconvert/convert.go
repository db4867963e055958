// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docconvert/internal/batch"
	"github.com/pdiddy/docconvert/internal/conflict"
	"github.com/pdiddy/docconvert/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert files to another format",
	Long: `Convert queues the given files and converts each one to the --to format,
in order, one at a time. Output goes next to each input unless --output-dir
is set. PDFs converted to an image format produce one file per page named
<name>_page<N>.<ext>.

When an output file already exists, --on-conflict decides: ask prompts on
the terminal, replace overwrites, cancel keeps the existing file and fails
that job. Interrupt (Ctrl-C) cancels the file being converted and stops the
batch; files not yet started are left unconverted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("to", "t", "pdf", "output format")
	convertCmd.Flags().StringP("output-dir", "o", "", "directory for converted files (default: alongside each input)")
	convertCmd.Flags().String("on-conflict", "", "existing output files: ask, replace or cancel")
	convertCmd.Flags().String("report", "", "write a YAML batch report to this file")

	_ = viper.BindPFlag("output_dir", convertCmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("on_conflict", convertCmd.Flags().Lookup("on-conflict"))

	rootCmd.AddCommand(convertCmd)
}

// batchReport is the --report document.
type batchReport struct {
	Format  types.Format  `yaml:"format"`
	Jobs    []types.Job   `yaml:"jobs"`
	Summary batch.Summary `yaml:"summary"`
}

func runConvert(cmd *cobra.Command, args []string) error {
	to, _ := cmd.Flags().GetString("to")
	target := types.ParseFormat(to)
	if !target.Known() {
		return fmt.Errorf("unknown output format %q", to)
	}
	reportPath, _ := cmd.Flags().GetString("report")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	paths := make([]string, len(args))
	for i, a := range args {
		abs, err := filepath.Abs(a)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", a, err)
		}
		paths[i] = abs
	}

	p := newPipeline(cfg, slog.Default())
	defer p.Close()

	if _, err := p.coord.Submit(paths); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		p.coord.CancelInFlight()
	}()

	events, err := p.coord.StartAll(ctx, target)
	if err != nil {
		return err
	}

	var answers <-chan string
	var summary batch.Summary
	for e := range events {
		switch e.Type {
		case batch.EventConflictPending:
			if answers == nil && cfg.OnConflict == types.ConflictAsk {
				answers = readLines(os.Stdin)
			}
			res, err := answerConflict(ctx, cfg.OnConflict, answers, os.Stdout, e.Decision)
			if ctx.Err() != nil {
				// The interrupted job has already given up on the decision.
				continue
			}
			if err != nil {
				slog.Warn("reading conflict answer", "error", err)
				res = conflict.Cancel
			}
			if err := p.coord.Resolve(e.Decision.ID, res); err != nil {
				slog.Warn("resolving conflict", "decision", e.Decision.ID, "error", err)
			}
		case batch.EventBatchSummary:
			summary = e.Summary
		default:
			printEvent(os.Stdout, e)
		}
	}

	fmt.Fprintf(os.Stdout, "\nBatch summary: %d converted, %d failed, %d total\n",
		summary.Completed, summary.Failed, summary.Total)

	if reportPath != "" {
		if err := writeReport(reportPath, batchReport{Format: target, Jobs: p.coord.Jobs(), Summary: summary}); err != nil {
			return err
		}
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed conversion", summary.Failed)
	}
	return nil
}

// printEvent writes the per-job status line for e. Progress is only
// printed for multi-step jobs.
func printEvent(w io.Writer, e batch.Event) {
	name := filepath.Base(e.Job.InputPath)
	switch e.Type {
	case batch.EventJobStarted:
		fmt.Fprintf(w, "converting: %s\n", name)
	case batch.EventProgress:
		if e.Job.Progress < 1 {
			fmt.Fprintf(w, "  %s %3.0f%%\n", name, e.Job.Progress*100)
		}
	case batch.EventCompleted:
		fmt.Fprintf(w, "converted: %s -> %s\n", name, e.Job.OutputPath)
	case batch.EventFailed:
		fmt.Fprintf(w, "failed: %s (%v)\n", name, e.Err)
	}
}

// readLines delivers the lines of r on the returned channel, which is
// closed at end of input.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()
	return lines
}

// answerConflict returns the resolution for d under policy. When policy is
// ask it prompts on out and waits for an answer on lines, giving up when
// ctx is done.
func answerConflict(ctx context.Context, policy types.ConflictPolicy, lines <-chan string, out io.Writer, d *conflict.Decision) (conflict.Resolution, error) {
	switch policy {
	case types.ConflictReplace:
		fmt.Fprintf(out, "replacing existing %s\n", d.ExistingPath)
		return conflict.Replace, nil
	case types.ConflictCancel:
		fmt.Fprintf(out, "keeping existing %s\n", d.ExistingPath)
		return conflict.Cancel, nil
	}

	for {
		fmt.Fprintf(out, "%s already exists. [r]eplace or [c]ancel? ", d.ExistingPath)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return "", ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return "", fmt.Errorf("reading answer: %w", io.ErrUnexpectedEOF)
			}
			answer := strings.TrimSpace(line)
			if answer == "" {
				continue
			}
			res, err := conflict.ParseResolution(answer)
			if err == nil {
				return res, nil
			}
			fmt.Fprintln(out, err)
		}
	}
}

func writeReport(path string, r batchReport) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
