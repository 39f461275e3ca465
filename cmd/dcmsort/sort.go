package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"dcmsort/internal/archive"
	"dcmsort/internal/config"
	"dcmsort/internal/dicomfile"
	"dcmsort/internal/journal"
	"dcmsort/internal/logging"
	"dcmsort/internal/progress"
	"dcmsort/internal/services"
	"dcmsort/internal/services/dcmtk"
	"dcmsort/internal/sorter"
)

func runSort(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, _, exists, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	sending := strings.TrimSpace(opts.sendNode) != ""
	sorting := sending || strings.TrimSpace(opts.destination) != ""
	var endpoint config.Endpoint
	if sending {
		if !exists {
			return services.Wrap(services.ErrConfiguration, "startup", "resolve node",
				"--send requires a configuration file with a [nodes] section", nil)
		}
		endpoint, err = cfg.ResolveNode(opts.sendNode)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "startup", "resolve node", err.Error(), err)
		}
	}

	level := cfg.Logging.Level
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.NewFromConfig(level, cfg.Logging.Format, cfg.Paths.LogDir)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "startup", "init logging", err.Error(), err)
	}

	source, err := config.ExpandPath(opts.source)
	if err != nil {
		return services.Wrap(services.ErrValidation, "startup", "resolve source", err.Error(), err)
	}
	info, err := os.Stat(source)
	if err != nil || !info.IsDir() {
		return services.Wrap(services.ErrValidation, "startup", "resolve source",
			fmt.Sprintf("source directory %s does not exist", source), err)
	}

	reporter := progress.Nop()
	if isTerminal(os.Stderr) {
		reporter = progress.NewBar()
	}

	if opts.unzip {
		expanded, err := archive.ExpandAll(source, logger, reporter)
		if err != nil {
			return err
		}
		if expanded > 0 {
			fmt.Fprintf(out, "Expanded %d archive(s)\n", expanded)
		}
	}

	classifier := dicomfile.NewClassifier(logger)
	var destination string
	if sorting {
		if !opts.noSize {
			if err := reportSizes(out, source, classifier, reporter); err != nil {
				return err
			}
		}
		if !opts.assumeYes && isTerminal(os.Stdin) {
			if !confirmProceed(cmd.InOrStdin(), out) {
				return services.Wrap(services.ErrCancelled, "startup", "confirm copy", "Operation cancelled", nil)
			}
		}

		if sending {
			tmp, err := os.MkdirTemp("", "dcmsort-send-")
			if err != nil {
				return services.Wrap(services.ErrTransient, "startup", "create staging directory", err.Error(), err)
			}
			defer os.RemoveAll(tmp)
			destination = tmp
		} else {
			destination, err = config.ExpandPath(opts.destination)
			if err != nil {
				return services.Wrap(services.ErrValidation, "startup", "resolve destination", err.Error(), err)
			}
		}

		engineOpts := []sorter.Option{sorter.WithReporter(reporter)}
		var recorder *journal.RunRecorder
		if cfg.Sorting.Journal {
			store, journalErr := journal.Open(filepath.Join(cfg.Paths.LogDir, "journal.db"), logger)
			if journalErr != nil {
				logger.Warn("journal unavailable", logging.Error(journalErr))
			} else {
				defer store.Close()
				recorder, journalErr = store.BeginRun(ctx, source, destination)
				if journalErr != nil {
					logger.Warn("journal unavailable", logging.Error(journalErr))
				} else {
					engineOpts = append(engineOpts, sorter.WithLedger(recorder))
				}
			}
		}

		engine := sorter.New(logger, classifier, conflictResolver(opts, sending), engineOpts...)
		outcome, runErr := engine.Run(ctx, source, destination)
		if recorder != nil {
			if err := recorder.Finish(ctx, runErr == nil && outcome.Success); err != nil {
				logger.Warn("failed to finalize journal", logging.Error(err))
			}
		}
		if runErr != nil {
			return runErr
		}
		printOutcome(out, outcome)
	}

	client := dcmtk.NewClient(dcmtk.WithBinDir(cfg.DCMTK.BinDir), dcmtk.WithOwnAETitle(cfg.DCMTK.OwnAETitle))
	if opts.compress || opts.decompress {
		// Without a sorted tree the codec pass applies to the source itself.
		codecTarget := destination
		if !sorting {
			codecTarget = source
		}
		if err := runCodec(ctx, client, codecTarget, opts, logger, reporter, out); err != nil {
			return err
		}
	}

	if sending {
		fmt.Fprintf(out, "Sending to %s (%s:%d)\n", endpoint.AETitle, endpoint.Host, endpoint.Port)
		output, err := client.Send(ctx, destination, endpoint, opts.verbose)
		if err != nil {
			return err
		}
		if trimmed := strings.TrimSpace(output); trimmed != "" && opts.verbose {
			fmt.Fprintln(out, trimmed)
		}
		fmt.Fprintln(out, "Send complete")
	}

	return nil
}

func runCodec(ctx context.Context, client *dcmtk.Client, dir string, opts *rootOptions, logger *slog.Logger, reporter progress.Reporter, out io.Writer) error {
	var outcome dcmtk.CodecOutcome
	var err error
	if opts.compress {
		outcome, err = client.CompressDirectory(ctx, dir, logger, reporter)
	} else {
		outcome, err = client.DecompressDirectory(ctx, dir, logger, reporter)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Transcoded %d file(s), %d failure(s)\n", outcome.Processed, outcome.Failed)
	return nil
}

// reportSizes walks the source once and prints the byte totals. The
// classification results stay cached so the copy pass does not re-read
// headers.
func reportSizes(out io.Writer, source string, classifier *dicomfile.Classifier, reporter progress.Reporter) error {
	size, err := sorter.MeasureTree(source, classifier, reporter)
	if err != nil {
		return err
	}
	rows := [][]string{
		{"Files scanned", strconv.Itoa(size.Files)},
		{"Total size", humanize.IBytes(uint64(size.TotalBytes))},
		{"DICOM size", humanize.IBytes(uint64(size.RecordBytes))},
	}
	fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, rows, 1))
	return nil
}

func printOutcome(out io.Writer, outcome sorter.Outcome) {
	rows := [][]string{
		{"Scanned", strconv.Itoa(outcome.Scanned)},
		{"DICOM records", strconv.Itoa(outcome.Records)},
		{"Copied", strconv.Itoa(outcome.Copied)},
		{"Already present", strconv.Itoa(outcome.SkippedExisting)},
		{"Missing fields", strconv.Itoa(outcome.SkippedMissingField)},
		{"Failed", strconv.Itoa(outcome.Failed)},
	}
	fmt.Fprintln(out, renderTable([]string{"Counter", "Value"}, rows, 1))
}

func confirmProceed(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "Proceed with copy? (yes/no): ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "yes" || answer == "y"
}

// conflictResolver picks how a pre-existing destination is handled. The send
// staging directory is created fresh immediately before the run, so it must
// never trigger the conflict prompt.
func conflictResolver(opts *rootOptions, staging bool) sorter.ConflictResolver {
	if staging {
		return sorter.FixedResolver{Decision: sorter.DecisionAppend}
	}
	if opts.assumeYes {
		return sorter.FixedResolver{Decision: sorter.DecisionDelete}
	}
	if isTerminal(os.Stdin) {
		return &sorter.TerminalResolver{In: os.Stdin, Out: os.Stdout}
	}
	return sorter.FixedResolver{Decision: sorter.DecisionAppend}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
