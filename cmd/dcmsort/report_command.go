package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"dcmsort/internal/journal"
	"dcmsort/internal/services"
)

func newReportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show the file dispositions of the most recent run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}

			store, err := journal.Open(filepath.Join(cfg.Paths.LogDir, "journal.db"), nil)
			if err != nil {
				return services.Wrap(services.ErrNotFound, "reporting", "open journal", "no run journal found; enable [sorting] journal in the config", err)
			}
			defer store.Close()

			run, files, err := store.LatestRun(cmd.Context())
			if err != nil {
				return services.Wrap(services.ErrNotFound, "reporting", "load run", "no recorded runs", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %d: %s -> %s (started %s, success=%s)\n",
				run.ID, run.Source, run.Destination,
				run.StartedAt.Format("2006-01-02 15:04:05"), yesNo(run.Success))

			rows := make([][]string, 0, len(files))
			for _, file := range files {
				rows = append(rows, []string{file.SourcePath, file.DestPath, file.Disposition, file.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Source", "Destination", "Disposition", "Detail"}, rows))
			return nil
		},
	}
}
