package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dcmsort/internal/deps"
	"dcmsort/internal/services"
)

func newDepsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check the external DCMTK binaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.DCMTKRequirements(cfg.DCMTK.BinDir))
			rows := make([][]string, 0, len(statuses))
			missingRequired := false
			for _, status := range statuses {
				detail := status.Detail
				if detail == "" {
					detail = status.Description
				}
				rows = append(rows, []string{status.Name, yesNo(status.Available), detail})
				if !status.Available && !status.Optional {
					missingRequired = true
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Binary", "Available", "Detail"}, rows))

			if missingRequired {
				return services.Wrap(services.ErrConfiguration, "startup", "check dependencies", "required external binaries are missing", nil)
			}
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
