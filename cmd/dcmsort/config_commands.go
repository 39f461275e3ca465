package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dcmsort/internal/config"
)

func newConfigCommand(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(opts))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the [nodes] section to register PACS endpoints before using --send.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults shown")
			}

			rows := [][]string{
				{"log_dir", cfg.Paths.LogDir},
				{"dcmtk.bin_dir", cfg.DCMTK.BinDir},
				{"dcmtk.own_ae_title", cfg.DCMTK.OwnAETitle},
				{"logging.format", cfg.Logging.Format},
				{"logging.level", cfg.Logging.Level},
				{"sorting.journal", strconv.FormatBool(cfg.Sorting.Journal)},
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows))

			if len(cfg.Nodes) == 0 {
				fmt.Fprintln(out, "No nodes configured")
				return nil
			}
			aliases := make([]string, 0, len(cfg.Nodes))
			for alias := range cfg.Nodes {
				aliases = append(aliases, alias)
			}
			sort.Strings(aliases)
			nodeRows := make([][]string, 0, len(aliases))
			for _, alias := range aliases {
				endpoint, err := cfg.ResolveNode(alias)
				if err != nil {
					nodeRows = append(nodeRows, []string{alias, "", "", err.Error()})
					continue
				}
				nodeRows = append(nodeRows, []string{alias, endpoint.AETitle, fmt.Sprintf("%s:%d", endpoint.Host, endpoint.Port), ""})
			}
			fmt.Fprintln(out, renderTable([]string{"Alias", "AE Title", "Address", "Problem"}, nodeRows))
			return nil
		},
	}
}
