package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dcmsort/internal/config"
	"dcmsort/internal/services"
)

type rootOptions struct {
	source      string
	destination string
	sendNode    string
	unzip       bool
	compress    bool
	decompress  bool
	verbose     bool
	assumeYes   bool
	noSize      bool
	configPath  string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "dcmsort",
		Short:         "Sort DICOM files into a subject/study/series hierarchy",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				_ = cmd.Usage()
				return err
			}
			return runSort(cmd, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.source, "source", "s", "", "Source directory to scan (required)")
	flags.StringVarP(&opts.destination, "destination", "d", "", "Destination directory for the sorted tree")
	flags.StringVar(&opts.sendNode, "send", "", "Send sorted files to the configured node alias instead of keeping them")
	flags.BoolVar(&opts.unzip, "unzip", false, "Expand archives found under the source before sorting")
	flags.BoolVar(&opts.compress, "compress", false, "RLE-compress sorted files in place")
	flags.BoolVar(&opts.decompress, "decompress", false, "Decompress sorted files in place")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")
	flags.BoolVarP(&opts.assumeYes, "yes", "y", false, "Never prompt; an existing destination is deleted and recreated")
	flags.BoolVar(&opts.noSize, "nosize", false, "Skip the size accounting pass")
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Configuration file path")
	_ = rootCmd.MarkFlagRequired("source")

	rootCmd.AddCommand(newConfigCommand(opts))
	rootCmd.AddCommand(newDepsCommand(opts))
	rootCmd.AddCommand(newReportCommand(opts))

	return rootCmd
}

func (o *rootOptions) validate() error {
	if strings.TrimSpace(o.source) == "" {
		return services.Wrap(services.ErrValidation, "startup", "validate flags", "--source is required", nil)
	}
	hasDest := strings.TrimSpace(o.destination) != ""
	hasSend := strings.TrimSpace(o.sendNode) != ""
	if hasDest && hasSend {
		return services.Wrap(services.ErrValidation, "startup", "validate flags", "--destination and --send are mutually exclusive", nil)
	}
	if !hasDest && !hasSend && !o.unzip && !o.compress && !o.decompress {
		return services.Wrap(services.ErrValidation, "startup", "validate flags",
			"no action requested; supply --destination, --send, --unzip, --compress, or --decompress", nil)
	}
	if o.compress && o.decompress {
		return services.Wrap(services.ErrValidation, "startup", "validate flags", "--compress and --decompress are mutually exclusive", nil)
	}
	return nil
}

func loadConfig(path string) (*config.Config, string, bool, error) {
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		return nil, "", false, services.Wrap(services.ErrConfiguration, "startup", "load config", fmt.Sprintf("failed to load configuration: %v", err), err)
	}
	return cfg, resolved, exists, nil
}
