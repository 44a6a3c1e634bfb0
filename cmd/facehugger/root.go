package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"facehugger/internal/config"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var dryRun bool
	var showVersion bool

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:   "facehugger [manifest]",
		Short: "Download models defined in a facehugger.yaml manifest file.",
		Long: "Download models defined in a facehugger.yaml manifest file.\n\n" +
			"Each manifest entry is fetched with hf download (unless --dry-run is given)\n" +
			"and verified with hf cache verify. The hub cache listing is captured before\n" +
			"and after the run and the difference is shown.",
		Args: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return nil
			}
			return cobra.MaximumNArgs(1)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), resolveVersion())
				return nil
			}
			manifestPath := config.DefaultManifestPath
			if len(args) == 1 {
				manifestPath = args[0]
			}
			return runManifest(cmd, ctx, manifestPath, dryRun)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the hf download commands without performing the download")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Print the package version and exit")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}
