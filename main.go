package main

import (
	"os"
	"os/signal"
	"syscall"

	"l1registry/cmd"
	"l1registry/pkg/logging"
	"l1registry/pkg/registrysyncer"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	// Writes are whole-file, so an interrupted run can simply be re-run
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	go func() {
		sig := <-sigChan
		log.Warn().Msgf("SIGNAL RECEIVED: %v - shutting down", sig)
		os.Exit(1)
	}()

	var opts cmd.GlobalOptions

	root := &cobra.Command{
		Use:   "l1registry",
		Short: "Maintenance tools for the L1 chain registry",
		PersistentPreRun: func(command *cobra.Command, args []string) {
			logging.Init(opts.Debug)
		},
	}
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to the YAML config (default registry.yaml if present)")
	root.PersistentFlags().StringVar(&opts.RegistryPath, "registry", "", "Registry root directory (overrides config)")
	root.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "Enable debug logging")

	enrichCmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fill isL1, token logos and sybil resistance type from the Glacier API",
		Args:  cobra.NoArgs,
		Run: func(command *cobra.Command, args []string) {
			single, _ := command.Flags().GetString("single")
			cmd.RunEnrich(opts, single)
		},
	}
	enrichCmd.Flags().String("single", "", "Enrich only this chain folder (no request delay)")

	fixLogosCmd := &cobra.Command{
		Use:   "fix-logos",
		Short: "Replace or clear placeholder logos",
		Args:  cobra.NoArgs,
		Run: func(command *cobra.Command, args []string) {
			dryRun, _ := command.Flags().GetBool("dry-run")
			cmd.RunFixLogos(opts, dryRun)
		},
	}
	fixLogosCmd.Flags().Bool("dry-run", false, "Report changes without writing")

	checkLogosCmd := &cobra.Command{
		Use:   "check-logos",
		Short: "Find chains with an empty logo but a usable token logo",
		Args:  cobra.NoArgs,
		Run: func(command *cobra.Command, args []string) {
			fix, _ := command.Flags().GetBool("fix")
			cmd.RunCheckLogos(opts, fix)
		},
	}
	checkLogosCmd.Flags().Bool("fix", false, "Copy the token logo into the main logo")

	syncCmd := &cobra.Command{
		Use:   "sync-clickhouse",
		Short: "Export the registry into the ClickHouse l1_registry table",
		Args:  cobra.NoArgs,
		Run: func(command *cobra.Command, args []string) {
			repo, _ := command.Flags().GetString("repo")
			wipe, _ := command.Flags().GetBool("wipe")
			cmd.RunSyncClickHouse(opts, repo, wipe)
		},
	}
	syncCmd.Flags().String("repo", "", "Clone the registry from this git URL (e.g. "+registrysyncer.RegistryRepoURL+") instead of reading --registry")
	syncCmd.Flags().Bool("wipe", false, "Truncate l1_registry before inserting")

	root.AddCommand(
		enrichCmd,
		fixLogosCmd,
		checkLogosCmd,
		&cobra.Command{
			Use:   "validate",
			Short: "Check that every chain.json parses and has well-formed IDs",
			Args:  cobra.NoArgs,
			Run:   func(command *cobra.Command, args []string) { cmd.RunValidate(opts) },
		},
		syncCmd,
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
