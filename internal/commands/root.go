package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/SscSPs/split_ledger/internal/platform/config"
)

// Version is stamped at build time with -ldflags "-X".
var Version = "dev"

// app carries what every subcommand needs once the root command has run.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "split_ledger",
		Short:   "Split-transaction ledger with mirrored transfers",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
			slog.SetDefault(a.logger)
			return nil
		},
	}

	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newMigrateCommand(a))

	return rootCmd
}
