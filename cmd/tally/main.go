package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// app carries what every subcommand shares: the viper instance and the
// configuration resolved from it before the command runs.
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	cfgFile string
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	a := &app{v: v}

	rootCmd := &cobra.Command{
		Use:   "tally",
		Short: "📒 Ledger, reports and cash forecasts for a small business",
		Long: `tally keeps a small business ledger and turns it into balances, KPIs,
cash-flow forecasts and financial statements.

Run it as a CLI, as a terminal dashboard, or as an HTTP API.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initConfig,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/tally/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("database", "", "SQLite ledger path (overrides database.path)")

	// Bind flags to viper
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = v.BindPFlag("database.path", flags.Lookup("database"))

	// Add commands
	rootCmd.AddCommand(a.accountsCmd())
	rootCmd.AddCommand(a.transactionsCmd())
	rootCmd.AddCommand(a.plannedCmd())
	rootCmd.AddCommand(a.categoriesCmd())
	rootCmd.AddCommand(a.projectsCmd())
	rootCmd.AddCommand(a.counterpartiesCmd())
	rootCmd.AddCommand(a.deleteCmd())
	rootCmd.AddCommand(a.kpiCmd())
	rootCmd.AddCommand(a.cashflowCmd())
	rootCmd.AddCommand(a.structureCmd())
	rootCmd.AddCommand(a.reportCmd())
	rootCmd.AddCommand(a.importOFXCmd())
	rootCmd.AddCommand(a.exportCmd())
	rootCmd.AddCommand(a.authCmd())
	rootCmd.AddCommand(a.serveCmd())
	rootCmd.AddCommand(a.dashboardCmd())
	rootCmd.AddCommand(a.migrateCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := newRootCmd(viper.New()).ExecuteContext(ctx)
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	config.SetDefaults(a.v)

	// Set up config file
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Search for config in standard locations
		a.v.AddConfigPath(filepath.Join(home, ".config", "tally"))
		a.v.AddConfigPath(".")
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	// Environment variables: TALLY_DATABASE_PATH, TALLY_SERVER_ADDR, ...
	a.v.SetEnvPrefix("TALLY")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := common.SetupLogger(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tally %s\n", version)
		},
	}
}
