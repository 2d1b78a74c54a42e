package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/rgehrsitz/taxcurve/internal/bundle"
	"github.com/rgehrsitz/taxcurve/internal/config"
	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/rgehrsitz/taxcurve/internal/logging"
	"github.com/rgehrsitz/taxcurve/internal/output"
	"github.com/rgehrsitz/taxcurve/internal/store"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taxcurve %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:   "taxcurve",
	Short: "Tax bracket normalization and liability engine",
	Long: "Ingests historical marginal rate tables into normalized bracket schedules, " +
		"then computes per-bracket liability, cumulative liability curves and marginal rate steps.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config [config-file]",
	Short: "Validate a configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewInputParser().LoadFromFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid: %s store at %q, %d points per bracket\n",
			cfg.Store.Backend, cfg.Store.Path, cfg.Sampling.PointsPerBracket)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML, JSON or JSONC configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringP("format", "f", "console", "Output format (console, csv, json, yaml)")
	rootCmd.PersistentFlags().String("store-backend", "", "Store backend (filesystem, sqlite, memory)")
	rootCmd.PersistentFlags().String("store-path", "", "Store directory or database file")
	rootCmd.PersistentFlags().String("jurisdiction", "", "Jurisdiction (defaults to the configured one)")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(breakdownCmd)
	rootCmd.AddCommand(curveCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateConfigCmd)
	rootCmd.AddCommand(versionCmd())
}

// loadSettings reads the config file, if any, and applies flag overrides
func loadSettings(cmd *cobra.Command) (*config.Configuration, error) {
	parser := config.NewInputParser()
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := parser.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if backend, _ := cmd.Flags().GetString("store-backend"); backend != "" {
		cfg.Store.Backend = backend
	}
	if path, _ := cmd.Flags().GetString("store-path"); path != "" {
		cfg.Store.Path = path
	}
	if jurisdiction, _ := cmd.Flags().GetString("jurisdiction"); jurisdiction != "" {
		cfg.Jurisdiction = jurisdiction
	}
	if debugMode, _ := cmd.Flags().GetBool("debug"); debugMode {
		cfg.LogLevel = "debug"
	}

	if err := parser.ValidateConfiguration(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Configuration) *logging.SlogLogger {
	// already validated by loadSettings
	level, _ := logging.ParseLevel(cfg.LogLevel)
	return logging.NewSlogLogger(cmd.ErrOrStderr(), level)
}

func openStore(cfg *config.Configuration, logger logging.Logger) (store.Store, error) {
	st, err := cfg.Store.OpenStore()
	if err != nil {
		return nil, err
	}
	logger.Debugf("opened %s store at %q", cfg.Store.Backend, cfg.Store.Path)
	return st, nil
}

func formatterFor(cmd *cobra.Command) (output.Formatter, error) {
	name, _ := cmd.Flags().GetString("format")
	return output.NewFormatter(name)
}

// readKey builds a key from [year] [status] arguments
func readKey(cfg *config.Configuration, args []string) (domain.ScheduleKey, error) {
	fs, err := domain.ParseFilingStatus(args[1])
	if err != nil {
		return domain.ScheduleKey{}, err
	}
	key := domain.ScheduleKey{Jurisdiction: cfg.Jurisdiction, FiscalYear: args[0], FilingStatus: fs}
	return key, key.Validate()
}

func writeOut(w io.Writer, s string, err error) error {
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

// describeError separates "nothing stored for that key" from "what is
// stored (or being read) is broken".
func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrDataNotFound):
		return "no data for this selection: " + err.Error()
	case errors.Is(err, domain.ErrInvalidSchedule),
		errors.Is(err, domain.ErrMalformedFieldFormat),
		errors.Is(err, domain.ErrMissingRequiredColumn),
		errors.Is(err, bundle.ErrCorrupt):
		return "data is malformed: " + err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid input: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}
