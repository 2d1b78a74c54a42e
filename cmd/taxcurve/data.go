package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rgehrsitz/taxcurve/internal/bundle"
	"github.com/rgehrsitz/taxcurve/internal/ingest"
	"github.com/rgehrsitz/taxcurve/internal/store"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [csv-file]",
	Short: "Normalize a historical rate table into the schedule store",
	Long: "Reads a CSV rate table (\"-\" for stdin) and writes one schedule per year and filing status. " +
		"Malformed rows and unrecognized filing status groups are reported and skipped.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cmd, cfg)

		in, closeIn, err := openInput(cmd, args[0])
		if err != nil {
			return err
		}
		defer closeIn()

		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		ingestor := ingest.NewIngestor(cfg.Jurisdiction)
		ingestor.SetLogger(logger)
		report, err := ingestor.Run(cmd.Context(), in, st)
		if err != nil {
			return err
		}

		for _, e := range report.Errors {
			logger.Warnf("%v", e)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d schedules: %d written, %d unchanged, %d problems\n",
			len(report.Written)+len(report.Unchanged), len(report.Written), len(report.Unchanged), len(report.Errors))

		if strict, _ := cmd.Flags().GetBool("strict"); strict && len(report.Errors) > 0 {
			return fmt.Errorf("ingest reported %d problems: %w", len(report.Errors), report.Errors[0])
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored schedules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		formatter, err := formatterFor(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg, newLogger(cmd, cfg))
		if err != nil {
			return err
		}
		defer st.Close()

		keys, err := st.List(cmd.Context())
		if err != nil {
			return err
		}
		store.SortKeys(keys)
		out, err := formatter.Keys(keys)
		return writeOut(cmd.OutOrStdout(), out, err)
	},
}

var showCmd = &cobra.Command{
	Use:   "show [year] [status]",
	Short: "Show one stored schedule",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		formatter, err := formatterFor(cmd)
		if err != nil {
			return err
		}
		key, err := readKey(cfg, args)
		if err != nil {
			return err
		}
		st, err := openStore(cfg, newLogger(cmd, cfg))
		if err != nil {
			return err
		}
		defer st.Close()

		schedule, err := st.Get(cmd.Context(), key)
		if err != nil {
			return err
		}
		out, err := formatter.Schedule(schedule)
		return writeOut(cmd.OutOrStdout(), out, err)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [bundle-file]",
	Short: "Write every stored schedule to a bundle file (\"-\" for stdout)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cmd, cfg)
		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		var w io.Writer = cmd.OutOrStdout()
		if args[0] != "-" {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create bundle %s: %w", args[0], err)
			}
			defer f.Close()
			w = f
		}

		n, err := bundle.Export(cmd.Context(), st, w)
		if err != nil {
			return err
		}
		logger.Infof("exported %d schedules", n)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [bundle-file]",
	Short: "Load a bundle into the schedule store",
	Long:  "Verifies the bundle checksum and every schedule before writing anything.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		in, closeIn, err := openInput(cmd, args[0])
		if err != nil {
			return err
		}
		defer closeIn()

		st, err := openStore(cfg, newLogger(cmd, cfg))
		if err != nil {
			return err
		}
		defer st.Close()

		report, err := bundle.Import(cmd.Context(), in, st)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d schedules: %d written, %d unchanged\n",
			len(report.Written)+len(report.Unchanged), len(report.Written), len(report.Unchanged))
		return nil
	},
}

func init() {
	ingestCmd.Flags().Bool("strict", false, "Fail when any row, group or schedule was skipped")
}

// openInput opens path, or stdin for "-"
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
