package main

import (
	"fmt"

	"github.com/rgehrsitz/taxcurve/internal/calculation"
	"github.com/rgehrsitz/taxcurve/internal/config"
	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/rgehrsitz/taxcurve/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var breakdownCmd = &cobra.Command{
	Use:   "breakdown [year] [status]",
	Short: "Break down the liability owed on an income",
	Long:  "Shows how much of the income falls in each bracket and what each bracket owes.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("income")
		income, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.WrapError(domain.KindInvalidInput, "breakdown", fmt.Sprintf("income %q is not a number", raw), err)
		}

		schedule, formatter, err := loadForCompute(cmd, args)
		if err != nil {
			return err
		}
		summary, err := calculation.Summarize(income, schedule)
		if err != nil {
			return err
		}
		out, err := formatter.Summary(summary)
		return writeOut(cmd.OutOrStdout(), out, err)
	},
}

var curveCmd = &cobra.Command{
	Use:   "curve [year] [status]",
	Short: "Sample the cumulative liability curve",
	Long: "Samples cumulative liability at evenly spaced incomes inside every bracket up to a ceiling. " +
		"Without --ceiling the highest finite threshold is scaled by the configured buffer.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		points := cfg.Sampling.PointsPerBracket
		if cmd.Flags().Changed("points") {
			points, _ = cmd.Flags().GetInt("points")
		}

		schedule, formatter, err := loadForCompute(cmd, args)
		if err != nil {
			return err
		}

		ceiling, err := curveCeiling(cmd, cfg, schedule)
		if err != nil {
			return err
		}
		samples, err := calculation.SampleCurve(ceiling, schedule, points)
		if err != nil {
			return err
		}
		out, err := formatter.Curve(schedule.Key(), samples)
		return writeOut(cmd.OutOrStdout(), out, err)
	},
}

var stepsCmd = &cobra.Command{
	Use:   "steps [year] [status]",
	Short: "Show the marginal rate steps",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		schedule, formatter, err := loadForCompute(cmd, args)
		if err != nil {
			return err
		}
		steps, err := calculation.RateSteps(schedule)
		if err != nil {
			return err
		}
		out, err := formatter.Steps(schedule.Key(), steps)
		return writeOut(cmd.OutOrStdout(), out, err)
	},
}

func init() {
	breakdownCmd.Flags().String("income", "", "Income to break down (required)")
	breakdownCmd.MarkFlagRequired("income")

	curveCmd.Flags().String("ceiling", "", "Highest income to sample (default: top finite threshold x ceiling buffer)")
	curveCmd.Flags().Int("points", 0, "Samples per bracket (default from config)")
}

// loadForCompute reads the schedule named by [year] [status]
func loadForCompute(cmd *cobra.Command, args []string) (*domain.BracketSchedule, output.Formatter, error) {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return nil, nil, err
	}
	formatter, err := formatterFor(cmd)
	if err != nil {
		return nil, nil, err
	}
	key, err := readKey(cfg, args)
	if err != nil {
		return nil, nil, err
	}

	logger := newLogger(cmd, cfg)
	st, err := openStore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	schedule, err := st.Get(cmd.Context(), key)
	if err != nil {
		return nil, nil, err
	}
	logger.Debugf("loaded %s with %d brackets", key, schedule.Len())
	return schedule, formatter, nil
}

func curveCeiling(cmd *cobra.Command, cfg *config.Configuration, schedule *domain.BracketSchedule) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString("ceiling")
	if raw == "" {
		return calculation.DefaultCeiling(schedule, cfg.Sampling.CeilingBuffer)
	}
	ceiling, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.WrapError(domain.KindInvalidInput, "curve", fmt.Sprintf("ceiling %q is not a number", raw), err)
	}
	return ceiling, nil
}
