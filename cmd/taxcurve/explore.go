package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rgehrsitz/taxcurve/internal/store"
	"github.com/rgehrsitz/taxcurve/internal/tui"
	"github.com/spf13/cobra"
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Browse stored schedules interactively",
	Long:  "Pick a schedule with the arrow keys and type an income to see its breakdown; tab switches to the liability curve.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg, newLogger(cmd, cfg))
		if err != nil {
			return err
		}
		defer st.Close()

		model := tui.NewModel(cmd.Context(), store.NewCache(st), cfg.Sampling)
		program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("explorer failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
}
