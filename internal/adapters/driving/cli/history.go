package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversions",
	Long: `Show recorded conversion runs, newest first. Runs are recorded while
the history.enabled setting is true.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded conversions",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs (0 = all)")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	runs, err := historyService.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No conversions recorded.")
		return nil
	}

	s := newReportStyles(cmd.OutOrStdout())
	for i := range runs {
		run := &runs[i]
		status := s.Success.Render("ok    ")
		if run.Status == domain.RunFailed {
			status = s.Error.Render("failed")
		}
		cmd.Printf("%s %s  %s + %s -> %s\n",
			status,
			s.Muted.Render(fmt.Sprintf("%-14s", humanize.Time(run.StartedAt))),
			run.Mapping, run.Input, run.Output)

		if run.Status == domain.RunFailed {
			cmd.Printf("       %s\n", truncate(run.Error, 100))
			continue
		}
		cmd.Printf("       %s, %d %s, %s\n",
			humanize.Bytes(uint64(run.BytesWritten)),
			run.Warnings, plural(run.Warnings, "warning"),
			run.Duration.Round(time.Millisecond))
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	if err := historyService.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	cmd.Println("History cleared.")
	return nil
}
