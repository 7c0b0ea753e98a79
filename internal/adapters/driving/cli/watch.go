package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch <mapping> <input> <output>",
	Short: "Convert again whenever the mapping or input changes",
	Long: `Convert once, then watch the mapping and input files and convert again
after every change until interrupted. Failed conversions are reported and
watching continues.

Re-conversions are spaced by at least the watch.interval_ms setting.`,
	Args: cobra.ExactArgs(3),
	RunE: runWatch,
}

func init() {
	addOutputFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchService == nil {
		return errors.New("watch service not configured")
	}

	req, err := convertRequest(cmd, args)
	if err != nil {
		return err
	}

	s := newReportStyles(cmd.OutOrStdout())
	onRun := func(report *domain.Report, err error) {
		if err != nil {
			s.renderFailure(cmd, err)
			return
		}
		s.renderReport(cmd, req.Output, report)
	}

	if err := watchService.Watch(cmd.Context(), req, onRun); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
