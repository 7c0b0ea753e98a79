package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in config.toml.

Keys:
  output.indent       indentation unit, empty for compact output
  output.namespaces   write xmlns declarations (true/false)
  mapping.sheet       spreadsheet sheet to read, empty for the first
  history.enabled     record conversion runs (true/false)
  cache.size          number of loaded mappings kept in memory
  watch.interval_ms   minimum time between watch re-conversions`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	s := newReportStyles(cmd.OutOrStdout())
	s.heading(cmd, "Current Settings")
	cmd.Println()

	cmd.Println("[Output]")
	cmd.Printf("  Indent: %s\n", describeIndent(settings.Output.Indent))
	cmd.Printf("  Namespaces: %t\n", settings.Output.Namespaces)
	cmd.Println()

	cmd.Println("[Mapping]")
	sheet := settings.Mapping.Sheet
	if sheet == "" {
		sheet = "(first sheet)"
	}
	cmd.Printf("  Sheet: %s\n", sheet)
	cmd.Println()

	cmd.Println("[History]")
	cmd.Printf("  Enabled: %t\n", settings.History.Enabled)
	cmd.Println()

	cmd.Println("[Cache]")
	cmd.Printf("  Size: %d\n", settings.Cache.Size)
	cmd.Println()

	cmd.Println("[Watch]")
	cmd.Printf("  Interval: %s\n", settings.Watch.Interval)

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if key == "output.indent" {
		indent, err := parseIndent(value)
		if err != nil {
			return err
		}
		value = indent
	}

	if err := settingsService.Set(key, value); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return fmt.Errorf("%w (known keys: %s)", err, strings.Join(settingsService.Keys(), ", "))
		}
		return fmt.Errorf("failed to save setting: %w", err)
	}

	cmd.Printf("Set %s = %s\n", key, strconv.Quote(value))
	return nil
}

// describeIndent makes whitespace visible.
func describeIndent(indent string) string {
	if indent == "" {
		return "(compact)"
	}
	spaces := strings.Count(indent, " ")
	tabs := strings.Count(indent, "\t")
	switch {
	case tabs == 0:
		return fmt.Sprintf("%d %s", spaces, plural(spaces, "space"))
	case spaces == 0:
		return fmt.Sprintf("%d %s", tabs, plural(tabs, "tab"))
	default:
		return strconv.Quote(indent)
	}
}
