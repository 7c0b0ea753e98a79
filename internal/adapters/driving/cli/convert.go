package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

var (
	outputIndent string
	noNamespaces bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <mapping> <input> <output>",
	Short: "Convert a JSON document to XML",
	Long: `Convert the input JSON document to XML using the mapping table and
write it to output. This is the same as running mapxml with three arguments.

The mapping is loaded and the input parsed before the output is opened, so a
bad mapping or a malformed input never leaves a file behind. Warnings about
missing fields or failed coercions are printed to stderr and do not stop the
conversion.`,
	Args: cobra.ExactArgs(3),
	RunE: runConvert,
}

func init() {
	addOutputFlags(convertCmd)
	rootCmd.AddCommand(convertCmd)
}

// addOutputFlags adds the flags that override output settings.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&outputIndent, "indent", "",
		`indentation unit, or a number of spaces ("" = compact)`)
	cmd.Flags().BoolVar(&noNamespaces, "no-namespaces", false, "omit xmlns declarations")
}

func runConvert(cmd *cobra.Command, args []string) error {
	if conversionService == nil {
		return errors.New("conversion service not configured")
	}

	req, err := convertRequest(cmd, args)
	if err != nil {
		return err
	}

	report, err := conversionService.Convert(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	newReportStyles(cmd.OutOrStdout()).renderReport(cmd, req.Output, report)
	return nil
}

// convertRequest builds a request from positional args, settings and flags.
func convertRequest(cmd *cobra.Command, args []string) (domain.ConvertRequest, error) {
	opts, err := outputOptions(cmd)
	if err != nil {
		return domain.ConvertRequest{}, err
	}
	return domain.ConvertRequest{
		Mapping: args[0],
		Input:   args[1],
		Output:  args[2],
		Options: opts,
	}, nil
}

// outputOptions starts from the stored settings and applies flag overrides.
func outputOptions(cmd *cobra.Command) (domain.OutputSettings, error) {
	opts := domain.DefaultAppSettings().Output
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return opts, fmt.Errorf("failed to get settings: %w", err)
		}
		opts = settings.Output
	}

	if cmd.Flags().Changed("indent") {
		indent, err := parseIndent(outputIndent)
		if err != nil {
			return opts, err
		}
		opts.Indent = indent
	}
	if noNamespaces {
		opts.Namespaces = false
	}
	return opts, nil
}

// parseIndent accepts whitespace or a number of spaces.
func parseIndent(s string) (string, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 16 {
			return "", fmt.Errorf("%w: indent must be between 0 and 16 spaces", domain.ErrInvalidInput)
		}
		return strings.Repeat(" ", n), nil
	}
	if strings.Trim(s, " \t") != "" {
		return "", fmt.Errorf("%w: indent %q must contain only spaces and tabs", domain.ErrInvalidInput, s)
	}
	return s, nil
}
