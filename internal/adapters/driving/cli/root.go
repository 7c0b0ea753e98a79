// Package cli provides the mapxml command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driving"
	"github.com/custodia-labs/mapxml/internal/logger"
)

// version is set at build time.
var version = "dev"

// Exit codes returned by the binary.
const (
	ExitOK      = 0
	ExitOther   = 1
	ExitMapping = 2
	ExitInput   = 3
	ExitEmit    = 4
)

// Services holds the driving ports the commands call into.
type Services struct {
	Conversion driving.ConversionService
	Mapping    driving.MappingService
	History    driving.HistoryService
	Watch      driving.WatchService
	Settings   driving.SettingsService

	// Close releases resources held by the services. Optional.
	Close func() error
}

// Bootstrap builds the services once flags are parsed.
type Bootstrap func(configDir string) (*Services, error)

var (
	conversionService driving.ConversionService
	mappingService    driving.MappingService
	historyService    driving.HistoryService
	watchService      driving.WatchService
	settingsService   driving.SettingsService

	bootstrap     Bootstrap
	closeServices func() error
)

var (
	verbose   bool
	quiet     bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "mapxml <mapping> <input> <output>",
	Short: "Convert JSON documents to XML with a mapping table",
	Long: `mapxml converts a JSON document to XML. The shape of the output is
described by a mapping table (CSV, XLSX or YAML) with one row per output
element or attribute.

The mapping may be a file path, a URL, or db:<name> for a mapping stored
with "mapxml mapping import".

Exit codes:
  0  success (warnings may have been printed)
  2  the mapping table could not be loaded
  3  the input document could not be parsed
  4  the output could not be written
  1  any other failure`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return nil
		}
		return cobra.ExactArgs(3)(cmd, args)
	},
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runConvert(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print progress details")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress warnings")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.mapxml)")
	addOutputFlags(rootCmd)
}

// SetBootstrap sets the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs services directly.
func SetServices(s *Services) {
	conversionService = s.Conversion
	mappingService = s.Mapping
	historyService = s.History
	watchService = s.Watch
	settingsService = s.Settings
	closeServices = s.Close
}

// Execute runs the root command and releases the services afterwards.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := teardown(); err == nil {
		err = closeErr
	}
	return err
}

// ExitCode maps an error returned by Execute to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch domain.Classify(err) {
	case domain.ClassMapping:
		return ExitMapping
	case domain.ClassInput:
		return ExitInput
	case domain.ClassEmit:
		return ExitEmit
	default:
		return ExitOther
	}
}

func setup(_ *cobra.Command, _ []string) error {
	if verbose && quiet {
		return errors.New("--verbose and --quiet are mutually exclusive")
	}
	logger.SetVerbose(verbose)
	logger.SetQuiet(quiet)

	if bootstrap == nil {
		return nil
	}
	services, err := bootstrap(configDir)
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	SetServices(services)
	return nil
}

func teardown() error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}
