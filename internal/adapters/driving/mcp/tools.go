package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

// libraryPrefix selects a mapping library entry by name.
const libraryPrefix = "db:"

// MappingInput identifies the mapping table a tool works with.
type MappingInput struct {
	Mapping string `json:"mapping,omitempty" jsonschema:"mapping table text (CSV with header row, or YAML rows)"`
	Format  string `json:"format,omitempty" jsonschema:"format of the mapping text: csv (default) or yaml"`
	Library string `json:"library,omitempty" jsonschema:"name of a stored mapping to use instead of mapping text"`
}

// ConvertInput is the input schema for the convert tool.
type ConvertInput struct {
	MappingInput
	Input      string `json:"input" jsonschema:"the JSON document to convert"`
	Indent     string `json:"indent,omitempty" jsonschema:"indentation unit, empty for compact output"`
	Namespaces *bool  `json:"namespaces,omitempty" jsonschema:"write xmlns declarations (default from settings)"`
}

// ConvertOutput is the output schema for the convert tool.
type ConvertOutput struct {
	XML        string           `json:"xml"`
	Elements   int              `json:"elements"`
	Attributes int              `json:"attributes"`
	Warnings   []domain.Warning `json:"warnings"`
}

// ValidateOutput is the output schema for the validate_mapping tool.
type ValidateOutput struct {
	Valid       bool             `json:"valid"`
	Error       string           `json:"error,omitempty"`
	RootElement string           `json:"root_element,omitempty"`
	Rows        int              `json:"rows"`
	Fingerprint string           `json:"fingerprint,omitempty"`
	Warnings    []domain.Warning `json:"warnings"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "convert",
		Description: "Convert a JSON document to XML using a mapping table",
	}, s.handleConvert)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "validate_mapping",
		Description: "Load a mapping table and report whether it is usable",
	}, s.handleValidateMapping)
}

// handleConvert handles the convert tool invocation.
func (s *Server) handleConvert(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConvertInput,
) (*mcp.CallToolResult, ConvertOutput, error) {
	tree, err := s.loadMapping(ctx, input.MappingInput)
	if err != nil {
		return nil, ConvertOutput{}, classified(err)
	}

	opts := s.outputSettings()
	if input.Indent != "" {
		opts.Indent = input.Indent
	}
	if input.Namespaces != nil {
		opts.Namespaces = *input.Namespaces
	}

	var out bytes.Buffer
	report, err := s.ports.Conversion.ConvertStream(ctx, tree, strings.NewReader(input.Input), &out, opts)
	if err != nil {
		return nil, ConvertOutput{}, classified(err)
	}

	warnings := append(append([]domain.Warning{}, tree.Warnings...), report.Warnings...)
	return nil, ConvertOutput{
		XML:        out.String(),
		Elements:   report.Elements,
		Attributes: report.Attributes,
		Warnings:   warnings,
	}, nil
}

// handleValidateMapping handles the validate_mapping tool invocation.
// Mapping failures are reported in the output, not as tool errors.
func (s *Server) handleValidateMapping(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MappingInput,
) (*mcp.CallToolResult, ValidateOutput, error) {
	tree, err := s.loadMapping(ctx, input)
	if err != nil {
		if domain.Classify(err) != domain.ClassMapping {
			return nil, ValidateOutput{}, err
		}
		return nil, ValidateOutput{Error: err.Error(), Warnings: []domain.Warning{}}, nil
	}

	warnings := tree.Warnings
	if warnings == nil {
		warnings = []domain.Warning{}
	}
	return nil, ValidateOutput{
		Valid:       true,
		RootElement: tree.RootElement,
		Rows:        tree.Size(),
		Fingerprint: fmt.Sprintf("%016x", tree.Fingerprint),
		Warnings:    warnings,
	}, nil
}

// loadMapping resolves the mapping named by input.
func (s *Server) loadMapping(ctx context.Context, input MappingInput) (*domain.MappingTree, error) {
	switch {
	case input.Library != "" && input.Mapping != "":
		return nil, fmt.Errorf("%w: give either mapping or library, not both", domain.ErrInvalidInput)
	case input.Library != "":
		return s.ports.Mapping.Load(ctx, libraryPrefix+input.Library)
	case strings.TrimSpace(input.Mapping) == "":
		return nil, fmt.Errorf("%w: mapping or library is required", domain.ErrInvalidInput)
	}

	format, err := parseFormat(input.Format)
	if err != nil {
		return nil, err
	}
	return s.ports.Mapping.Parse(format, []byte(input.Mapping))
}

// outputSettings returns the configured output options, or the defaults.
func (s *Server) outputSettings() domain.OutputSettings {
	if s.ports.Settings != nil {
		if settings, err := s.ports.Settings.Get(); err == nil {
			return settings.Output
		}
	}
	return domain.DefaultAppSettings().Output
}

// parseFormat accepts the text based mapping formats.
func parseFormat(s string) (domain.MappingFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return domain.MappingFormatCSV, nil
	case "yaml", "yml":
		return domain.MappingFormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q (use csv or yaml)", domain.ErrUnsupportedFormat, s)
	}
}

// classified prefixes err with its error class so callers can tell a bad
// mapping from a bad input document.
func classified(err error) error {
	if err == nil {
		return nil
	}
	class := domain.Classify(err)
	if class == domain.ClassOther {
		return err
	}
	return errors.New(class.String() + " error: " + err.Error())
}
