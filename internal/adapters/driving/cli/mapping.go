package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/mapxml/internal/adapters/driven/mapping/yamltable"
	"github.com/custodia-labs/mapxml/internal/core/domain"
)

var mappingTreeYAML bool

var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Inspect and manage mapping tables",
	Long: `Validate mapping tables, show how they load, and keep named mappings in
the mapping library. Library mappings are referenced as db:<name>.`,
}

var mappingValidateCmd = &cobra.Command{
	Use:   "validate <mapping>",
	Short: "Check that a mapping table loads",
	Args:  cobra.ExactArgs(1),
	RunE:  runMappingValidate,
}

var mappingTreeCmd = &cobra.Command{
	Use:   "tree <mapping>",
	Short: "Show the loaded mapping tree",
	Long: `Show the mapping tree in the order rows are emitted. With --yaml the
rows are printed as a YAML mapping table, which can be loaded again.`,
	Args: cobra.ExactArgs(1),
	RunE: runMappingTree,
}

var mappingImportCmd = &cobra.Command{
	Use:   "import <name> <mapping>",
	Short: "Store a mapping table in the library",
	Args:  cobra.ExactArgs(2),
	RunE:  runMappingImport,
}

var mappingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List library mappings",
	Args:  cobra.NoArgs,
	RunE:  runMappingList,
}

var mappingDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a mapping from the library",
	Args:  cobra.ExactArgs(1),
	RunE:  runMappingDelete,
}

func init() {
	mappingTreeCmd.Flags().BoolVar(&mappingTreeYAML, "yaml", false, "print rows as a YAML mapping table")

	mappingCmd.AddCommand(mappingValidateCmd)
	mappingCmd.AddCommand(mappingTreeCmd)
	mappingCmd.AddCommand(mappingImportCmd)
	mappingCmd.AddCommand(mappingListCmd)
	mappingCmd.AddCommand(mappingDeleteCmd)
	rootCmd.AddCommand(mappingCmd)
}

func runMappingValidate(cmd *cobra.Command, args []string) error {
	if mappingService == nil {
		return errors.New("mapping service not configured")
	}

	tree, err := mappingService.Load(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("invalid mapping: %w", err)
	}

	s := newReportStyles(cmd.OutOrStdout())
	cmd.Printf("%s %s: %d rows under <%s>, fingerprint %016x\n",
		s.Success.Render("Valid"), args[0], tree.Size(), tree.RootElement, tree.Fingerprint)
	if n := len(tree.Warnings); n > 0 {
		cmd.Println(s.Warning.Render(fmt.Sprintf("%d %s while loading", n, plural(n, "warning"))))
	}
	return nil
}

func runMappingTree(cmd *cobra.Command, args []string) error {
	if mappingService == nil {
		return errors.New("mapping service not configured")
	}

	tree, err := mappingService.Load(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("invalid mapping: %w", err)
	}

	if mappingTreeYAML {
		var rows []domain.MappingRow
		tree.Walk(func(n *domain.MappingNode, _ int) {
			rows = append(rows, n.Row)
		})
		data, err := yamltable.Write(rows)
		if err != nil {
			return fmt.Errorf("rendering yaml: %w", err)
		}
		cmd.Print(string(data))
		return nil
	}

	s := newReportStyles(cmd.OutOrStdout())
	tree.Walk(func(n *domain.MappingNode, depth int) {
		cmd.Printf("%s%s%s\n",
			strings.Repeat("  ", depth),
			n.Output.String(),
			s.Muted.Render(describeNode(n)))
	})
	return nil
}

// describeNode summarises how a row sources and shapes its value.
func describeNode(n *domain.MappingNode) string {
	var parts []string
	switch {
	case n.IsStatic():
		parts = append(parts, "static")
	case n.Input.IsEmpty():
		parts = append(parts, "<- $")
	default:
		parts = append(parts, "<- "+n.Input.String())
	}
	if n.List {
		parts = append(parts, "list")
	}
	if n.InputType != domain.TypeUnspecified || n.OutputType != domain.TypeUnspecified {
		parts = append(parts, fmt.Sprintf("%s->%s", typeName(n.InputType), typeName(n.OutputType)))
	}
	if n.HasExpression() {
		parts = append(parts, fmt.Sprintf("expr %q", n.Row.Expression))
	}
	if n.Row.Namespace != "" {
		parts = append(parts, "ns "+n.Row.Namespace)
	}
	return "  (" + strings.Join(parts, ", ") + ")"
}

func typeName(t domain.ValueType) string {
	if t == domain.TypeUnspecified {
		return "any"
	}
	return string(t)
}

func runMappingImport(cmd *cobra.Command, args []string) error {
	if mappingService == nil {
		return errors.New("mapping service not configured")
	}

	stored, err := mappingService.Import(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Imported %s as db:%s (%d rows)\n", stored.Source, stored.Name, len(stored.Rows))
	return nil
}

func runMappingList(cmd *cobra.Command, _ []string) error {
	if mappingService == nil {
		return errors.New("mapping service not configured")
	}

	mappings, err := mappingService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list mappings: %w", err)
	}

	if len(mappings) == 0 {
		cmd.Println("No mappings stored.")
		return nil
	}

	s := newReportStyles(cmd.OutOrStdout())
	for _, m := range mappings {
		cmd.Printf("%-20s %016x  %s  %s\n",
			m.Name,
			m.Fingerprint,
			truncate(m.Source, 40),
			s.Muted.Render("imported "+humanize.Time(m.ImportedAt)))
	}
	return nil
}

func runMappingDelete(cmd *cobra.Command, args []string) error {
	if mappingService == nil {
		return errors.New("mapping service not configured")
	}

	if err := mappingService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	cmd.Printf("Deleted db:%s\n", args[0])
	return nil
}
