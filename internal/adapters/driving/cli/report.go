package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

// reportStyles renders command output. Styles are plain unless the
// writer is a terminal.
type reportStyles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

func newReportStyles(w io.Writer) reportStyles {
	if !isTerminal(w) {
		plain := lipgloss.NewStyle()
		return reportStyles{Title: plain, Success: plain, Warning: plain, Error: plain, Muted: plain}
	}

	r := lipgloss.NewRenderer(w)
	return reportStyles{
		Title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		Success: r.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("#6C7086")),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderReport prints the summary of a finished conversion. Individual
// warnings have already been logged; only their counts are shown here.
func (s reportStyles) renderReport(cmd *cobra.Command, output string, report *domain.Report) {
	cmd.Printf("%s %s (%s, %d elements, %d attributes) in %s\n",
		s.Success.Render("Wrote"),
		output,
		humanize.Bytes(uint64(report.BytesWritten)),
		report.Elements,
		report.Attributes,
		report.Duration.Round(time.Millisecond),
	)

	counts := warningCounts(report)
	if len(counts) == 0 {
		return
	}
	cmd.Println(s.Warning.Render(fmt.Sprintf("%d %s:", len(report.Warnings), plural(len(report.Warnings), "warning"))))
	for _, c := range counts {
		cmd.Printf("  %-20s %d\n", c.kind, c.n)
	}
}

// renderFailure prints a one-line failure, used where a command keeps
// running after an error.
func (s reportStyles) renderFailure(cmd *cobra.Command, err error) {
	cmd.Printf("%s %s error: %v\n", s.Error.Render("Failed"), domain.Classify(err), err)
}

type warningCount struct {
	kind domain.WarningKind
	n    int
}

// warningCounts tallies warnings by kind, most frequent first.
func warningCounts(report *domain.Report) []warningCount {
	byKind := make(map[domain.WarningKind]int)
	for _, w := range report.Warnings {
		byKind[w.Kind]++
	}
	counts := make([]warningCount, 0, len(byKind))
	for k, n := range byKind {
		counts = append(counts, warningCount{kind: k, n: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].n != counts[j].n {
			return counts[i].n > counts[j].n
		}
		return counts[i].kind < counts[j].kind
	})
	return counts
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// heading prints a title underlined to its width.
func (s reportStyles) heading(cmd *cobra.Command, title string) {
	cmd.Println(s.Title.Render(title))
	cmd.Println(strings.Repeat("=", len(title)))
}
