package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/warp/budget-forecast/forecast"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorRed       = lipgloss.Color("#D14D41")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	shortfallStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table. The first column is left-aligned,
// the rest right-aligned. Cells starting with '-' followed by a digit are
// drawn in the shortfall color.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = max(widths[i], len(h))
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(fmt.Sprintf(" %-*s ", widths[i], h)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		rule("├", "┼", "┤")
	}

	for _, row := range t.Rows {
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			var padded string
			if i == 0 {
				padded = fmt.Sprintf(" %-*s ", widths[i], cell)
			} else {
				padded = fmt.Sprintf(" %*s ", widths[i], cell)
			}
			style := valueStyle
			if isNegative(cell) {
				style = shortfallStyle
			}
			b.WriteString(style.Render(padded))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule("╰", "┴", "╯")
	return b.String()
}

func isNegative(cell string) bool {
	return len(cell) > 1 && cell[0] == '-' && cell[1] >= '0' && cell[1] <= '9'
}

// =============================================================================
// FORECAST TABLES
// =============================================================================

// Names maps account ids to display names. Missing ids render as the id.
type Names map[forecast.AccountID]string

func (n Names) of(id forecast.AccountID) string {
	if name, ok := n[id]; ok && name != "" {
		return name
	}
	return string(id)
}

// TimelineTable lists every event with its account's running balance.
func TimelineTable(events []forecast.CashFlowEvent, names Names) Table {
	t := Table{
		Title:   "Timeline",
		Headers: []string{"Date", "Event", "Type", "Account", "Amount", "Balance"},
	}
	for _, e := range events {
		name := e.Name
		if e.IsRecurring {
			name += " ↻"
		}
		t.Rows = append(t.Rows, []string{
			e.Date.String(),
			name,
			typeLabel(e.Type),
			names.of(e.AccountID),
			FormatDelta(e.Delta()),
			FormatMoney(e.RunningBalance),
		})
	}
	return t
}

// ProjectionTables returns one monthly table per account, sorted by id.
func ProjectionTables(p forecast.Projection, names Names) []Table {
	ids := make([]forecast.AccountID, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	tables := make([]Table, 0, len(ids))
	for _, id := range ids {
		t := Table{
			Title:   names.of(id),
			Headers: []string{"Month", "Start", "End", "Lowest"},
		}
		for _, m := range p[id] {
			t.Rows = append(t.Rows, []string{
				m.Label,
				FormatMoney(m.Start),
				FormatMoney(m.End),
				FormatMoney(m.Min),
			})
		}
		tables = append(tables, t)
	}
	return tables
}

// CompatibilityTable summarizes whether each account can carry the plan.
func CompatibilityTable(summary []forecast.AccountCompatibility, names Names) Table {
	t := Table{
		Title:   "Compatibility",
		Headers: []string{"Account", "Lowest", "Month", "End", "Status"},
	}
	for _, c := range summary {
		status := "ok"
		if !c.Affordable {
			status = "short from " + c.FirstShortfall
		}
		t.Rows = append(t.Rows, []string{
			names.of(c.AccountID),
			FormatMoney(c.LowestBalance),
			c.LowestMonth,
			FormatMoney(c.EndBalance),
			status,
		})
	}
	return t
}

// RenderReport writes the full forecast report.
func RenderReport(w io.Writer, title string, report *forecast.Report, names Names) error {
	var b strings.Builder
	b.WriteString(RenderTitle(title))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  Window " + report.Result.Window.String()))
	b.WriteString("\n\n")

	if len(report.Result.Timeline) == 0 {
		b.WriteString(mutedStyle.Render("  No events in this window."))
		b.WriteString("\n")
	} else {
		b.WriteString(RenderTable(TimelineTable(report.Result.Timeline, names)))
	}

	for _, t := range ProjectionTables(report.Result.Projection, names) {
		b.WriteString("\n")
		b.WriteString(RenderTable(t))
	}
	if len(report.Compatibility) > 0 {
		b.WriteString("\n")
		b.WriteString(RenderTable(CompatibilityTable(report.Compatibility, names)))
	}
	if n := len(report.Result.Skipped); n > 0 {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d record(s) skipped for unreadable dates.", n)))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func typeLabel(t forecast.EventType) string {
	switch t {
	case forecast.EventInstallment:
		return "installment"
	case forecast.EventLiability:
		return "bill"
	case forecast.EventReceivable:
		return "income"
	}
	return strings.ToLower(string(t))
}
