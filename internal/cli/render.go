// Package cli renders group summaries as terminal tables.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmynk/spendwise/internal/money"
	"github.com/mmynk/spendwise/pkg/api"
)

var (
	colorBorder = lipgloss.Color("#575653")
	colorText   = lipgloss.Color("#FFFCF0")
	colorAccent = lipgloss.Color("#3AA99F")
	colorGreen  = lipgloss.Color("#879A39")
	colorRed    = lipgloss.Color("#D14D41")
	colorOrange = lipgloss.Color("#DA702C")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	valueStyle  = lipgloss.NewStyle().Foreground(colorText)
	borderStyle = lipgloss.NewStyle().Foreground(colorBorder)
	creditStyle = lipgloss.NewStyle().Foreground(colorGreen)
	debitStyle  = lipgloss.NewStyle().Foreground(colorRed)
	warnStyle   = lipgloss.NewStyle().Foreground(colorOrange)
)

// Table is a bordered text table. Every column but the first is right-aligned.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a title in a rounded box.
func RenderTitle(title string) string {
	return titleStyle.Render(title)
}

// RenderTable renders t with box-drawing borders.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	measure := func(row []string) {
		for i := 0; i < numCols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		measure(row)
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(borderStyle.Render(left))
		for i, w := range widths {
			b.WriteString(borderStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(borderStyle.Render(mid))
			}
		}
		b.WriteString(borderStyle.Render(right))
		b.WriteString("\n")
	}
	line := func(row []string, style lipgloss.Style) {
		b.WriteString(borderStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if i == 0 {
				cell = cell + pad
			} else {
				cell = pad + cell
			}
			b.WriteString(style.Render(" " + cell + " "))
			if i < numCols-1 {
				b.WriteString(borderStyle.Render("│"))
			}
		}
		b.WriteString(borderStyle.Render("│"))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		line(t.Headers, headerStyle)
		rule("├", "┼", "┤")
	}
	for _, row := range t.Rows {
		line(row, valueStyle)
	}
	rule("╰", "┴", "╯")
	return b.String()
}

// FormatNet renders a net balance with its sign, colored by direction.
func FormatNet(a money.Amount) string {
	switch {
	case a > 0:
		return creditStyle.Render("+" + a.String())
	case a < 0:
		return debitStyle.Render(a.String())
	}
	return a.String()
}

func balanceTable(balances []*api.MemberBalance) string {
	rows := make([][]string, 0, len(balances))
	for _, b := range balances {
		rows = append(rows, []string{b.DisplayName, b.Paid.String(), b.Owed.String(), FormatNet(b.Net)})
	}
	return RenderTable(Table{
		Title:   "Balances",
		Headers: []string{"Member", "Paid", "Owes", "Net"},
		Rows:    rows,
	})
}

func transferSection(transfers []*api.Transfer, unmatched []*api.Residual) string {
	var b strings.Builder
	if len(transfers) == 0 {
		b.WriteString(headerStyle.Render("Suggested transfers"))
		b.WriteString("\n  All settled up.\n")
	} else {
		rows := make([][]string, 0, len(transfers))
		for _, t := range transfers {
			rows = append(rows, []string{t.FromName, t.ToName, t.Amount.String()})
		}
		b.WriteString(RenderTable(Table{
			Title:   "Suggested transfers",
			Headers: []string{"From", "To", "Amount"},
			Rows:    rows,
		}))
	}

	if len(unmatched) > 0 {
		rows := make([][]string, 0, len(unmatched))
		for _, r := range unmatched {
			rows = append(rows, []string{r.DisplayName, FormatNet(r.Amount)})
		}
		b.WriteString("\n")
		b.WriteString(RenderTable(Table{
			Title:   "Unmatched",
			Headers: []string{"Member", "Amount"},
			Rows:    rows,
		}))
	}
	return b.String()
}

// RenderGroupSummary renders a group's balances, suggested transfers and
// spending per category.
func RenderGroupSummary(s *api.GetGroupSummaryResponse) string {
	var b strings.Builder
	b.WriteString(RenderTitle(fmt.Sprintf("%s  Total %s", s.Group.Name, s.TotalSpent)))
	b.WriteString("\n\n")
	b.WriteString(balanceTable(s.Balances))
	b.WriteString("\n")
	b.WriteString(transferSection(s.Suggested, s.Unmatched))

	if len(s.CategoryTotals) > 0 {
		rows := make([][]string, 0, len(s.CategoryTotals))
		for _, c := range s.CategoryTotals {
			rows = append(rows, []string{c.Category, fmt.Sprintf("%d", c.Count), c.Total.String()})
		}
		b.WriteString("\n")
		b.WriteString(RenderTable(Table{
			Title:   "Spending by category",
			Headers: []string{"Category", "Expenses", "Total"},
			Rows:    rows,
		}))
	}

	if !s.Drift.IsZero() {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(fmt.Sprintf("Balances drift by %s; check expense shares.", s.Drift)))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderCategorySummary renders balances and transfers scoped to one category.
func RenderCategorySummary(s *api.GetCategorySummaryResponse) string {
	var b strings.Builder
	b.WriteString(RenderTitle(fmt.Sprintf("%s  Total %s", s.Category, s.Total)))
	b.WriteString("\n\n")
	b.WriteString(balanceTable(s.Balances))
	b.WriteString("\n")
	b.WriteString(transferSection(s.Suggested, s.Unmatched))
	return b.String()
}
