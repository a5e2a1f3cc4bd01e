package output

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Backland-Labs/dailyagi/internal/agentapi"
	"github.com/Backland-Labs/dailyagi/internal/wallet"
)

// barWidth is the width of the longest bar in the spending chart.
const barWidth = 24

// Reminders prints a reminder table.
func (p *Printer) Reminders(reminders []agentapi.Reminder) {
	if len(reminders) == 0 {
		p.Info("No reminders yet")
		return
	}

	rows := make([][]string, 0, len(reminders))
	for _, r := range reminders {
		when := r.Datetime
		if when == "" {
			when = "-"
		}
		status := "pending"
		if r.Completed {
			status = "done"
		}
		rows = append(rows, []string{r.ID, r.Title, when, status})
	}
	p.table([]string{"ID", "TITLE", "WHEN", "STATUS"}, rows)
}

// Spending prints a spending report with a per-category bar chart.
func (p *Printer) Spending(report *agentapi.SpendingReport, tr agentapi.TimeRange) {
	_, _ = fmt.Fprintln(p.out, p.styles.title.Render(fmt.Sprintf("Spending, last %d days", tr.Days())))
	_, _ = fmt.Fprintf(p.out, "Total: %s across %d transactions\n\n",
		p.styles.accent.Render(fmt.Sprintf("$%.2f", report.TotalSpent)), len(report.Transactions))

	categories := make([]string, 0, len(report.Categories))
	maxAmount := 0.0
	for category, amount := range report.Categories {
		categories = append(categories, category)
		maxAmount = math.Max(maxAmount, amount)
	}
	sort.Slice(categories, func(i, j int) bool {
		a, b := report.Categories[categories[i]], report.Categories[categories[j]]
		if a != b {
			return a > b
		}
		return categories[i] < categories[j]
	})

	nameWidth := 0
	for _, category := range categories {
		nameWidth = max(nameWidth, len(category))
	}
	for _, category := range categories {
		amount := report.Categories[category]
		width := 0
		if maxAmount > 0 {
			width = int(math.Round(amount / maxAmount * barWidth))
		}
		_, _ = fmt.Fprintf(p.out, "%-*s %s %s\n",
			nameWidth, category,
			p.styles.bar.Render(strings.Repeat("█", width)+strings.Repeat(" ", barWidth-width)),
			fmt.Sprintf("$%.2f", amount))
	}

	if report.Nudge != "" {
		_, _ = fmt.Fprintln(p.out)
		p.Warning("%s", report.Nudge)
	}
}

// Grocery prints a shopping list.
func (p *Printer) Grocery(list *agentapi.GroceryList) {
	if len(list.Items) == 0 {
		p.Success("Your fridge looks well-stocked! No missing items detected.")
	} else {
		rows := make([][]string, 0, len(list.Items))
		for _, item := range list.Items {
			rows = append(rows, []string{item.Name, item.Quantity, item.Category})
		}
		p.table([]string{"ITEM", "QUANTITY", "CATEGORY"}, rows)
	}
	if list.CID != "" {
		p.Detail("Saved as %s", list.CID)
	}
}

// Session prints the wallet connection state.
func (p *Printer) Session(s wallet.Session) {
	if !s.Connected {
		p.Warning("No wallet connected")
		return
	}
	p.Success("Connected: %s", wallet.FormatAddress(s.Address, 4))
	p.Detail("Address:  %s", s.Address)
	p.Detail("Provider: %s", s.Provider)
	if s.ChainID != 0 {
		p.Detail("Network:  %s", wallet.ChainName(s.ChainID))
	}
}

// Dashboard summarizes reminders, spending and premium status side by side.
// A nil section is shown as unavailable.
func (p *Printer) Dashboard(address string, reminders []agentapi.Reminder, report *agentapi.SpendingReport, premium *agentapi.PremiumStatus) {
	unavailable := p.styles.muted.Render("unavailable")

	reminderCard := unavailable
	if reminders != nil {
		reminderCard = fmt.Sprintf("%d active", countPending(reminders))
	}
	spendingCard := unavailable
	if report != nil {
		spendingCard = fmt.Sprintf("$%.2f", report.TotalSpent)
	}
	premiumCard := unavailable
	if premium != nil {
		premiumCard = "free tier"
		if premium.Premium {
			premiumCard = "premium"
		}
	}

	card := func(title, value string) string {
		return lipgloss.JoinVertical(lipgloss.Left,
			p.styles.muted.Render(title),
			p.styles.title.Render(value),
		)
	}
	gap := "    "

	_, _ = fmt.Fprintln(p.out, p.styles.header.Render("dailyAGI · "+wallet.FormatAddress(address, 4)))
	_, _ = fmt.Fprintln(p.out, lipgloss.JoinHorizontal(lipgloss.Top,
		card("Reminders", reminderCard), gap,
		card("Spent (30d)", spendingCard), gap,
		card("Plan", premiumCard),
	))
}

// Transcript prints one chat message.
func (p *Printer) Transcript(user bool, content string) {
	label := p.styles.agent.Render("dailyAGI:")
	if user {
		label = p.styles.user.Render("you:")
	}
	_, _ = fmt.Fprintf(p.out, "%s %s\n", label, content)
}

func (p *Printer) table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	format := func(cells []string) string {
		padded := make([]string, len(cells))
		for i, cell := range cells {
			padded[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		return strings.TrimRight(strings.Join(padded, "  "), " ")
	}

	_, _ = fmt.Fprintln(p.out, p.styles.header.Render(format(headers)))
	for _, row := range rows {
		_, _ = fmt.Fprintln(p.out, format(row))
	}
}

func countPending(reminders []agentapi.Reminder) int {
	n := 0
	for _, r := range reminders {
		if !r.Completed {
			n++
		}
	}
	return n
}
