package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Backland-Labs/dailyagi/internal/agentapi"
	"github.com/Backland-Labs/dailyagi/internal/wallet"
)

func plainPrinter() (*Printer, *bytes.Buffer) {
	var out bytes.Buffer
	return NewPrinterWithWriters(&out, &out, false), &out
}

func TestReminders(t *testing.T) {
	p, out := plainPrinter()
	p.Reminders([]agentapi.Reminder{
		{ID: "r1", Title: "Call mom", Datetime: "tomorrow at 5pm"},
		{ID: "r22", Title: "Rent", Completed: true},
	})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"ID   TITLE     WHEN             STATUS",
		"r1   Call mom  tomorrow at 5pm  pending",
		"r22  Rent      -                done",
	}, lines)

	out.Reset()
	p.Reminders(nil)
	assert.Equal(t, "→ No reminders yet\n", out.String())
}

func TestSpending(t *testing.T) {
	p, out := plainPrinter()
	p.Spending(&agentapi.SpendingReport{
		Transactions: make([]agentapi.Transaction, 3),
		TotalSpent:   1200,
		Categories:   map[string]float64{"coffee": 200, "bills": 1000},
		Nudge:        "Slow down",
	}, agentapi.Range7Days)

	got := out.String()
	assert.Contains(t, got, "Spending, last 7 days")
	assert.Contains(t, got, "Total: $1200.00 across 3 transactions")
	assert.Contains(t, got, "bills  "+strings.Repeat("█", barWidth)+" $1000.00")
	assert.Contains(t, got, "⚠ Slow down")
	assert.Less(t, strings.Index(got, "bills"), strings.Index(got, "coffee"), "largest category first")
}

func TestGrocery(t *testing.T) {
	p, out := plainPrinter()
	p.Grocery(&agentapi.GroceryList{
		Items: []agentapi.GroceryItem{{Name: "Milk", Quantity: "1 gallon", Category: "Dairy"}},
		CID:   "QmABC",
	})
	assert.Contains(t, out.String(), "Milk  1 gallon  Dairy")
	assert.Contains(t, out.String(), "Saved as QmABC")

	out.Reset()
	p.Grocery(&agentapi.GroceryList{})
	assert.Contains(t, out.String(), "well-stocked")
}

func TestSession(t *testing.T) {
	p, out := plainPrinter()
	p.Session(wallet.Session{Address: wallet.DemoAddress, Provider: "demo", ChainID: 137, Connected: true})

	got := out.String()
	assert.Contains(t, got, "✓ Connected: 0x1234...7890")
	assert.Contains(t, got, "Network:  Polygon")

	out.Reset()
	p.Session(wallet.Session{})
	assert.Equal(t, "⚠ No wallet connected\n", out.String())
}

func TestDashboard(t *testing.T) {
	p, out := plainPrinter()
	p.Dashboard(wallet.DemoAddress,
		[]agentapi.Reminder{{ID: "a"}, {ID: "b", Completed: true}},
		nil,
		&agentapi.PremiumStatus{Premium: false},
	)

	got := out.String()
	assert.Contains(t, got, "dailyAGI · 0x1234...7890")
	assert.Contains(t, got, "1 active")
	assert.Contains(t, got, "unavailable")
	assert.Contains(t, got, "free tier")
}

func TestTranscript(t *testing.T) {
	p, out := plainPrinter()
	p.Transcript(true, "hi")
	p.Transcript(false, "hello")
	assert.Equal(t, "you: hi\ndailyAGI: hello\n", out.String())
}
