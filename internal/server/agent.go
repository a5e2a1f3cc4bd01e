package server

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Backland-Labs/dailyagi/internal/logger"
)

const (
	agentID      = "dailyagi"
	agentVersion = "0.1.0"

	helpReply = "I'm not sure how to help with that. Try asking about reminders, spending, or groceries!"
)

// Agent answers chat messages by routing them to the reminders, spending or
// grocery handlers backed by a Store.
type Agent struct {
	store *Store
}

// NewAgent creates an agent over store.
func NewAgent(store *Store) *Agent {
	return &Agent{store: store}
}

// Run answers message on behalf of wallet. Every step is reported through
// progress before the final reply is returned; a progress error aborts the
// run.
func (a *Agent) Run(ctx context.Context, message, wallet string, progress func(step string) error) (string, Intent, error) {
	step := func(s string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return progress(s)
	}

	if err := step("Analyzing your request..."); err != nil {
		return "", IntentUnknown, err
	}
	detection := DetectIntent(message)
	logger.WithFields(map[string]interface{}{
		"intent":     string(detection.Intent),
		"confidence": detection.Confidence,
	}).Debug("Intent detected")

	if detection.Intent == IntentUnknown {
		if err := step("No matching agent found"); err != nil {
			return "", detection.Intent, err
		}
		return helpReply, detection.Intent, nil
	}

	if err := step(fmt.Sprintf("Detected intent: %s (confidence: %.0f%%)", detection.Intent, detection.Confidence*100)); err != nil {
		return "", detection.Intent, err
	}
	if err := step("Extracting parameters..."); err != nil {
		return "", detection.Intent, err
	}

	var (
		reply string
		err   error
	)
	switch detection.Intent {
	case IntentReminders:
		reply, err = a.reminders(message, wallet, step)
	case IntentSpending:
		reply, err = a.spending(message, wallet, step)
	case IntentGrocery:
		reply, err = a.grocery(message, wallet, step)
	}
	if err != nil {
		return "", detection.Intent, err
	}

	if err := step("Finalizing response..."); err != nil {
		return "", detection.Intent, err
	}
	return reply, detection.Intent, nil
}

func (a *Agent) reminders(message, wallet string, step func(string) error) (string, error) {
	if err := step("Routing to Reminders Agent..."); err != nil {
		return "", err
	}
	if err := step("Processing reminder request..."); err != nil {
		return "", err
	}

	title, when := reminderParams(message)
	reminder := a.store.AddReminder(wallet, title, message, when)

	if reminder.Datetime == "" {
		return fmt.Sprintf("✅ Reminder set: %s", reminder.Title), nil
	}
	return fmt.Sprintf("✅ Reminder set: %s at %s", reminder.Title, reminder.Datetime), nil
}

func (a *Agent) spending(message, wallet string, step func(string) error) (string, error) {
	for _, s := range []string{
		"Routing to Spending Agent...",
		"Fetching on-chain transactions...",
		"Analyzing spending patterns...",
	} {
		if err := step(s); err != nil {
			return "", err
		}
	}

	report := a.store.Spending(wallet, spendingRange(message))

	categories := make([]string, 0, len(report.Categories))
	for category := range report.Categories {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var b strings.Builder
	fmt.Fprintf(&b, "💰 Spending Summary:\nTotal: $%.2f\n\n", report.TotalSpent)
	for _, category := range categories {
		fmt.Fprintf(&b, "%s: $%.2f\n", strings.ToUpper(category[:1])+category[1:], report.Categories[category])
	}
	if report.Nudge != "" {
		fmt.Fprintf(&b, "\n💡 %s", report.Nudge)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (a *Agent) grocery(message, wallet string, step func(string) error) (string, error) {
	if err := step("Routing to Grocery Agent..."); err != nil {
		return "", err
	}
	if err := step("Processing grocery request..."); err != nil {
		return "", err
	}

	// Without a photo the whole baseline list is missing; the message itself
	// can name items already at hand.
	list := a.store.GroceryFromImage(wallet, message, []byte(message))
	if len(list.Items) == 0 {
		return "✅ Your fridge looks well-stocked! No missing items detected.", nil
	}

	var b strings.Builder
	b.WriteString("🛒 Missing items detected:\n")
	for _, item := range list.Items {
		fmt.Fprintf(&b, "• %s (%s)\n", item.Name, item.Quantity)
	}
	fmt.Fprintf(&b, "\n📦 Shopping list saved: %s", list.CID)
	return b.String(), nil
}
