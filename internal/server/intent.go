package server

import (
	"regexp"
	"strings"

	"github.com/Backland-Labs/dailyagi/internal/agentapi"
)

// Intent is the sub-agent a chat message is routed to.
type Intent string

const (
	IntentReminders Intent = "reminders"
	IntentSpending  Intent = "spending"
	IntentGrocery   Intent = "grocery"
	IntentUnknown   Intent = "unknown"
)

// intentKeywords is ordered; on equal scores the earlier intent wins.
var intentKeywords = []struct {
	intent Intent
	words  []string
}{
	{IntentReminders, []string{
		"remind", "reminder", "schedule", "calendar", "appointment",
		"meeting", "call", "task", "todo", "remember", "alert",
	}},
	{IntentSpending, []string{
		"spend", "spending", "expense", "transaction", "money",
		"cost", "budget", "wallet", "balance", "purchase", "buy",
	}},
	{IntentGrocery, []string{
		"grocery", "groceries", "shopping", "fridge", "refrigerator",
		"food", "items", "list", "buy", "need", "missing",
	}},
}

// Detection is the result of DetectIntent.
type Detection struct {
	Intent     Intent
	Confidence float64
	Scores     map[Intent]int
}

// DetectIntent scores message against the keyword lists of every sub-agent.
// A keyword counts once, as a substring of the lowercased message.
func DetectIntent(message string) Detection {
	lower := strings.ToLower(message)

	scores := make(map[Intent]int, len(intentKeywords))
	best, bestScore, total := IntentUnknown, 0, 0
	for _, entry := range intentKeywords {
		score := 0
		for _, word := range entry.words {
			if strings.Contains(lower, word) {
				score++
			}
		}
		scores[entry.intent] = score
		total += score
		if score > bestScore {
			best, bestScore = entry.intent, score
		}
	}

	if total == 0 {
		return Detection{Intent: IntentUnknown, Confidence: 0, Scores: scores}
	}
	return Detection{
		Intent:     best,
		Confidence: float64(bestScore) / float64(total),
		Scores:     scores,
	}
}

var (
	reminderTitlePattern = regexp.MustCompile(`remind me (?:to |about )?(.+)`)
	reminderTimePattern  = regexp.MustCompile(`\b(?:tomorrow|tonight|next week|at \d{1,2}(?::\d{2})?(?:\s*(?:am|pm))?|in \d+ (?:minutes?|hours?|days?))\b`)
)

// reminderParams pulls a title and a free-form time phrase out of message.
func reminderParams(message string) (title, when string) {
	lower := strings.ToLower(strings.TrimSpace(message))

	when = strings.Join(reminderTimePattern.FindAllString(lower, -1), " ")

	if m := reminderTitlePattern.FindStringSubmatch(lower); m != nil {
		title = reminderTimePattern.ReplaceAllString(m[1], "")
		title = strings.TrimRight(strings.TrimSpace(title), ".!?")
		title = strings.Join(strings.Fields(title), " ")
	}
	if title == "" {
		title = "Reminder"
	}
	return title, when
}

// spendingRange maps phrases like "last week" to a time range.
func spendingRange(message string) agentapi.TimeRange {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "last week"), strings.Contains(lower, "this week"):
		return agentapi.Range7Days
	case strings.Contains(lower, "quarter"), strings.Contains(lower, "90 days"), strings.Contains(lower, "3 months"):
		return agentapi.Range90Days
	}
	return agentapi.Range30Days
}
