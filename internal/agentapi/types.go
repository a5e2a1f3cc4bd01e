package agentapi

import "encoding/json"

// TimeRange is the window of a spending analysis.
type TimeRange string

const (
	Range7Days  TimeRange = "7d"
	Range30Days TimeRange = "30d"
	Range90Days TimeRange = "90d"
)

// Valid reports whether r is one of the supported ranges.
func (r TimeRange) Valid() bool {
	switch r {
	case Range7Days, Range30Days, Range90Days:
		return true
	}
	return false
}

// Days returns the number of days covered by r, 30 for unknown ranges.
func (r TimeRange) Days() int {
	switch r {
	case Range7Days:
		return 7
	case Range90Days:
		return 90
	}
	return 30
}

// Health is the body of GET /health.
type Health struct {
	Status  string            `json:"status"`
	Agents  map[string]string `json:"agents,omitempty"`
	Agent   string            `json:"agent,omitempty"`
	Version string            `json:"version,omitempty"`
}

// Reminder is one calendar reminder owned by a wallet.
type Reminder struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Datetime    string `json:"datetime"`
	Completed   bool   `json:"completed"`
	CreatedAt   string `json:"created_at"`
	Address     string `json:"address"`
	CID         string `json:"cid,omitempty"`
}

// NewReminder is the body of POST /agent/reminders.
type NewReminder struct {
	Address     string `json:"address"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Datetime    string `json:"datetime"`
}

// Transaction is a classified on-chain transaction.
type Transaction struct {
	Hash        string  `json:"hash"`
	Value       float64 `json:"value"`
	Category    string  `json:"category"`
	Timestamp   string  `json:"timestamp"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	Description string  `json:"description,omitempty"`
}

// ChartPoint is the amount spent on one day.
type ChartPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// SpendingReport is the body of POST /agent/spending.
type SpendingReport struct {
	Transactions []Transaction      `json:"transactions"`
	TotalSpent   float64            `json:"totalSpent"`
	Categories   map[string]float64 `json:"categories"`
	ChartData    []ChartPoint       `json:"chartData"`
	Nudge        string             `json:"nudge,omitempty"`
	CID          string             `json:"cid,omitempty"`
}

// GroceryItem is one entry of a shopping list.
type GroceryItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Category string `json:"category"`
}

// GroceryList is the shopping list generated from a fridge photo.
type GroceryList struct {
	Items     []GroceryItem `json:"items"`
	CID       string        `json:"cid,omitempty"`
	Timestamp string        `json:"timestamp"`
}

// PremiumStatus reports whether a wallet staked enough for premium features.
type PremiumStatus struct {
	Premium      bool   `json:"premium"`
	StakedAmount string `json:"staked_amount"`
	UnlockDate   string `json:"unlock_date,omitempty"`
}

// RunRequest is the body of POST /agent/run.
type RunRequest struct {
	Address   string                 `json:"address"`
	AgentType string                 `json:"agent_type"`
	Params    map[string]interface{} `json:"params,omitempty"`
}

// RunResult is the body returned by POST /agent/run. Result is left raw since
// its shape depends on the agent.
type RunResult struct {
	Success        bool            `json:"success"`
	Agent          string          `json:"agent"`
	OMLFingerprint string          `json:"oml_fingerprint"`
	Result         json.RawMessage `json:"result"`
}
