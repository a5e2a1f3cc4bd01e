package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Backland-Labs/dailyagi/internal/agentapi"
	"github.com/Backland-Labs/dailyagi/internal/logger"
)

// nudgeThreshold is the total above which a spending report carries a nudge.
const nudgeThreshold = 1000.0

// essentialGroceries is the baseline shopping list; items spotted in the
// photo are removed from it.
var essentialGroceries = []agentapi.GroceryItem{
	{Name: "Milk", Quantity: "1 gallon", Category: "Dairy"},
	{Name: "Eggs", Quantity: "1 dozen", Category: "Dairy"},
	{Name: "Bread", Quantity: "1 loaf", Category: "Bakery"},
	{Name: "Bananas", Quantity: "1 bunch", Category: "Fruits"},
	{Name: "Chicken Breast", Quantity: "1 lb", Category: "Meat"},
	{Name: "Lettuce", Quantity: "1 head", Category: "Vegetables"},
}

var merchants = []struct {
	description string
	max         float64
}{
	{"Starbucks coffee", 9},
	{"Corner cafe", 7},
	{"Restaurant dinner", 85},
	{"Food delivery", 45},
	{"Electric utility bill", 160},
	{"Internet bill", 70},
	{"Amazon store order", 130},
	{"Movie tickets", 32},
	{"Game purchase", 60},
	{"Gas station", 55},
}

var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"coffee", []string{"coffee", "cafe", "starbucks"}},
	{"food", []string{"food", "restaurant", "dining"}},
	{"bills", []string{"bill", "utility", "rent"}},
	{"shopping", []string{"shop", "store", "amazon"}},
	{"entertainment", []string{"movie", "game", "entertainment"}},
}

// classifyTransaction assigns a spending category from the description.
func classifyTransaction(description string) string {
	lower := strings.ToLower(description)
	for _, entry := range categoryKeywords {
		for _, word := range entry.words {
			if strings.Contains(lower, word) {
				return entry.category
			}
		}
	}
	return "other"
}

// UsageRecord is one billed agent invocation.
type UsageRecord struct {
	Wallet    string  `json:"wallet"`
	AgentID   string  `json:"agent_id"`
	Version   string  `json:"version"`
	Timestamp string  `json:"timestamp"`
	Cost      float64 `json:"cost"`
	AgentType Intent  `json:"agent_type"`
}

// UsageCost returns the cost in SENT of one invocation. Reminders are free
// on the free tier and premium wallets never pay per use.
func UsageCost(intent Intent, premium bool) float64 {
	if premium || intent == IntentReminders {
		return 0
	}
	return 0.001
}

// Store is the in-memory backing data of the demo backend.
type Store struct {
	mu        sync.Mutex
	reminders map[string][]agentapi.Reminder
	groceries map[string]agentapi.GroceryList
	usage     []UsageRecord
	now       func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		reminders: make(map[string][]agentapi.Reminder),
		groceries: make(map[string]agentapi.GroceryList),
		now:       time.Now,
	}
}

// AddReminder stores a reminder for address and returns it.
func (s *Store) AddReminder(address, title, description, datetime string) agentapi.Reminder {
	reminder := agentapi.Reminder{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Datetime:    datetime,
		CreatedAt:   s.now().Format(time.RFC3339),
		Address:     address,
	}
	reminder.CID = contentID(reminder)

	s.mu.Lock()
	s.reminders[address] = append(s.reminders[address], reminder)
	s.mu.Unlock()

	logger.WithFields(map[string]interface{}{
		"reminder_id": reminder.ID,
		"address":     address,
	}).Debug("Reminder stored")
	return reminder
}

// Reminders returns the reminders of address, never nil.
func (s *Store) Reminders(address string) []agentapi.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]agentapi.Reminder{}, s.reminders[address]...)
}

// DeleteReminder removes reminder id of address and reports whether it existed.
func (s *Store) DeleteReminder(address, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.reminders[address]
	for i, r := range list {
		if r.ID == id {
			s.reminders[address] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Spending builds a spending report for address. Transactions are generated
// from a seed derived from the address and range, so repeated calls agree.
func (s *Store) Spending(address string, tr agentapi.TimeRange) agentapi.SpendingReport {
	days := tr.Days()

	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(address) + "/" + string(tr)))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	now := s.now()
	count := days/3 + rng.Intn(days/3+1)

	report := agentapi.SpendingReport{
		Transactions: make([]agentapi.Transaction, 0, count),
		Categories:   make(map[string]float64),
	}
	daily := make(map[string]float64)

	for i := 0; i < count; i++ {
		m := merchants[rng.Intn(len(merchants))]
		value := math.Round((1+rng.Float64()*(m.max-1))*100) / 100
		ts := now.Add(-time.Duration(rng.Intn(days*24)) * time.Hour)

		sum := sha256.Sum256([]byte(fmt.Sprintf("%s/%s/%d", address, tr, i)))
		tx := agentapi.Transaction{
			Hash:        "0x" + hex.EncodeToString(sum[:]),
			Value:       value,
			Category:    classifyTransaction(m.description),
			Timestamp:   ts.Format(time.RFC3339),
			From:        address,
			To:          "0x" + hex.EncodeToString(sum[:20]),
			Description: m.description,
		}
		report.Transactions = append(report.Transactions, tx)
		report.Categories[tx.Category] += value
		report.TotalSpent += value
		daily[tx.Timestamp[:10]] += value
	}

	dates := make([]string, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	report.ChartData = make([]agentapi.ChartPoint, 0, len(dates))
	for _, date := range dates {
		report.ChartData = append(report.ChartData, agentapi.ChartPoint{Date: date, Amount: daily[date]})
	}

	report.TotalSpent = math.Round(report.TotalSpent*100) / 100
	if report.TotalSpent > nudgeThreshold {
		report.Nudge = fmt.Sprintf("You've spent $%.2f in the last %d days. Setting a weekly budget could help.", report.TotalSpent, days)
	}
	report.CID = contentID(report)
	return report
}

// GroceryFromImage builds a shopping list from a fridge photo and stores it
// under its content id. Items named in the filename count as already in the
// fridge.
func (s *Store) GroceryFromImage(address, filename string, image []byte) agentapi.GroceryList {
	detected := strings.ToLower(filename)

	items := make([]agentapi.GroceryItem, 0, len(essentialGroceries))
	for _, item := range essentialGroceries {
		name := strings.ToLower(item.Name)
		if strings.Contains(detected, name) || strings.Contains(detected, strings.Fields(name)[0]) {
			continue
		}
		items = append(items, item)
	}

	sum := sha256.Sum256(append([]byte(address+"/"), image...))
	list := agentapi.GroceryList{
		Items:     items,
		CID:       "Qm" + hex.EncodeToString(sum[:])[:44],
		Timestamp: s.now().Format(time.RFC3339),
	}

	s.mu.Lock()
	s.groceries[list.CID] = list
	s.mu.Unlock()
	return list
}

// Grocery returns the stored list with cid.
func (s *Store) Grocery(cid string) (agentapi.GroceryList, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.groceries[cid]
	return list, ok
}

// RecordUsage logs one agent invocation and returns its record.
func (s *Store) RecordUsage(wallet string, intent Intent, premium bool) UsageRecord {
	record := UsageRecord{
		Wallet:    wallet,
		AgentID:   agentID,
		Version:   agentVersion,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Cost:      UsageCost(intent, premium),
		AgentType: intent,
	}

	s.mu.Lock()
	s.usage = append(s.usage, record)
	s.mu.Unlock()

	logger.WithFields(map[string]interface{}{
		"wallet":     wallet,
		"agent_type": string(intent),
		"cost":       record.Cost,
	}).Info("Agent invocation recorded")
	return record
}

// Usage returns every recorded invocation.
func (s *Store) Usage() []UsageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]UsageRecord(nil), s.usage...)
}

// contentID derives an IPFS-style identifier from the JSON encoding of v.
func contentID(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return "Qm" + hex.EncodeToString(sum[:])[:44]
}
