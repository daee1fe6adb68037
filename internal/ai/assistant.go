package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Source tells the caller whether a suggestion came from the model or from
// the rule-based fallback.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Suggestion is a proposed transaction extracted from natural language.
// It is advice, not a record: the caller still validates and confirms it
// before anything is persisted.
type Suggestion struct {
	Description string
	Amount      decimal.Decimal
	Category    string
	Date        time.Time
	Type        core.TransactionType
	Source      Source
}

var ErrEmptyInput = errors.New("empty input")

// Assistant wraps the Gemini client with rule-based fallbacks. Every method
// degrades instead of failing: a dead model never blocks data entry.
type Assistant struct {
	client *Client
	logger *log.Logger
	now    func() time.Time
}

type AssistantOption func(*Assistant)

func WithClock(now func() time.Time) AssistantOption {
	return func(a *Assistant) { a.now = now }
}

func NewAssistant(client *Client, opts ...AssistantOption) *Assistant {
	a := &Assistant{
		client: client,
		logger: log.New(log.LevelFromEnv(), "ai"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Enabled reports whether the model path is available.
func (a *Assistant) Enabled() bool {
	return a.client.Enabled()
}

// CategorizeTransaction suggests a category for a description and amount.
// It never returns an error: when the model is unavailable or answers with
// an unusable label, the keyword fallback answers instead.
func (a *Assistant) CategorizeTransaction(ctx context.Context, description string, amount decimal.Decimal) (string, Source) {
	if !a.client.Enabled() {
		return fallbackCategory(description, amount), SourceFallback
	}

	prompt := fmt.Sprintf(`You are a personal finance assistant.
Suggest the most appropriate category for this transaction.

Description: %s
Amount: %s

Available categories: %s

Respond with ONLY the category name, nothing else.`,
		description, amount.StringFixed(2), strings.Join(knownCategories, ", "))

	text, err := a.client.generate(ctx, prompt, false)
	if err != nil {
		a.logger.WarnContext(ctx, "categorization fell back to rules", "error", err)
		return fallbackCategory(description, amount), SourceFallback
	}
	return normalizeCategory(text), SourceModel
}

// parsedTransaction is the JSON shape the model is asked to produce.
type parsedTransaction struct {
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
	Type        string      `json:"type"`
}

// ParseTransaction turns free text like "Spent $45 on gas" into a
// Suggestion. Model failures degrade to regex parsing; only empty input is
// an error.
func (a *Assistant) ParseTransaction(ctx context.Context, text string) (Suggestion, error) {
	if strings.TrimSpace(text) == "" {
		return Suggestion{}, ErrEmptyInput
	}
	if !a.client.Enabled() {
		return fallbackParse(text, a.now()), nil
	}

	prompt := fmt.Sprintf(`Extract transaction details from this text: "%s"

Respond with ONLY a JSON object in this exact shape:
{"description": "...", "amount": -25.00, "category": "...", "date": "2006-01-02", "type": "Expense"}

Rules:
- amount is negative for expenses, positive for income
- type is "Expense" or "Income"
- category must be one of: %s
- date defaults to %s when the text has no date`,
		text, strings.Join(knownCategories, ", "), a.now().Format("2006-01-02"))

	raw, err := a.client.generate(ctx, prompt, true)
	if err != nil {
		a.logger.WarnContext(ctx, "parse fell back to rules", "error", err)
		return fallbackParse(text, a.now()), nil
	}

	var parsed parsedTransaction
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		a.logger.WarnContext(ctx, "unusable model output, falling back", "error", err)
		return fallbackParse(text, a.now()), nil
	}

	s, ok := a.toSuggestion(parsed)
	if !ok {
		return fallbackParse(text, a.now()), nil
	}
	return s, nil
}

func (a *Assistant) toSuggestion(p parsedTransaction) (Suggestion, bool) {
	amount, err := decimal.NewFromString(p.Amount.String())
	if err != nil {
		return Suggestion{}, false
	}

	typ, err := core.ParseType(p.Type)
	if err != nil {
		if amount.IsNegative() {
			typ = core.TypeExpense
		} else {
			typ = core.TypeIncome
		}
	}

	date := a.now()
	if p.Date != "" {
		if d, err := time.Parse("2006-01-02", p.Date); err == nil {
			date = d
		}
	}

	desc := strings.TrimSpace(p.Description)
	if desc == "" {
		return Suggestion{}, false
	}

	return Suggestion{
		Description: desc,
		Amount:      amount,
		Category:    normalizeCategory(p.Category),
		Date:        date,
		Type:        typ,
		Source:      SourceModel,
	}, true
}

// SummarizeSpending produces a short narrative over recent transactions. A
// disabled or failing model yields a computed plain-text summary.
func (a *Assistant) SummarizeSpending(ctx context.Context, txs []core.Transaction, balances core.Balances) (string, Source) {
	if !a.client.Enabled() {
		return plainSummary(txs, balances), SourceFallback
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a personal finance assistant. Summarize this spending in 3 short sentences.\n\nBalances:\n")
	for cur, amount := range balances {
		fmt.Fprintf(&b, "- %s %s\n", cur, amount.StringFixed(2))
	}
	b.WriteString("\nRecent transactions:\n")
	for _, t := range txs {
		fmt.Fprintf(&b, "- %s | %s | %s %s\n",
			t.Date.Format("2006-01-02"), t.Description, t.Amount.StringFixed(2), t.Currency)
	}

	text, err := a.client.generate(ctx, b.String(), false)
	if err != nil {
		a.logger.WarnContext(ctx, "summary fell back to computed text", "error", err)
		return plainSummary(txs, balances), SourceFallback
	}
	return strings.TrimSpace(text), SourceModel
}

func plainSummary(txs []core.Transaction, balances core.Balances) string {
	var income, expense decimal.Decimal
	for _, t := range txs {
		if t.IsExpense() {
			expense = expense.Add(t.Amount.Abs())
		} else {
			income = income.Add(t.Amount)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d transactions: %s income, %s spent.", len(txs),
		income.StringFixed(2), expense.StringFixed(2))
	for cur, amount := range balances {
		fmt.Fprintf(&b, " %s balance: %s.", cur, amount.StringFixed(2))
	}
	return b.String()
}
