package ai

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// knownCategories is the canonical set suggestions are normalized into.
var knownCategories = []string{
	"Food & Dining",
	"Groceries",
	"Transportation",
	"Shopping",
	"Entertainment",
	"Bills & Utilities",
	"Healthcare",
	"Income",
	"Salary",
	"Freelance",
	"Other",
}

var amountPattern = regexp.MustCompile(`[$€£]?(\d+(?:[.,]\d{1,2})?)`)

var (
	expenseKeywords = []string{"spend", "spent", "paid", "bought", "cost"}
	incomeKeywords  = []string{"earn", "earned", "received", "got paid", "salary"}
)

// fallbackCategory is the rule-based categorizer used whenever the model is
// unavailable or returns garbage.
func fallbackCategory(description string, amount decimal.Decimal) string {
	d := strings.ToLower(description)
	switch {
	case containsAny(d, "grocery", "groceries", "food", "restaurant", "cafe", "coffee", "lunch", "dinner"):
		return "Food & Dining"
	case containsAny(d, "gas", "uber", "taxi", "transport", "bus", "train", "parking"):
		return "Transportation"
	case containsAny(d, "rent", "utility", "utilities", "bill", "insurance", "internet", "phone"):
		return "Bills & Utilities"
	case amount.IsPositive():
		return "Income"
	default:
		return "Other"
	}
}

// fallbackParse extracts a transaction from free text with a regex and
// keyword lists. It never fails; absent information becomes zero values.
func fallbackParse(text string, now time.Time) Suggestion {
	var amount decimal.Decimal
	if m := amountPattern.FindStringSubmatch(text); m != nil {
		raw := strings.Replace(m[1], ",", ".", 1)
		amount, _ = decimal.NewFromString(raw)
	}

	lower := strings.ToLower(text)
	isExpense := containsAny(lower, expenseKeywords...)
	isIncome := containsAny(lower, incomeKeywords...)

	typ := core.TypeExpense
	if isIncome && !isExpense {
		typ = core.TypeIncome
	}
	if typ == core.TypeExpense {
		amount = amount.Abs().Neg()
	} else {
		amount = amount.Abs()
	}

	desc := strings.TrimSpace(text)
	// Cut on rune boundaries so a multi-byte character is never split.
	if r := []rune(desc); len(r) > 50 {
		desc = string(r[:50])
	}

	return Suggestion{
		Description: desc,
		Amount:      amount,
		Category:    fallbackCategory(text, amount),
		Date:        now,
		Type:        typ,
		Source:      SourceFallback,
	}
}

// normalizeCategory maps a model-suggested label onto a known category,
// matching loosely in both directions. Unknown labels become "Other".
func normalizeCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" {
		return "Other"
	}
	for _, known := range knownCategories {
		k := strings.ToLower(known)
		if c == k || strings.Contains(c, k) || strings.Contains(k, c) {
			return known
		}
	}
	return "Other"
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
