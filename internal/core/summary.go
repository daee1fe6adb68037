package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Balances maps a currency code to a balance. Always derived from the
// transaction list, never stored independently of the ability to recompute.
type Balances map[string]decimal.Decimal

// Currencies returns the currency codes in sorted order for stable display.
func (b Balances) Currencies() []string {
	out := make([]string, 0, len(b))
	for cur := range b {
		out = append(out, cur)
	}
	sort.Strings(out)
	return out
}

// CategoryTotals splits a category's movements into income and expense sums.
type CategoryTotals struct {
	Name    string
	Income  decimal.Decimal
	Expense decimal.Decimal
}

func (ct CategoryTotals) Net() decimal.Decimal {
	return ct.Income.Sub(ct.Expense)
}

// SumByCurrency recomputes balances by summing signed amounts per currency.
func SumByCurrency(txs []Transaction) Balances {
	out := Balances{}
	for _, t := range txs {
		out[t.Currency] = out[t.Currency].Add(t.Amount)
	}
	return out
}

// SummarizeCategories aggregates income and expense totals per category,
// preserving first-seen order.
func SummarizeCategories(txs []Transaction) []CategoryTotals {
	idx := map[string]int{}
	var out []CategoryTotals
	for _, t := range txs {
		name := t.Category
		if name == "" {
			name = "Uncategorized"
		}
		i, ok := idx[name]
		if !ok {
			i = len(out)
			idx[name] = i
			out = append(out, CategoryTotals{Name: name})
		}
		if t.Amount.IsNegative() {
			out[i].Expense = out[i].Expense.Add(t.Amount.Abs())
		} else {
			out[i].Income = out[i].Income.Add(t.Amount)
		}
	}
	return out
}

// RunningBalances recomputes the running balance column from scratch: entry
// i holds the per-currency sum of amounts over txs[0..i].
func RunningBalances(txs []Transaction) []decimal.Decimal {
	running := Balances{}
	out := make([]decimal.Decimal, len(txs))
	for i, t := range txs {
		running[t.Currency] = running[t.Currency].Add(t.Amount)
		out[i] = running[t.Currency]
	}
	return out
}
