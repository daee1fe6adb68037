package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func tx(amount string, currency, category string) Transaction {
	a, _ := decimal.NewFromString(amount)
	typ := TypeIncome
	if a.IsNegative() {
		typ = TypeExpense
	}
	return Transaction{
		Date:        time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		Description: "t",
		Category:    category,
		Type:        typ,
		Amount:      a,
		Currency:    currency,
	}
}

func TestSumByCurrency(t *testing.T) {
	txs := []Transaction{
		tx("100.00", "USD", "Salary"),
		tx("-37.50", "USD", "Food & Dining"),
		tx("20.00", "EUR", "Gift"),
	}
	got := SumByCurrency(txs)
	if want, _ := decimal.NewFromString("62.50"); !got["USD"].Equal(want) {
		t.Errorf("USD = %s, want 62.50", got["USD"])
	}
	if want, _ := decimal.NewFromString("20.00"); !got["EUR"].Equal(want) {
		t.Errorf("EUR = %s, want 20.00", got["EUR"])
	}
}

func TestSummarizeCategoriesOrderAndTotals(t *testing.T) {
	txs := []Transaction{
		tx("-10", "USD", "Food & Dining"),
		tx("-5", "USD", "Transportation"),
		tx("-2.50", "USD", "Food & Dining"),
		tx("100", "USD", "Salary"),
	}
	got := SummarizeCategories(txs)
	if len(got) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(got))
	}
	if got[0].Name != "Food & Dining" || got[1].Name != "Transportation" || got[2].Name != "Salary" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if want, _ := decimal.NewFromString("12.50"); !got[0].Expense.Equal(want) {
		t.Errorf("food expense = %s, want 12.50", got[0].Expense)
	}
	if !got[2].Net().Equal(decimal.NewFromInt(100)) {
		t.Errorf("salary net = %s, want 100", got[2].Net())
	}
}

func TestRunningBalancesPerCurrency(t *testing.T) {
	txs := []Transaction{
		tx("100", "USD", "Salary"),
		tx("50", "EUR", "Gift"),
		tx("-40", "USD", "Food & Dining"),
	}
	got := RunningBalances(txs)
	want := []string{"100", "50", "60"}
	for i, w := range want {
		wd, _ := decimal.NewFromString(w)
		if !got[i].Equal(wd) {
			t.Errorf("running[%d] = %s, want %s", i, got[i], wd)
		}
	}
}
