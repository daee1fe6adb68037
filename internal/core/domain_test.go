package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validTx() Transaction {
	return Transaction{
		Date:        time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Description: "Grocery shopping",
		Category:    "Food & Dining",
		Type:        TypeExpense,
		Amount:      decimal.NewFromFloat(-50.00),
		Currency:    "USD",
	}
}

func TestTransactionValidate(t *testing.T) {
	limits := DefaultLimits()

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"valid expense", func(*Transaction) {}, nil},
		{"valid income", func(tx *Transaction) {
			tx.Type = TypeIncome
			tx.Amount = decimal.NewFromInt(500)
		}, nil},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, ErrZeroDate},
		{"zero amount", func(tx *Transaction) { tx.Amount = decimal.Zero }, ErrInvalidAmount},
		{"expense with positive amount", func(tx *Transaction) {
			tx.Amount = decimal.NewFromInt(50)
		}, ErrSignMismatch},
		{"income with negative amount", func(tx *Transaction) {
			tx.Type = TypeIncome
		}, ErrSignMismatch},
		{"amount over limit", func(tx *Transaction) {
			tx.Amount = decimal.New(-2_000_000, 0)
		}, ErrAmountTooLarge},
		{"empty description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"description too long", func(tx *Transaction) {
			tx.Description = strings.Repeat("x", 201)
		}, ErrDescriptionTooLong},
		{"empty category", func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
		{"category too long", func(tx *Transaction) {
			tx.Category = strings.Repeat("c", 51)
		}, ErrCategoryTooLong},
		{"bad type", func(tx *Transaction) { tx.Type = "Transfer" }, ErrInvalidType},
		{"bad currency", func(tx *Transaction) { tx.Currency = "usd" }, ErrInvalidCurrency},
		{"short currency", func(tx *Transaction) { tx.Currency = "EU" }, ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTx()
			tt.mutate(&tx)
			err := tx.Validate(limits)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeCoercesSign(t *testing.T) {
	tx := validTx()
	tx.Amount = decimal.NewFromFloat(50.00) // user typed positive for an expense
	tx = tx.Normalize()
	if !tx.Amount.Equal(decimal.NewFromFloat(-50.00)) {
		t.Fatalf("expense not negated: %s", tx.Amount)
	}

	tx.Type = TypeIncome
	tx = tx.Normalize()
	if !tx.Amount.Equal(decimal.NewFromFloat(50.00)) {
		t.Fatalf("income not positive: %s", tx.Amount)
	}
}

func TestParseType(t *testing.T) {
	for in, want := range map[string]TransactionType{
		"income": TypeIncome, "Income": TypeIncome, " EXPENSE ": TypeExpense, "expense": TypeExpense,
	} {
		got, err := ParseType(in)
		if err != nil || got != want {
			t.Errorf("ParseType(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseType("transfer"); !errors.Is(err, ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}
}
