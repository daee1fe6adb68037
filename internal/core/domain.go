package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeIncome  TransactionType = "Income"
	TypeExpense TransactionType = "Expense"
)

type (
	TransactionType string

	// Transaction is a single ledger entry. Amount is signed: positive for
	// income, negative for expenses. The sign must agree with Type; use
	// Normalize to coerce user input before validation.
	Transaction struct {
		ID          string // row reference once persisted, empty before
		Date        time.Time
		Description string
		Category    string
		Type        TransactionType
		Amount      decimal.Decimal
		Currency    string
		// Balance is the running balance as stored in the sheet row.
		// Derived data; only trustworthy after reconciliation.
		Balance decimal.Decimal
	}

	// Limits bounds user-supplied fields. Values come from the settings
	// file; DefaultLimits applies when no settings are present.
	Limits struct {
		MaxDescriptionLen int
		MaxCategoryLen    int
		MaxAmount         decimal.Decimal
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long")
	ErrEmptyCategory      = errors.New("empty category")
	ErrCategoryTooLong    = errors.New("category too long")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrSignMismatch       = errors.New("amount sign does not match type")
	ErrZeroDate           = errors.New("date cannot be zero")
)

func DefaultLimits() Limits {
	return Limits{
		MaxDescriptionLen: 200,
		MaxCategoryLen:    50,
		MaxAmount:         decimal.New(1_000_000, 0),
	}
}

func (tt TransactionType) Valid() bool {
	return tt == TypeIncome || tt == TypeExpense
}

// ParseType accepts the stored strings plus lowercase user input.
func ParseType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return TypeIncome, nil
	case "expense":
		return TypeExpense, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
}

// Normalize coerces the amount sign to match the transaction type: expenses
// negative, income positive. A zero amount is left alone and rejected later
// by Validate.
func (t Transaction) Normalize() Transaction {
	switch t.Type {
	case TypeExpense:
		t.Amount = t.Amount.Abs().Neg()
	case TypeIncome:
		t.Amount = t.Amount.Abs()
	}
	return t
}

// Validate checks the transaction against the given limits. It never touches
// the network; callers reject invalid input before any remote call.
func (t Transaction) Validate(limits Limits) error {
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if t.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if t.Type == TypeExpense && t.Amount.IsPositive() || t.Type == TypeIncome && t.Amount.IsNegative() {
		return ErrSignMismatch
	}
	if t.Amount.Abs().GreaterThan(limits.MaxAmount) {
		return fmt.Errorf("%w (max %s)", ErrAmountTooLarge, limits.MaxAmount)
	}
	desc := strings.TrimSpace(t.Description)
	if desc == "" {
		return ErrEmptyDescription
	}
	if len(desc) > limits.MaxDescriptionLen {
		return fmt.Errorf("%w (max %d characters)", ErrDescriptionTooLong, limits.MaxDescriptionLen)
	}
	cat := strings.TrimSpace(t.Category)
	if cat == "" {
		return ErrEmptyCategory
	}
	if len(cat) > limits.MaxCategoryLen {
		return fmt.Errorf("%w (max %d characters)", ErrCategoryTooLong, limits.MaxCategoryLen)
	}
	return ValidateCurrency(t.Currency)
}

// ValidateCurrency accepts three-letter uppercase ISO 4217 codes.
func ValidateCurrency(code string) error {
	if len(code) != 3 {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
		}
	}
	return nil
}

func (t Transaction) IsExpense() bool { return t.Amount.IsNegative() }
func (t Transaction) IsIncome() bool  { return t.Amount.IsPositive() }

func (t Transaction) String() string {
	return fmt.Sprintf("%s: %s (%s) %s %s [%s]",
		t.Date.Format("2006-01-02"), t.Description, t.Category,
		t.Amount.StringFixed(2), t.Currency, t.Type)
}
