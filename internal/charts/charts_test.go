package charts

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func tx(day int, desc, category string, typ core.TransactionType, amount string) core.Transaction {
	return core.Transaction{
		Date:        time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
		Description: desc,
		Category:    category,
		Type:        typ,
		Amount:      decimal.RequireFromString(amount),
		Currency:    "USD",
	}
}

func TestBuildProducesThreeTables(t *testing.T) {
	tables := Build(nil)
	if len(tables) != 3 {
		t.Fatalf("Build produced %d tables, want 3", len(tables))
	}
	wantTitles := []string{"Expenses by Category", "Balance Over Time", "Monthly Income vs Expenses"}
	for i, want := range wantTitles {
		if tables[i].Title != want {
			t.Errorf("tables[%d].Title = %q, want %q", i, tables[i].Title, want)
		}
	}
}

func TestCategoryTableLargestFirst(t *testing.T) {
	txs := []core.Transaction{
		tx(1, "Coffee", "Food & Dining", core.TypeExpense, "-4.50"),
		tx(2, "Rent", "Bills & Utilities", core.TypeExpense, "-900.00"),
		tx(3, "Salary", "Income", core.TypeIncome, "2000.00"),
		tx(4, "Lunch", "Food & Dining", core.TypeExpense, "-12.00"),
	}

	tbl := categoryTable(txs)
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d, want 2 (income excluded)", len(tbl.Rows))
	}
	if tbl.Rows[0][0] != "Bills & Utilities" || tbl.Rows[0][1] != "900.00" {
		t.Errorf("first row = %v, want Bills & Utilities 900.00", tbl.Rows[0])
	}
	if tbl.Rows[1][0] != "Food & Dining" || tbl.Rows[1][1] != "16.50" {
		t.Errorf("second row = %v, want Food & Dining 16.50", tbl.Rows[1])
	}
}

func TestCategoryTableUncategorized(t *testing.T) {
	tbl := categoryTable([]core.Transaction{
		tx(1, "Stuff", "", core.TypeExpense, "-5.00"),
	})
	if tbl.Rows[0][0] != "Uncategorized" {
		t.Errorf("category = %q, want Uncategorized", tbl.Rows[0][0])
	}
}

func TestBalanceTrendCapped(t *testing.T) {
	var txs []core.Transaction
	for i := 0; i < 40; i++ {
		txs = append(txs, tx(1, "Entry", "Other", core.TypeIncome, "1.00"))
	}

	tbl := balanceTrendTable(txs)
	if len(tbl.Rows) != maxBalanceTrendEntries {
		t.Fatalf("rows = %d, want %d", len(tbl.Rows), maxBalanceTrendEntries)
	}
	// The last row is the overall running balance: 40 deposits of 1.00.
	last := tbl.Rows[len(tbl.Rows)-1]
	if last[1] != "USD" || last[2] != "40.00" {
		t.Errorf("final row = %v, want USD 40.00", last)
	}
}

func TestBalanceTrendLabelsCurrencyPerRow(t *testing.T) {
	eur := tx(2, "Dinner", "Food & Dining", core.TypeExpense, "-30.00")
	eur.Currency = "EUR"
	txs := []core.Transaction{
		tx(1, "Salary", "Income", core.TypeIncome, "100.00"),
		eur,
		tx(3, "Coffee", "Food & Dining", core.TypeExpense, "-10.00"),
	}

	tbl := balanceTrendTable(txs)
	if len(tbl.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(tbl.Rows))
	}
	// Each row carries its own currency and per-currency running balance;
	// the EUR entry must not disturb the USD series.
	if tbl.Rows[1][1] != "EUR" || tbl.Rows[1][2] != "-30.00" {
		t.Errorf("EUR row = %v, want EUR -30.00", tbl.Rows[1])
	}
	if tbl.Rows[2][1] != "USD" || tbl.Rows[2][2] != "90.00" {
		t.Errorf("USD row = %v, want USD 90.00", tbl.Rows[2])
	}
}

func TestMonthlyTable(t *testing.T) {
	txs := []core.Transaction{
		tx(1, "Salary", "Income", core.TypeIncome, "2000.00"),
		tx(2, "Rent", "Bills & Utilities", core.TypeExpense, "-900.00"),
	}
	feb := tx(1, "Old salary", "Income", core.TypeIncome, "1800.00")
	feb.Date = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	txs = append(txs, feb)

	tbl := monthlyTable(txs)
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(tbl.Rows))
	}
	if tbl.Rows[0][0] != "2025-02" || tbl.Rows[0][1] != "1800.00" {
		t.Errorf("first row = %v, want 2025-02 with 1800.00 income", tbl.Rows[0])
	}
	if tbl.Rows[1][0] != "2025-03" || tbl.Rows[1][2] != "900.00" {
		t.Errorf("second row = %v, want 2025-03 with 900.00 expenses", tbl.Rows[1])
	}
}
