package charts

import (
	"sort"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

// maxBalanceTrendEntries caps the balance trend so the chart stays legible.
const maxBalanceTrendEntries = 30

// Build computes the analysis tables from the transaction history. It is
// pure; writing the tables to a worksheet is the caller's job.
func Build(txs []core.Transaction) []sheets.Table {
	return []sheets.Table{
		categoryTable(txs),
		balanceTrendTable(txs),
		monthlyTable(txs),
	}
}

// categoryTable breaks expenses down by category, largest first.
func categoryTable(txs []core.Transaction) sheets.Table {
	totals := map[string]decimal.Decimal{}
	var order []string
	for _, t := range txs {
		if !t.IsExpense() {
			continue
		}
		cat := t.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		if _, seen := totals[cat]; !seen {
			order = append(order, cat)
		}
		totals[cat] = totals[cat].Add(t.Amount.Abs())
	}

	sort.SliceStable(order, func(i, j int) bool {
		return totals[order[i]].GreaterThan(totals[order[j]])
	})

	tbl := sheets.Table{
		Title:  "Expenses by Category",
		Header: []string{"Category", "Amount"},
	}
	for _, cat := range order {
		tbl.Rows = append(tbl.Rows, []string{cat, totals[cat].StringFixed(2)})
	}
	return tbl
}

// balanceTrendTable lists the running balance of the most recent entries.
// Balances run per currency, so each row carries its currency; a
// mixed-currency sheet yields one labelled series per currency instead of
// a single trend mixing units.
func balanceTrendTable(txs []core.Transaction) sheets.Table {
	balances := core.RunningBalances(txs)

	start := 0
	if len(txs) > maxBalanceTrendEntries {
		start = len(txs) - maxBalanceTrendEntries
	}

	tbl := sheets.Table{
		Title:  "Balance Over Time",
		Header: []string{"Date", "Currency", "Balance"},
	}
	for i := start; i < len(txs); i++ {
		tbl.Rows = append(tbl.Rows, []string{
			txs[i].Date.Format("2006-01-02"),
			txs[i].Currency,
			balances[i].StringFixed(2),
		})
	}
	return tbl
}

// monthlyTable sums income and expenses per calendar month, oldest first.
func monthlyTable(txs []core.Transaction) sheets.Table {
	type monthTotals struct {
		income  decimal.Decimal
		expense decimal.Decimal
	}
	months := map[string]*monthTotals{}
	var order []string
	for _, t := range txs {
		key := t.Date.Format("2006-01")
		m, ok := months[key]
		if !ok {
			m = &monthTotals{}
			months[key] = m
			order = append(order, key)
		}
		if t.IsExpense() {
			m.expense = m.expense.Add(t.Amount.Abs())
		} else {
			m.income = m.income.Add(t.Amount)
		}
	}
	sort.Strings(order)

	tbl := sheets.Table{
		Title:  "Monthly Income vs Expenses",
		Header: []string{"Month", "Income", "Expenses"},
	}
	for _, key := range order {
		m := months[key]
		tbl.Rows = append(tbl.Rows, []string{
			key, m.income.StringFixed(2), m.expense.StringFixed(2),
		})
	}
	return tbl
}
