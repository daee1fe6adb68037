package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"fintrack/internal/ai"
	"fintrack/internal/charts"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/retry"
)

const maxInputRetries = 3

// Menu drives the interactive terminal session. Input and output are plain
// io interfaces so tests can script a session.
type Menu struct {
	ledger    *ledger.Ledger
	assistant *ai.Assistant
	settings  config.Settings
	in        *bufio.Scanner
	out       io.Writer
	logger    *log.Logger
}

func NewMenu(l *ledger.Ledger, a *ai.Assistant, settings config.Settings, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		ledger:    l,
		assistant: a,
		settings:  settings,
		in:        bufio.NewScanner(in),
		out:       out,
		logger:    log.New(log.LevelFromEnv(), "menu"),
	}
}

type menuOption struct {
	label   string
	handler func(*Menu, context.Context) error
}

var menuOptions = []menuOption{
	{"Add Expense", func(m *Menu, ctx context.Context) error { return m.addTransaction(ctx, core.TypeExpense) }},
	{"Add Income", func(m *Menu, ctx context.Context) error { return m.addTransaction(ctx, core.TypeIncome) }},
	{"View Recent Transactions", (*Menu).viewRecent},
	{"Category Summary", (*Menu).categorySummary},
	{"Check Balance", (*Menu).checkBalance},
	{"Update Analysis", (*Menu).updateAnalysis},
	{"Reconcile Balances", (*Menu).reconcile},
	{"Quick Add (natural language)", (*Menu).quickAdd},
}

// Run loops over the menu until the user exits or input ends.
func (m *Menu) Run(ctx context.Context) error {
	fmt.Fprintln(m.out, "Personal Finance Tracker")
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fmt.Fprintln(m.out)
		for i, opt := range menuOptions {
			fmt.Fprintf(m.out, "%d. %s\n", i+1, opt.label)
		}
		fmt.Fprintf(m.out, "%d. Exit\n", len(menuOptions)+1)

		choice, ok := m.prompt(fmt.Sprintf("Enter your choice (1-%d): ", len(menuOptions)+1))
		if !ok {
			return nil
		}

		n, err := strconv.Atoi(choice)
		if err != nil || n < 1 || n > len(menuOptions)+1 {
			fmt.Fprintln(m.out, "Invalid choice, try again.")
			continue
		}
		if n == len(menuOptions)+1 {
			fmt.Fprintln(m.out, "Goodbye!")
			return nil
		}

		if err := menuOptions[n-1].handler(m, ctx); err != nil {
			m.printError(err)
		}
	}
}

func (m *Menu) addTransaction(ctx context.Context, typ core.TransactionType) error {
	desc, ok := m.promptNonEmpty("Description: ")
	if !ok {
		return nil
	}

	amount, ok := m.promptAmount()
	if !ok {
		return nil
	}

	category, ok := m.prompt("Category (empty for a suggestion): ")
	if !ok {
		return nil
	}
	if category == "" {
		signed := amount
		if typ == core.TypeExpense {
			signed = amount.Neg()
		}
		suggested, source := m.assistant.CategorizeTransaction(ctx, desc, signed)
		fmt.Fprintf(m.out, "Suggested category (%s): %s\n", source, suggested)
		category = suggested
	}

	tx, err := m.ledger.AddTransaction(ctx, core.Transaction{
		Description: desc,
		Category:    category,
		Type:        typ,
		Amount:      amount,
		Currency:    m.settings.Currency,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(m.out, "Recorded %s %s. New balance: %s %s\n",
		string(tx.Type), tx.Amount.Abs().StringFixed(2), tx.Currency, tx.Balance.StringFixed(2))

	if m.settings.AutoUpdateAnalysis {
		if err := m.refreshAnalysis(ctx); err != nil {
			m.logger.Warn("auto-update of analysis failed", "error", err)
		}
	}
	return nil
}

func (m *Menu) refreshAnalysis(ctx context.Context) error {
	txs, err := m.ledger.Transactions(ctx)
	if err != nil {
		return err
	}
	return m.ledger.UpdateAnalysis(ctx, charts.Build(txs))
}

func (m *Menu) viewRecent(ctx context.Context) error {
	limit := m.settings.MaxRecentTransactions
	raw, ok := m.prompt(fmt.Sprintf("How many recent transactions to show? (default %d): ", limit))
	if !ok {
		return nil
	}
	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	txs, err := m.ledger.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Fprintln(m.out, "No transactions yet.")
		return nil
	}

	w := tabwriter.NewWriter(m.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Date\tDescription\tCategory\tType\tAmount\tBalance")
	for _, t := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Date.Format("2006-01-02"),
			truncate(t.Description, 30),
			t.Category,
			t.Type,
			t.Amount.StringFixed(2),
			t.Balance.StringFixed(2))
	}
	return w.Flush()
}

func (m *Menu) categorySummary(ctx context.Context) error {
	totals, err := m.ledger.CategorySummary(ctx)
	if err != nil {
		return err
	}
	if len(totals) == 0 {
		fmt.Fprintln(m.out, "No transactions yet.")
		return nil
	}

	w := tabwriter.NewWriter(m.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Category\tIncome\tExpenses\tNet")
	for _, c := range totals {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			c.Name, c.Income.StringFixed(2), c.Expense.StringFixed(2), c.Net().StringFixed(2))
	}
	return w.Flush()
}

func (m *Menu) checkBalance(ctx context.Context) error {
	balances, err := m.ledger.Balances(ctx)
	if err != nil {
		return err
	}
	if len(balances) == 0 {
		fmt.Fprintln(m.out, "No transactions yet.")
		return nil
	}
	for _, cur := range balances.Currencies() {
		fmt.Fprintf(m.out, "%s balance: %s\n", cur, balances[cur].StringFixed(2))
	}
	return nil
}

func (m *Menu) updateAnalysis(ctx context.Context) error {
	if err := m.refreshAnalysis(ctx); err != nil {
		return err
	}
	fmt.Fprintln(m.out, "Analysis worksheet updated.")
	return nil
}

func (m *Menu) reconcile(ctx context.Context) error {
	report, err := m.ledger.Reconcile(ctx)
	if err != nil {
		return err
	}
	switch {
	case report.Repaired:
		fmt.Fprintf(m.out, "Checked %d rows, repaired %d drifted balances.\n", report.Checked, report.Drifted)
	default:
		fmt.Fprintf(m.out, "Checked %d rows, balances are consistent.\n", report.Checked)
	}
	return nil
}

func (m *Menu) quickAdd(ctx context.Context) error {
	text, ok := m.promptNonEmpty("Describe the transaction (e.g. \"Spent $45 on gas\"): ")
	if !ok {
		return nil
	}

	s, err := m.assistant.ParseTransaction(ctx, text)
	if err != nil {
		return err
	}

	fmt.Fprintf(m.out, "Parsed (%s): %s | %s | %s %s | %s\n",
		s.Source, s.Date.Format("2006-01-02"), s.Description,
		s.Amount.StringFixed(2), m.settings.Currency, s.Category)

	confirm, ok := m.prompt("Save this transaction? (y/n): ")
	if !ok || !strings.EqualFold(confirm, "y") {
		fmt.Fprintln(m.out, "Discarded.")
		return nil
	}

	tx, err := m.ledger.AddTransaction(ctx, core.Transaction{
		Date:        s.Date,
		Description: s.Description,
		Category:    s.Category,
		Type:        s.Type,
		Amount:      s.Amount,
		Currency:    m.settings.Currency,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Recorded. New balance: %s %s\n", tx.Currency, tx.Balance.StringFixed(2))

	if m.settings.AutoUpdateAnalysis {
		if err := m.refreshAnalysis(ctx); err != nil {
			m.logger.Warn("auto-update of analysis failed", "error", err)
		}
	}
	return nil
}

// prompt reads one trimmed line; ok is false when input is exhausted.
func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) promptNonEmpty(label string) (string, bool) {
	for i := 0; i < maxInputRetries; i++ {
		v, ok := m.prompt(label)
		if !ok {
			return "", false
		}
		if v != "" {
			return v, true
		}
		fmt.Fprintln(m.out, "A value is required.")
	}
	return "", false
}

func (m *Menu) promptAmount() (decimal.Decimal, bool) {
	for i := 0; i < maxInputRetries; i++ {
		raw, ok := m.prompt("Amount: ")
		if !ok {
			return decimal.Decimal{}, false
		}
		amount, err := core.ParseAmount(raw)
		if err == nil {
			return amount, true
		}
		fmt.Fprintf(m.out, "Invalid amount: %v\n", err)
	}
	return decimal.Decimal{}, false
}

// printError translates the error taxonomy into user-facing language.
func (m *Menu) printError(err error) {
	switch {
	case errors.Is(err, retry.ErrRemoteUnavailable):
		fmt.Fprintln(m.out, "The spreadsheet is unreachable right now. Your data was not changed; try again shortly.")
	case errors.Is(err, retry.ErrRemoteRejected):
		fmt.Fprintln(m.out, "The spreadsheet rejected the request. Check the sheet setup and credentials.")
	case errors.Is(err, ledger.ErrReconciliationAborted):
		fmt.Fprintln(m.out, "Reconciliation aborted; the sheet was left as it was.")
	default:
		fmt.Fprintf(m.out, "Error: %v\n", err)
	}
	m.logger.Error("menu operation failed", "error", err)
}

// truncate shortens s to max runes, never splitting a multi-byte character.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
