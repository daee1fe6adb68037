package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// ErrReconciliationAborted marks a reconciliation that stopped before
// modifying anything, or failed while writing repairs.
var ErrReconciliationAborted = fmt.Errorf("reconciliation aborted")

// Drift below half a cent is display rounding, not corruption.
var reconcileEpsilon = decimal.New(5, -3)

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	Checked  int
	Drifted  int
	Repaired bool
}

// Reconcile recomputes every running balance from the amounts, compares
// them against the stored balance column, and rewrites the column when it
// drifted. It reads fresh from the backend, never the cache; if the read
// fails the sheet is left untouched.
func (l *Ledger) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var txs []core.Transaction
	err := l.retrier.Do(ctx, "reconcile read", func(ctx context.Context) error {
		var err error
		txs, err = l.store.ListTransactions(ctx)
		return err
	})
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("%w: %w", ErrReconciliationAborted, err)
	}

	expected := core.RunningBalances(txs)
	report := ReconcileReport{Checked: len(txs)}
	for i := range txs {
		if txs[i].Balance.Sub(expected[i]).Abs().GreaterThan(reconcileEpsilon) {
			report.Drifted++
		}
	}

	if report.Drifted == 0 {
		l.logger.InfoContext(ctx, "reconciliation clean", "checked", report.Checked)
		return report, nil
	}

	l.logger.WarnContext(ctx, "balance drift detected",
		"checked", report.Checked, "drifted", report.Drifted)

	err = l.retrier.Do(ctx, "reconcile write", func(ctx context.Context) error {
		return l.store.WriteBalances(ctx, expected)
	})
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrReconciliationAborted, err)
	}

	report.Repaired = true
	l.txCache.Invalidate(keyTransactions)
	l.balCache.Invalidate(keyBalances)
	return report, nil
}
