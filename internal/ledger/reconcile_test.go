package ledger

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/api/googleapi"

	"fintrack/internal/core"
)

func TestReconcileCleanSheet(t *testing.T) {
	store := &fakeStore{txs: []core.Transaction{
		tx("Salary", core.TypeIncome, "1000.00", "1000.00"),
		tx("Rent", core.TypeExpense, "-400.00", "600.00"),
	}}
	l := newTestLedger(store)

	report, err := l.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if report.Checked != 2 || report.Drifted != 0 || report.Repaired {
		t.Errorf("report = %+v, want 2 checked, no drift, no repair", report)
	}
	if store.writeCalls != 0 {
		t.Errorf("writeCalls = %d, want 0 on a clean sheet", store.writeCalls)
	}
}

func TestReconcileRepairsDrift(t *testing.T) {
	// Stored balance says 140.00 but the amounts sum to 137.50.
	store := &fakeStore{txs: []core.Transaction{
		tx("Salary", core.TypeIncome, "150.00", "150.00"),
		tx("Coffee", core.TypeExpense, "-12.50", "140.00"),
	}}
	l := newTestLedger(store)
	ctx := context.Background()

	// Prime the cache so we can observe it being dropped after the repair.
	if _, err := l.Balances(ctx); err != nil {
		t.Fatalf("Balances: %v", err)
	}

	report, err := l.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if report.Drifted != 1 || !report.Repaired {
		t.Errorf("report = %+v, want 1 drifted and repaired", report)
	}
	if len(store.writtenBalances) != 2 {
		t.Fatalf("wrote %d balances, want 2", len(store.writtenBalances))
	}
	if !store.writtenBalances[1].Equal(dec("137.50")) {
		t.Errorf("repaired balance = %s, want 137.50", store.writtenBalances[1])
	}

	listCalls := store.listCalls
	bal, err := l.Balance(ctx, "USD")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if store.listCalls == listCalls {
		t.Error("balance cache was not invalidated after repair")
	}
	if !bal.Equal(dec("137.50")) {
		t.Errorf("balance after repair = %s, want 137.50", bal)
	}
}

func TestReconcileToleratesRoundingDrift(t *testing.T) {
	store := &fakeStore{txs: []core.Transaction{
		tx("Salary", core.TypeIncome, "100.00", "100.004"),
	}}
	l := newTestLedger(store)

	report, err := l.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if report.Drifted != 0 {
		t.Errorf("Drifted = %d, want 0 for sub-epsilon drift", report.Drifted)
	}
}

func TestReconcileAbortsWhenFetchFails(t *testing.T) {
	store := &fakeStore{
		txs:     []core.Transaction{tx("Salary", core.TypeIncome, "150.00", "999.00")},
		listErr: &googleapi.Error{Code: 403},
	}
	l := newTestLedger(store)

	_, err := l.Reconcile(context.Background())
	if !errors.Is(err, ErrReconciliationAborted) {
		t.Fatalf("err = %v, want ErrReconciliationAborted", err)
	}
	if store.writeCalls != 0 {
		t.Errorf("writeCalls = %d, want 0 when the read fails", store.writeCalls)
	}
}

func TestReconcileAbortsWhenWriteFails(t *testing.T) {
	store := &fakeStore{
		txs:      []core.Transaction{tx("Salary", core.TypeIncome, "150.00", "999.00")},
		writeErr: &googleapi.Error{Code: 403},
	}
	l := newTestLedger(store)

	report, err := l.Reconcile(context.Background())
	if !errors.Is(err, ErrReconciliationAborted) {
		t.Fatalf("err = %v, want ErrReconciliationAborted", err)
	}
	if report.Repaired {
		t.Error("report claims repaired after a failed write")
	}
}
