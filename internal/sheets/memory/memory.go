package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

// Store is an in-process substitute for the spreadsheet backend. It exists
// for offline use and for tests; everything lives behind one mutex.
type Store struct {
	mu       sync.Mutex
	txs      []core.Transaction
	analysis []sheets.Table
	ensured  bool
}

var (
	_ sheets.TransactionAppender = (*Store)(nil)
	_ sheets.TransactionLister   = (*Store)(nil)
	_ sheets.WorksheetEnsurer    = (*Store)(nil)
	_ sheets.BalanceWriter       = (*Store)(nil)
	_ sheets.AnalysisWriter      = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

func (s *Store) AppendTransaction(_ context.Context, t core.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txs = append(s.txs, t)
	// Mirror the spreadsheet reference format: data starts at row 2.
	return fmt.Sprintf("memory!A%d:G%d", len(s.txs)+1, len(s.txs)+1), nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	return out, nil
}

func (s *Store) EnsureWorksheets(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensured = true
	return nil
}

func (s *Store) WriteBalances(_ context.Context, balances []decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(balances) > len(s.txs) {
		return fmt.Errorf("got %d balances for %d transactions", len(balances), len(s.txs))
	}
	for i, b := range balances {
		s.txs[i].Balance = b
	}
	return nil
}

func (s *Store) WriteAnalysis(_ context.Context, tables []sheets.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.analysis = make([]sheets.Table, len(tables))
	copy(s.analysis, tables)
	return nil
}

// Analysis returns the last written analysis tables.
func (s *Store) Analysis() []sheets.Table {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]sheets.Table, len(s.analysis))
	copy(out, s.analysis)
	return out
}
