// Package sheets defines the ports between the ledger and whatever stores
// the transaction table. The Google Sheets client is the real adapter; the
// memory store backs tests and offline use.
package sheets

import (
	"context"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type (
	// TransactionAppender persists one transaction and returns a row
	// reference usable as the transaction ID.
	TransactionAppender interface {
		AppendTransaction(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// TransactionLister returns every persisted transaction in sheet
	// order. Listing always reads the authoritative store; caching is
	// the caller's concern.
	TransactionLister interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// WorksheetEnsurer creates the transaction and analysis worksheets
	// when they are missing, headers included.
	WorksheetEnsurer interface {
		EnsureWorksheets(ctx context.Context) error
	}

	// BalanceWriter rewrites the running-balance column. balances[i]
	// belongs to the i-th transaction row. Used only by reconciliation.
	BalanceWriter interface {
		WriteBalances(ctx context.Context, balances []decimal.Decimal) error
	}

	// AnalysisWriter replaces the analysis worksheet contents with the
	// given tables.
	AnalysisWriter interface {
		WriteAnalysis(ctx context.Context, tables []Table) error
	}
)

// Table is a rectangular block written to the analysis worksheet.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
}
