package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/time/rate"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	"fintrack/internal/sheets"

	"github.com/shopspring/decimal"
)

// Client is the remote store adapter over the Google Sheets values API.
// Every call is throttled by a client-side limiter so bursts from the menu
// cannot trip the per-minute quota.
type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	analysisSheet     string
	limiter           *rate.Limiter
}

// Ensure interface conformance
var (
	_ sheets.TransactionAppender = (*Client)(nil)
	_ sheets.TransactionLister   = (*Client)(nil)
	_ sheets.WorksheetEnsurer    = (*Client)(nil)
	_ sheets.BalanceWriter       = (*Client)(nil)
	_ sheets.AnalysisWriter      = (*Client)(nil)
)

// transactionHeaders is the fixed column layout of the transactions sheet.
var transactionHeaders = []string{"Date", "Description", "Category", "Type", "Amount", "Currency", "Balance"}

const (
	dateTimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
)

// Config collects everything needed to reach one spreadsheet.
type Config struct {
	SpreadsheetID     string
	TransactionsSheet string
	AnalysisSheet     string
	CredentialsJSON   []byte
	RequestsPerSec    float64
}

// New creates a Sheets client from explicit configuration.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if len(cfg.CredentialsJSON) == 0 {
		return nil, errors.New("missing service account credentials")
	}
	if cfg.TransactionsSheet == "" {
		cfg.TransactionsSheet = "Transactions"
	}
	if cfg.AnalysisSheet == "" {
		cfg.AnalysisSheet = "Charts & Analysis"
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(cfg.CredentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1)
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     cfg.SpreadsheetID,
		transactionsSheet: cfg.TransactionsSheet,
		analysisSheet:     cfg.AnalysisSheet,
		limiter:           limiter,
	}, nil
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	creds, err := credentialsFromEnv()
	if err != nil {
		return nil, err
	}

	return New(ctx, Config{
		SpreadsheetID:     spreadsheetID,
		TransactionsSheet: strings.TrimSpace(os.Getenv("TRANSACTIONS_SHEET_NAME")),
		AnalysisSheet:     strings.TrimSpace(os.Getenv("ANALYSIS_SHEET_NAME")),
		CredentialsJSON:   creds,
		RequestsPerSec:    1,
	})
}

func credentialsFromEnv() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// AppendTransaction writes the transaction as the next row of the
// transactions sheet and returns its range reference.
//
// The append is two calls (find next row, write it) and the values API has
// no transactional append, so a retried call after a partial success can
// duplicate the row. Known limitation; reconciliation repairs the balance
// column but not duplicates.
func (c *Client) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	rng := fmt.Sprintf("%s!A:A", c.transactionsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", c.transactionsSheet, err)
	}
	nextRow := len(resp.Values) + 1

	rowRange := fmt.Sprintf("%s!A%d:G%d", c.transactionsSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		t.Date.Format(dateTimeLayout),
		t.Description,
		t.Category,
		string(t.Type),
		t.Amount.StringFixed(2),
		t.Currency,
		t.Balance.StringFixed(2),
	}}}

	if err := c.wait(ctx); err != nil {
		return "", err
	}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rowRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write row %s: %w", rowRange, err)
	}

	return rowRange, nil
}

// ListTransactions reads the full transaction range and parses it
// best-effort: rows a human mangled in the spreadsheet are skipped, not
// fatal.
func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	rng := fmt.Sprintf("%s!A2:G", c.transactionsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseTransactions(c.transactionsSheet, resp.Values), nil
}

// EnsureWorksheets creates the transactions and analysis worksheets when
// missing and writes the header row on a fresh transactions sheet.
func (c *Client) EnsureWorksheets(ctx context.Context) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if err := c.wait(ctx); err != nil {
		return err
	}

	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}

	existing := map[string]bool{}
	for _, s := range meta.Sheets {
		if s.Properties != nil {
			existing[s.Properties.Title] = true
		}
	}

	var requests []*gsheet.Request
	for _, title := range []string{c.transactionsSheet, c.analysisSheet} {
		if !existing[title] {
			requests = append(requests, &gsheet.Request{
				AddSheet: &gsheet.AddSheetRequest{
					Properties: &gsheet.SheetProperties{Title: title},
				},
			})
		}
	}
	if len(requests) > 0 {
		if err := c.wait(ctx); err != nil {
			return err
		}
		_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID,
			&gsheet.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("add worksheets: %w", err)
		}
	}

	if !existing[c.transactionsSheet] {
		header := make([]any, len(transactionHeaders))
		for i, h := range transactionHeaders {
			header[i] = h
		}
		rng := fmt.Sprintf("%s!A1:G1", c.transactionsSheet)
		if err := c.wait(ctx); err != nil {
			return err
		}
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng,
			&gsheet.ValueRange{Values: [][]any{header}}).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("write header row: %w", err)
		}
	}

	return nil
}

// WriteBalances rewrites the running-balance column. balances[i] is the
// value for data row i (sheet row i+2).
func (c *Client) WriteBalances(ctx context.Context, balances []decimal.Decimal) error {
	if len(balances) == 0 {
		return nil
	}
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if err := c.wait(ctx); err != nil {
		return err
	}

	values := make([][]any, len(balances))
	for i, b := range balances {
		values[i] = []any{b.StringFixed(2)}
	}
	rng := fmt.Sprintf("%s!G2:G%d", c.transactionsSheet, len(balances)+1)
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng,
		&gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write balances %s: %w", rng, err)
	}
	return nil
}

// WriteAnalysis clears the analysis worksheet and writes the tables top to
// bottom, one blank row between them.
func (c *Client) WriteAnalysis(ctx context.Context, tables []sheets.Table) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if err := c.wait(ctx); err != nil {
		return err
	}

	clearRng := fmt.Sprintf("%s!A1:Z1000", c.analysisSheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRng,
		&gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRng, err)
	}

	values := analysisRows(tables)
	if len(values) == 0 {
		return nil
	}
	rng := fmt.Sprintf("%s!A1", c.analysisSheet)
	if err := c.wait(ctx); err != nil {
		return err
	}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng,
		&gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write analysis: %w", err)
	}
	return nil
}

func analysisRows(tables []sheets.Table) [][]any {
	var out [][]any
	for _, tbl := range tables {
		out = append(out, []any{tbl.Title})
		if len(tbl.Header) > 0 {
			out = append(out, toAnyRow(tbl.Header))
		}
		for _, row := range tbl.Rows {
			out = append(out, toAnyRow(row))
		}
		out = append(out, []any{""})
	}
	return out
}

func toAnyRow(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
