package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/retry"
	"fintrack/internal/sheets"
)

// Store is everything the ledger needs from a backend. Both the Google
// Sheets client and the in-memory store satisfy it.
type Store interface {
	sheets.TransactionAppender
	sheets.TransactionLister
	sheets.WorksheetEnsurer
	sheets.BalanceWriter
	sheets.AnalysisWriter
}

const (
	keyTransactions = "transactions"
	keyBalances     = "balances"

	defaultCacheSize = 16
	defaultCacheTTL  = 30 * time.Second
)

// Ledger is the application service over one transaction sheet. Reads go
// through a TTL cache with single-flight fetch dedup; writes go through the
// retrier and then invalidate the cache, so a failed write never touches
// cached state.
type Ledger struct {
	store    Store
	retrier  *retry.Retrier
	txCache  *cache.LRUCache[[]core.Transaction]
	balCache *cache.LRUCache[core.Balances]
	group    singleflight.Group
	limits   core.Limits
	currency string
	logger   *log.Logger
}

type Option func(*options)

type options struct {
	limits   core.Limits
	currency string
	ttl      time.Duration
	now      func() time.Time
	logger   *log.Logger
}

// WithLimits overrides the validation limits applied to new transactions.
func WithLimits(l core.Limits) Option {
	return func(o *options) { o.limits = l }
}

// WithCurrency sets the currency assigned to transactions that do not
// carry one.
func WithCurrency(code string) Option {
	return func(o *options) { o.currency = code }
}

// WithTTL sets the cache time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithClock injects the cache clock. Tests use it to expire entries
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func New(store Store, retrier *retry.Retrier, opts ...Option) *Ledger {
	o := options{
		limits:   core.DefaultLimits(),
		currency: "USD",
		ttl:      defaultCacheTTL,
		now:      time.Now,
		logger:   log.New(log.LevelFromEnv(), "ledger"),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Ledger{
		store:    store,
		retrier:  retrier,
		txCache:  cache.NewLRUCacheWithClock[[]core.Transaction](defaultCacheSize, o.ttl, o.now),
		balCache: cache.NewLRUCacheWithClock[core.Balances](defaultCacheSize, o.ttl, o.now),
		limits:   o.limits,
		currency: o.currency,
		logger:   o.logger,
	}
}

// RegisterCaches attaches the ledger's caches to a cleanup manager.
func (l *Ledger) RegisterCaches(m *cache.Manager) {
	m.Register(l.txCache)
	m.Register(l.balCache)
}

// Init makes sure the backing worksheets exist.
func (l *Ledger) Init(ctx context.Context) error {
	return l.retrier.Do(ctx, "ensure worksheets", func(ctx context.Context) error {
		return l.store.EnsureWorksheets(ctx)
	})
}

// AddTransaction validates, normalizes, and persists a transaction, then
// returns it with its running balance and row reference filled in. The
// cache is invalidated only after the write succeeds.
func (l *Ledger) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t = t.Normalize()
	if t.Currency == "" {
		t.Currency = l.currency
	}
	if t.Date.IsZero() {
		t.Date = time.Now()
	}
	if err := t.Validate(l.limits); err != nil {
		return core.Transaction{}, err
	}

	balance, err := l.Balance(ctx, t.Currency)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Balance = balance.Add(t.Amount)

	var ref string
	err = l.retrier.Do(ctx, "append transaction", func(ctx context.Context) error {
		var err error
		ref, err = l.store.AppendTransaction(ctx, t)
		return err
	})
	if err != nil {
		return core.Transaction{}, err
	}
	t.ID = ref

	l.txCache.Invalidate(keyTransactions)
	l.balCache.Invalidate(keyBalances)
	l.logger.InfoContext(ctx, "transaction recorded",
		"ref", ref, "type", t.Type, "amount", t.Amount, "currency", t.Currency)
	return t, nil
}

// Transactions returns all transactions, oldest first. Concurrent cache
// misses share a single backend fetch.
func (l *Ledger) Transactions(ctx context.Context) ([]core.Transaction, error) {
	if txs, ok := l.txCache.Get(keyTransactions); ok {
		return txs, nil
	}

	v, err, _ := l.group.Do(keyTransactions, func() (any, error) {
		var txs []core.Transaction
		err := l.retrier.Do(ctx, "list transactions", func(ctx context.Context) error {
			var err error
			txs, err = l.store.ListTransactions(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
		l.txCache.Set(keyTransactions, txs)
		return txs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.Transaction), nil
}

// Recent returns up to n transactions, newest first.
func (l *Ledger) Recent(ctx context.Context, n int) ([]core.Transaction, error) {
	txs, err := l.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	if n > len(txs) {
		n = len(txs)
	}
	out := make([]core.Transaction, 0, n)
	for i := len(txs) - 1; i >= len(txs)-n; i-- {
		out = append(out, txs[i])
	}
	return out, nil
}

// Balances returns the current balance per currency.
func (l *Ledger) Balances(ctx context.Context) (core.Balances, error) {
	if b, ok := l.balCache.Get(keyBalances); ok {
		return b, nil
	}
	txs, err := l.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	b := core.SumByCurrency(txs)
	l.balCache.Set(keyBalances, b)
	return b, nil
}

// Balance returns the balance for one currency, zero if the currency has
// no transactions yet.
func (l *Ledger) Balance(ctx context.Context, currency string) (decimal.Decimal, error) {
	balances, err := l.Balances(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return balances[currency], nil
}

// CategorySummary aggregates income and expense totals per category,
// first-seen order.
func (l *Ledger) CategorySummary(ctx context.Context) ([]core.CategoryTotals, error) {
	txs, err := l.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	return core.SummarizeCategories(txs), nil
}

// UpdateAnalysis writes the given tables to the analysis worksheet.
func (l *Ledger) UpdateAnalysis(ctx context.Context, tables []sheets.Table) error {
	return l.retrier.Do(ctx, "write analysis", func(ctx context.Context) error {
		return l.store.WriteAnalysis(ctx, tables)
	})
}
