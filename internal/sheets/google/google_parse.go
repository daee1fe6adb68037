package google

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// parseTransactions converts raw sheet rows into transactions. Rows that do
// not parse (headers pasted mid-sheet, hand-edited garbage) are skipped so
// one bad row never hides the rest of the ledger.
func parseTransactions(sheetName string, values [][]interface{}) []core.Transaction {
	txs := make([]core.Transaction, 0, len(values))
	for i, raw := range values {
		row := toStrings(raw)
		t, ok := parseRow(row)
		if !ok {
			continue
		}
		// Data starts at sheet row 2, after the header.
		rowNum := i + 2
		t.ID = fmt.Sprintf("%s!A%d:G%d", sheetName, rowNum, rowNum)
		txs = append(txs, t)
	}
	return txs
}

func parseRow(cols []string) (core.Transaction, bool) {
	if len(cols) < 5 {
		return core.Transaction{}, false
	}

	date, err := parseDate(cols[0])
	if err != nil {
		return core.Transaction{}, false
	}

	amount, err := parseSheetDecimal(cols[4])
	if err != nil {
		return core.Transaction{}, false
	}

	typ, err := core.ParseType(cols[3])
	if err != nil {
		// Column missing or mangled; the amount sign still tells us.
		if amount.IsNegative() {
			typ = core.TypeExpense
		} else {
			typ = core.TypeIncome
		}
	}

	t := core.Transaction{
		Date:        date,
		Description: strings.TrimSpace(cols[1]),
		Category:    strings.TrimSpace(cols[2]),
		Type:        typ,
		Amount:      amount,
	}
	if len(cols) > 5 {
		t.Currency = strings.ToUpper(strings.TrimSpace(cols[5]))
	}
	if len(cols) > 6 {
		if bal, err := parseSheetDecimal(cols[6]); err == nil {
			t.Balance = bal
		}
	}
	return t, true
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{dateTimeLayout, dateLayout, "02/01/2006", "01/02/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseSheetDecimal accepts the formats Sheets hands back depending on the
// user's locale: "12.50", "12,50", "1.234,56", "-1,234.56".
func parseSheetDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimLeft(s, "$€£"))
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma > lastDot:
		// Comma is the decimal separator, dots are thousands.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastComma >= 0:
		// Dot is the decimal separator, commas are thousands.
		s = strings.ReplaceAll(s, ",", "")
	}

	return decimal.NewFromString(s)
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fmt.Sprintf("%v", v)
	}
	return out
}
