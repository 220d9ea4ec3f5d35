package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatTransactionOrg renders a Transaction as an Org-mode block suitable
// for pasting into a trading diary. Structured facts live in a PROPERTIES
// drawer for easy search; the Notes heading is left for the reader.
func FormatTransactionOrg(t Transaction) string {
	heading := fmt.Sprintf("** %s %d %s (%s)", t.Action, t.Quantity, t.Symbol, shortID(t.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":TX_ID: %s\n", t.ID))
	b.WriteString(fmt.Sprintf(":ACCOUNT: %s\n", t.AccountID))
	b.WriteString(fmt.Sprintf(":ACTION: %s\n", t.Action))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", t.Symbol))
	b.WriteString(fmt.Sprintf(":NAME: %s\n", t.Name))
	b.WriteString(fmt.Sprintf(":QUANTITY: %d\n", t.Quantity))
	b.WriteString(fmt.Sprintf(":PRICE: %s\n", t.Price.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":TOTAL: %s\n", t.Total.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":COST_BASIS: %s\n", t.CostBasis.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":REALIZED_PL: %s\n", t.RealizedPL.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":TIME: %s\n", t.Time.UTC().Format(time.RFC3339)))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Notes\n- \n")

	return b.String()
}

// FormatTransactionsOrg renders multiple transactions separated by blank lines.
func FormatTransactionsOrg(txs []Transaction) string {
	var b strings.Builder
	for i, t := range txs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTransactionOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
