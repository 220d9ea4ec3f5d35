package journal

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
)

// Holding is one open position as it appears in an account report.
type Holding struct {
	Symbol       string
	Name         string
	Quantity     int64
	CostBasis    decimal.Decimal
	Price        decimal.Decimal
	MarketValue  decimal.Decimal
	UnrealizedPL decimal.Decimal
}

// AccountReport is an Org-mode snapshot of a paper trading session.
type AccountReport struct {
	AccountID string
	Currency  string
	Created   time.Time
	PricedAt  time.Time

	OpeningCash  decimal.Decimal
	Cash         decimal.Decimal
	MarketValue  decimal.Decimal
	Equity       decimal.Decimal
	UnrealizedPL decimal.Decimal
	RealizedPL   decimal.Decimal

	Holdings     []Holding
	Transactions []Transaction

	OrgPath string

	Notes       []string
	NextActions []string
}

// NetPL is equity gained or lost since the account opened.
func (r *AccountReport) NetPL() decimal.Decimal {
	return r.Equity.Sub(r.OpeningCash)
}

// ReturnPct is NetPL as a percentage of opening cash, zero for an account
// opened without cash.
func (r *AccountReport) ReturnPct() decimal.Decimal {
	if r.OpeningCash.IsZero() {
		return decimal.Zero
	}
	return r.NetPL().Div(r.OpeningCash).Mul(decimal.NewFromInt(100))
}

// Count returns the number of transactions with the given action.
func (r *AccountReport) Count(a Action) int {
	n := 0
	for _, t := range r.Transactions {
		if t.Action == a {
			n++
		}
	}
	return n
}

var reportOrgFuncs = template.FuncMap{
	"fixed": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
	"buy":  func() Action { return Buy },
	"sell": func() Action { return Sell },
}

var reportTemplate = template.Must(template.New("report").Funcs(reportOrgFuncs).Parse(AccountReportOrgTemplate))

// Org renders the report.
func (r *AccountReport) Org() (string, error) {
	buf := new(bytes.Buffer)
	if err := reportTemplate.Execute(buf, r); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

// WriteOrg renders the report to r.OrgPath.
func (r *AccountReport) WriteOrg() error {
	if r.OrgPath == "" {
		return fmt.Errorf("report: no output path")
	}
	out, err := r.Org()
	if err != nil {
		return err
	}
	return os.WriteFile(r.OrgPath, []byte(out), 0644)
}

const AccountReportOrgTemplate = `* ACCOUNT: {{.AccountID}} ({{.Currency}})
:PROPERTIES:
:ACCOUNT:      {{.AccountID}}
:CURRENCY:     {{.Currency}}
:OPENING_CASH: {{fixed .OpeningCash}}
:CASH:         {{fixed .Cash}}
:MARKET_VALUE: {{fixed .MarketValue}}
:EQUITY:       {{fixed .Equity}}
:NET_PL:       {{fixed .NetPL}}
:RETURN_PCT:   {{fixed .ReturnPct}}
:REALIZED_PL:  {{fixed .RealizedPL}}
:UNREALIZED:   {{fixed .UnrealizedPL}}
:BUYS:         {{.Count buy}}
:SELLS:        {{.Count sell}}
:PRICED_AT:    {{if .PricedAt.IsZero}}(never priced){{else}}{{.PricedAt.UTC.Format "2006-01-02 15:04:05"}}{{end}}
:CREATED:      [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Holdings
{{- if .Holdings }}
| Symbol | Quantity | Cost Basis | Price | Market Value | Unrealized P/L |
|--------+----------+------------+-------+--------------+----------------|
{{- range .Holdings }}
| {{.Symbol}} | {{.Quantity}} | {{fixed .CostBasis}} | {{fixed .Price}} | {{fixed .MarketValue}} | {{fixed .UnrealizedPL}} |
{{- end }}
{{- else }}
- No open positions.
{{- end }}

** Transactions
{{- if .Transactions }}
| Time | Action | Symbol | Quantity | Price | Total | Realized P/L |
|------+--------+--------+----------+-------+-------+--------------|
{{- range .Transactions }}
| {{.Time.UTC.Format "2006-01-02 15:04:05"}} | {{.Action}} | {{.Symbol}} | {{.Quantity}} | {{fixed .Price}} | {{fixed .Total}} | {{fixed .RealizedPL}} |
{{- end }}
{{- else }}
- No transactions.
{{- end }}

{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}

{{- if .NextActions }}

** Notes / Next Actions
{{- range .NextActions }}
- [ ] {{.}}
{{- end }}
{{- end }}
`
