package market

// PriceSource hands out the catalog snapshot a command should price against.
// Callers read it once per command so prices can't move mid-command.
type PriceSource interface {
	Snapshot() *Snapshot
}

// Fixed is a PriceSource that always returns the same snapshot.
type Fixed struct{ S *Snapshot }

func (f Fixed) Snapshot() *Snapshot { return f.S }
