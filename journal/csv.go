// journal/csv.go
package journal

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"strconv"
	"time"
)

var csvHeader = []string{"tx_id", "account_id", "action", "symbol", "name", "price", "quantity", "total", "cost_basis", "realized_pl", "time"}

type CSV struct {
	w *csv.Writer
	f *os.File
}

// NewCSV opens path for appending. The header is written when the file is
// new or empty.
func NewCSV(path string) (*CSV, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			_ = f.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	return &CSV{w: w, f: f}, nil
}

func (j *CSV) RecordTransaction(_ context.Context, t Transaction) error {
	err := j.w.Write([]string{
		t.ID,
		t.AccountID,
		t.Action.String(),
		t.Symbol,
		t.Name,
		t.Price.String(),
		strconv.FormatInt(t.Quantity, 10),
		t.Total.String(),
		t.CostBasis.String(),
		t.RealizedPL.String(),
		t.Time.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) Close() error {
	j.w.Flush()
	return errors.Join(j.w.Error(), j.f.Close())
}
