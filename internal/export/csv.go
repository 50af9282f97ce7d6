package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"SignalSentinel/internal/model"
)

// Decimal places written for indicator columns.
const places = 6

// WriteCSV writes one row per timestamp: date, close, every indicator column
// in sorted order, then both signals. Undefined values are empty cells.
func WriteCSV(w io.Writer, a *model.Analysis) error {
	if a == nil {
		return fmt.Errorf("write csv: nil analysis")
	}
	cw := csv.NewWriter(w)
	names := a.Frame.Names()

	header := append([]string{"Date", "Close"}, names...)
	header = append(header, "MomentumSignal", "MeanReversionSignal")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	rec := make([]string, len(header))
	for i := 0; i < a.Len(); i++ {
		rec[0] = a.Frame.Times[i].Format("2006-01-02")
		rec[1] = decimal.NewFromFloat(a.Closes[i]).String()
		for j, name := range names {
			rec[2+j] = cell(a.Frame.At(i, name))
		}
		rec[len(rec)-2] = a.Momentum[i].String()
		rec[len(rec)-1] = a.MeanReversion[i].String()
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(v model.Value) string {
	if !v.Valid {
		return ""
	}
	return decimal.NewFromFloat(v.V).Round(places).String()
}
