package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"SignalSentinel/internal/model"
)

// CSVFetcher reads daily bars from a CSV file with a header row naming at
// least Date and Close (Yahoo's download format: Date,Open,High,Low,Close,Adj
// Close,Volume). A "{symbol}" placeholder in Path is replaced by the symbol.
type CSVFetcher struct {
	Path string
}

// NewCSVFetcher creates a CSV fetcher.
func NewCSVFetcher(path string) *CSVFetcher {
	return &CSVFetcher{Path: path}
}

func (f *CSVFetcher) Name() string { return "csv" }

var csvTimeLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
	"01/02/2006",
}

func (f *CSVFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := strings.ReplaceAll(f.Path, "{symbol}", symbol)
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("csv %s: %w", path, ErrDataUnavailable)
		}
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	bars, err := ReadCSVBars(file)
	if err != nil {
		return nil, fmt.Errorf("csv %s: %w", path, err)
	}
	if days > 0 && len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

// ReadCSVBars parses bars in file order. Rows whose close is empty or "null"
// are skipped.
func ReadCSVBars(r io.Reader) ([]model.OHLCV, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	timeCol, ok := firstColumn(cols, "date", "datetime", "time", "timestamp")
	if !ok {
		return nil, errors.New("missing date column")
	}
	closeCol, ok := cols["close"]
	if !ok {
		return nil, errors.New("missing close column")
	}

	var bars []model.OHLCV
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		closeRaw := field(rec, closeCol)
		if closeRaw == "" || strings.EqualFold(closeRaw, "null") {
			continue
		}
		ts, err := parseCSVTime(field(rec, timeCol))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		closePrice, err := strconv.ParseFloat(closeRaw, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: close: %w", line, err)
		}
		bars = append(bars, model.OHLCV{
			Time:   ts,
			Open:   optionalFloat(rec, cols, "open"),
			High:   optionalFloat(rec, cols, "high"),
			Low:    optionalFloat(rec, cols, "low"),
			Close:  closePrice,
			Volume: optionalFloat(rec, cols, "volume"),
		})
	}
	return bars, nil
}

func firstColumn(cols map[string]int, names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := cols[n]; ok {
			return i, true
		}
	}
	return 0, false
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func optionalFloat(rec []string, cols map[string]int, name string) float64 {
	i, ok := cols[name]
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(field(rec, i), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseCSVTime(s string) (time.Time, error) {
	for _, layout := range csvTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
