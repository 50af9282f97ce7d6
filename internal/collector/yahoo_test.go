package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartJSON = `{"chart":{"result":[{"timestamp":[1704326400,1704153600,1704240000,1704412800],
"indicators":{"quote":[{
"open":[102,100,101,null],"high":[103,101,102,null],"low":[101,99,100,null],
"close":[102.5,100.5,101.5,null],"volume":[3000,1000,2000,null]}]}}],"error":null}}`

func TestYahooFetcher_ParsesChart(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.EscapedPath(), r.URL.RawQuery
		w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	f := NewYahooFetcher("", 0)
	f.BaseURL = srv.URL
	bars, err := f.FetchDailyBars(context.Background(), "SPX500", 300)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/%5EGSPC", gotPath)
	assert.Contains(t, gotQuery, "interval=1d")
	assert.Contains(t, gotQuery, "range=1y")

	require.Len(t, bars, 3, "null bar is skipped")
	assert.Equal(t, 100.5, bars[0].Close)
	assert.Equal(t, 101.5, bars[1].Close)
	assert.Equal(t, 102.5, bars[2].Close)
	assert.Equal(t, 3000.0, bars[2].Volume)
}

func TestYahooFetcher_TrimsToDays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	f := NewYahooFetcher("", 100)
	f.BaseURL = srv.URL
	bars, err := f.FetchDailyBars(context.Background(), "AAPL", 2)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 101.5, bars[0].Close)
}

func TestYahooFetcher_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		unavailable bool
	}{
		{"http error", http.StatusBadGateway, "bad gateway", false},
		{"api error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`, false},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`, true},
		{"bad json", http.StatusOK, `{"chart":`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f := NewYahooFetcher("", 0)
			f.BaseURL = srv.URL
			_, err := f.FetchDailyBars(context.Background(), "AAPL", 30)
			require.Error(t, err)
			if tt.unavailable {
				assert.ErrorIs(t, err, ErrDataUnavailable)
			} else {
				assert.NotErrorIs(t, err, ErrDataUnavailable)
			}
		})
	}
}

func TestYahooRange(t *testing.T) {
	for days, want := range map[int]string{20: "1mo", 60: "3mo", 150: "6mo", 300: "1y", 500: "2y", 1500: "5y", 4000: "max"} {
		assert.Equal(t, want, yahooRange(days), "days=%d", days)
	}
}

func TestRESTFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Header.Get("Authorization") != "Bearer secret":
			w.WriteHeader(http.StatusUnauthorized)
		case r.URL.Query().Get("symbol") == "MISSING":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.Write([]byte(`[{"timestamp":1704240000,"close":11},{"timestamp":1704153600,"close":10},{"timestamp":1704326400,"close":null}]`))
		}
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", "", 0)
	bars, err := f.FetchDailyBars(context.Background(), "SPY", 10)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 10.0, bars[0].Close)
	assert.Equal(t, 11.0, bars[1].Close)

	_, err = f.FetchDailyBars(context.Background(), "MISSING", 10)
	assert.ErrorIs(t, err, ErrDataUnavailable)

	f.APIKey = "wrong"
	_, err = f.FetchDailyBars(context.Background(), "SPY", 10)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "401"))
}
