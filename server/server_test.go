package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rustyeddy/papertrade/broker"
	"github.com/rustyeddy/papertrade/catalog"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testListing = catalog.Static{
	{Symbol: "AAPL", Name: "Apple Inc.", Price: market.P(150), Sentiment: market.Positive},
	{Symbol: "MSFT", Name: "Microsoft", Price: market.P(300)},
}

func newTestServer(t *testing.T, src catalog.Source) (*Server, *sim.Engine) {
	t.Helper()
	store := catalog.NewStore(src)
	_, err := store.Refresh(context.Background())
	require.NoError(t, err)

	acct := broker.Account{ID: "T-1", Currency: "USD", Cash: decimal.NewFromInt(100000)}
	engine := sim.NewEngine(acct, store, nil)
	store.OnUpdate(engine.NotifyPrices)

	return New(Config{Port: 0, Engine: engine, Catalog: store}), engine
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, testListing)
	rec := do(t, s, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStocks(t *testing.T) {
	s, _ := newTestServer(t, testListing)

	rec := do(t, s, "GET", "/api/stocks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []market.Instrument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	rec = do(t, s, "GET", "/api/stocks?q=micro", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "MSFT", list[0].Symbol)

	rec = do(t, s, "GET", "/api/stocks?q=zzz", "")
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestRefresh(t *testing.T) {
	fail := false
	src := catalog.SourceFunc(func(ctx context.Context) ([]market.Instrument, error) {
		if fail {
			return nil, errors.New("backend down")
		}
		return testListing.Fetch(ctx)
	})
	s, _ := newTestServer(t, src)

	rec := do(t, s, "POST", "/api/stocks/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp refreshResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Instruments)

	fail = true
	rec = do(t, s, "POST", "/api/stocks/refresh", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "catalog unavailable")

	// Prices keep coming from the last good snapshot.
	rec = do(t, s, "GET", "/api/stocks", "")
	var list []market.Instrument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)
}

func TestOrderLifecycle(t *testing.T) {
	s, engine := newTestServer(t, testListing)

	rec := do(t, s, "POST", "/api/orders", `{"action":"buy","symbol":"AAPL","quantity":10}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var tx journal.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tx))
	assert.Equal(t, journal.Buy, tx.Action)
	assert.Equal(t, "AAPL", tx.Symbol)
	assert.True(t, tx.Total.Equal(market.P(1500)))
	assert.True(t, engine.Cash().Equal(market.P(98500)))

	rec = do(t, s, "GET", "/api/positions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var positions []broker.Position
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &positions))
	require.Len(t, positions, 1)
	assert.Equal(t, int64(10), positions[0].Quantity)

	rec = do(t, s, "POST", "/api/orders", `{"action":"sell","symbol":"AAPL","quantity":4}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, s, "GET", "/api/transactions", "")
	var txs []journal.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	require.Len(t, txs, 2)
	assert.Equal(t, journal.Sell, txs[1].Action)

	rec = do(t, s, "GET", "/api/account", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary sim.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "T-1", summary.AccountID)
	assert.True(t, summary.Cash.Equal(market.P(99100)))
	assert.True(t, summary.ProfitLoss.IsZero())
	assert.Equal(t, 2, summary.Transactions)
	require.Len(t, summary.Positions, 1)
	assert.Equal(t, int64(6), summary.Positions[0].Quantity)
}

func TestOrderErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed body", `{"action":`, http.StatusBadRequest},
		{"unknown action", `{"action":"short","symbol":"AAPL","quantity":1}`, http.StatusBadRequest},
		{"fractional quantity", `{"action":"buy","symbol":"AAPL","quantity":1.5}`, http.StatusBadRequest},
		{"zero quantity", `{"action":"buy","symbol":"AAPL","quantity":0}`, http.StatusBadRequest},
		{"unknown instrument", `{"action":"buy","symbol":"NOPE","quantity":1}`, http.StatusNotFound},
		{"no position", `{"action":"sell","symbol":"MSFT","quantity":1}`, http.StatusNotFound},
		{"insufficient funds", `{"action":"buy","symbol":"MSFT","quantity":1000}`, http.StatusConflict},
	}

	s, _ := newTestServer(t, testListing)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, "POST", "/api/orders", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}

	rec := do(t, s, "GET", "/api/transactions", "")
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	wrap := func(err error) error { return fmt.Errorf("sell 5 AAPL: %w", err) }
	assert.Equal(t, http.StatusConflict, statusFor(wrap(broker.ErrInsufficientShares)))
	assert.Equal(t, http.StatusNotFound, statusFor(wrap(broker.ErrNoSuchPosition)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("disk full")))
}

func TestEventsWebSocket(t *testing.T) {
	s, engine := newTestServer(t, testListing)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	_, err = engine.Buy(context.Background(), "AAPL", 2)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev sim.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, sim.TradeExecuted, ev.Kind)
	require.NotNil(t, ev.Transaction)
	assert.Equal(t, "AAPL", ev.Transaction.Symbol)

	resp, err := http.Post(ts.URL+"/api/stocks/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, sim.PricesUpdated, ev.Kind)
	assert.Nil(t, ev.Transaction)
}
