package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rustyeddy/papertrade/broker"
	"github.com/rustyeddy/papertrade/catalog"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/market"
	"go.uber.org/zap"
)

type orderRequest struct {
	Action   string `json:"action"`
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
}

type refreshResponse struct {
	Instruments int       `json:"instruments"`
	FetchedAt   time.Time `json:"fetched_at"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStocks lists the current snapshot, filtered by ?q= when present.
func (s *Server) handleStocks(w http.ResponseWriter, r *http.Request) {
	list := s.catalog.Snapshot().Search(r.URL.Query().Get("q"))
	if list == nil {
		list = []market.Instrument{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.catalog.Refresh(r.Context())
	if errors.Is(err, catalog.ErrUnavailable) {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, refreshResponse{
		Instruments: snap.Len(),
		FetchedAt:   snap.FetchedAt(),
	})
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Summary())
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.engine.Positions(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if positions == nil {
		positions = []broker.Position{}
	}
	s.writeJSON(w, http.StatusOK, positions)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	txs := s.engine.Transactions()
	if txs == nil {
		txs = []journal.Transaction{}
	}
	s.writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	action, err := journal.ParseAction(req.Action)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var tx journal.Transaction
	switch action {
	case journal.Buy:
		tx, err = s.engine.Buy(r.Context(), req.Symbol, req.Quantity)
	case journal.Sell:
		tx, err = s.engine.Sell(r.Context(), req.Symbol, req.Quantity)
	}
	if err != nil {
		s.writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, tx)
}

// statusFor maps order rejections to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, broker.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, broker.ErrUnknownInstrument), errors.Is(err, broker.ErrNoSuchPosition):
		return http.StatusNotFound
	case errors.Is(err, broker.ErrInsufficientFunds), errors.Is(err, broker.ErrInsufficientShares):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode JSON response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
