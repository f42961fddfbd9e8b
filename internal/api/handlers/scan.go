package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/hunter/internal/contracts"
	"github.com/wonny/hunter/internal/screener"
	"github.com/wonny/hunter/pkg/logger"
)

// Scanner runs scans; *screener.Screener implements it
type Scanner interface {
	Scan(ctx context.Context, req screener.ScanRequest) (*screener.ScanReport, error)
	AnalyzeOne(ctx context.Context, symbol string, weights *contracts.Weights) (contracts.ScoreRecord, error)
	Validate(req screener.ScanRequest) error
}

// ScanHandler handles scan and analyze endpoints
// ⭐ SSOT: 스캔 API 핸들러는 이 구조체에서만
type ScanHandler struct {
	scanner Scanner
	logger  *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(scanner Scanner, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		scanner: scanner,
		logger:  log,
	}
}

// ScanRequest is the JSON body of a scan
type ScanRequest struct {
	Category     string             `json:"category"`
	Symbols      []string           `json:"symbols"`
	Weights      *contracts.Weights `json:"weights"`
	Concurrency  int                `json:"concurrency"`
	MinThreshold *float64           `json:"min_threshold"`
	MaxSymbols   int                `json:"max_symbols"`
	Lookback     string             `json:"lookback"`
	Deadline     string             `json:"deadline"` // Go duration, e.g. "90s"
}

// toScreener converts the body; a bad deadline is a configuration error
func (b ScanRequest) toScreener() (screener.ScanRequest, error) {
	req := screener.ScanRequest{
		Category:     b.Category,
		Symbols:      b.Symbols,
		Weights:      b.Weights,
		Concurrency:  b.Concurrency,
		MinThreshold: b.MinThreshold,
		MaxSymbols:   b.MaxSymbols,
		Lookback:     b.Lookback,
	}
	if b.Deadline != "" {
		d, err := time.ParseDuration(b.Deadline)
		if err != nil {
			return req, &screener.ConfigurationError{Field: "deadline", Message: err.Error()}
		}
		req.Deadline = d
	}
	return req, nil
}

// Scan runs a scan and returns the report
// POST /api/scan
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var body ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := body.toScreener()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.scanner.Scan(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.WithError(err).Error("Scan failed")
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// Analyze scores one symbol
// GET /api/analyze/{symbol}?weights=1,1,1
func (h *ScanHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	var weights *contracts.Weights
	if raw := strings.TrimSpace(r.URL.Query().Get("weights")); raw != "" {
		parsed, err := contracts.ParseWeights(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid weights: %v", err))
			return
		}
		weights = &parsed
	}

	record, err := h.scanner.AnalyzeOne(r.Context(), symbol, weights)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.WithError(err).WithSymbol(symbol).Error("Analyze failed")
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, record)
}
