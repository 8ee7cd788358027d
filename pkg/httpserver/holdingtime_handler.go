package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/mselser95/hl-holdtime/internal/batch"
	"github.com/mselser95/hl-holdtime/internal/circuitbreaker"
	"github.com/mselser95/hl-holdtime/pkg/types"
	"go.uber.org/zap"
)

const maxBatchBodyBytes = 1 << 20

// HoldingTimeHandler serves single-account reports and batch classification.
type HoldingTimeHandler struct {
	analyzer     batch.Analyzer
	criteria     batch.Criteria
	maxAddresses int
	logger       *zap.Logger
}

// HandlerConfig holds handler configuration.
type HandlerConfig struct {
	Analyzer     batch.Analyzer
	Criteria     batch.Criteria
	MaxAddresses int
	Logger       *zap.Logger
}

// NewHoldingTimeHandler creates a new holding-time handler.
func NewHoldingTimeHandler(cfg *HandlerConfig) (*HoldingTimeHandler, error) {
	if cfg == nil || cfg.Analyzer == nil {
		return nil, errors.New("analyzer cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	criteria := cfg.Criteria
	if criteria.Comparison == "" {
		criteria = batch.DefaultCriteria()
	}
	err := criteria.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate criteria: %w", err)
	}

	maxAddresses := cfg.MaxAddresses
	if maxAddresses <= 0 {
		maxAddresses = defaultMaxBatchAddresses
	}

	return &HoldingTimeHandler{
		analyzer:     cfg.Analyzer,
		criteria:     criteria,
		maxAddresses: maxAddresses,
		logger:       cfg.Logger,
	}, nil
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// BatchRequest is the POST /api/batch body. Zero-value criteria fields use the server defaults.
type BatchRequest struct {
	Addresses      []string `json:"addresses"`
	ThresholdHours *float64 `json:"threshold_hours,omitempty"`
	Comparison     string   `json:"comparison,omitempty"`
}

// HandleAccount handles GET /api/accounts/{address}/holding-time.
func (h *HoldingTimeHandler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "address")
	account, ok := batch.NormalizeAddress(raw)
	if !ok {
		h.writeError(w, fmt.Sprintf("invalid account address: %q", raw), http.StatusBadRequest)
		return
	}

	h.logger.Debug("holding-time-request-received", zap.String("account", account))

	report, err := h.analyzer.Analyze(r.Context(), account)
	if err != nil {
		status := statusForError(err)
		h.logger.Warn("holding-time-request-failed",
			zap.String("account", account),
			zap.Int("status", status),
			zap.Error(err))
		h.writeError(w, err.Error(), status)
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// HandleBatch handles POST /api/batch.
func (h *HoldingTimeHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBodyBytes))
	err := decoder.Decode(&req)
	if err != nil {
		h.writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if len(req.Addresses) == 0 {
		h.writeError(w, "addresses cannot be empty", http.StatusBadRequest)
		return
	}
	if len(req.Addresses) > h.maxAddresses {
		h.writeError(w, fmt.Sprintf("too many addresses: %d (max %d)", len(req.Addresses), h.maxAddresses), http.StatusBadRequest)
		return
	}

	criteria := h.criteria
	if req.ThresholdHours != nil {
		criteria.ThresholdHours = *req.ThresholdHours
	}
	if req.Comparison != "" {
		criteria.Comparison, err = batch.ParseComparison(req.Comparison)
		if err != nil {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	filter, err := batch.NewFilter(&batch.Config{
		Analyzer: h.analyzer,
		Criteria: criteria,
		Logger:   h.logger,
	})
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := filter.Run(r.Context(), req.Addresses)
	if err != nil {
		h.logger.Warn("batch-request-incomplete", zap.Error(err))
		h.writeError(w, err.Error(), http.StatusGatewayTimeout)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// statusForError maps analysis errors to HTTP status codes.
func statusForError(err error) int {
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return http.StatusGatewayTimeout
	}

	var transportErr *types.TransportError
	if errors.As(err, &transportErr) {
		return http.StatusBadGateway
	}
	var malformed *types.MalformedFillError
	if errors.As(err, &malformed) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func (h *HoldingTimeHandler) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (h *HoldingTimeHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	h.writeJSON(w, statusCode, ErrorResponse{Error: message})
}
