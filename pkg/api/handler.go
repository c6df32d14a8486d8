// Package api exposes the order intake endpoint over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"orderdesk/pkg/config"
	"orderdesk/pkg/events"
	"orderdesk/pkg/logger"
	"orderdesk/pkg/metrics"
	"orderdesk/pkg/order"
	"orderdesk/pkg/otel"
)

const (
	msgMethodNotAllowed = "Method not allowed"
	msgNotConfigured    = "Orders API not configured (missing env)"
	msgInvalidJSON      = "Invalid JSON body"
	msgMissingContact   = "Order must include fullName and phone"
	msgSaveFailed       = "Failed to save order"
)

// Handler accepts new orders and records them in the order document.
type Handler struct {
	cfg       config.Config
	appender  *order.Appender
	now       func() time.Time
	log       *logger.Logger
	publisher events.Publisher
}

// Option customizes a Handler.
type Option func(*Handler)

// WithClock sets the time source used for generated order ids.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// WithPublisher announces accepted orders through p.
func WithPublisher(p events.Publisher) Option {
	return func(h *Handler) { h.publisher = p }
}

// NewHandler returns a handler writing through store. store may be nil when
// cfg is incomplete; such requests are answered with a configuration error.
func NewHandler(cfg config.Config, store order.Store, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{cfg: cfg, now: time.Now, log: log}
	if store != nil {
		h.appender = order.NewAppender(store)
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type acceptedResponse struct {
	OK bool            `json:"ok"`
	ID json.RawMessage `json:"id" swaggertype:"string" example:"ord-1700000000000"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// ServeHTTP handles order submission.
// @Summary Submit order
// @Description Prepends the order to the stored order document. Either fullName or phone is required.
// @Accept json
// @Produce json
// @Param order body object true "Order"
// @Success 200 {object} acceptedResponse
// @Failure 400 {object} errorResponse
// @Failure 405 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/orders [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "api.orders")
	defer span.End()

	setCORS(w, r)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		h.fail(w, order.ErrMethodNotAllowed)
		return
	}

	if missing := h.cfg.Missing(); len(missing) > 0 || h.appender == nil {
		h.log.Error(ctx, "orders api not configured", "missing", missing)
		h.fail(w, order.ErrNotConfigured)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Warn(ctx, "read body", "error", err)
		h.fail(w, order.ErrInvalidJSON)
		return
	}
	o, err := order.ParseOrder(body)
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := o.Validate(); err != nil {
		h.fail(w, err)
		return
	}
	o.Normalize(h.now())

	if err := h.appender.Append(ctx, o); err != nil {
		h.log.Error(ctx, "save order", "order_id", o.Identifier(), "error", err)
		metrics.OrderFailuresTotal.WithLabelValues("store").Inc()
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: msgSaveFailed, Detail: err.Error()})
		return
	}
	metrics.OrdersAcceptedTotal.Inc()
	h.log.Info(ctx, "order accepted", "order_id", o.Identifier())

	if h.publisher != nil {
		if err := h.publisher.OrderAccepted(ctx, o); err != nil {
			metrics.EventPublishFailuresTotal.Inc()
			h.log.Warn(ctx, "publish order event", "order_id", o.Identifier(), "error", err)
		}
	}

	respondJSON(w, http.StatusOK, acceptedResponse{OK: true, ID: o.IDJSON()})
}

// fail answers a request rejected before any store write.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	status, msg, reason := http.StatusInternalServerError, msgSaveFailed, "internal"
	switch {
	case errors.Is(err, order.ErrMethodNotAllowed):
		status, msg, reason = http.StatusMethodNotAllowed, msgMethodNotAllowed, "method"
	case errors.Is(err, order.ErrNotConfigured):
		status, msg, reason = http.StatusInternalServerError, msgNotConfigured, "config"
	case errors.Is(err, order.ErrInvalidJSON):
		status, msg, reason = http.StatusBadRequest, msgInvalidJSON, "parse"
	case errors.Is(err, order.ErrMissingContact):
		status, msg, reason = http.StatusBadRequest, msgMissingContact, "validation"
	}
	metrics.OrderFailuresTotal.WithLabelValues(reason).Inc()
	respondJSON(w, status, errorResponse{Error: msg})
}

func setCORS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = "*"
	}
	hdr := w.Header()
	hdr.Set("Access-Control-Allow-Origin", origin)
	hdr.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	hdr.Set("Access-Control-Allow-Headers", "Content-Type")
	hdr.Set("Access-Control-Max-Age", "86400")
	if origin != "*" {
		hdr.Add("Vary", "Origin")
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
