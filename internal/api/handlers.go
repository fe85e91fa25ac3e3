// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

// Package api provides the HTTP surface of Orbitus: current position,
// windowed history with pagination, retention stats, health, live updates
// over WebSocket, and Prometheus metrics. The package depends only on the
// query service and the websocket hub; it never touches the sampler or the
// buffer directly.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/orbitus/orbitus/internal/logging"
	"github.com/orbitus/orbitus/internal/query"
	"github.com/orbitus/orbitus/internal/validation"
	ws "github.com/orbitus/orbitus/internal/websocket"
)

// Handler holds the dependencies shared by all endpoint handlers.
type Handler struct {
	queries   *query.Service
	hub       *ws.Hub
	version   string
	startTime time.Time
	upgrader  gorillaws.Upgrader
}

// NewHandler creates the endpoint handler set.
func NewHandler(queries *query.Service, hub *ws.Hub, version string) *Handler {
	return &Handler{
		queries:   queries,
		hub:       hub,
		version:   version,
		startTime: time.Now(),
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin policy is enforced by the CORS middleware on
			// the regular endpoints; the upgrade handshake accepts any
			// origin so the map front end can be hosted separately.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Current serves the most recent retained sample.
//
// Method: GET
// Path: /api/current
//
// Responses:
//   - 200: the current sample
//   - 503: NO_DATA_YET before the first successful sampler cycle
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	sample, err := h.queries.Current()
	if err != nil {
		if errors.Is(err, query.ErrNoDataYet) {
			respondError(w, http.StatusServiceUnavailable, "NO_DATA_YET",
				"No position data retained yet", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"Failed to read current position", err)
		return
	}

	respondSuccess(w, sample, start)
}

// historyRequest carries the validated pagination parameters.
type historyRequest struct {
	Page     int `validate:"min=0"`
	PageSize int `validate:"min=0"`
}

// History serves one page of the retained window in ascending timestamp
// order.
//
// Method: GET
// Path: /api/last3days?page=<int>&pageSize=<int>
//
// page defaults to 0 and pageSize to the server default (100) when absent.
// Non-numeric or negative values are a 400; pageSize above the server
// maximum (1000) is clamped. An out-of-range page returns empty items with
// the correct total_count.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	page, ok := queryIntParam(r, "page", 0)
	if !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"page must be an integer", nil)
		return
	}
	pageSize, ok := queryIntParam(r, "pageSize", 0)
	if !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"pageSize must be an integer", nil)
		return
	}

	req := historyRequest{Page: page, PageSize: pageSize}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	result, err := h.queries.History(pageSize, page)
	if err != nil {
		// Negative sizes were rejected above; reaching here means the
		// paging contract changed underneath us.
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"Failed to read history", err)
		return
	}

	respondSuccess(w, result, start)
}

// Stats serves a summary of the retained window.
//
// Method: GET
// Path: /api/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, h.queries.Stats(), start)
}

// WebSocket upgrades the connection and registers the client for live
// position updates.
//
// Method: GET
// Path: /api/ws
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn)
	h.hub.Register <- client
	client.Start()
}

// uptime returns seconds since the handler set was constructed.
func (h *Handler) uptime() float64 {
	return time.Since(h.startTime).Seconds()
}

// methodNotAllowed is chi's fallback for wrong-method requests, kept in the
// standard error envelope.
func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
		fmt.Sprintf("Method %s not allowed", r.Method), nil)
}
