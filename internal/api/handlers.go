// Package api exposes the OMH read surface over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"example.com/runkeeper/internal/audit"
	"example.com/runkeeper/internal/auth"
	"example.com/runkeeper/internal/credentials"
	"example.com/runkeeper/internal/healthgraph"
	"example.com/runkeeper/internal/observability"
	"example.com/runkeeper/internal/omh"
	"example.com/runkeeper/internal/payload"
)

// AuditEmitter publishes read-audit events.
type AuditEmitter interface {
	ReadCompleted(event audit.ReadCompleted)
}

// Handler coordinates HTTP requests with the read-request lifecycle.
type Handler struct {
	client *healthgraph.Client
	creds  credentials.Source
	audit  AuditEmitter
	logger *log.Logger
}

// NewHandler builds a Handler.
func NewHandler(client *healthgraph.Client, creds credentials.Source, emitter AuditEmitter) *Handler {
	return &Handler{
		client: client,
		creds:  creds,
		audit:  emitter,
		logger: log.New(log.Writer(), "[api] ", log.LstdFlags),
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/omh/read", h.read)
	mux.HandleFunc("/v1/omh/registry", h.registry)
	mux.HandleFunc("/v1/omh/write", h.write)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) read(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeOmhRead) {
		writeError(w, http.StatusForbidden, "forbidden", "scope omh:read required")
		return
	}

	rawID := r.URL.Query().Get("payload_id")
	if rawID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing payload_id parameter")
		return
	}

	id, err := payload.Parse(rawID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload_id", err.Error())
		return
	}

	owner := r.URL.Query().Get("owner")
	if owner == "" {
		owner = claims.Subject
	}

	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	page, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	columns := omh.ParseColumnList(r.URL.Query().Get("column_list"))

	endpoint := id.Endpoint(h.client)
	request, err := omh.NewReadRequest(credentials.DomainRunKeeper, endpoint, h.creds)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	start := time.Now()
	if err := request.Service(r.Context(), owner, window, page); err != nil {
		h.logger.Printf("read %s for owner %s failed: %v", rawID, owner, err)
		if errors.Is(err, healthgraph.ErrTransport) || errors.Is(err, healthgraph.ErrProtocol) {
			writeError(w, http.StatusBadGateway, "vendor_error", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	result, err := request.Respond(columns.Child("data"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	observability.RecordPointsServed(endpoint.Path(), result.Count)

	requestID := uuid.NewString()
	h.audit.ReadCompleted(audit.ReadCompleted{
		RequestID:    requestID,
		TenantID:     claims.TenantID,
		Requester:    claims.Subject,
		Owner:        owner,
		PayloadID:    rawID,
		PointCount:   result.Count,
		VendorCalled: request.VendorCalled(),
		DurationMS:   time.Since(start).Milliseconds(),
		OccurredAt:   time.Now().UTC(),
	})

	writeJSON(w, http.StatusOK, ReadResponse{
		Metadata: ReadMetadata{RequestID: requestID, Count: result.Count},
		Data:     result.Points,
	})
}

func (h *Handler) registry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeOmhRead) {
		writeError(w, http.StatusForbidden, "forbidden", "scope omh:read required")
		return
	}

	entries := make([]omh.RegistryEntry, 0, len(payload.Selectors()))
	for _, selector := range payload.Selectors() {
		payloadID := "omh:" + credentials.DomainRunKeeper + ":" + selector
		id, err := payload.Parse(payloadID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		entries = append(entries, omh.NewRegistryEntry(payloadID, id.Endpoint(h.client)))
	}

	writeJSON(w, http.StatusOK, RegistryResponse{Registry: entries})
}

// write always rejects: RunKeeper data is read-only in this platform.
func (h *Handler) write(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeOmhWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope omh:write required")
		return
	}

	rawID := r.URL.Query().Get("payload_id")
	id, err := payload.Parse(rawID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload_id", err.Error())
		return
	}

	if _, err := omh.NewWriteRequest(credentials.DomainRunKeeper, id.Endpoint(h.client)); err != nil {
		writeError(w, http.StatusBadRequest, "unsupported_operation", err.Error())
		return
	}
}

func parseWindow(r *http.Request) (omh.Window, error) {
	var window omh.Window

	if raw := r.URL.Query().Get("t_start"); raw != "" {
		parsed, err := parseTimestamp(raw)
		if err != nil {
			return omh.Window{}, errors.New("invalid t_start parameter")
		}
		window.Start = &parsed
	}
	if raw := r.URL.Query().Get("t_end"); raw != "" {
		parsed, err := parseTimestamp(raw)
		if err != nil {
			return omh.Window{}, errors.New("invalid t_end parameter")
		}
		window.End = &parsed
	}
	return window, nil
}

// parseTimestamp accepts RFC3339 or epoch milliseconds.
func parseTimestamp(raw string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(millis).UTC(), nil
}

func parsePagination(r *http.Request) (omh.Pagination, error) {
	page := omh.Pagination{Limit: omh.ChunkSize}

	if raw := r.URL.Query().Get("num_to_skip"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return omh.Pagination{}, errors.New("invalid num_to_skip parameter")
		}
		page.Skip = parsed
	}
	if raw := r.URL.Query().Get("num_to_return"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return omh.Pagination{}, errors.New("invalid num_to_return parameter")
		}
		if parsed > omh.ChunkSize {
			parsed = omh.ChunkSize
		}
		page.Limit = parsed
	}
	return page, nil
}

// ReadMetadata describes the read response envelope.
type ReadMetadata struct {
	RequestID string `json:"request_id"`
	Count     int    `json:"count"`
}

// ReadResponse packages the rendered points.
type ReadResponse struct {
	Metadata ReadMetadata `json:"metadata"`
	Data     []omh.Point  `json:"data"`
}

// RegistryResponse lists the registry entries for every readable payload.
type RegistryResponse struct {
	Registry []omh.RegistryEntry `json:"registry"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
