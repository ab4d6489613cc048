package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"example.com/runkeeper/internal/audit"
	"example.com/runkeeper/internal/auth"
	"example.com/runkeeper/internal/healthgraph"
)

const profileBody = `{
	"birthday": "Sat, 1 Jan 1983 00:00:00",
	"location": "Los Angeles, CA",
	"name": "Jane Doe",
	"elite": "false",
	"gender": "F",
	"athlete_type": "Runner",
	"profile": "http://runkeeper.com/user/123"
}`

const activitiesBody = `{"size": 1, "items": [{
	"type": "Run",
	"start_time": "Mon, 1 Jan 2024 00:00:00",
	"total_distance": 5.5,
	"duration": 10,
	"uri": "http://x/y/55"
}]}`

type stubCredentials struct {
	creds map[string]string
}

func (s *stubCredentials) Credentials(context.Context, string) (map[string]string, error) {
	return s.creds, nil
}

type recordingEmitter struct {
	events []audit.ReadCompleted
}

func (r *recordingEmitter) ReadCompleted(event audit.ReadCompleted) {
	r.events = append(r.events, event)
}

type testFixture struct {
	handler     *Handler
	emitter     *recordingEmitter
	vendorCalls *int
}

func newFixture(t *testing.T, vendorBody string, vendorStatus int, creds map[string]string) testFixture {
	t.Helper()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(vendorStatus)
		_, _ = w.Write([]byte(vendorBody))
	}))
	t.Cleanup(server.Close)

	client := healthgraph.NewClient(server.URL, time.Second)
	emitter := &recordingEmitter{}
	handler := NewHandler(client, &stubCredentials{creds: creds}, emitter)
	return testFixture{handler: handler, emitter: emitter, vendorCalls: &calls}
}

func readerClaims(scopes ...string) *auth.Claims {
	scopeSet := make(map[string]struct{}, len(scopes))
	for _, scope := range scopes {
		scopeSet[scope] = struct{}{}
	}
	return &auth.Claims{
		Subject:   "alice",
		TenantID:  "tenant-1",
		Scopes:    scopeSet,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func authedRequest(method, target string, claims *auth.Claims) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func TestReadProfileSuccess(t *testing.T) {
	fixture := newFixture(t, profileBody, http.StatusOK, map[string]string{
		"bearer_alice": "token-abc",
	})

	req := authedRequest(http.MethodGet, "/v1/omh/read?payload_id=omh:run_keeper:profile", readerClaims(auth.ScopeOmhRead))
	rr := httptest.NewRecorder()
	fixture.handler.read(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp ReadResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Metadata.Count != 1 {
		t.Fatalf("expected count 1 got %d", resp.Metadata.Count)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("expected 1 point got %d", len(resp.Data))
	}
	if resp.Data[0].Metadata.ID != "123" {
		t.Fatalf("expected derived id 123 got %q", resp.Data[0].Metadata.ID)
	}
	if got := resp.Data[0].Data["name"]; got != "Jane Doe" {
		t.Fatalf("expected name field got %v", got)
	}
	if *fixture.vendorCalls != 1 {
		t.Fatalf("expected 1 vendor call got %d", *fixture.vendorCalls)
	}

	if len(fixture.emitter.events) != 1 {
		t.Fatalf("expected 1 audit event got %d", len(fixture.emitter.events))
	}
	event := fixture.emitter.events[0]
	if !event.VendorCalled || event.PointCount != 1 || event.Owner != "alice" {
		t.Fatalf("unexpected audit event %+v", event)
	}
}

func TestReadActivitiesSuccess(t *testing.T) {
	fixture := newFixture(t, activitiesBody, http.StatusOK, map[string]string{
		"bearer_alice": "token-abc",
	})

	req := authedRequest(http.MethodGet, "/v1/omh/read?payload_id=omh:run_keeper:fitnessActivities&num_to_return=10", readerClaims(auth.ScopeOmhRead))
	rr := httptest.NewRecorder()
	fixture.handler.read(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp ReadResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Metadata.Count != 1 {
		t.Fatalf("expected count 1 got %d", resp.Metadata.Count)
	}
	if resp.Data[0].Metadata.ID != "55" {
		t.Fatalf("expected derived id 55 got %q", resp.Data[0].Metadata.ID)
	}
	if resp.Data[0].Metadata.Timestamp == "" {
		t.Fatal("expected ISO timestamp in metadata")
	}
}

func TestReadColumnFilter(t *testing.T) {
	fixture := newFixture(t, activitiesBody, http.StatusOK, map[string]string{
		"bearer_alice": "token-abc",
	})

	req := authedRequest(http.MethodGet, "/v1/omh/read?payload_id=omh:run_keeper:fitnessActivities&num_to_return=10&column_list=data:type", readerClaims(auth.ScopeOmhRead))
	rr := httptest.NewRecorder()
	fixture.handler.read(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp ReadResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	data := resp.Data[0].Data
	if len(data) != 1 {
		t.Fatalf("expected 1 field got %v", data)
	}
	if data["type"] != "Run" {
		t.Fatalf("expected type Run got %v", data["type"])
	}
}

func TestReadUnlinkedOwnerSkipsVendor(t *testing.T) {
	fixture := newFixture(t, profileBody, http.StatusOK, map[string]string{})

	req := authedRequest(http.MethodGet, "/v1/omh/read?payload_id=omh:run_keeper:profile", readerClaims(auth.ScopeOmhRead))
	rr := httptest.NewRecorder()
	fixture.handler.read(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp ReadResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Metadata.Count != 0 {
		t.Fatalf("expected count 0 got %d", resp.Metadata.Count)
	}
	if len(resp.Data) != 0 {
		t.Fatalf("expected no points got %d", len(resp.Data))
	}
	if *fixture.vendorCalls != 0 {
		t.Fatalf("expected no vendor calls got %d", *fixture.vendorCalls)
	}
	if len(fixture.emitter.events) != 1 || fixture.emitter.events[0].VendorCalled {
		t.Fatalf("expected audit event without vendor call, got %+v", fixture.emitter.events)
	}
}

func TestReadInvalidPayloadID(t *testing.T) {
	fixture := newFixture(t, profileBody, http.StatusOK, nil)

	for _, payloadID := range []string{
		"omh:run_keeper",
		"omh:run_keeper:profile:extra",
		"omh:run_keeper:sleep",
	} {
		req := authedRequest(http.MethodGet, "/v1/omh/read?payload_id="+payloadID, readerClaims(auth.ScopeOmhRead))
		rr := httptest.NewRecorder()
		fixture.handler.read(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("payload_id %q: expected 400 got %d", payloadID, rr.Code)
		}
	}
	if *fixture.vendorCalls != 0 {
		t.Fatalf("expected no vendor calls got %d", *fixture.vendorCalls)
	}
}

func TestReadRequiresScope(t *testing.T) {
	fixture := newFixture(t, profileBody, http.StatusOK, nil)

	req := authedRequest(http.MethodGet, "/v1/omh/read?payload_id=omh:run_keeper:profile", readerClaims())
	rr := httptest.NewRecorder()
	fixture.handler.read(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rr.Code)
	}
}

func TestReadVendorFailureIsBadGateway(t *testing.T) {
	fixture := newFixture(t, `{"error":"down"}`, http.StatusInternalServerError, map[string]string{
		"bearer_alice": "token-abc",
	})

	req := authedRequest(http.MethodGet, "/v1/omh/read?payload_id=omh:run_keeper:profile", readerClaims(auth.ScopeOmhRead))
	rr := httptest.NewRecorder()
	fixture.handler.read(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestReadRejectsBadTimestamps(t *testing.T) {
	fixture := newFixture(t, profileBody, http.StatusOK, nil)

	req := authedRequest(http.MethodGet, "/v1/omh/read?payload_id=omh:run_keeper:profile&t_start=yesterday", readerClaims(auth.ScopeOmhRead))
	rr := httptest.NewRecorder()
	fixture.handler.read(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestWriteAlwaysRejected(t *testing.T) {
	fixture := newFixture(t, profileBody, http.StatusOK, nil)

	req := authedRequest(http.MethodPost, "/v1/omh/write?payload_id=omh:run_keeper:profile", readerClaims(auth.ScopeOmhWrite))
	rr := httptest.NewRecorder()
	fixture.handler.write(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["type"] != "unsupported_operation" {
		t.Fatalf("expected unsupported_operation got %q", resp["type"])
	}
	if *fixture.vendorCalls != 0 {
		t.Fatalf("expected no vendor calls got %d", *fixture.vendorCalls)
	}
}

func TestRegistryListsBothEndpoints(t *testing.T) {
	fixture := newFixture(t, profileBody, http.StatusOK, nil)

	req := authedRequest(http.MethodGet, "/v1/omh/registry", readerClaims(auth.ScopeOmhRead))
	rr := httptest.NewRecorder()
	fixture.handler.registry(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp RegistryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Registry) != 2 {
		t.Fatalf("expected 2 entries got %d", len(resp.Registry))
	}
	if resp.Registry[0].PayloadID != "omh:run_keeper:profile" {
		t.Fatalf("unexpected first payload id %q", resp.Registry[0].PayloadID)
	}
	if resp.Registry[1].PayloadID != "omh:run_keeper:fitnessActivities" {
		t.Fatalf("unexpected second payload id %q", resp.Registry[1].PayloadID)
	}
	for _, entry := range resp.Registry {
		if entry.ChunkSize != 2000 || !entry.LocalTzAuthoritative || entry.Summarizable {
			t.Fatalf("unexpected entry flags %+v", entry)
		}
		if entry.PayloadVersion != "1" || entry.PayloadDefinition.Type != "object" {
			t.Fatalf("unexpected entry payload %+v", entry)
		}
	}
}

func TestReadRejectsNonGet(t *testing.T) {
	fixture := newFixture(t, profileBody, http.StatusOK, nil)

	req := authedRequest(http.MethodPost, "/v1/omh/read?payload_id=omh:run_keeper:profile", readerClaims(auth.ScopeOmhRead))
	rr := httptest.NewRecorder()
	fixture.handler.read(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rr.Code)
	}
}
