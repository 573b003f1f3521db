package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kineticchat/webui/internal/chat/deterministic"
	"github.com/kineticchat/webui/internal/platform/metrics"
	"github.com/kineticchat/webui/internal/platform/phi"
	"github.com/kineticchat/webui/internal/platform/store"
)

func newTestHandler(responder Responder, history *memStore) (*Handler, *echo.Echo) {
	collector := metrics.NewCollector(ServiceName, Version)
	matcher := deterministic.NewMatcher(deterministic.ResponsesFor("pharmacy"))

	// Avoid handing a typed nil pointer to interface fields.
	var hist store.ConversationStore
	if history != nil {
		hist = history
	}
	agent := NewAgent(matcher, responder, phi.NewScrubber(), hist, collector, zerolog.Nop())

	h := NewHandler(HandlerConfig{
		Agent:         agent,
		Collector:     collector,
		History:       hist,
		Log:           zerolog.Nop(),
		Environment:   "test",
		ProfileName:   "pharmacy",
		Collection:    "kinetic_KineticAgent_Pharma_Demo",
		PerMinute:     20,
		RAGConfigured: responder != nil,
		VectorHealthy: func(ctx context.Context) bool { return responder != nil },
	})

	e := echo.New()
	h.Register(e)
	return h, e
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func getJSON(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return body
}

func TestChat_DeterministicResponse(t *testing.T) {
	_, e := newTestHandler(nil, nil)

	rec := postJSON(e, "/api/v1/chat", `{"query":"Hello","session_id":"abc-123"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["status"] != "success" {
		t.Fatalf("status field = %v", body["status"])
	}
	if body["source"] != SourceDeterministic {
		t.Fatalf("source = %v", body["source"])
	}
	if body["session_id"] != "abc-123" {
		t.Fatalf("session_id = %v", body["session_id"])
	}
	if resp, _ := body["response"].(string); !strings.Contains(resp, "YourPharmacy") {
		t.Fatalf("response = %v", body["response"])
	}
}

func TestChat_RetrievalResponse(t *testing.T) {
	responder := &fakeResponder{chunks: []string{"Vaccines are available. ", "\n\n[Sources: https://www.yourpharmacy.example.com/vaccine-info]"}}
	_, e := newTestHandler(responder, nil)

	rec := postJSON(e, "/api/v1/chat", `{"query":"Tell me about COVID vaccines","session_id":"abc-123","language":"en"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if body["source"] != SourceRAG {
		t.Fatalf("source = %v", body["source"])
	}
	resp, _ := body["response"].(string)
	if !strings.Contains(resp, "[Sources:") {
		t.Fatalf("response missing sources suffix: %q", resp)
	}
}

func TestChat_LegacyPath(t *testing.T) {
	_, e := newTestHandler(nil, nil)

	rec := postJSON(e, "/api/chat", `{"message":"Hello","session_id":"abc-123"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if body["source"] != SourceDeterministic {
		t.Fatalf("source = %v", body["source"])
	}
}

func TestChat_ValidationErrors(t *testing.T) {
	_, e := newTestHandler(nil, nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing text", `{"session_id":"abc"}`, "either 'query' or 'message'"},
		{"missing session", `{"query":"hi"}`, "session_id is required"},
		{"bad language", `{"query":"hi","session_id":"abc","language":"fr"}`, "language must be"},
		{"bad session characters", `{"query":"hi","session_id":"a b!"}`, "invalid characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(e, "/api/v1/chat", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			body := decode(t, rec)
			if body["status"] != "error" {
				t.Fatalf("status field = %v", body["status"])
			}
			if msg, _ := body["error"].(string); !strings.Contains(msg, tt.want) {
				t.Fatalf("error = %q, want %q", msg, tt.want)
			}
		})
	}
}

func TestFeedback_Accepted(t *testing.T) {
	history := &memStore{}
	_, e := newTestHandler(nil, history)

	rec := postJSON(e, "/api/v1/chat/feedback", `{"session_id":"abc-123","rating":4,"comment":"helpful"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["status"] != "accepted" {
		t.Fatalf("status = %v", body["status"])
	}
	if id, _ := body["feedback_id"].(string); id == "" {
		t.Fatal("missing feedback_id")
	}

	if len(history.feedback) != 1 {
		t.Fatalf("stored %d feedback rows, want 1", len(history.feedback))
	}
	fb := history.feedback[0]
	if fb.SessionHash == "abc-123" {
		t.Fatal("session id stored raw")
	}
	if fb.Rating != 4 {
		t.Fatalf("rating = %v", fb.Rating)
	}
}

func TestFeedback_InvalidRating(t *testing.T) {
	_, e := newTestHandler(nil, nil)

	rec := postJSON(e, "/api/v1/chat/feedback", `{"session_id":"abc","rating":9}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if msg, _ := body["error"].(string); !strings.Contains(msg, "between 1 and 5") {
		t.Fatalf("error = %q", msg)
	}
}

func TestHealth_Legacy(t *testing.T) {
	_, e := newTestHandler(nil, nil)

	rec := getJSON(e, "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if body["status"] != "healthy" {
		t.Fatalf("status = %v", body["status"])
	}
	if body["service"] != ServiceName {
		t.Fatalf("service = %v", body["service"])
	}
}

func TestHealthV1_DegradedWithoutRetrieval(t *testing.T) {
	_, e := newTestHandler(nil, nil)

	rec := getJSON(e, "/api/v1/health")

	body := decode(t, rec)
	if body["status"] != "degraded" {
		t.Fatalf("status = %v", body["status"])
	}
	checks, _ := body["checks"].(map[string]any)
	if checks["llm"] != "unhealthy" {
		t.Fatalf("llm check = %v", checks["llm"])
	}
	if checks["api"] != "operational" {
		t.Fatalf("api check = %v", checks["api"])
	}
}

func TestHealthV1_HealthyWhenAllComponentsUp(t *testing.T) {
	responder := &fakeResponder{}
	_, e := newTestHandler(responder, &memStore{})

	rec := getJSON(e, "/api/v1/health")

	body := decode(t, rec)
	if body["status"] != "healthy" {
		t.Fatalf("status = %v, body = %s", body["status"], rec.Body.String())
	}
}

func TestMetrics_Endpoints(t *testing.T) {
	_, e := newTestHandler(nil, nil)

	// Generate one chat request so the counters are populated.
	postJSON(e, "/api/v1/chat", `{"query":"Hello","session_id":"abc"}`)

	legacy := decode(t, getJSON(e, "/metrics"))
	if legacy["service"] != ServiceName {
		t.Fatalf("legacy metrics service = %v", legacy["service"])
	}
	if _, ok := legacy["requests_total"]; !ok {
		t.Fatal("legacy metrics missing requests_total")
	}

	full := decode(t, getJSON(e, "/api/v1/metrics"))
	if _, ok := full["response_times_ms"]; !ok {
		t.Fatal("full metrics missing response_times_ms")
	}
	if _, ok := full["requests"]; !ok {
		t.Fatal("full metrics missing requests")
	}
}

func TestStatus(t *testing.T) {
	_, e := newTestHandler(&fakeResponder{}, nil)

	rec := getJSON(e, "/api/v1/status")

	body := decode(t, rec)
	if body["status"] != "operational" {
		t.Fatalf("status = %v", body["status"])
	}
	components, _ := body["components"].(map[string]any)
	ragEngine, _ := components["rag_engine"].(map[string]any)
	if ragEngine["status"] != "operational" {
		t.Fatalf("rag_engine status = %v", ragEngine["status"])
	}
	if ragEngine["collection"] != "kinetic_KineticAgent_Pharma_Demo" {
		t.Fatalf("collection = %v", ragEngine["collection"])
	}
	configuration, _ := body["configuration"].(map[string]any)
	if configuration["rate_limiting"] != "20 req/min" {
		t.Fatalf("rate_limiting = %v", configuration["rate_limiting"])
	}
	if configuration["phi_scrubbing"] != "enabled" {
		t.Fatalf("phi_scrubbing = %v", configuration["phi_scrubbing"])
	}
}

func TestRoot(t *testing.T) {
	_, e := newTestHandler(nil, nil)

	body := decode(t, getJSON(e, "/"))
	if body["service"] != ServiceName {
		t.Fatalf("service = %v", body["service"])
	}
	if body["status"] != "operational" {
		t.Fatalf("status = %v", body["status"])
	}
}
