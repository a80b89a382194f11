package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"

	"modulehost/internal/module"
	"modulehost/internal/schema"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubModule lets each test script the contract's behavior and observe
// whether the inference path was reached.
type stubModule struct {
	health schema.Health
	caps   schema.ModuleCapabilities
	out    schema.Output
	err    error
	m      schema.MetricsData
	calls  atomic.Int64
}

func (s *stubModule) Initialize(ctx context.Context) error          { return nil }
func (s *stubModule) HealthCheck(ctx context.Context) schema.Health { return s.health }
func (s *stubModule) Capabilities() schema.ModuleCapabilities       { return s.caps }
func (s *stubModule) Metrics() schema.MetricsData                   { return s.m }
func (s *stubModule) RunInference(ctx context.Context, in schema.Input) (schema.Output, error) {
	s.calls.Add(1)
	return s.out, s.err
}

func newTestRouter(mod module.Module) *gin.Engine {
	r := gin.New()
	h := NewModuleHandler(mod, nil, nil)
	r.GET("/health", h.Health)
	r.GET("/capabilities", h.Capabilities)
	r.POST("/inference", h.Inference)
	r.GET("/metrics", h.Metrics)
	r.GET("/requests", h.Requests)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		health schema.Health
	}{
		{
			name:   "healthy",
			health: schema.Health{Status: schema.HealthStatusHealthy, Message: "backend is responding"},
		},
		{
			name:   "unhealthy is still a 200",
			health: schema.Health{Status: schema.HealthStatusUnhealthy, Message: "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&stubModule{health: tt.health})

			w := doJSON(t, r, http.MethodGet, "/health", "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			var got schema.Health
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			if got != tt.health {
				t.Errorf("health = %+v, want %+v", got, tt.health)
			}
		})
	}
}

func TestCapabilitiesEndpoint(t *testing.T) {
	caps := schema.ModuleCapabilities{
		Name:              "stub",
		Version:           "1.0",
		ModelType:         "llm",
		MaxBatchSize:      1,
		MaxSequenceLength: 4096,
	}
	r := newTestRouter(&stubModule{caps: caps})

	first := doJSON(t, r, http.MethodGet, "/capabilities", "")
	second := doJSON(t, r, http.MethodGet, "/capabilities", "")
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("status = %d/%d, want 200", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Error("capabilities response must be identical across calls")
	}

	var got schema.ModuleCapabilities
	if err := json.Unmarshal(first.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "stub" || got.MaxSequenceLength != 4096 {
		t.Errorf("capabilities = %+v", got)
	}
}

func TestInferenceSuccess(t *testing.T) {
	stub := &stubModule{
		out: schema.Output{
			Text:  "hi",
			Usage: schema.TokenUsage{PromptTokens: 2, CompletionTokens: 1, TotalTokens: 3},
		},
	}
	r := newTestRouter(stub)

	body := `{"text":"hello","parameters":{"max_tokens":16,"temperature":0.7,"top_p":0.9,"stop_sequences":[]}}`
	w := doJSON(t, r, http.MethodPost, "/inference", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	var got schema.Output
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Text != "hi" || got.Usage.TotalTokens != 3 {
		t.Errorf("output = %+v", got)
	}
}

func TestInferenceMalformedRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{{{`},
		{name: "missing parameters", body: `{"text":"hello"}`},
		{name: "negative max_tokens", body: `{"text":"x","parameters":{"max_tokens":-1}}`},
		{name: "wrong type", body: `{"text":42,"parameters":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubModule{}
			r := newTestRouter(stub)

			w := doJSON(t, r, http.MethodPost, "/inference", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body: %s)", w.Code, w.Body.String())
			}
			if stub.calls.Load() != 0 {
				t.Error("malformed request must be rejected before reaching the module")
			}
			if !strings.Contains(w.Body.String(), "detail") {
				t.Errorf("body = %s, want a detail field", w.Body.String())
			}
		})
	}
}

func TestInferenceModuleFailure(t *testing.T) {
	stub := &stubModule{
		err: &module.BackendError{StatusCode: 500, Message: "model exploded"},
	}
	r := newTestRouter(stub)

	body := `{"text":"x","parameters":{}}`
	w := doJSON(t, r, http.MethodPost, "/inference", body)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "model exploded") {
		t.Errorf("body = %s, want the plugin's message preserved verbatim", w.Body.String())
	}

	// The process keeps serving after a request-scoped failure.
	stub.err = nil
	w = doJSON(t, r, http.MethodPost, "/inference", body)
	if w.Code != http.StatusOK {
		t.Errorf("status after failure = %d, want 200", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	stub := &stubModule{
		m: schema.MetricsData{
			RequestsProcessed: 7,
			AverageLatencyMs:  12.5,
			ErrorCount:        2,
			MemoryUsageMB:     64,
		},
	}
	r := newTestRouter(stub)

	w := doJSON(t, r, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got schema.MetricsData
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got != stub.m {
		t.Errorf("metrics = %+v, want %+v", got, stub.m)
	}
}

func TestRequestsWithoutStore(t *testing.T) {
	r := newTestRouter(&stubModule{})

	w := doJSON(t, r, http.MethodGet, "/requests", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"requests":[]`) {
		t.Errorf("body = %s, want an empty list", w.Body.String())
	}
}
