// Package ollama implements the backend-calling reference module: it
// bridges inference requests to an Ollama-compatible HTTP backend and
// translates backend failures into the host's health/error vocabulary.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"modulehost/internal/module"
	"modulehost/internal/registry"
	"modulehost/internal/schema"
)

const (
	// Name is the registry name this plugin registers under.
	Name = "ollama-llm"

	defaultBackendURL = "http://localhost:11434"
	defaultModel      = "llama2"

	// requestTimeout bounds a single backend call. A timed-out call is
	// a request-scoped failure, never a host fault.
	requestTimeout = 120 * time.Second

	probeTimeout = 5 * time.Second
	pollInterval = 250 * time.Millisecond
)

func init() {
	registry.Register(Name, New)
}

// Plugin talks to one Ollama backend. Counter updates are atomic, so
// concurrent inference calls never lose an increment.
type Plugin struct {
	backendURL string
	model      string
	grace      time.Duration
	client     *http.Client
	stats      module.Stats
}

// New builds the plugin from manifest settings. Recognized keys:
// backend_url, model, startup_grace_ms.
func New(settings map[string]string) (module.Module, error) {
	p := &Plugin{
		backendURL: defaultBackendURL,
		model:      defaultModel,
		grace:      5 * time.Second,
		client:     &http.Client{Timeout: requestTimeout},
	}

	if v := settings["backend_url"]; v != "" {
		p.backendURL = strings.TrimRight(v, "/")
	}
	if v := settings["model"]; v != "" {
		p.model = v
	}
	if v := settings["startup_grace_ms"]; v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("ollama: invalid startup_grace_ms %q", v)
		}
		p.grace = time.Duration(ms) * time.Millisecond
	}
	return p, nil
}

// Initialize waits for the backend to come up, bounded by the startup
// grace window. Backends often take a few seconds to begin listening
// after their container starts; within the window that is tolerated,
// past it the host must fail to start.
func (p *Plugin) Initialize(ctx context.Context) error {
	deadline := time.Now().Add(p.grace)

	var lastErr error
	for {
		reqCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := p.ping(reqCtx)
		cancel()
		if err == nil {
			log.Infof("ollama: backend reachable at %s (model %s)", p.backendURL, p.model)
			return nil
		}
		lastErr = err

		if time.Now().After(deadline) {
			return fmt.Errorf("ollama: backend %s not reachable within %s: %w", p.backendURL, p.grace, lastErr)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func (p *Plugin) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.backendURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return nil
}

// HealthCheck issues a minimal generate probe. Every expected failure
// mode comes back as an Unhealthy value; this method never returns an
// error and never panics the host.
func (p *Plugin) HealthCheck(ctx context.Context) schema.Health {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	body, status, err := p.generate(probeCtx, generateRequest{
		Model:  p.model,
		Prompt: "test",
		Stream: false,
	})
	if err != nil {
		return schema.Health{Status: schema.HealthStatusUnhealthy, Message: err.Error()}
	}
	if status != http.StatusOK {
		msg := fmt.Sprintf("backend returned status %d", status)
		if detail := strings.TrimSpace(string(body)); detail != "" {
			msg += ": " + detail
		}
		return schema.Health{Status: schema.HealthStatusUnhealthy, Message: msg}
	}
	return schema.Health{Status: schema.HealthStatusHealthy, Message: "backend is responding"}
}

// Capabilities is constant for the process lifetime.
func (p *Plugin) Capabilities() schema.ModuleCapabilities {
	return schema.ModuleCapabilities{
		Name:              Name,
		Version:           "1.0",
		ModelType:         "llm",
		MaxBatchSize:      1,
		MaxSequenceLength: 4096,
		ResourceRequirements: schema.ResourceRequirements{
			MinMemoryMB: 8192,
			MinCPUCores: 2.0,
			GPURequired: false,
		},
	}
}

// RunInference forwards one request to the backend. On success the
// request counter and cumulative latency advance; on any failure only
// the error counter does.
func (p *Plugin) RunInference(ctx context.Context, in schema.Input) (schema.Output, error) {
	start := time.Now()

	req := generateRequest{
		Model:  p.model,
		Prompt: in.Text,
		Stream: false,
	}
	if in.Parameters != nil {
		req.Options = &generateOptions{
			Temperature: in.Parameters.Temperature,
			TopP:        in.Parameters.TopP,
			Stop:        in.Parameters.StopSequences,
		}
		if in.Parameters.MaxTokens > 0 {
			n := in.Parameters.MaxTokens
			req.Options.NumPredict = &n
		}
	}

	body, status, err := p.generate(ctx, req)
	if err != nil {
		p.stats.RecordFailure()
		return schema.Output{}, &module.BackendError{Message: err.Error()}
	}
	if status < 200 || status >= 300 {
		p.stats.RecordFailure()
		return schema.Output{}, &module.BackendError{
			StatusCode: status,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		p.stats.RecordFailure()
		return schema.Output{}, &module.BackendError{Message: "malformed backend response: " + err.Error()}
	}

	p.stats.RecordSuccess(time.Since(start))

	return schema.Output{
		Text: result.Response,
		Usage: schema.TokenUsage{
			PromptTokens:     result.PromptEvalCount,
			CompletionTokens: result.EvalCount,
			TotalTokens:      result.PromptEvalCount + result.EvalCount,
		},
	}, nil
}

// Metrics reports the counters plus this process's resident set size.
func (p *Plugin) Metrics() schema.MetricsData {
	requests, avgMs, errCount := p.stats.Snapshot()
	return schema.MetricsData{
		RequestsProcessed: requests,
		AverageLatencyMs:  avgMs,
		ErrorCount:        errCount,
		MemoryUsageMB:     module.ProcessMemoryMB(),
	}
}

func (p *Plugin) generate(ctx context.Context, greq generateRequest) (body []byte, status int, err error) {
	payload, err := json.Marshal(greq)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.backendURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

type generateRequest struct {
	Model   string           `json:"model"`
	Prompt  string           `json:"prompt"`
	Stream  bool             `json:"stream"`
	Options *generateOptions `json:"options,omitempty"`
}

type generateOptions struct {
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p"`
	Stop        []string `json:"stop,omitempty"`
	NumPredict  *int     `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}
