// Package echo implements a hand-written algorithm module: a
// deterministic local transform with no external backend. It exists so
// the host can serve compute that is not model inference, and it gives
// tests a hermetic module.
package echo

import (
	"context"
	"strings"
	"time"

	"modulehost/internal/module"
	"modulehost/internal/registry"
	"modulehost/internal/schema"
)

// Name is the registry name this plugin registers under.
const Name = "echo"

func init() {
	registry.Register(Name, New)
}

// Plugin echoes the input text back, honoring max_tokens and stop
// sequences. Token counts are whitespace words.
type Plugin struct {
	stats module.Stats
}

func New(settings map[string]string) (module.Module, error) {
	return &Plugin{}, nil
}

func (p *Plugin) Initialize(ctx context.Context) error {
	return nil
}

func (p *Plugin) HealthCheck(ctx context.Context) schema.Health {
	return schema.Health{Status: schema.HealthStatusHealthy, Message: "echo module is in-process"}
}

func (p *Plugin) Capabilities() schema.ModuleCapabilities {
	return schema.ModuleCapabilities{
		Name:              Name,
		Version:           "1.0",
		ModelType:         "algorithm",
		MaxBatchSize:      1,
		MaxSequenceLength: 65536,
		ResourceRequirements: schema.ResourceRequirements{
			MinMemoryMB: 64,
			MinCPUCores: 0.1,
			GPURequired: false,
		},
	}
}

func (p *Plugin) RunInference(ctx context.Context, in schema.Input) (schema.Output, error) {
	start := time.Now()

	text := in.Text
	if in.Parameters != nil {
		for _, stop := range in.Parameters.StopSequences {
			if stop == "" {
				continue
			}
			if idx := strings.Index(text, stop); idx >= 0 {
				text = text[:idx]
			}
		}
	}

	words := strings.Fields(text)
	if in.Parameters != nil && in.Parameters.MaxTokens > 0 && len(words) > in.Parameters.MaxTokens {
		words = words[:in.Parameters.MaxTokens]
	}
	completion := strings.Join(words, " ")

	promptTokens := len(strings.Fields(in.Text))
	completionTokens := len(words)

	p.stats.RecordSuccess(time.Since(start))

	return schema.Output{
		Text: completion,
		Usage: schema.TokenUsage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}, nil
}

func (p *Plugin) Metrics() schema.MetricsData {
	requests, avgMs, errCount := p.stats.Snapshot()
	return schema.MetricsData{
		RequestsProcessed: requests,
		AverageLatencyMs:  avgMs,
		ErrorCount:        errCount,
		MemoryUsageMB:     module.ProcessMemoryMB(),
	}
}
