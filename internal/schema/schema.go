package schema

// HealthStatus is the advisory liveness state a module reports.
// The host never gates serving on it.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "Healthy"
	HealthStatusUnhealthy HealthStatus = "Unhealthy"
)

// Health is the result of a module health probe.
type Health struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message"`
}

// ResourceRequirements describes what a module needs from the machine
// it runs on. MinGPUMemoryMB is only meaningful when GPURequired is set.
type ResourceRequirements struct {
	MinMemoryMB    int     `json:"min_memory_mb"`
	MinCPUCores    float64 `json:"min_cpu_cores"`
	GPURequired    bool    `json:"gpu_required"`
	MinGPUMemoryMB *int    `json:"min_gpu_memory_mb"`
}

// ModuleCapabilities is the static identity of a module. It is constant
// for the process lifetime and never reflects request state.
type ModuleCapabilities struct {
	Name                 string               `json:"name"`
	Version              string               `json:"version"`
	ModelType            string               `json:"model_type"`
	MaxBatchSize         int                  `json:"max_batch_size"`
	MaxSequenceLength    int                  `json:"max_sequence_length"`
	ResourceRequirements ResourceRequirements `json:"resource_requirements"`
}

// InferenceParameters are the caller-supplied generation knobs.
type InferenceParameters struct {
	MaxTokens     int      `json:"max_tokens" binding:"min=0"`
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"top_p"`
	StopSequences []string `json:"stop_sequences"`
}

// Input is one inference request. Text may be empty; the host does not
// validate content, only shape.
type Input struct {
	Text       string               `json:"text"`
	Parameters *InferenceParameters `json:"parameters" binding:"required"`
}

// TokenUsage is backend-reported token accounting. TotalTokens is the
// producer's sum of the other two; the host does not recompute it.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Output is one successful inference result.
type Output struct {
	Text  string     `json:"text"`
	Usage TokenUsage `json:"usage"`
}

// MetricsData is a point-in-time read of a module's counters. Counters
// are monotonically non-decreasing across the process lifetime.
type MetricsData struct {
	RequestsProcessed int64   `json:"requests_processed"`
	AverageLatencyMs  float64 `json:"average_latency_ms"`
	ErrorCount        int64   `json:"error_count"`
	MemoryUsageMB     float64 `json:"memory_usage_mb"`
}
