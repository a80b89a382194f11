package model

import "time"

// RequestLogStatus is the recorded outcome of one inference call.
type RequestLogStatus string

const (
	RequestLogStatusSuccess RequestLogStatus = "success"
	RequestLogStatusError   RequestLogStatus = "error"
)

// RequestLog is one row of the inference audit trail. It is an audit
// artifact only; nothing is restored from it on restart.
type RequestLog struct {
	ID               string           `json:"id"`
	RequestID        string           `json:"request_id"`
	CreatedAt        time.Time        `json:"created_at"`
	Status           RequestLogStatus `json:"status"`
	LatencyMs        int64            `json:"latency_ms"`
	PromptTokens     int              `json:"prompt_tokens"`
	CompletionTokens int              `json:"completion_tokens"`
	ErrorText        string           `json:"error_text,omitempty"`
}
