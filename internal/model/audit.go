package model

import (
	"time"
)

// AuditLog captures one complete request for the operator audit trail.
type AuditLog struct {
	ID        string `json:"id"` // request ID (UUID)
	AccountID string `json:"account_id"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`

	RequestBody string `json:"request_body"` // redacted

	StatusCode   int    `json:"status_code"`
	ResponseBody string `json:"response_body"`
	LatencyMs    int64  `json:"latency_ms"`

	// Business context filled in by handlers (trade totals, claim amounts,
	// upstream ledger errors).
	Context map[string]interface{} `json:"context"`

	CreatedAt time.Time `json:"created_at"`
}
