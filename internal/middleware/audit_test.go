package middleware

import (
	"encoding/json"
	"testing"
)

func TestRedactAuditBodyTrades(t *testing.T) {
	body := []byte(`{"amount":5,"signature":"0xdead","creds":{"api_key":"k","admin_key":"a"}}`)
	out := redactAuditBody("/v1/chips/buy", body)

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if data["signature"] == "0xdead" {
		t.Fatalf("signature not redacted")
	}
	if creds, ok := data["creds"].(map[string]interface{}); ok {
		if creds["api_key"] == "k" || creds["admin_key"] == "a" {
			t.Fatalf("creds not redacted")
		}
	}
	if data["amount"] != float64(5) {
		t.Fatalf("non-sensitive field altered")
	}
}

func TestRedactAuditBodyNonSensitivePath(t *testing.T) {
	body := []byte(`{"ok":true}`)
	out := redactAuditBody("/health", body)
	if out != string(body) {
		t.Fatalf("unexpected redaction on non-sensitive path")
	}
}

func TestRedactAuditBodyInvalidJSON(t *testing.T) {
	body := []byte("not-json")
	out := redactAuditBody("/v1/admin/prices/native", body)
	if out != "[redacted]" {
		t.Fatalf("expected redacted placeholder for invalid json")
	}
}
