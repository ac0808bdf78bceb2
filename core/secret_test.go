package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestSecretRedaction(t *testing.T) {
	s := NewSecret("sk-super-secret")

	if got := s.String(); got != "[REDACTED]" {
		t.Errorf("String() = %q, want [REDACTED]", got)
	}
	if got := fmt.Sprintf("%v", s); got != "[REDACTED]" {
		t.Errorf("%%v = %q, want [REDACTED]", got)
	}
	if got := fmt.Sprintf("%#v", s); got != "core.Secret{[REDACTED]}" {
		t.Errorf("%%#v = %q, want core.Secret{[REDACTED]}", got)
	}
}

func TestSecretJSONRedaction(t *testing.T) {
	payload := struct {
		Key Secret `json:"key"`
	}{Key: NewSecret("sk-super-secret")}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	if strings.Contains(string(data), "sk-super-secret") {
		t.Errorf("secret leaked into JSON: %s", data)
	}
	if !strings.Contains(string(data), "[REDACTED]") {
		t.Errorf("JSON = %s, want [REDACTED] placeholder", data)
	}
}

func TestSecretExpose(t *testing.T) {
	s := NewSecret("sk-super-secret")

	if got := s.Expose(); got != "sk-super-secret" {
		t.Errorf("Expose() = %q, want sk-super-secret", got)
	}
}

func TestSecretIsEmpty(t *testing.T) {
	if !NewSecret("").IsEmpty() {
		t.Error("IsEmpty() = false for empty secret")
	}
	if NewSecret("x").IsEmpty() {
		t.Error("IsEmpty() = true for non-empty secret")
	}
}
