package mcp

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/guardrails/internal/audit"
	"github.com/ppiankov/guardrails/internal/config"
	"github.com/ppiankov/guardrails/internal/diagnostics"
	"github.com/ppiankov/guardrails/internal/registry"
)

func newTestServer(t *testing.T, sink *diagnostics.AuditSink) *Server {
	t.Helper()
	reg, err := registry.New(config.DefaultConfig().Guardrails, nil)
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	return New(Config{Registry: reg, Audit: sink})
}

func TestThresholdsListAll(t *testing.T) {
	s := newTestServer(t, nil)

	result, out, err := s.handleThresholds(context.Background(), &mcpsdk.CallToolRequest{}, ThresholdsInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatal("expected success")
	}
	if len(out.Thresholds) != 13 {
		t.Errorf("expected 13 thresholds, got %d", len(out.Thresholds))
	}
}

func TestThresholdsUnknownName(t *testing.T) {
	s := newTestServer(t, nil)

	result, out, err := s.handleThresholds(context.Background(), &mcpsdk.CallToolRequest{}, ThresholdsInput{Name: "nope"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || !result.IsError {
		t.Fatal("expected IsError result")
	}
	if out.Error != "there is no such guardrail with name nope" {
		t.Errorf("unexpected error %q", out.Error)
	}
}

func TestSetThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	log, err := audit.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()
	s := newTestServer(t, diagnostics.NewAuditSink(log, nil, nil))
	ctx := context.Background()

	result, out, err := s.handleSetThreshold(ctx, &mcpsdk.CallToolRequest{}, SetThresholdInput{Name: "tables", Warn: 100, Fail: 150})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatalf("expected success, got %q", out.Error)
	}
	if !out.Applied || out.Entry.Warn != 100 || out.Entry.Fail != 150 {
		t.Errorf("unexpected output %+v", out)
	}

	result, out, _ = s.handleSetThreshold(ctx, &mcpsdk.CallToolRequest{}, SetThresholdInput{Name: "tables", Warn: 200, Fail: 150})
	if result == nil || !result.IsError {
		t.Fatal("expected rejection of warn above fail")
	}
	if out.Applied || out.Entry.Warn != 100 {
		t.Errorf("rejected update changed the row: %+v", out)
	}

	entries, err := audit.ReadAll(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Kind != audit.KindReconfigured || entries[1].Kind != audit.KindRejected {
		t.Fatalf("unexpected audit entries %+v", entries)
	}
	if entries[1].Source != Source {
		t.Errorf("source = %q", entries[1].Source)
	}
}

func TestCheckPassword(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	_, out, err := s.handleCheckPassword(ctx, &mcpsdk.CallToolRequest{}, CheckPasswordInput{Password: "Xk9#mQ2$vL7!"})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Valid || len(out.Warnings) != 0 {
		t.Errorf("strong password rejected: %+v", out)
	}

	_, out, err = s.handleCheckPassword(ctx, &mcpsdk.CallToolRequest{}, CheckPasswordInput{Password: "abcdefgh"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Valid || !strings.Contains(out.Codes, "ILLEGAL_ALPHABETICAL_SEQUENCE") {
		t.Errorf("sequence not reported: %+v", out)
	}
	if strings.Contains(out.Codes, "abcdefgh") {
		t.Error("codes leaked the password")
	}
}

func TestGeneratePassword(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	_, out, err := s.handleGeneratePassword(ctx, &mcpsdk.CallToolRequest{}, GeneratePasswordInput{Size: intp(20)})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Password) != 20 {
		t.Fatalf("expected 20 characters, got %q", out.Password)
	}

	_, check, _ := s.handleCheckPassword(ctx, &mcpsdk.CallToolRequest{}, CheckPasswordInput{Password: out.Password})
	if !check.Valid || len(check.Warnings) != 0 {
		t.Errorf("generated password rejected: %+v", check)
	}

	tests := []struct {
		size int
		want string
	}{
		{3, "Requested password length 3 is lower than 8"},
		{0, "Requested password length 0 must be positive"},
		{-5, "Requested password length -5 must be positive"},
		{1 << 40, "is bigger than the maximum of 1024"},
	}
	for _, tt := range tests {
		result, out, err := s.handleGeneratePassword(ctx, &mcpsdk.CallToolRequest{}, GeneratePasswordInput{Size: intp(tt.size)})
		if err != nil {
			t.Fatalf("size %d: %v", tt.size, err)
		}
		if result == nil || !result.IsError || !strings.Contains(out.Error, tt.want) {
			t.Errorf("size %d: expected %q, got %+v", tt.size, tt.want, out)
		}
	}

	_, out, err = s.handleGeneratePassword(ctx, &mcpsdk.CallToolRequest{}, GeneratePasswordInput{})
	if err != nil || len(out.Password) != 12 {
		t.Errorf("default size: got %q, %v", out.Password, err)
	}
}

func intp(v int) *int { return &v }
