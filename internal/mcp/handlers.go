package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/guardrails/internal/guardrail"
	"github.com/ppiankov/guardrails/internal/thresholds"
)

// --- Input/Output types ---

// ThresholdsInput defines parameters for the guardrails_thresholds tool.
type ThresholdsInput struct {
	Name string `json:"name,omitempty" jsonschema:"guardrail name, omit to list all"`
}

// ThresholdsOutput lists threshold rows.
type ThresholdsOutput struct {
	Thresholds []thresholds.Entry `json:"thresholds"`
	Error      string             `json:"error,omitempty"`
}

// SetThresholdInput defines parameters for the guardrails_set_threshold tool.
type SetThresholdInput struct {
	Name string `json:"name" jsonschema:"threshold guardrail name"`
	Warn int64  `json:"warn" jsonschema:"warn threshold, -1 disables it"`
	Fail int64  `json:"fail" jsonschema:"fail threshold, -1 disables it"`
}

// SetThresholdOutput reports the row after the update.
type SetThresholdOutput struct {
	Applied bool             `json:"applied"`
	Entry   thresholds.Entry `json:"entry"`
	Error   string           `json:"error,omitempty"`
}

// CheckPasswordInput defines parameters for the guardrails_check_password tool.
type CheckPasswordInput struct {
	Password string `json:"password" jsonschema:"password to check"`
}

// CheckPasswordOutput contains the policy outcome. Codes never contain the
// password.
type CheckPasswordOutput struct {
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings,omitempty"`
	Message  string   `json:"message,omitempty"`
	Codes    string   `json:"codes,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// GeneratePasswordInput defines parameters for the guardrails_generate_password tool.
type GeneratePasswordInput struct {
	Size *int `json:"size,omitempty" jsonschema:"password length from 1 to 1024, omit for the policy default"`
}

// GeneratePasswordOutput contains the generated password.
type GeneratePasswordOutput struct {
	Password string `json:"password,omitempty"`
	Error    string `json:"error,omitempty"`
}

// --- Handlers ---

func (s *Server) handleThresholds(ctx context.Context, req *mcpsdk.CallToolRequest, input ThresholdsInput) (*mcpsdk.CallToolResult, ThresholdsOutput, error) {
	if input.Name == "" {
		return nil, ThresholdsOutput{Thresholds: s.table.ReadAll()}, nil
	}

	entry, err := s.table.Read(input.Name)
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, ThresholdsOutput{Error: err.Error()}, nil
	}
	return nil, ThresholdsOutput{Thresholds: []thresholds.Entry{entry}}, nil
}

func (s *Server) handleSetThreshold(ctx context.Context, req *mcpsdk.CallToolRequest, input SetThresholdInput) (*mcpsdk.CallToolResult, SetThresholdOutput, error) {
	err := s.table.Apply(thresholds.Update{Name: input.Name, Warn: &input.Warn, Fail: &input.Fail})
	s.audit.Reconfigured(Source, input.Name, fmt.Sprintf("warn=%d fail=%d", input.Warn, input.Fail), err)
	s.recorder.ObserveReconfiguration(Source, err)

	out := SetThresholdOutput{Applied: err == nil}
	if entry, readErr := s.table.Read(input.Name); readErr == nil {
		out.Entry = entry
		s.recorder.SetThreshold(entry.Name, entry.Warn, entry.Fail)
	}
	if err != nil {
		out.Error = err.Error()
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}
	return nil, out, nil
}

func (s *Server) handleCheckPassword(ctx context.Context, req *mcpsdk.CallToolRequest, input CheckPasswordInput) (*mcpsdk.CallToolResult, CheckPasswordOutput, error) {
	warnings := &guardrail.WarningCollector{}
	state := &guardrail.ClientState{User: ToolUser, Warnings: warnings}

	err := s.registry.Password().Guard(input.Password, state)
	out := CheckPasswordOutput{Valid: err == nil, Warnings: warnings.Warnings()}
	if err != nil {
		v, ok := guardrail.AsViolation(err)
		if !ok {
			out.Error = err.Error()
			return &mcpsdk.CallToolResult{IsError: true}, out, nil
		}
		out.Message = v.Message
		out.Codes = v.RedactedMessage
	}
	return nil, out, nil
}

func (s *Server) handleGeneratePassword(ctx context.Context, req *mcpsdk.CallToolRequest, input GeneratePasswordInput) (*mcpsdk.CallToolResult, GeneratePasswordOutput, error) {
	var (
		pw  string
		err error
	)
	if input.Size != nil {
		pw, err = s.registry.Password().GenerateSize(*input.Size)
	} else {
		pw, err = s.registry.Password().Generate()
	}
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, GeneratePasswordOutput{Error: err.Error()}, nil
	}
	s.recorder.ObserveGenerated()
	return nil, GeneratePasswordOutput{Password: pw}, nil
}
