package rpc

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ppiankov/guardrails/internal/password"
	"github.com/ppiankov/guardrails/internal/thresholds"
)

// Field names used in Struct messages.
const (
	ThresholdsField      = "thresholds"
	NameField            = "name"
	WarnField            = "warn"
	FailField            = "fail"
	ConfigField          = "config"
	GuardrailField       = "guardrail"
	ValueField           = "value"
	SizeField            = "size"
	WarningsField        = "warnings"
	ViolatedField        = "violated"
	MessageField         = "message"
	RedactedMessageField = "redacted_message"
)

// GuardRequest asks the server to check a value against a guardrail. The
// value is a string for custom guardrails and a number for thresholds; it
// is ignored for feature flags.
type GuardRequest struct {
	Guardrail string
	Value     any
}

// GuardResult is the outcome of a GuardValue call.
type GuardResult struct {
	Warnings        []string `json:"warnings"`
	Violated        bool     `json:"violated"`
	Message         string   `json:"message,omitempty"`
	RedactedMessage string   `json:"redacted_message,omitempty"`
}

// GenerateRequest asks for a generated value. Size 0 means the
// generator's default; any other size must be between 1 and
// password.MaxGenerateSize.
type GenerateRequest struct {
	Guardrail string
	Size      int
}

// EncodeEntries builds the ListThresholds response.
func EncodeEntries(entries []thresholds.Entry) (*structpb.Struct, error) {
	rows := make([]any, len(entries))
	for i, e := range entries {
		rows[i] = map[string]any{
			NameField: e.Name,
			WarnField: e.Warn,
			FailField: e.Fail,
		}
	}
	return structpb.NewStruct(map[string]any{ThresholdsField: rows})
}

// DecodeEntries parses a ListThresholds response.
func DecodeEntries(s *structpb.Struct) ([]thresholds.Entry, error) {
	rows := s.GetFields()[ThresholdsField].GetListValue().GetValues()
	entries := make([]thresholds.Entry, 0, len(rows))
	for i, row := range rows {
		fields := row.GetStructValue().GetFields()
		warn, err := intField(fields, WarnField)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		fail, err := intField(fields, FailField)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		entries = append(entries, thresholds.Entry{
			Name: fields[NameField].GetStringValue(),
			Warn: *warn,
			Fail: *fail,
		})
	}
	return entries, nil
}

// EncodeUpdate builds the ApplyThreshold request. Nil columns are omitted.
func EncodeUpdate(u thresholds.Update) *structpb.Struct {
	s := &structpb.Struct{Fields: map[string]*structpb.Value{
		NameField: structpb.NewStringValue(u.Name),
	}}
	if u.Warn != nil {
		s.Fields[WarnField] = structpb.NewNumberValue(float64(*u.Warn))
	}
	if u.Fail != nil {
		s.Fields[FailField] = structpb.NewNumberValue(float64(*u.Fail))
	}
	return s
}

// DecodeUpdate parses an ApplyThreshold request.
func DecodeUpdate(s *structpb.Struct) (thresholds.Update, error) {
	fields := s.GetFields()
	u := thresholds.Update{Name: fields[NameField].GetStringValue()}
	var err error
	if u.Warn, err = optionalIntField(fields, WarnField); err != nil {
		return thresholds.Update{}, err
	}
	if u.Fail, err = optionalIntField(fields, FailField); err != nil {
		return thresholds.Update{}, err
	}
	return u, nil
}

// EncodeCustomConfig builds the SetCustomConfig request.
func EncodeCustomConfig(name string, cfg map[string]any) (*structpb.Struct, error) {
	inner, err := structpb.NewStruct(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		NameField:   structpb.NewStringValue(name),
		ConfigField: structpb.NewStructValue(inner),
	}}, nil
}

// DecodeCustomConfig parses a SetCustomConfig request. Whole numbers are
// returned as int64.
func DecodeCustomConfig(s *structpb.Struct) (string, map[string]any) {
	fields := s.GetFields()
	cfg := make(map[string]any)
	for k, v := range fields[ConfigField].GetStructValue().GetFields() {
		cfg[k] = plainValue(v)
	}
	return fields[NameField].GetStringValue(), cfg
}

// EncodeGuardRequest builds the GuardValue request.
func EncodeGuardRequest(r GuardRequest) (*structpb.Struct, error) {
	m := map[string]any{GuardrailField: r.Guardrail}
	if r.Value != nil {
		m[ValueField] = r.Value
	}
	return structpb.NewStruct(m)
}

// DecodeGuardRequest parses a GuardValue request.
func DecodeGuardRequest(s *structpb.Struct) GuardRequest {
	fields := s.GetFields()
	r := GuardRequest{Guardrail: fields[GuardrailField].GetStringValue()}
	if v, ok := fields[ValueField]; ok {
		r.Value = plainValue(v)
	}
	return r
}

// EncodeGuardResult builds the GuardValue response.
func EncodeGuardResult(r GuardResult) (*structpb.Struct, error) {
	warnings := make([]any, len(r.Warnings))
	for i, w := range r.Warnings {
		warnings[i] = w
	}
	m := map[string]any{
		WarningsField: warnings,
		ViolatedField: r.Violated,
	}
	if r.Violated {
		m[MessageField] = r.Message
		m[RedactedMessageField] = r.RedactedMessage
	}
	return structpb.NewStruct(m)
}

// DecodeGuardResult parses a GuardValue response.
func DecodeGuardResult(s *structpb.Struct) GuardResult {
	fields := s.GetFields()
	r := GuardResult{
		Violated:        fields[ViolatedField].GetBoolValue(),
		Message:         fields[MessageField].GetStringValue(),
		RedactedMessage: fields[RedactedMessageField].GetStringValue(),
	}
	for _, w := range fields[WarningsField].GetListValue().GetValues() {
		r.Warnings = append(r.Warnings, w.GetStringValue())
	}
	return r
}

// EncodeGenerateRequest builds the GenerateValue request.
func EncodeGenerateRequest(r GenerateRequest) *structpb.Struct {
	s := &structpb.Struct{Fields: map[string]*structpb.Value{
		GuardrailField: structpb.NewStringValue(r.Guardrail),
	}}
	if r.Size != 0 {
		s.Fields[SizeField] = structpb.NewNumberValue(float64(r.Size))
	}
	return s
}

// DecodeGenerateRequest parses a GenerateValue request.
func DecodeGenerateRequest(s *structpb.Struct) (GenerateRequest, error) {
	fields := s.GetFields()
	r := GenerateRequest{Guardrail: fields[GuardrailField].GetStringValue()}
	size, err := optionalIntField(fields, SizeField)
	if err != nil {
		return GenerateRequest{}, err
	}
	if size != nil {
		if *size < 1 || *size > password.MaxGenerateSize {
			return GenerateRequest{}, fmt.Errorf("%s must be between 1 and %d, got %d", SizeField, password.MaxGenerateSize, *size)
		}
		r.Size = int(*size)
	}
	return r, nil
}

func intField(fields map[string]*structpb.Value, key string) (*int64, error) {
	v, err := optionalIntField(fields, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("missing %s", key)
	}
	return v, nil
}

func optionalIntField(fields map[string]*structpb.Value, key string) (*int64, error) {
	v, ok := fields[key]
	if !ok {
		return nil, nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	if n.NumberValue != math.Trunc(n.NumberValue) {
		return nil, fmt.Errorf("%s must be an integer, got %v", key, n.NumberValue)
	}
	// -MinInt64 is 2^63, the first float64 above MaxInt64.
	if n.NumberValue < math.MinInt64 || n.NumberValue >= -math.MinInt64 {
		return nil, fmt.Errorf("%s is out of range, got %v", key, n.NumberValue)
	}
	i := int64(n.NumberValue)
	return &i, nil
}

// plainValue converts v to a Go value, turning whole numbers into int64.
func plainValue(v *structpb.Value) any {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		if k.NumberValue == math.Trunc(k.NumberValue) && math.Abs(k.NumberValue) < 1<<53 {
			return int64(k.NumberValue)
		}
		return k.NumberValue
	case *structpb.Value_ListValue:
		out := make([]any, len(k.ListValue.GetValues()))
		for i, e := range k.ListValue.GetValues() {
			out[i] = plainValue(e)
		}
		return out
	case *structpb.Value_StructValue:
		out := make(map[string]any, len(k.StructValue.GetFields()))
		for key, e := range k.StructValue.GetFields() {
			out[key] = plainValue(e)
		}
		return out
	default:
		return v.AsInterface()
	}
}
