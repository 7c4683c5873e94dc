package password

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode"

	"github.com/ppiankov/guardrails/internal/guardrail"
)

func TestGenerateDefaults(t *testing.T) {
	g, err := NewGenerator(guardrail.NewCustomConfig())
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	v := defaultValidator(t)

	for i := 0; i < 100; i++ {
		p, err := g.Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if len([]rune(p)) != DefaultMinLengthWarn {
			t.Errorf("length %d, want %d", len([]rune(p)), DefaultMinLengthWarn)
		}
		if violation, ok := v.ShouldWarn(p); ok {
			t.Errorf("%q warns: %s", p, violation.Message)
		}
		if violation, ok := v.ShouldFail(p); ok {
			t.Errorf("%q fails: %s", p, violation.Message)
		}
	}
}

func TestGenerateSizePassesWarn(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]any
	}{
		{"defaults", map[string]any{}},
		{"large special and digit minimums", map[string]any{
			MinCharacteristicsWarnKey: 4,
			MinSpecialCharsWarnKey:    5,
			MinSpecialCharsFailKey:    2,
			MinDigitsCharsWarnKey:     4,
			MinDigitsCharsFailKey:     1,
			MinLengthWarnKey:          16,
			MinLengthFailKey:          8,
		}},
		{"no fail minimums", map[string]any{
			MinCharacteristicsWarnKey: 3,
			MinCharacteristicsFailKey: 1,
			MinUpperCaseCharsWarnKey:  1,
			MinUpperCaseCharsFailKey:  0,
			MinLowerCaseCharsWarnKey:  1,
			MinLowerCaseCharsFailKey:  0,
			MinDigitsCharsWarnKey:     1,
			MinDigitsCharsFailKey:     0,
			MinSpecialCharsWarnKey:    1,
			MinSpecialCharsFailKey:    0,
			MinLengthWarnKey:          6,
			MinLengthFailKey:          4,
		}},
		{"large upper case minimum", map[string]any{
			MinUpperCaseCharsWarnKey: 6,
			MinUpperCaseCharsFailKey: 3,
			MinLengthWarnKey:         14,
			MinLengthFailKey:         10,
		}},
		{"long sequences", map[string]any{
			IllegalSequenceLengthKey: 8,
			MinLengthWarnKey:         24,
			MinLengthFailKey:         16,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewConfiguration(guardrail.CustomConfigFrom(tt.cfg))
			if err != nil {
				t.Fatalf("NewConfiguration: %v", err)
			}
			g := NewGeneratorFromConfiguration(c)
			if err := g.ValidateParameters(); err != nil {
				t.Fatalf("ValidateParameters: %v", err)
			}
			v := NewValidatorFromConfiguration(c)

			for n := c.MinLengthWarn; n <= c.MinLengthWarn+32; n++ {
				p, err := g.GenerateSize(n)
				if err != nil {
					t.Fatalf("GenerateSize(%d): %v", n, err)
				}
				if len([]rune(p)) != n {
					t.Errorf("GenerateSize(%d) returned %d characters", n, len([]rune(p)))
				}
				if violation, ok := v.ShouldWarn(p); ok {
					t.Errorf("GenerateSize(%d) = %q warns: %s", n, p, violation.Message)
				}
			}
		})
	}
}

func TestGenerateSizeBelowMinLength(t *testing.T) {
	cfg := guardrail.CustomConfigFrom(map[string]any{
		MinLengthWarnKey: 20,
		MinLengthFailKey: 15,
	})
	g, err := NewGenerator(cfg)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	v, err := NewValidator(cfg)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}

	p, err := g.GenerateSize(18)
	if err != nil {
		t.Fatalf("GenerateSize: %v", err)
	}
	if len(p) != 18 {
		t.Fatalf("length %d, want 18", len(p))
	}

	violation, ok := v.ShouldWarn(p)
	if !ok {
		t.Fatal("expected TOO_SHORT warning")
	}
	if violation.RedactedMessage != "[TOO_SHORT]" {
		t.Errorf("redacted = %q, want [TOO_SHORT]", violation.RedactedMessage)
	}
	if violation, ok := v.ShouldFail(p); ok {
		t.Errorf("unexpected failure: %s", violation.Message)
	}
}

func TestGenerateSizeTooSmall(t *testing.T) {
	g := NewGeneratorFromConfiguration(DefaultConfiguration())
	_, err := g.GenerateSize(7)
	if err == nil {
		t.Fatal("expected error for size below class minimums")
	}
	var cerr *guardrail.ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ConfigurationError, got %T", err)
	}
	if !strings.Contains(err.Error(), "8") {
		t.Errorf("error should name the required length: %v", err)
	}
}

func TestGeneratedCharacters(t *testing.T) {
	g := NewGeneratorFromConfiguration(DefaultConfiguration())
	for i := 0; i < 50; i++ {
		p, err := g.GenerateSize(32)
		if err != nil {
			t.Fatalf("GenerateSize: %v", err)
		}
		runes := []rune(p)
		for j, c := range runes {
			if unicode.IsSpace(c) {
				t.Fatalf("%q contains whitespace", p)
			}
			if j > 0 && adjacent(runes[j-1], c) {
				t.Fatalf("%q has adjacent characters %q%q", p, runes[j-1], c)
			}
		}
	}
}

func TestGenerateSizeOutOfRange(t *testing.T) {
	g := NewGeneratorFromConfiguration(DefaultConfiguration())
	tests := []struct {
		size int
		want string
	}{
		{0, "Requested password length 0 must be positive"},
		{-3, "Requested password length -3 must be positive"},
		{MaxGenerateSize + 1, fmt.Sprintf("Requested password length %d is bigger than the maximum of %d", MaxGenerateSize+1, MaxGenerateSize)},
		{1 << 50, "is bigger than the maximum"},
	}
	for _, tt := range tests {
		_, err := g.GenerateSize(tt.size)
		if !guardrail.IsConfigurationError(err) {
			t.Fatalf("GenerateSize(%d): expected configuration error, got %v", tt.size, err)
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("GenerateSize(%d) = %q, want %q", tt.size, err, tt.want)
		}
	}

	p, err := g.GenerateSize(MaxGenerateSize)
	if err != nil {
		t.Fatalf("GenerateSize(max): %v", err)
	}
	if len(p) != MaxGenerateSize {
		t.Errorf("length %d, want %d", len(p), MaxGenerateSize)
	}
}

func TestGeneratorRejectsUngeneratableMinLength(t *testing.T) {
	cfg := guardrail.CustomConfigFrom(map[string]any{
		MinLengthWarnKey: 7,
		MinLengthFailKey: 6,
	})
	if _, err := NewConfiguration(cfg); err != nil {
		t.Fatalf("configuration should be valid for validation: %v", err)
	}
	if _, err := NewValidator(cfg); err != nil {
		t.Fatalf("NewValidator: %v", err)
	}

	_, err := NewGenerator(cfg)
	if !guardrail.IsConfigurationError(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	want := "min_length_warn of value 7 is lower than 8"
	if !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not contain %q", err, want)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

func TestGenerateRandomSourceError(t *testing.T) {
	g := NewGeneratorFromConfiguration(DefaultConfiguration())
	g.random = failingReader{}
	if _, err := g.Generate(); err == nil || !strings.Contains(err.Error(), "entropy exhausted") {
		t.Errorf("expected random source error, got %v", err)
	}
}
