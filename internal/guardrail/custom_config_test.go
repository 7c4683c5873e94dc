package guardrail

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolveInt(t *testing.T) {
	c := CustomConfig{
		"int":      7,
		"int64":    int64(8),
		"uint8":    uint8(9),
		"float":    float64(10),
		"fraction": 1.5,
		"string":   " 11 ",
		"bad":      "eleven",
		"number":   json.Number("12"),
		"bool":     true,
		"nil":      nil,
	}
	tests := []struct {
		key  string
		want int
	}{
		{"int", 7},
		{"int64", 8},
		{"uint8", 9},
		{"float", 10},
		{"fraction", -1},
		{"string", 11},
		{"bad", -1},
		{"number", 12},
		{"bool", -1},
		{"nil", -1},
		{"absent", -1},
	}
	for _, tt := range tests {
		if got := c.ResolveInt(tt.key, -1); got != tt.want {
			t.Errorf("ResolveInt(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestResolveIntOutOfRange(t *testing.T) {
	c := CustomConfig{
		"huge_float":  1e30,
		"tiny_float":  -1e30,
		"two_pow_63":  float64(1 << 63),
		"big_uint":    uint64(math.MaxUint64),
		"inf":         math.Inf(1),
		"big_number":  json.Number("99999999999999999999"),
		"max_int32":   int64(math.MaxInt32),
		"large_float": float64(1 << 30),
	}
	tests := []struct {
		key  string
		want int
	}{
		{"huge_float", 12},
		{"tiny_float", 12},
		{"two_pow_63", 12},
		{"big_uint", 12},
		{"inf", 12},
		{"big_number", 12},
		{"max_int32", math.MaxInt32},
		{"large_float", 1 << 30},
	}
	for _, tt := range tests {
		if got := c.ResolveInt(tt.key, 12); got != tt.want {
			t.Errorf("ResolveInt(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestResolveBoolAndString(t *testing.T) {
	c := CustomConfig{"b": true, "s": "false", "n": 3, "name": "x"}
	if !c.ResolveBool("b", false) || c.ResolveBool("s", true) || !c.ResolveBool("n", true) {
		t.Error("ResolveBool mismatch")
	}
	if c.ResolveString("name", "") != "x" || c.ResolveString("n", "") != "3" || c.ResolveString("absent", "d") != "d" {
		t.Error("ResolveString mismatch")
	}
}

func TestCustomConfigCopies(t *testing.T) {
	src := map[string]any{"a": 1}
	c := CustomConfigFrom(src)
	src["a"] = 2
	if c.ResolveInt("a", 0) != 1 {
		t.Error("CustomConfigFrom shares the source map")
	}

	clone := c.Clone()
	clone.Put("b", 3)
	if _, ok := c.Get("b"); ok {
		t.Error("Clone shares storage")
	}

	var lazy CustomConfig
	lazy.PutAll(map[string]any{"z": 1, "a": 2})
	lazy.Put("z", 5)
	if diff := cmp.Diff([]string{"a", "z"}, lazy.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}
	if lazy.ResolveInt("z", 0) != 5 || lazy.Len() != 2 {
		t.Error("last write should win")
	}
}
