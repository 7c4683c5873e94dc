package guardrail

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// CustomConfig is the flat key/value parameter set of a custom guardrail.
// Values are strings, integers, floats or booleans as decoded from YAML,
// JSON or protobuf structs. Instances are copied, never shared.
type CustomConfig map[string]any

// NewCustomConfig returns an empty config.
func NewCustomConfig() CustomConfig {
	return CustomConfig{}
}

// CustomConfigFrom copies m into a new config.
func CustomConfigFrom(m map[string]any) CustomConfig {
	c := make(CustomConfig, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Put sets key to value; the last write wins.
func (c *CustomConfig) Put(key string, value any) {
	if *c == nil {
		*c = CustomConfig{}
	}
	(*c)[key] = value
}

// PutAll copies every entry of m.
func (c *CustomConfig) PutAll(m map[string]any) {
	for k, v := range m {
		c.Put(k, v)
	}
}

// Get returns the raw value for key.
func (c CustomConfig) Get(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}

// Keys returns the keys in sorted order.
func (c CustomConfig) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries.
func (c CustomConfig) Len() int {
	return len(c)
}

// Clone returns an independent copy.
func (c CustomConfig) Clone() CustomConfig {
	return CustomConfigFrom(c)
}

// Map returns a copy as a plain map.
func (c CustomConfig) Map() map[string]any {
	return map[string]any(c.Clone())
}

// ResolveInt returns the integer value of key, or def when the key is
// absent or its value is not an integer that fits in an int.
func (c CustomConfig) ResolveInt(key string, def int) int {
	v, ok := c[key]
	if !ok || v == nil {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int64ToInt(n, def)
	case uint:
		return uint64ToInt(uint64(n), def)
	case uint8:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		return uint64ToInt(uint64(n), def)
	case uint64:
		return uint64ToInt(n, def)
	case float32:
		return floatToInt(float64(n), def)
	case float64:
		return floatToInt(n, def)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return def
		}
		return int64ToInt(i, def)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return def
		}
		return i
	default:
		return def
	}
}

func floatToInt(f float64, def int) int {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return def
	}
	// -math.MinInt is one above math.MaxInt and exact as a float64.
	if f < math.MinInt || f >= -math.MinInt {
		return def
	}
	return int(f)
}

func int64ToInt(n int64, def int) int {
	if n < math.MinInt || n > math.MaxInt {
		return def
	}
	return int(n)
}

func uint64ToInt(n uint64, def int) int {
	if n > math.MaxInt {
		return def
	}
	return int(n)
}

// ResolveBool returns the boolean value of key, or def.
func (c CustomConfig) ResolveBool(key string, def bool) bool {
	v, ok := c[key]
	if !ok || v == nil {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return def
		}
		return parsed
	default:
		return def
	}
}

// ResolveString returns the string value of key, or def.
func (c CustomConfig) ResolveString(key string, def string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
