// Package registry holds the process-wide set of named guardrails. The set
// is fixed at construction; only the state of each guardrail changes.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/ppiankov/guardrails/internal/config"
	"github.com/ppiankov/guardrails/internal/guardrail"
	"github.com/ppiankov/guardrails/internal/password"
	"github.com/ppiankov/guardrails/internal/thresholds"
)

// Kind classifies a registered guardrail.
type Kind string

const (
	KindThreshold Kind = "threshold"
	KindFlag      Kind = "flag"
	KindCustom    Kind = "custom"
)

type flag struct {
	*guardrail.EnableFlag
	allowed atomic.Bool
}

// Registry is the fixed set of built-in guardrails.
type Registry struct {
	thresholds map[string]*guardrail.Threshold
	flags      map[string]*flag
	password   *guardrail.CustomGuardrail[string]
	kinds      map[string]Kind
	subjects   map[string]string
	names      []string
}

// New builds every built-in guardrail and applies cfg. Sinks receive every
// warning and failure. An invalid cfg is an error.
func New(cfg config.GuardrailsConfig, d guardrail.Diagnostics) (*Registry, error) {
	opts := []guardrail.Option{
		guardrail.WithDiagnostics(d),
		guardrail.WithMinNotifyInterval(cfg.MinNotifyInterval),
	}

	r := &Registry{
		thresholds: make(map[string]*guardrail.Threshold, len(builtinThresholds)),
		flags:      make(map[string]*flag, len(builtinFlags)),
		kinds:      make(map[string]Kind),
		subjects:   make(map[string]string),
	}

	for _, def := range builtinThresholds {
		r.thresholds[def.name] = guardrail.NewThreshold(def.name, def.kind, nil, opts...)
		r.kinds[def.name] = KindThreshold
		r.subjects[def.name] = def.subject
	}

	for _, def := range builtinFlags {
		f := &flag{}
		f.allowed.Store(true)
		f.EnableFlag = guardrail.NewEnableFlag(def.name,
			func(*guardrail.ClientState) bool { return f.allowed.Load() },
			def.feature, def.alwaysWarn, opts...)
		r.flags[def.name] = f
		r.kinds[def.name] = KindFlag
		r.subjects[def.name] = def.feature
	}

	impls := guardrail.NewImplementations[string]()
	password.Register(impls)
	r.password = guardrail.NewCustomGuardrail(PasswordName, impls,
		append(opts, guardrail.WithFailOnNilState())...)
	r.kinds[PasswordName] = KindCustom
	r.subjects[PasswordName] = "Password"

	for name := range r.kinds {
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)

	if err := r.Apply(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply guardrail config: %w", err)
	}
	return r, nil
}

// Names returns every guardrail name in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// KindOf returns the kind of the named guardrail.
func (r *Registry) KindOf(name string) (Kind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// Describe returns what the named guardrail checks, in the form used as
// the subject of threshold messages. Unknown names are returned as is.
func (r *Registry) Describe(name string) string {
	if s, ok := r.subjects[name]; ok {
		return s
	}
	return name
}

// Threshold returns the named threshold guardrail.
func (r *Registry) Threshold(name string) (*guardrail.Threshold, bool) {
	t, ok := r.thresholds[name]
	return t, ok
}

// Flag returns the named feature gate.
func (r *Registry) Flag(name string) (*guardrail.EnableFlag, bool) {
	f, ok := r.flags[name]
	if !ok {
		return nil, false
	}
	return f.EnableFlag, true
}

// FlagAllowed reports whether the named feature is currently allowed.
func (r *Registry) FlagAllowed(name string) (bool, bool) {
	f, ok := r.flags[name]
	if !ok {
		return false, false
	}
	return f.allowed.Load(), true
}

// SetFlag allows or forbids the named feature.
func (r *Registry) SetFlag(name string, allowed bool) error {
	f, ok := r.flags[name]
	if !ok {
		return guardrail.ConfigErrorf("there is no such guardrail with name %s", name)
	}
	f.allowed.Store(allowed)
	return nil
}

// Password returns the password guardrail.
func (r *Registry) Password() *guardrail.CustomGuardrail[string] {
	return r.password
}

// Custom returns the named custom guardrail.
func (r *Registry) Custom(name string) (*guardrail.CustomGuardrail[string], bool) {
	if name != PasswordName {
		return nil, false
	}
	return r.password, true
}

// ReconfigurePassword installs a new password policy. An invalid policy
// leaves the current one in place.
func (r *Registry) ReconfigurePassword(cfg map[string]any) error {
	return r.password.Reconfigure(guardrail.CustomConfigFrom(cfg))
}

// ThresholdBindings returns a binding per threshold guardrail, ordered by
// name.
func (r *Registry) ThresholdBindings() []thresholds.Binding {
	out := make([]thresholds.Binding, 0, len(r.thresholds))
	for _, name := range r.names {
		t, ok := r.thresholds[name]
		if !ok {
			continue
		}
		out = append(out, thresholds.Binding{
			Name: name,
			Set:  t.SetThresholds,
			Get:  t.Thresholds,
		})
	}
	return out
}

// Apply applies every section of cfg. Invalid entries leave their
// guardrail unchanged; valid ones are applied regardless. All errors are
// returned joined.
func (r *Registry) Apply(cfg config.GuardrailsConfig) error {
	var errs []error

	for _, name := range sortedKeys(cfg.Thresholds) {
		t, ok := r.thresholds[name]
		if !ok {
			errs = append(errs, guardrail.ConfigErrorf("there is no such guardrail with name %s", name))
			continue
		}
		warn, fail := cfg.Thresholds[name].Values()
		if err := t.SetThresholds(warn, fail); err != nil {
			errs = append(errs, err)
		}
	}

	for _, name := range sortedKeys(cfg.Flags) {
		if err := r.SetFlag(name, cfg.Flags[name]); err != nil {
			errs = append(errs, err)
		}
	}

	if cfg.Password != nil {
		if err := r.ReconfigurePassword(cfg.Password); err != nil {
			errs = append(errs, fmt.Errorf("password: %w", err))
		}
	}

	return errors.Join(errs...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
