package guardrail

import "sync/atomic"

// customBundle is the installed implementation of a custom guardrail. It is
// immutable; Reconfigure swaps the whole bundle.
type customBundle[T any] struct {
	config        CustomConfig
	validatorName string
	validator     ValueValidator[T]
	generatorName string
	generator     ValueGenerator[T]
}

// CustomGuardrail delegates its policy to a pluggable validator and
// generator selected by configuration.
type CustomGuardrail[T any] struct {
	*Guardrail
	impls  *Implementations[T]
	bundle atomic.Pointer[customBundle[T]]
}

// NewCustomGuardrail creates an unconfigured custom guardrail: every value
// passes until Reconfigure installs a validator.
func NewCustomGuardrail[T any](name string, impls *Implementations[T], opts ...Option) *CustomGuardrail[T] {
	g := &CustomGuardrail[T]{
		Guardrail: New(name, opts...),
		impls:     impls,
	}
	g.bundle.Store(&customBundle[T]{config: NewCustomConfig()})
	return g
}

// Reconfigure installs the validator and generator selected by cfg.
// A config without class_name disables validation. On error the current
// implementation stays in place.
func (g *CustomGuardrail[T]) Reconfigure(cfg CustomConfig) error {
	cfg = cfg.Clone()
	b := &customBundle[T]{config: cfg}

	if name := cfg.ResolveString(ClassNameKey, ""); name != "" {
		factory, err := g.impls.Validator(name)
		if err != nil {
			return err
		}
		v, err := factory(cfg)
		if err != nil {
			return err
		}
		if err := v.ValidateParameters(); err != nil {
			return err
		}
		b.validatorName, b.validator = name, v
	}

	if name := cfg.ResolveString(GeneratorClassNameKey, ""); name != "" {
		factory, err := g.impls.Generator(name)
		if err != nil {
			return err
		}
		gen, err := factory(cfg)
		if err != nil {
			return err
		}
		if err := gen.ValidateParameters(); err != nil {
			return err
		}
		b.generatorName, b.generator = name, gen
	}

	g.bundle.Store(b)
	return nil
}

// Configured reports whether a validator is installed.
func (g *CustomGuardrail[T]) Configured() bool {
	return g.bundle.Load().validator != nil
}

// Parameters returns the effective configuration: the validator's own
// parameters plus the selector keys, or the raw config when no validator is
// installed.
func (g *CustomGuardrail[T]) Parameters() CustomConfig {
	b := g.bundle.Load()
	if b.validator == nil {
		return b.config.Clone()
	}
	params := b.validator.Parameters()
	params.Put(ClassNameKey, b.validatorName)
	if b.generator != nil {
		params.Put(GeneratorClassNameKey, b.generatorName)
	}
	return params
}

// Guard validates value. Fail severity is checked first; a warning is only
// considered when the value does not fail.
func (g *CustomGuardrail[T]) Guard(value T, state *ClientState) error {
	if !g.Enabled(state) {
		return nil
	}

	v := g.bundle.Load().validator
	if v == nil {
		return nil
	}

	if violation, failed := v.ShouldFail(value); failed {
		return g.FailRedacted(state, violation.Message, violation.RedactedMessage)
	}
	if violation, warned := v.ShouldWarn(value); warned {
		g.WarnRedacted(state, violation.Message, violation.RedactedMessage)
	}
	return nil
}

// Generate produces a value with the generator's default size.
func (g *CustomGuardrail[T]) Generate() (T, error) {
	gen, err := g.generator()
	if err != nil {
		var zero T
		return zero, err
	}
	return gen.Generate()
}

// GenerateSize produces a value of the given size.
func (g *CustomGuardrail[T]) GenerateSize(size int) (T, error) {
	gen, err := g.generator()
	if err != nil {
		var zero T
		return zero, err
	}
	return gen.GenerateSize(size)
}

func (g *CustomGuardrail[T]) generator() (ValueGenerator[T], error) {
	gen := g.bundle.Load().generator
	if gen == nil {
		return nil, ConfigErrorf("There is no generator configured for guardrail %s", g.Name())
	}
	return gen, nil
}
