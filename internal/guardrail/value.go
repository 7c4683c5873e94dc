package guardrail

import "sort"

// Selector keys of a custom guardrail configuration.
const (
	ClassNameKey          = "class_name"
	GeneratorClassNameKey = "generator_class_name"
)

// Violation is the outcome of a failed validation. RedactedMessage never
// contains the validated value.
type Violation struct {
	Message         string
	RedactedMessage string
}

// ValueValidator checks candidate values at warn and fail severity.
type ValueValidator[T any] interface {
	ShouldWarn(value T) (Violation, bool)
	ShouldFail(value T) (Violation, bool)
	Parameters() CustomConfig
	ValidateParameters() error
}

// ValueGenerator produces values accepted by the matching validator.
type ValueGenerator[T any] interface {
	Generate() (T, error)
	GenerateSize(size int) (T, error)
	Parameters() CustomConfig
	ValidateParameters() error
}

// ValidatorFactory builds a validator from its parameters.
type ValidatorFactory[T any] func(CustomConfig) (ValueValidator[T], error)

// GeneratorFactory builds a generator from its parameters.
type GeneratorFactory[T any] func(CustomConfig) (ValueGenerator[T], error)

// Implementations is the closed table of selectable validators and
// generators. It is filled at startup and read-only afterwards.
type Implementations[T any] struct {
	validators map[string]ValidatorFactory[T]
	generators map[string]GeneratorFactory[T]
}

// NewImplementations returns an empty table.
func NewImplementations[T any]() *Implementations[T] {
	return &Implementations[T]{
		validators: make(map[string]ValidatorFactory[T]),
		generators: make(map[string]GeneratorFactory[T]),
	}
}

// RegisterValidator makes a validator selectable under each of names.
func (i *Implementations[T]) RegisterValidator(f ValidatorFactory[T], names ...string) {
	for _, n := range names {
		i.validators[n] = f
	}
}

// RegisterGenerator makes a generator selectable under each of names.
func (i *Implementations[T]) RegisterGenerator(f GeneratorFactory[T], names ...string) {
	for _, n := range names {
		i.generators[n] = f
	}
}

// Validator resolves a validator selector.
func (i *Implementations[T]) Validator(name string) (ValidatorFactory[T], error) {
	f, ok := i.validators[name]
	if !ok {
		return nil, ConfigErrorf("Unable to resolve validator class %s", name)
	}
	return f, nil
}

// Generator resolves a generator selector.
func (i *Implementations[T]) Generator(name string) (GeneratorFactory[T], error) {
	f, ok := i.generators[name]
	if !ok {
		return nil, ConfigErrorf("Unable to resolve generator class %s", name)
	}
	return f, nil
}

// ValidatorNames lists the registered validator selectors.
func (i *Implementations[T]) ValidatorNames() []string {
	return sortedKeys(i.validators)
}

// GeneratorNames lists the registered generator selectors.
func (i *Implementations[T]) GeneratorNames() []string {
	return sortedKeys(i.generators)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
