package password

import "github.com/ppiankov/guardrails/internal/guardrail"

// Selector names for the password validator and generator. The legacy
// names accept fully qualified class names from Cassandra configurations.
const (
	ValidatorClassName = "PasswordValidator"
	GeneratorClassName = "PasswordGenerator"

	LegacyValidatorClassName = "org.apache.cassandra.db.guardrails.CassandraPasswordValidator"
	LegacyGeneratorClassName = "org.apache.cassandra.db.guardrails.CassandraPasswordGenerator"
)

// Register adds the password validator and generator to impls.
func Register(impls *guardrail.Implementations[string]) {
	impls.RegisterValidator(func(cfg guardrail.CustomConfig) (guardrail.ValueValidator[string], error) {
		v, err := NewValidator(cfg)
		if err != nil {
			return nil, err
		}
		return v, nil
	}, ValidatorClassName, LegacyValidatorClassName)

	impls.RegisterGenerator(func(cfg guardrail.CustomConfig) (guardrail.ValueGenerator[string], error) {
		g, err := NewGenerator(cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	}, GeneratorClassName, LegacyGeneratorClassName)
}

// DefaultCustomConfig returns the default policy together with the
// selector keys for both implementations.
func DefaultCustomConfig() guardrail.CustomConfig {
	cfg := DefaultConfiguration().CustomConfig()
	cfg.Put(guardrail.ClassNameKey, ValidatorClassName)
	cfg.Put(guardrail.GeneratorClassNameKey, GeneratorClassName)
	return cfg
}
