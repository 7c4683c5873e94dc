package password

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/ppiankov/guardrails/internal/guardrail"
)

// MaxGenerateSize is the longest password GenerateSize produces.
const MaxGenerateSize = 1024

// Generator produces passwords that pass the warn chain by construction.
type Generator struct {
	config Configuration
	random io.Reader
}

// NewGenerator parses cfg into a generator.
func NewGenerator(cfg guardrail.CustomConfig) (*Generator, error) {
	c, err := NewConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	g := NewGeneratorFromConfiguration(c)
	if err := g.ValidateParameters(); err != nil {
		return nil, err
	}
	return g, nil
}

// NewGeneratorFromConfiguration creates a generator for a validated
// configuration.
func NewGeneratorFromConfiguration(c Configuration) *Generator {
	return &Generator{config: c, random: rand.Reader}
}

// Generate returns a password of min_length_warn characters.
func (g *Generator) Generate() (string, error) {
	return g.GenerateSize(g.config.MinLengthWarn)
}

// GenerateSize returns a password of exactly size characters that meets
// every warn-level class minimum, contains no whitespace, and has no two
// neighbouring characters adjacent in any sequence row.
//
// A size below the sum of the class minimums cannot satisfy the policy and
// is rejected, as is a size that is not positive or above MaxGenerateSize.
func (g *Generator) GenerateSize(size int) (string, error) {
	if size <= 0 {
		return "", guardrail.ConfigErrorf("Requested password length %d must be positive", size)
	}
	if size > MaxGenerateSize {
		return "", guardrail.ConfigErrorf("Requested password length %d is bigger than the maximum of %d", size, MaxGenerateSize)
	}
	required := g.config.classMinimumsWarn()
	if size < required {
		return "", guardrail.ConfigErrorf("Requested password length %d is lower than %d, the sum of the minimum uppercase, lowercase, digit and special characters",
			size, required)
	}

	slots := make([]characterClass, 0, size)
	for _, cr := range characterRules(g.config.MinUpperCaseCharsWarn, g.config.MinLowerCaseCharsWarn,
		g.config.MinDigitsCharsWarn, g.config.MinSpecialCharsWarn) {
		for i := 0; i < cr.min; i++ {
			slots = append(slots, cr.class)
		}
	}
	classes := []characterClass{upperCase, lowerCase, digits, special}
	for len(slots) < size {
		i, err := g.intn(len(classes))
		if err != nil {
			return "", err
		}
		slots = append(slots, classes[i])
	}

	for i := len(slots) - 1; i > 0; i-- {
		j, err := g.intn(i + 1)
		if err != nil {
			return "", err
		}
		slots[i], slots[j] = slots[j], slots[i]
	}

	out := make([]rune, 0, size)
	for _, class := range slots {
		c, err := g.pick(class, out)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	return string(out), nil
}

// pick chooses a random character of class that does not continue a
// sequence from the previous character.
func (g *Generator) pick(class characterClass, sofar []rune) (rune, error) {
	candidates := []rune(class.characters)
	if len(sofar) > 0 {
		prev := sofar[len(sofar)-1]
		allowed := candidates[:0:0]
		for _, c := range candidates {
			if !adjacent(prev, c) {
				allowed = append(allowed, c)
			}
		}
		candidates = allowed
	}
	i, err := g.intn(len(candidates))
	if err != nil {
		return 0, err
	}
	return candidates[i], nil
}

func (g *Generator) intn(n int) (int, error) {
	v, err := rand.Int(g.random, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to read random source: %w", err)
	}
	return int(v.Int64()), nil
}

// Parameters exports the configuration.
func (g *Generator) Parameters() guardrail.CustomConfig {
	return g.config.CustomConfig()
}

// ValidateParameters re-checks the configuration invariants and that
// Generate can produce a password of min_length_warn characters.
func (g *Generator) ValidateParameters() error {
	if err := g.config.Validate(); err != nil {
		return err
	}
	if required := g.config.classMinimumsWarn(); g.config.MinLengthWarn < required {
		return guardrail.ConfigErrorf("%s of value %d is lower than %d, the sum of %s, %s, %s and %s, so no password can be generated",
			MinLengthWarnKey, g.config.MinLengthWarn, required,
			MinUpperCaseCharsWarnKey, MinLowerCaseCharsWarnKey, MinDigitsCharsWarnKey, MinSpecialCharsWarnKey)
	}
	if g.config.MinLengthWarn > MaxGenerateSize {
		return guardrail.ConfigErrorf("%s of value %d is bigger than the maximum generated length of %d",
			MinLengthWarnKey, g.config.MinLengthWarn, MaxGenerateSize)
	}
	return nil
}
