package guardrail

// EnableFlag is a guardrail that gates the use of a feature.
//
// It only aborts user queries, so it is meant for query-based checks: a
// rejected query is fine, a broken compaction is not.
type EnableFlag struct {
	*Guardrail
	enabled     func(*ClientState) bool
	featureName string
	alwaysWarn  bool
}

// NewEnableFlag creates a feature gate. enabled reports whether the feature
// is allowed for a state; featureName is used in messages. With alwaysWarn,
// every permitted use emits a "Beware using" warning.
func NewEnableFlag(name string, enabled func(*ClientState) bool, featureName string, alwaysWarn bool, opts ...Option) *EnableFlag {
	return &EnableFlag{
		Guardrail:   New(name, opts...),
		enabled:     enabled,
		featureName: featureName,
		alwaysWarn:  alwaysWarn,
	}
}

// FeatureName returns the feature reported in messages.
func (f *EnableFlag) FeatureName() string {
	return f.featureName
}

// IsEnabled returns true if the feature is allowed. A guardrail that does
// not apply to the state counts as allowed: guardrails only make things
// stricter.
func (f *EnableFlag) IsEnabled(state *ClientState) bool {
	return !f.Enabled(state) || f.enabled(state)
}

// EnsureEnabled fails if the feature is not allowed.
func (f *EnableFlag) EnsureEnabled(state *ClientState) error {
	return f.EnsureEnabledFeature(f.featureName, state)
}

// EnsureEnabledFeature is EnsureEnabled reporting a different feature name.
func (f *EnableFlag) EnsureEnabledFeature(featureName string, state *ClientState) error {
	if !f.IsEnabled(state) {
		if err := f.Fail(state, featureName+" is not allowed"); err != nil {
			return err
		}
	}

	if f.alwaysWarn {
		f.Warn(state, "Beware using "+featureName)
	}
	return nil
}
