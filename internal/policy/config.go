package policy

// Config controls the allow-lists applied to restricted source.
// The structural rules (no function or class definitions, no require)
// are not configurable.
type Config struct {
	// AllowedFunctions are bare callee names permitted under restriction.
	AllowedFunctions []string `mapstructure:"allowed_functions" yaml:"allowed_functions"`

	// AllowedMethods are substrings a callee's source text may contain to
	// permit the call, e.g. ".show" allows skill.show(...).
	AllowedMethods []string `mapstructure:"allowed_methods" yaml:"allowed_methods"`
}

// DefaultConfig returns the stock allow-lists: the skill-library entry
// points plus the inspection/run/test method families.
func DefaultConfig() Config {
	return Config{
		AllowedFunctions: []string{"create", "save", "search", "CodeSkill"},
		AllowedMethods:   []string{".show", ".test", ".run"},
	}
}
