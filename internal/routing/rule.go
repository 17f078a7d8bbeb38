package routing

import "github.com/google/uuid"

// Rule is a single domain routing directive. Rules are values: the With*
// helpers return modified copies and never touch the receiver.
type Rule struct {
	ID          string `yaml:"id"`
	Pattern     string `yaml:"pattern"`
	Policy      Policy `yaml:"policy"`
	Description string `yaml:"description,omitempty"`
	Enabled     bool   `yaml:"enabled"`
}

// NewRule returns an enabled rule with a fresh id.
func NewRule(pattern string, policy Policy) Rule {
	return Rule{
		ID:      uuid.NewString(),
		Pattern: pattern,
		Policy:  policy,
		Enabled: true,
	}
}

func (r Rule) WithPattern(pattern string) Rule {
	r.Pattern = pattern
	return r
}

func (r Rule) WithPolicy(policy Policy) Rule {
	r.Policy = policy
	return r
}

func (r Rule) WithDescription(description string) Rule {
	r.Description = description
	return r
}

func (r Rule) WithEnabled(enabled bool) Rule {
	r.Enabled = enabled
	return r
}

// Matches reports whether the rule applies to domain. Disabled rules never match.
func (r Rule) Matches(domain string) bool {
	return r.Enabled && Matches(r.Pattern, domain)
}
