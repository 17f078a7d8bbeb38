package routing

import "slices"

// RuleSet is the ordered rule list of one profile plus the policy applied
// when nothing matches. A disabled set routes everything through the tunnel.
type RuleSet struct {
	ProfileID string `yaml:"profile_id,omitempty"`
	Default   Policy `yaml:"default"`
	Rules     []Rule `yaml:"rules"`
	Enabled   bool   `yaml:"enabled"`
}

// EffectivePolicy resolves the policy for domain. The first enabled rule in
// list order wins.
func (rs RuleSet) EffectivePolicy(domain string) Policy {
	if !rs.Enabled {
		return PolicyTunnel
	}
	if r, ok := rs.MatchingRule(domain); ok {
		return r.Policy
	}
	return rs.Default
}

// MatchingRule returns the first enabled rule covering domain.
func (rs RuleSet) MatchingRule(domain string) (Rule, bool) {
	if !rs.Enabled {
		return Rule{}, false
	}
	for _, r := range rs.Rules {
		if r.Matches(domain) {
			return r, true
		}
	}
	return Rule{}, false
}

// EnabledRules returns the enabled rules in list order.
func (rs RuleSet) EnabledRules() []Rule {
	var out []Rule
	for _, r := range rs.Rules {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

// Find returns the rule with the given id.
func (rs RuleSet) Find(id string) (Rule, bool) {
	for _, r := range rs.Rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// Clone returns a deep copy of the set.
func (rs RuleSet) Clone() RuleSet {
	rs.Rules = slices.Clone(rs.Rules)
	return rs
}

func (rs RuleSet) WithEnabled(enabled bool) RuleSet {
	rs = rs.Clone()
	rs.Enabled = enabled
	return rs
}

func (rs RuleSet) WithDefault(policy Policy) RuleSet {
	rs = rs.Clone()
	rs.Default = policy
	return rs
}

func (rs RuleSet) WithProfileID(id string) RuleSet {
	rs = rs.Clone()
	rs.ProfileID = id
	return rs
}

func (rs RuleSet) WithRules(rules []Rule) RuleSet {
	rs.Rules = slices.Clone(rules)
	return rs
}

// WithRule appends r, or replaces the rule that has the same id.
func (rs RuleSet) WithRule(r Rule) RuleSet {
	rs = rs.Clone()
	for i := range rs.Rules {
		if rs.Rules[i].ID == r.ID {
			rs.Rules[i] = r
			return rs
		}
	}
	rs.Rules = append(rs.Rules, r)
	return rs
}

// WithoutRule drops the rule with the given id, if present.
func (rs RuleSet) WithoutRule(id string) RuleSet {
	rs = rs.Clone()
	rs.Rules = slices.DeleteFunc(rs.Rules, func(r Rule) bool { return r.ID == id })
	return rs
}
