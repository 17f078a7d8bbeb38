package routing

import (
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// fileRule mirrors Rule for hand-written files, where enabled may be left
// out and ids are optional.
type fileRule struct {
	ID          string `yaml:"id"`
	Pattern     string `yaml:"pattern"`
	Policy      Policy `yaml:"policy"`
	Description string `yaml:"description"`
	Enabled     *bool  `yaml:"enabled"`
}

type fileRuleSet struct {
	Default Policy     `yaml:"default"`
	Enabled *bool      `yaml:"enabled"`
	Rules   []fileRule `yaml:"rules"`
}

// DecodeRuleSet reads a YAML rule set for profileID. Rules and the set are
// enabled unless stated otherwise. Missing ids and ids repeated within the
// file are replaced with generated ones.
func DecodeRuleSet(data []byte, profileID string) (RuleSet, error) {
	var f fileRuleSet
	if err := yaml.Unmarshal(data, &f); err != nil {
		return RuleSet{}, fmt.Errorf("failed to parse rule set: %w", err)
	}

	rs := RuleSet{
		ProfileID: profileID,
		Default:   f.Default,
		Enabled:   f.Enabled == nil || *f.Enabled,
		Rules:     make([]Rule, 0, len(f.Rules)),
	}
	seen := make(map[string]bool, len(f.Rules))
	for _, fr := range f.Rules {
		r := Rule{
			ID:          fr.ID,
			Pattern:     fr.Pattern,
			Policy:      fr.Policy,
			Description: fr.Description,
			Enabled:     fr.Enabled == nil || *fr.Enabled,
		}
		if r.ID == "" || seen[r.ID] {
			r.ID = uuid.NewString()
		}
		seen[r.ID] = true
		rs.Rules = append(rs.Rules, r)
	}
	return rs, nil
}

// EncodeRuleSet writes rs in the format DecodeRuleSet reads. The owning
// profile is left out so the file can be applied to any profile.
func EncodeRuleSet(rs RuleSet) ([]byte, error) {
	rs.ProfileID = ""
	return yaml.Marshal(rs)
}
