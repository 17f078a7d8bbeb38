package routing

import (
	"fmt"
	"strings"
)

// ValidationResult collects every problem found; nothing in it is fatal.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func (v ValidationResult) ErrorMessage() string {
	return strings.Join(v.Errors, "\n")
}

func (v ValidationResult) WarningMessage() string {
	return strings.Join(v.Warnings, "\n")
}

// Validate checks the rule patterns and looks for duplicate and conflicting
// rules. Only enabled rules are inspected.
func (rs RuleSet) Validate() ValidationResult {
	var errs, warns []string

	// 1. Pattern shape
	for i, r := range rs.Rules {
		if !r.Enabled {
			continue
		}
		switch {
		case strings.TrimSpace(r.Pattern) == "":
			errs = append(errs, fmt.Sprintf("rule %d: pattern must not be empty", i+1))
		case !ValidPattern(r.Pattern):
			errs = append(errs, fmt.Sprintf("rule %d: invalid pattern: %s", i+1, r.Pattern))
		}
	}

	enabled := rs.EnabledRules()

	// 2. Duplicates, reported once per pattern in order of first appearance
	counts := make(map[string]int)
	var order []string
	display := make(map[string]string)
	for _, r := range enabled {
		key := normalizedKey(r.Pattern)
		if key == "" {
			continue
		}
		if counts[key] == 0 {
			order = append(order, key)
			display[key] = strings.TrimSpace(r.Pattern)
		}
		counts[key]++
	}
	var dups []string
	for _, key := range order {
		if counts[key] > 1 {
			dups = append(dups, display[key])
		}
	}
	if len(dups) > 0 {
		warns = append(warns, "duplicate rule patterns: "+strings.Join(dups, ", "))
	}

	// 3. Conflicts, one error per pair
	for i, a := range enabled {
		for _, b := range enabled[i+1:] {
			if normalizedKey(a.Pattern) == normalizedKey(b.Pattern) && a.Policy != b.Policy {
				errs = append(errs, fmt.Sprintf("conflicting rules: %s is set to both %s and %s",
					strings.TrimSpace(a.Pattern), a.Policy, b.Policy))
			}
		}
	}

	return ValidationResult{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warns,
	}
}
