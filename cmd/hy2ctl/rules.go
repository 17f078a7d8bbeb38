package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"hy2ctl/internal/logger"
	"hy2ctl/internal/profile"
	"hy2ctl/internal/routing"
	"hy2ctl/internal/store"

	"github.com/spf13/cobra"
)

var (
	rulesProfile     string
	ruleDescription  string
	ruleDisabled     bool
	rulesImportForce bool
)

var rulesCmd = &cobra.Command{
	Use:     "rules",
	Aliases: []string{"rule"},
	Short:   "Edit the routing rules of a profile",
	Long: `Rules send matching domains DIRECT, BLOCK them, or keep them in the TUNNEL.
Patterns are exact domains, "*.example.com" (the domain and its subdomains),
".example.com" (subdomains only), or geoip:/geosite: tags.
Rules apply to the active profile unless --profile is given.`,
}

// editRules loads the rule set of the target profile, applies fn and saves
// the result after validating it.
func editRules(fn func(rs routing.RuleSet) (routing.RuleSet, string)) {
	_, st, closeDB := openStore()
	defer closeDB()

	p := loadProfile(st, rulesProfile)
	rs, msg := fn(p.RuleSet())
	saveRules(st, p, rs)
	logger.Log.Info(msg)
}

func saveRules(st *store.Store, p profile.Profile, rs routing.RuleSet) {
	res := rs.Validate()
	for _, w := range res.Warnings {
		logger.Log.Warn(w)
	}
	if rs.Enabled && !res.Valid {
		logger.Log.Fatalf("Not saved:\n%s", res.ErrorMessage())
	}
	if err := st.Save(p.WithRules(rs)); err != nil {
		logger.Log.Fatalf("Error saving rules: %v", err)
	}
}

// newRule builds the rule for "rules add". Malformed patterns are left to
// validation when the set is saved.
func newRule(pattern string, policy routing.Policy) routing.Rule {
	return routing.NewRule(strings.TrimSpace(pattern), policy).
		WithDescription(ruleDescription).
		WithEnabled(!ruleDisabled)
}

// findRule accepts a rule id, a unique id prefix or a 1-based position.
// Ids win over positions, so a numeric ref that prefixes exactly one id
// selects that rule.
func findRule(rs routing.RuleSet, ref string) routing.Rule {
	if r, ok := rs.Find(ref); ok {
		return r
	}
	var found []routing.Rule
	for _, r := range rs.Rules {
		if strings.HasPrefix(r.ID, ref) {
			found = append(found, r)
		}
	}
	if len(found) == 1 {
		return found[0]
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(rs.Rules) {
		return rs.Rules[n-1]
	}
	logger.Log.Fatalf("No unique rule matches %q", ref)
	return routing.Rule{}
}

func parsePolicy(s string) routing.Policy {
	p, err := routing.ParsePolicy(s)
	if err != nil {
		logger.Log.Fatalf("%v (use tunnel, direct or block)", err)
	}
	return p
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules in evaluation order",
	Run: func(cmd *cobra.Command, args []string) {
		_, st, closeDB := openStore()
		defer closeDB()

		p := loadProfile(st, rulesProfile)
		rs := p.RuleSet()

		state := "disabled"
		if rs.Enabled {
			state = "enabled"
		}
		fmt.Printf("Rules for %s: %s, default %s\n\n", p.Name, state, rs.Default)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tID\tPATTERN\tPOLICY\tON\tDESCRIPTION")
		for i, r := range rs.Rules {
			on := "yes"
			if !r.Enabled {
				on = "no"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, shortID(r.ID), r.Pattern, r.Policy, on, r.Description)
		}
		w.Flush()
	},
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <pattern> <tunnel|direct|block>",
	Short: "Append a rule",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		editRules(func(rs routing.RuleSet) (routing.RuleSet, string) {
			r := newRule(args[0], parsePolicy(args[1]))
			return rs.WithRule(r), fmt.Sprintf("Added %s → %s", r.Pattern, r.Policy)
		})
	},
}

var rulesRemoveCmd = &cobra.Command{
	Use:     "remove <rule>",
	Aliases: []string{"rm"},
	Short:   "Remove a rule by id, id prefix or position",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		editRules(func(rs routing.RuleSet) (routing.RuleSet, string) {
			r := findRule(rs, args[0])
			return rs.WithoutRule(r.ID), "Removed " + r.Pattern
		})
	},
}

var rulesToggleCmd = &cobra.Command{
	Use:   "toggle <rule>",
	Short: "Enable or disable a single rule",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		editRules(func(rs routing.RuleSet) (routing.RuleSet, string) {
			r := findRule(rs, args[0])
			r = r.WithEnabled(!r.Enabled)
			return rs.WithRule(r), fmt.Sprintf("%s enabled: %t", r.Pattern, r.Enabled)
		})
	},
}

var rulesDefaultCmd = &cobra.Command{
	Use:   "default <tunnel|direct|block>",
	Short: "Set the policy for unmatched traffic",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		editRules(func(rs routing.RuleSet) (routing.RuleSet, string) {
			policy := parsePolicy(args[0])
			return rs.WithDefault(policy), "Default policy: " + policy.String()
		})
	},
}

var rulesEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Turn rule-based routing on",
	Run: func(cmd *cobra.Command, args []string) {
		editRules(func(rs routing.RuleSet) (routing.RuleSet, string) {
			return rs.WithEnabled(true), "Routing rules enabled"
		})
	},
}

var rulesDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Turn rule-based routing off (everything goes through the tunnel)",
	Run: func(cmd *cobra.Command, args []string) {
		editRules(func(rs routing.RuleSet) (routing.RuleSet, string) {
			return rs.WithEnabled(false), "Routing rules disabled"
		})
	},
}

var rulesPresetCmd = &cobra.Command{
	Use:   "preset [name]",
	Short: "Replace the rules with a preset, or list presets",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			for _, name := range routing.PresetNames() {
				fmt.Println(name)
			}
			return
		}
		editRules(func(rs routing.RuleSet) (routing.RuleSet, string) {
			preset, err := routing.Preset(args[0], rs.ProfileID)
			if err != nil {
				logger.Log.Fatalf("%v", err)
			}
			return preset, fmt.Sprintf("Applied preset %s (%d rules)", args[0], len(preset.Rules))
		})
	},
}

var rulesTestCmd = &cobra.Command{
	Use:   "test <domain>...",
	Short: "Show which policy applies to domains",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, st, closeDB := openStore()
		defer closeDB()

		rs := loadProfile(st, rulesProfile).RuleSet()
		if !rs.Enabled {
			fmt.Println("(rules disabled, everything goes through the tunnel)")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, d := range args {
			via := "default"
			if r, ok := rs.MatchingRule(d); ok && rs.Enabled {
				via = r.Pattern
			}
			fmt.Fprintf(w, "%s\t%s\t(%s)\n", d, rs.EffectivePolicy(d), via)
		}
		w.Flush()
	},
}

var rulesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the rule set as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		_, st, closeDB := openStore()
		defer closeDB()

		out, err := routing.EncodeRuleSet(loadProfile(st, rulesProfile).RuleSet())
		if err != nil {
			logger.Log.Fatalf("%v", err)
		}
		fmt.Print(string(out))
	},
}

var rulesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the rule set with one read from a YAML file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			logger.Log.Fatalf("%v", err)
		}
		editRules(func(rs routing.RuleSet) (routing.RuleSet, string) {
			imported, err := routing.DecodeRuleSet(data, rs.ProfileID)
			if err != nil {
				logger.Log.Fatalf("%v", err)
			}
			if len(rs.EnabledRules()) > 0 && !rulesImportForce {
				logger.Log.Fatalf("Profile already has %d active rules; use --force to replace them", len(rs.EnabledRules()))
			}
			return imported, fmt.Sprintf("Imported %d rules", len(imported.Rules))
		})
	},
}

func init() {
	rulesCmd.PersistentFlags().StringVarP(&rulesProfile, "profile", "P", "", "Profile to edit (default is the active profile)")
	rulesAddCmd.Flags().StringVarP(&ruleDescription, "description", "d", "", "Rule description")
	rulesAddCmd.Flags().BoolVar(&ruleDisabled, "disabled", false, "Add the rule disabled")
	rulesImportCmd.Flags().BoolVar(&rulesImportForce, "force", false, "Replace existing rules")

	rulesCmd.AddCommand(rulesListCmd, rulesAddCmd, rulesRemoveCmd, rulesToggleCmd, rulesDefaultCmd,
		rulesEnableCmd, rulesDisableCmd, rulesPresetCmd, rulesTestCmd, rulesExportCmd, rulesImportCmd)
	rootCmd.AddCommand(rulesCmd)
}
