package routing

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// PresetFactory builds a rule set for the given profile.
type PresetFactory func(profileID string) RuleSet

var presets = make(map[string]PresetFactory)

func RegisterPreset(name string, factory PresetFactory) {
	presets[name] = factory
}

// Preset builds the named preset for profileID.
func Preset(name, profileID string) (RuleSet, error) {
	factory, ok := presets[name]
	if !ok {
		return RuleSet{}, fmt.Errorf("preset '%s' not found", name)
	}
	return factory(profileID), nil
}

// PresetNames lists the registered presets, sorted.
func PresetNames() []string {
	names := lo.Keys(presets)
	sort.Strings(names)
	return names
}

type entry struct {
	pattern     string
	description string
}

var chinaDomains = []entry{
	{"*.cn", "Mainland China domains"},
	{"*.com.cn", "Chinese commercial domains"},
	{"*.gov.cn", "Chinese government domains"},
	{"*.baidu.com", "Baidu"},
	{"*.qq.com", "Tencent"},
	{"*.taobao.com", "Taobao"},
	{"*.alipay.com", "Alipay"},
	{"*.jd.com", "JD"},
	{"*.weibo.com", "Weibo"},
	{"*.163.com", "NetEase"},
	{"*.bilibili.com", "Bilibili"},
	{"*.douyin.com", "Douyin"},
	{"*.xiaomi.com", "Xiaomi"},
}

var adDomains = []entry{
	{"*.doubleclick.net", "Google ads"},
	{"*.googleadservices.com", "Google ad services"},
	{"*.googlesyndication.com", "Google ad network"},
	{"*.google-analytics.com", "Google analytics"},
}

func rulesFrom(entries []entry, policy Policy) []Rule {
	rules := make([]Rule, 0, len(entries))
	for _, e := range entries {
		rules = append(rules, NewRule(e.pattern, policy).WithDescription(e.description))
	}
	return rules
}

// DefaultRuleSet is what a new profile starts with: a few disabled examples
// in a disabled set.
func DefaultRuleSet(profileID string) RuleSet {
	return RuleSet{
		ProfileID: profileID,
		Default:   PolicyTunnel,
		Rules: []Rule{
			NewRule("*.cn", PolicyDirect).WithDescription("Mainland China domains direct").WithEnabled(false),
			NewRule("*.baidu.com", PolicyDirect).WithDescription("Baidu direct").WithEnabled(false),
			NewRule("*.ad.com", PolicyBlock).WithDescription("Block ad domains").WithEnabled(false),
		},
	}
}

func init() {
	RegisterPreset("default", DefaultRuleSet)

	// Everything direct except what the user adds as TUNNEL rules.
	RegisterPreset("most-direct", func(profileID string) RuleSet {
		return RuleSet{
			ProfileID: profileID,
			Default:   PolicyDirect,
			Rules: []Rule{
				NewRule("geoip:private", PolicyDirect).WithDescription("Private addresses (LAN)"),
				NewRule("geoip:cn", PolicyDirect).WithDescription("Mainland China addresses"),
				NewRule("geosite:cn", PolicyDirect).WithDescription("Mainland China sites"),
			},
			Enabled: true,
		}
	})

	RegisterPreset("china-direct", func(profileID string) RuleSet {
		return RuleSet{
			ProfileID: profileID,
			Default:   PolicyTunnel,
			Rules:     rulesFrom(chinaDomains, PolicyDirect),
			Enabled:   true,
		}
	})

	RegisterPreset("block-ads", func(profileID string) RuleSet {
		return RuleSet{
			ProfileID: profileID,
			Default:   PolicyTunnel,
			Rules:     rulesFrom(adDomains, PolicyBlock),
			Enabled:   true,
		}
	})

	RegisterPreset("china-direct-block-ads", func(profileID string) RuleSet {
		return RuleSet{
			ProfileID: profileID,
			Default:   PolicyTunnel,
			Rules:     append(rulesFrom(chinaDomains, PolicyDirect), rulesFrom(adDomains, PolicyBlock)...),
			Enabled:   true,
		}
	})
}
