package routing

import (
	"regexp"
	"strings"
)

const (
	wildcardPrefix = "*."
	suffixPrefix   = "."
	aclSuffix      = "suffix:"
)

var (
	domainPattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?(\.[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?)*$`)

	// geoip:cn, geosite:category-ads-all, geosite:google@cn, ...
	tagPattern = regexp.MustCompile(`^(?i:geoip|geosite):[A-Za-z0-9_.@!-]+$`)
)

// Matches reports whether domain is covered by pattern.
//
// Supported forms, compared case-insensitively:
//   - "example.com"   exact
//   - "*.example.com" example.com itself and any subdomain of it
//   - ".example.com"  any domain whose text ends with ".example.com"
//
// Any other form (including tags such as geosite:cn) only matches when it is
// literally equal to the candidate.
func Matches(pattern, domain string) bool {
	pattern = strings.ToLower(pattern)
	domain = strings.ToLower(domain)

	switch {
	case pattern == domain:
		return true
	case strings.HasPrefix(pattern, wildcardPrefix):
		base := pattern[len(wildcardPrefix):]
		return domain == base || strings.HasSuffix(domain, "."+base)
	case strings.HasPrefix(pattern, suffixPrefix):
		// Raw byte suffix, kept as the client has always behaved.
		return strings.HasSuffix(domain, pattern)
	default:
		return false
	}
}

// IsTag reports whether pattern uses the opaque geoip:/geosite: tag syntax.
func IsTag(pattern string) bool {
	return tagPattern.MatchString(pattern)
}

// ValidPattern reports whether pattern is a well formed domain pattern or a
// recognized tag.
func ValidPattern(pattern string) bool {
	if strings.TrimSpace(pattern) == "" {
		return false
	}
	if IsTag(pattern) {
		return true
	}
	clean := strings.TrimPrefix(pattern, wildcardPrefix)
	clean = strings.TrimPrefix(clean, suffixPrefix)
	return domainPattern.MatchString(clean)
}

// ACLPattern rewrites a rule pattern into the form used in ACL directives.
func ACLPattern(pattern string) string {
	if strings.HasPrefix(pattern, wildcardPrefix) {
		return aclSuffix + pattern[len(wildcardPrefix):]
	}
	return pattern
}

// normalizedKey is the identity used for duplicate and conflict detection.
func normalizedKey(pattern string) string {
	return ACLPattern(strings.ToLower(strings.TrimSpace(pattern)))
}
