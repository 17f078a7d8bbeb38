package publishers

import (
	"encoding/base64"
	"strings"

	"hy2ctl/internal/geoip"
	"hy2ctl/internal/logger"
	"hy2ctl/internal/profile"
)

// GenerateSubscriptionPayload turns profiles into a newline separated list
// of share links. Profiles pointing at the same server with the same
// credentials are emitted once.
//
// Params: "base64" (bool) encodes the whole payload, "flags" (bool) prefixes
// names with the server's country flag when the GeoIP database is loaded.
func GenerateSubscriptionPayload(profiles []profile.Profile, config map[string]interface{}) (string, error) {
	useFlags, _ := config["flags"].(bool)

	seen := make(map[string]bool)
	var lines []string
	for _, p := range profiles {
		if !profile.Validate(p).Valid {
			logger.Log.Debugf("Publisher skipped invalid profile %q", p.Name)
			continue
		}

		l := profile.ToLink(p)
		hash := l.CalculateHash()
		if seen[hash] {
			continue
		}
		seen[hash] = true

		if useFlags {
			if cc := geoip.Country(l.Host); cc != "" {
				l.Name = getFlagEmoji(cc) + " " + l.Name
			}
		}
		lines = append(lines, l.ToURI())
	}

	finalText := strings.Join(lines, "\n")

	useBase64, _ := config["base64"].(bool)
	if useBase64 {
		return base64.StdEncoding.EncodeToString([]byte(finalText)), nil
	}
	return finalText, nil
}

func getFlagEmoji(countryCode string) string {
	if len(countryCode) != 2 {
		return "🌐"
	}
	countryCode = strings.ToUpper(countryCode)
	return string(rune(countryCode[0])+127397) + string(rune(countryCode[1])+127397)
}
