package link

import (
	"bufio"
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

var regexLink = regexp.MustCompile(`(hysteria2|hy2)://[a-zA-Z0-9_\-\.\:@\?=&%#+/\[\],]+`)

// ExtractLinks finds hysteria2 links in free text, e.g. a subscription body.
// Base64-encoded bodies are decoded first.
func ExtractLinks(text string) []string {
	if !strings.Contains(text, "://") {
		if decoded, err := DecodeBase64(strings.TrimSpace(text)); err == nil {
			text = decoded
		}
	}

	var links []string
	text = strings.ReplaceAll(text, "\r\n", "\n")
	scanner := bufio.NewScanner(strings.NewReader(text))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		matches := regexLink.FindAllString(line, -1)
		for _, match := range matches {
			clean := strings.TrimRight(match, ".,;)\"")
			if clean != "" {
				links = append(links, clean)
			}
		}
	}
	return lo.Uniq(links)
}

// DecodeBase64 attempts to decode standard and URL-safe base64 strings,
// automatically fixing missing padding.
func DecodeBase64(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if n := len(s) % 4; n != 0 {
		s += strings.Repeat("=", 4-n)
	}

	b, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return string(b), nil
	}

	b, err = base64.URLEncoding.DecodeString(s)
	if err == nil {
		return string(b), nil
	}

	return "", err
}

// FixIllegalUrl cleans up common issues in pasted links.
func FixIllegalUrl(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return s
}
