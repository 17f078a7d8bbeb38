package link

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// CalculateHash identifies the server endpoint and credentials of a link.
// The name is not part of it, so renamed copies collapse to one.
func (l *Link) CalculateHash() string {
	parts := []string{
		strings.ToLower(l.Host),
		l.Ports,
		l.Auth,
		strings.ToLower(l.SNI),
		l.PinSHA256,
	}

	// Obfs without a password is ignored by the client; a password without
	// a type means salamander.
	obfs := strings.ToLower(l.Obfs)
	if l.ObfsPassword == "" {
		obfs = ""
	} else if obfs == "" {
		obfs = "salamander"
	}
	parts = append(parts, obfs, l.ObfsPassword)

	signature := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(signature))
	return hex.EncodeToString(hash[:])
}
