package auth

import (
	"crypto/subtle"
	"strings"
)

// Credentials is the reserved admin nickname table, fixed at startup.
// A value starting with "$2" is treated as a bcrypt hash; anything else
// is compared verbatim in constant time.
type Credentials struct {
	admins map[string]string
}

// NewCredentials builds the credential table from a nickname -> password
// mapping. Keys are trimmed; empty nicknames are dropped.
func NewCredentials(admins map[string]string) *Credentials {
	table := make(map[string]string, len(admins))
	for nick, password := range admins {
		nick = strings.TrimSpace(nick)
		if nick == "" {
			continue
		}
		table[nick] = password
	}
	return &Credentials{admins: table}
}

// IsReserved reports whether the nickname belongs to an admin.
func (c *Credentials) IsReserved(nick string) bool {
	_, ok := c.admins[nick]
	return ok
}

// Verify checks a password attempt against the stored credential for a
// reserved nickname. Unknown nicknames always fail.
func (c *Credentials) Verify(nick, password string) bool {
	stored, ok := c.admins[nick]
	if !ok {
		return false
	}
	if strings.HasPrefix(stored, "$2") {
		return ComparePassword(stored, password) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}
