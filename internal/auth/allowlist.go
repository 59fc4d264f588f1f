package auth

import "strings"

// Allowlist is the set of admin email addresses. It is built once at startup
// from configuration and passed into whatever needs to authorize admins; no
// package-level state.
type Allowlist struct {
	emails map[string]struct{}
}

// NewAllowlist builds an allowlist from a list of addresses. Matching is
// case-insensitive.
func NewAllowlist(emails []string) *Allowlist {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		set[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &Allowlist{emails: set}
}

// Contains reports whether email belongs to an admin.
func (a *Allowlist) Contains(email string) bool {
	_, ok := a.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}
