package booking

import "strings"

// ResolveAlias maps a user-supplied token (nickname or email) to a
// canonical email address. Lookup is case-insensitive; alias keys are
// expected to be lowercased at load time. Unknown tokens are returned
// unchanged and treated as already-canonical emails.
func ResolveAlias(token string, aliases map[string]string) string {
	if email, ok := aliases[strings.ToLower(token)]; ok {
		return email
	}
	return token
}

// ResolveAll resolves every token and drops duplicates while preserving
// first-seen order, so each person enters the allocation exactly once.
func ResolveAll(tokens []string, aliases map[string]string) []string {
	resolved := make([]string, 0, len(tokens))
	seen := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		email := ResolveAlias(t, aliases)
		if seen[email] {
			continue
		}
		seen[email] = true
		resolved = append(resolved, email)
	}
	return resolved
}
