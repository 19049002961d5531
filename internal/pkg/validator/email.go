package validator

import "strings"

// IsCandidateEmail reports whether a raw entry is accepted as an email
// address. The check is intentionally loose: non-empty and contains '@'.
// Import counts and per-row error messages assume this exact definition,
// so it must not be tightened without revisiting those.
func IsCandidateEmail(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed != "" && strings.Contains(trimmed, "@")
}

// Normalize returns the canonical form of an email: trimmed and lower-cased.
// Every comparison and every stored row uses this form.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Domain returns the part after the last '@', lower-cased, or "" when the
// input has no domain part. Used for auto-linking admins to partners.
func Domain(email string) string {
	idx := strings.LastIndex(email, "@")
	if idx < 0 || idx == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[idx+1:])
}
