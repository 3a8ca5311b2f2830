package profile

import "strings"

// FoldRepeatedToken collapses the site's classic duplicated-text rendering
// artifact: a captured token that is exactly two repeated halves of itself
// ("LeadershipLeadership") folds to one half. Anything else passes through
// unchanged.
func FoldRepeatedToken(s string) string {
	n := len(s)
	if n >= 2 && n%2 == 0 && s[:n/2] == s[n/2:] {
		return s[:n/2]
	}
	return s
}

// DedupSkills folds rendering artifacts, then removes case-insensitive
// duplicates while keeping first-seen order and casing. Blank entries are
// dropped.
func DedupSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(FoldRepeatedToken(strings.TrimSpace(s)))
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
