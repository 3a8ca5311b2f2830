package search

import "strings"

// seniorityKeywords are role words that, when leading a separator-less
// headline, mark the remainder as the company name ("CEO Acme" → "Acme").
var seniorityKeywords = map[string]bool{
	"ceo": true, "cto": true, "cfo": true, "coo": true, "cmo": true,
	"founder": true, "cofounder": true, "co-founder": true,
	"president": true, "owner": true, "partner": true,
	"vp": true, "svp": true, "evp": true,
	"director": true, "head": true, "chief": true, "principal": true,
}

// CompanyFromHeadline derives the current company from a headline using a
// small ordered set of pattern rules; the first matching rule wins and no
// match yields "". Never synthesizes a value.
func CompanyFromHeadline(headline string) string {
	headline = strings.TrimSpace(headline)
	if headline == "" {
		return ""
	}

	// Rule 1 and 2: "<title> at <company>" and "<title> @ <company>".
	for _, sep := range []string{" at ", " @ "} {
		idx := lastIndexFold(headline, sep)
		if idx < 0 {
			continue
		}
		return trimCompany(headline[idx+len(sep):])
	}

	// Rule 3: "<seniority keyword> <company>" with no separator word.
	fields := strings.Fields(headline)
	if len(fields) >= 2 && seniorityKeywords[strings.ToLower(fields[0])] {
		return trimCompany(strings.Join(fields[1:], " "))
	}

	return ""
}

// trimCompany cuts trailing list separators the site appends after the
// company name.
func trimCompany(s string) string {
	for _, cut := range []string{"|", "·", " - ", ","} {
		if idx := strings.Index(s, cut); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

// lastIndexFold is strings.LastIndex with ASCII case folding, so " At " and
// " AT " separators also match.
func lastIndexFold(s, sep string) int {
	return strings.LastIndex(strings.ToLower(s), strings.ToLower(sep))
}
