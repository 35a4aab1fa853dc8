package source

import (
	"strings"
)

// Resolver prefixes seen in upstream DOI fields, checked in order.
var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi:",
}

// NormalizeDOI canonicalizes an upstream identifier: trims whitespace,
// strips any resolver prefix, and lower-cases it (DOIs are
// case-insensitive). Reports false when nothing DOI-shaped remains, which
// callers treat as an adapter rejection.
func NormalizeDOI(raw string) (string, bool) {
	doi := strings.TrimSpace(raw)
	for _, prefix := range doiPrefixes {
		if strings.HasPrefix(strings.ToLower(doi), prefix) {
			doi = doi[len(prefix):]
			break
		}
	}
	doi = strings.ToLower(strings.TrimSpace(doi))

	if !strings.HasPrefix(doi, "10.") {
		return "", false
	}
	slash := strings.Index(doi, "/")
	if slash == -1 || slash == len(doi)-1 {
		return "", false
	}
	return doi, true
}

// ResolverURL builds the canonical DOI-resolver URL for an identifier.
func ResolverURL(doi string) string {
	return "https://doi.org/" + doi
}
