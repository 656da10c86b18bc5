package arxiv

import "regexp"

var absIDRegexp = regexp.MustCompile(`abs/([\w.-]+)`)

// ExtractID returns the identifier following "abs/" in a reference URL,
// e.g. "2301.12345" for https://arxiv.org/abs/2301.12345. The boolean is
// false when ref is empty or has no such segment.
func ExtractID(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	matches := absIDRegexp.FindStringSubmatch(ref)
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}

// PDFURL is the canonical PDF location for an identifier.
func PDFURL(id string) string {
	return "https://arxiv.org/pdf/" + id + ".pdf"
}
