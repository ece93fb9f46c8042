package daggen

import (
	"regexp"
	"strings"
)

var (
	disallowedChars = regexp.MustCompile(`[^a-z0-9-]+`)
	leadingDashes   = regexp.MustCompile(`^-+`)
	trailingDashes  = regexp.MustCompile(`-+$`)
	repeatedDashes  = regexp.MustCompile(`-+`)
)

const maxLabelLength = 63

// DNSLabelSanitizer is the default NameSanitizer: it folds a name to the
// RFC 1123 DNS label subset Kubernetes requires for template, task, and
// parameter names (lowercase alphanumerics and '-', no leading/trailing
// dash, 63 characters max).
type DNSLabelSanitizer struct{}

// Sanitize implements NameSanitizer. It is idempotent: running it twice
// produces the same result as running it once.
func (DNSLabelSanitizer) Sanitize(name string) string {
	s := strings.ToLower(name)
	s = disallowedChars.ReplaceAllString(s, "-")
	s = repeatedDashes.ReplaceAllString(s, "-")
	s = leadingDashes.ReplaceAllString(s, "")
	s = trailingDashes.ReplaceAllString(s, "")
	if len(s) > maxLabelLength {
		s = s[:maxLabelLength]
		s = trailingDashes.ReplaceAllString(s, "")
	}
	if s == "" {
		s = "op"
	}
	return s
}
