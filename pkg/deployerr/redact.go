package deployerr

import "regexp"

const redactedPlaceholder = "***REDACTED***"

type redactRule struct {
	pattern     *regexp.Regexp
	replacement string
}

var secretLikeRules = []redactRule{
	{regexp.MustCompile(`(?i)(api[_-]?token|apikey)(["']?\s*[:=]\s*["']?)[^"'\s,}]+`), "${1}${2}" + redactedPlaceholder},
	{regexp.MustCompile(`(?i)(password|passwd)(["']?\s*[:=]\s*["']?)[^"'\s,}]+`), "${1}${2}" + redactedPlaceholder},
	{regexp.MustCompile(`(?i)(private[_-]?key)(["']?\s*[:=]\s*["']?)[^"'\s,}]+`), "${1}${2}" + redactedPlaceholder},
	{regexp.MustCompile(`(?i)Bearer\s+[a-zA-Z0-9_.\-]+`), "Bearer " + redactedPlaceholder},
}

// Redact scrubs key=value-shaped secret material out of a free-form
// string (e.g. driver stderr) before it is attached to a SystemError.
// It is defense in depth: structured secret fields should already be
// carried as *secret.Value, whose own String() redacts unconditionally.
func Redact(s string) string {
	out := s
	for _, rule := range secretLikeRules {
		out = rule.pattern.ReplaceAllString(out, rule.replacement)
	}
	return out
}
