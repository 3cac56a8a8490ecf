package logging

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder replaces redacted values.
const RedactedPlaceholder = "[REDACTED]"

// sensitiveFieldNames are field keys whose values are always redacted. Matching is
// case-insensitive and exact.
var sensitiveFieldNames = map[string]struct{}{
	"hash":            {},
	"hash_hex":        {},
	"borderless_hash": {},
	"password":        {},
	"secret":          {},
	"token":           {},
	"api_key":         {},
}

// minEncodedHashLen is the shortest run of base64 alphabet characters treated as an
// encoded hash. A 924 byte hash is 1848 hex digits or 1232 base64 characters, and hex
// digits are a subset of the base64 alphabet. RE2 caps repeat counts at 1000, so these
// runs are found by scanning instead of by pattern.
const minEncodedHashLen = 1232

// sensitivePatterns match credentials inside free-form strings.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(bearer\s+[a-zA-Z0-9._-]{20,})`),
	regexp.MustCompile(`(?i)((?:password|secret|token|api_key)\s*[:=]\s*[^\s,;]{8,})`),
}

// RedactSensitiveData replaces every hash encoding or credential found in value.
func RedactSensitiveData(value string) string {
	if len(value) < 8 {
		return value
	}
	value = redactEncodedHashes(value)
	for _, p := range sensitivePatterns {
		value = p.ReplaceAllString(value, RedactedPlaceholder)
	}
	return value
}

// ContainsSensitiveData reports whether RedactSensitiveData would change value.
func ContainsSensitiveData(value string) bool {
	if _, _, ok := nextEncodedHash(value); ok {
		return true
	}
	for _, p := range sensitivePatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

func redactEncodedHashes(value string) string {
	var b strings.Builder
	for {
		start, end, ok := nextEncodedHash(value)
		if !ok {
			if b.Len() == 0 {
				return value
			}
			b.WriteString(value)
			return b.String()
		}
		b.WriteString(value[:start])
		b.WriteString(RedactedPlaceholder)
		value = value[end:]
	}
}

// nextEncodedHash finds the first run of at least minEncodedHashLen base64 characters,
// including trailing padding.
func nextEncodedHash(s string) (start, end int, ok bool) {
	run := 0
	for i := 0; i < len(s); i++ {
		if isBase64Char(s[i]) {
			run++
			continue
		}
		if run >= minEncodedHashLen {
			return i - run, padEnd(s, i), true
		}
		run = 0
	}
	if run >= minEncodedHashLen {
		return len(s) - run, len(s), true
	}
	return 0, 0, false
}

func padEnd(s string, i int) int {
	for n := 0; n < 2 && i < len(s) && s[i] == '='; n++ {
		i++
	}
	return i
}

func isBase64Char(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '+' || c == '/'
}

// IsSensitiveField reports whether values logged under key are always redacted.
func IsSensitiveField(key string) bool {
	_, ok := sensitiveFieldNames[strings.ToLower(key)]
	return ok
}

// RedactField returns the placeholder for sensitive keys and the scrubbed value otherwise.
func RedactField(key, value string) string {
	if IsSensitiveField(key) {
		return RedactedPlaceholder
	}
	return RedactSensitiveData(value)
}
