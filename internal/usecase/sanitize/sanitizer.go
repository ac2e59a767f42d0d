// Package sanitize strips known injection patterns from raw query text.
//
// It is a denylist, not a parser: the contract is that the listed literal
// patterns are removed, not that every injection is prevented.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/ragate/internal/domain"
)

// DefaultMaxLength is the maximum sanitized query length in characters.
const DefaultMaxLength = 1000

var (
	scriptBlock   = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	scriptOpener  = regexp.MustCompile(`(?i)<script[^>]*>?`)
	javascriptURI = regexp.MustCompile(`(?i)javascript:`)
)

// Applied in order after script and URI removal.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(union|select|insert|update|delete|drop|create|alter)\s+`),
	regexp.MustCompile(`(?i)'\s*or\s*'\s*1\s*=\s*1`),
	regexp.MustCompile(`(?i)'\s*;\s*--`),
	regexp.MustCompile(`(?i)'\s*\|\|\s*'`),
}

// Sanitizer cleans queries and enforces the length bound.
type Sanitizer struct {
	maxLength int
}

// New creates a Sanitizer. maxLength <= 0 selects DefaultMaxLength.
func New(maxLength int) *Sanitizer {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Sanitizer{maxLength: maxLength}
}

// MaxLength returns the configured bound.
func (s *Sanitizer) MaxLength() int { return s.maxLength }

// Sanitize returns the cleaned query or ErrEmptyQuery / ErrQueryTooLong.
func (s *Sanitizer) Sanitize(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", domain.ErrEmptyQuery
	}

	// Removing one pattern can splice its neighbours into another, so the
	// whole sequence repeats until a pass changes nothing. Each pass only
	// deletes text, which bounds the loop by the input length.
	out := raw
	for {
		next := strip(out)
		if next == out {
			break
		}
		out = next
	}
	out = strings.TrimSpace(out)

	if out == "" {
		return "", domain.ErrEmptyQuery
	}
	if n := utf8.RuneCountInString(out); n > s.maxLength {
		return "", fmt.Errorf("%w: %d characters, maximum %d", domain.ErrQueryTooLong, n, s.maxLength)
	}
	return out, nil
}

// strip runs one pass of every removal in order.
func strip(s string) string {
	s = stripScripts(s)
	s = javascriptURI.ReplaceAllString(s, "")
	for _, re := range injectionPatterns {
		s = re.ReplaceAllString(s, "")
	}
	return s
}

// stripScripts removes script blocks until none remain, so "<scr<script></script>ipt>" cannot
// reassemble into a new block, then drops unterminated openers.
func stripScripts(s string) string {
	for {
		next := scriptBlock.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = next
	}
	for {
		next := scriptOpener.ReplaceAllString(s, "")
		if next == s {
			return s
		}
		s = next
	}
}
