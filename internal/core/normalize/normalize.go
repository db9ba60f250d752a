// Package normalize cleans free text coming off the listing API.
// Pipeline order
// 1 mojibake repair, only when a repair lowers the corruption score
// 2 sanitize: drop NUL, controls, U+FFFD and invalid bytes
// 3 fold whitespace (incl. U+3000 ideographic space) to single ASCII spaces and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Cleaner is safe for concurrent use; repairs are tried in order and the first improvement wins
type Cleaner struct {
	repairs []Repairer
}

// NewCleaner builds a Cleaner with the given repairs. No repairs means sanitize and fold only
func NewCleaner(repairs ...Repairer) *Cleaner {
	return &Cleaner{repairs: repairs}
}

var defaultCleaner = NewCleaner(Latin1, Windows1252)

// Default returns the shared Cleaner with the Latin-1 and Windows-1252 round trip repairs
func Default() *Cleaner { return defaultCleaner }

// Clean is shorthand for Default().Clean
func Clean(s string) string { return defaultCleaner.Clean(s) }

// Clean returns the cleaned form of s; it never fails
func (c *Cleaner) Clean(s string) string {
	if s == "" {
		return ""
	}
	if fixed, ok := c.Repair(s); ok {
		s = fixed
	}
	return collapseSpaces(Sanitize(s))
}

// Repair tries each repair in order and returns the first candidate that is valid UTF-8
// and strictly less corrupted than s. ok=false means s should be kept as is
func (c *Cleaner) Repair(s string) (string, bool) {
	before := Score(s)
	if before == 0 {
		return s, false
	}
	for _, r := range c.repairs {
		cand, ok := r.Repair(s)
		if !ok || cand == "" {
			continue
		}
		if Score(cand) < before {
			return cand, true
		}
	}
	return s, false
}

// junk runes never survive cleaning
func junk(r rune) bool {
	switch {
	case r == utf8Replacement:
		return true
	case r == '\t' || r == '\n' || r == '\r':
		return false
	case r < 0x20 || r == 0x7F:
		return true
	case r >= 0x80 && r <= 0x9F:
		return true
	}
	return false
}

const utf8Replacement = '\uFFFD'

// sanitizePool holds fresh transformer chains
var sanitizePool = sync.Pool{
	New: func() any {
		return transform.Chain(
			runes.ReplaceIllFormed(), // invalid bytes become U+FFFD, removed next
			runes.Remove(runes.Predicate(junk)),
		)
	},
}

// Sanitize removes NUL, ASCII and C1 controls (tab and line breaks kept), U+FFFD and invalid UTF-8
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	clean := true
	for _, r := range s {
		if junk(r) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	tr := sanitizePool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	sanitizePool.Put(tr)
	if err != nil {
		return strings.ToValidUTF8(s, "")
	}
	return out
}

// collapseSpaces folds every whitespace run (unicode.IsSpace covers U+3000) to one ASCII space and trims
func collapseSpaces(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte(' ')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
