package usecase

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Limits applied to keywords before they reach a store predicate
const (
	maxQueryKeywords  = 8
	maxKeywordLength  = 50
	maxFallbackTerms  = 5
	minMessageTermLen = 3
)

// QueryPreprocessor cleans keywords for catalog queries and pulls content words
// out of free-text shopper messages
type QueryPreprocessor struct {
	enableDebugLogging bool
}

var (
	// Characters that must never reach a LIKE predicate
	unsafeKeywordChars = regexp.MustCompile("['\";`]")

	// Everything that is not a letter, digit, space or hyphen
	messagePunctuation = regexp.MustCompile(`[^\p{L}\p{N}\s-]`)

	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// messageStopWords are words that carry no outfit signal
var messageStopWords = map[string]bool{
	// Basic English stop words
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"of": true, "in": true, "on": true, "at": true, "to": true, "for": true,
	"with": true, "by": true, "from": true, "is": true, "it": true, "as": true,
	"be": true, "was": true, "are": true, "am": true, "this": true, "that": true,
	"my": true, "me": true, "we": true, "our": true, "you": true, "your": true,
	"i'm": true, "im": true, "its": true, "some": true, "any": true, "into": true,
	// Request phrasing
	"need": true, "want": true, "looking": true, "something": true, "wear": true,
	"wearing": true, "outfit": true, "outfits": true, "clothes": true, "please": true,
	"help": true, "find": true, "show": true, "get": true, "going": true,
	"what": true, "should": true, "can": true, "could": true, "would": true,
	"like": true, "have": true, "will": true, "next": true, "week": true,
	"tonight": true, "today": true, "tomorrow": true, "weekend": true,
}

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(enableDebugLogging bool) *QueryPreprocessor {
	return &QueryPreprocessor{
		enableDebugLogging: enableDebugLogging,
	}
}

// SanitizeKeywords prepares keywords for a store predicate.
// Strips quote and semicolon characters, lower-cases, caps each keyword at
// 50 characters, drops empties and duplicates, and keeps at most 8.
func (p *QueryPreprocessor) SanitizeKeywords(keywords []string) []string {
	out := make([]string, 0, min(len(keywords), maxQueryKeywords))
	seen := make(map[string]bool, len(keywords))

	for _, kw := range keywords {
		if len(out) == maxQueryKeywords {
			break
		}

		cleaned := unsafeKeywordChars.ReplaceAllString(kw, "")
		cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
		cleaned = strings.ToLower(strings.TrimSpace(cleaned))
		if len(cleaned) > maxKeywordLength {
			cleaned = strings.TrimSpace(truncateRunes(cleaned, maxKeywordLength))
		}

		if cleaned == "" || seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		out = append(out, cleaned)
	}

	if p.enableDebugLogging {
		log.Debug().Str("component", "preprocess").
			Strs("input", keywords).Strs("output", out).Msg("sanitized keywords")
	}

	return out
}

// ExtractMessageTerms returns up to five content words from a shopper message,
// in order of appearance
func (p *QueryPreprocessor) ExtractMessageTerms(message string) []string {
	cleaned := messagePunctuation.ReplaceAllString(strings.ToLower(message), " ")

	var terms []string
	seen := make(map[string]bool)
	for _, word := range strings.Fields(cleaned) {
		word = strings.Trim(word, "-")
		if len(word) < minMessageTermLen || messageStopWords[word] || isNumeric(word) || seen[word] {
			continue
		}
		seen[word] = true
		terms = append(terms, word)
		if len(terms) == maxFallbackTerms {
			break
		}
	}

	return terms
}

// truncateRunes cuts s to at most n bytes without splitting a rune
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
