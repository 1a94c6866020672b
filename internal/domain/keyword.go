package domain

import "strings"

// Price ranges accepted in a KeywordBundle
const (
	PriceBudget   = "budget"
	PriceMidRange = "mid_range"
	PricePremium  = "premium"
	PriceLuxury   = "luxury"
)

// KeywordBundle is the structured expansion of a free-text shopper request
type KeywordBundle struct {
	Keywords    []string `json:"keywords"`
	Colors      []string `json:"colors"`
	Occasions   []string `json:"occasions"`
	Styles      []string `json:"styles"`
	Categories  []string `json:"categories"`
	Materials   []string `json:"materials"`
	Mood        string   `json:"mood"`
	PriceRange  string   `json:"price_range"`
	Explanation string   `json:"explanation"`
}

// NewKeywordBundle builds a bundle with every list lower-cased, trimmed and
// de-duplicated, nil lists replaced by empty ones and an unknown price range
// replaced by mid_range.
func NewKeywordBundle(b KeywordBundle) KeywordBundle {
	return KeywordBundle{
		Keywords:    normalizeTerms(b.Keywords),
		Colors:      normalizeTerms(b.Colors),
		Occasions:   normalizeTerms(b.Occasions),
		Styles:      normalizeTerms(b.Styles),
		Categories:  normalizeTerms(b.Categories),
		Materials:   normalizeTerms(b.Materials),
		Mood:        strings.TrimSpace(b.Mood),
		PriceRange:  normalizePriceRange(b.PriceRange),
		Explanation: strings.TrimSpace(b.Explanation),
	}
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func normalizePriceRange(p string) string {
	switch p = strings.ToLower(strings.TrimSpace(p)); p {
	case PriceBudget, PriceMidRange, PricePremium, PriceLuxury:
		return p
	default:
		return PriceMidRange
	}
}
