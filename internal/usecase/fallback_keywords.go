package usecase

import (
	"strings"

	"github.com/outfitlens/backend/internal/domain"
)

// fallbackRule maps trigger substrings to a fixed keyword bundle
type fallbackRule struct {
	name     string
	triggers []string
	bundle   domain.KeywordBundle
}

// fallbackRules are checked in order; the first rule with a matching trigger wins
var fallbackRules = []fallbackRule{
	{
		name:     "party",
		triggers: []string{"dance", "dancing", "party", "club", "night out", "celebrat"},
		bundle: domain.KeywordBundle{
			Keywords:    []string{"party", "evening", "sequin"},
			Colors:      []string{"black", "red", "gold"},
			Occasions:   []string{"party", "evening"},
			Styles:      []string{"glamorous", "chic"},
			Categories:  []string{"dress", "top", "bottom"},
			Materials:   []string{"satin", "sequin"},
			Mood:        "glamorous",
			PriceRange:  domain.PriceMidRange,
			Explanation: "Evening pieces that catch the light and move well on the dance floor.",
		},
	},
	{
		name:     "travel",
		triggers: []string{"drive", "driving", "road trip", "travel", "trip", "flight", "vacation"},
		bundle: domain.KeywordBundle{
			Keywords:    []string{"comfortable", "relaxed", "travel"},
			Colors:      []string{"beige", "navy", "white"},
			Occasions:   []string{"travel", "casual"},
			Styles:      []string{"relaxed", "casual"},
			Categories:  []string{"top", "bottom"},
			Materials:   []string{"cotton", "linen"},
			Mood:        "relaxed",
			PriceRange:  domain.PriceMidRange,
			Explanation: "Breathable, easy separates that stay comfortable for hours on the road.",
		},
	},
	{
		name:     "business",
		triggers: []string{"business", "work", "office", "meeting", "interview", "conference"},
		bundle: domain.KeywordBundle{
			Keywords:    []string{"tailored", "professional", "blazer"},
			Colors:      []string{"navy", "black", "grey", "white"},
			Occasions:   []string{"work", "business"},
			Styles:      []string{"formal", "professional"},
			Categories:  []string{"top", "bottom", "outerwear"},
			Materials:   []string{"wool", "cotton"},
			Mood:        "polished",
			PriceRange:  domain.PriceMidRange,
			Explanation: "Clean tailored lines in neutral colors read confident and professional.",
		},
	},
}

// casualFallback is used when no rule matches
var casualFallback = domain.KeywordBundle{
	Keywords:    []string{"casual", "everyday"},
	Colors:      []string{"white", "blue", "black"},
	Occasions:   []string{"casual", "everyday"},
	Styles:      []string{"casual"},
	Categories:  []string{"top", "bottom", "dress"},
	Materials:   []string{"cotton", "denim"},
	Mood:        "easygoing",
	PriceRange:  domain.PriceMidRange,
	Explanation: "Versatile everyday pieces that are easy to wear and mix.",
}

// Fallback builds the deterministic keyword bundle for message without any
// network call. Content words from the message are appended to the keywords.
func (e *KeywordExpander) Fallback(message string) domain.KeywordBundle {
	lower := strings.ToLower(message)

	base := casualFallback
	for _, rule := range fallbackRules {
		if containsAny(lower, rule.triggers) {
			base = rule.bundle
			break
		}
	}

	bundle := cloneBundle(base)
	bundle.Keywords = append(bundle.Keywords, e.preprocessor.ExtractMessageTerms(message)...)
	return domain.NewKeywordBundle(bundle)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// cloneBundle copies every slice so rule tables are never aliased
func cloneBundle(b domain.KeywordBundle) domain.KeywordBundle {
	b.Keywords = append([]string(nil), b.Keywords...)
	b.Colors = append([]string(nil), b.Colors...)
	b.Occasions = append([]string(nil), b.Occasions...)
	b.Styles = append([]string(nil), b.Styles...)
	b.Categories = append([]string(nil), b.Categories...)
	b.Materials = append([]string(nil), b.Materials...)
	return b
}
