package usecase

import (
	"strings"

	"github.com/outfitlens/backend/internal/domain"
)

// Attribute weights for relevance scoring
const (
	weightColor      = 25.0 // Exact color match
	weightOccasion   = 20.0 // Occasion substring match
	weightCategory   = 20.0 // Exact category match
	weightStyle      = 15.0 // Style substring match
	weightMaterial   = 10.0 // Material substring match
	weightTitleTerm  = 5.0  // Per keyword found in the title
	weightMatchCount = 2.0  // Per unit of store-reported match count
	maxMatchCountPts = 10.0
	maxScore         = 100.0
)

// Score computes how well a catalog record matches a keyword bundle.
// Comparisons are case-insensitive and empty fields never match.
// The result is clamped to [0, 100].
func Score(record domain.CatalogRecord, bundle domain.KeywordBundle) float64 {
	color := fold(record.Color)
	occasion := fold(record.Occasion)
	category := fold(record.Category)
	style := fold(record.Style)
	material := fold(record.Material)
	title := fold(record.Title)

	score := 0.0

	if anyEqual(color, bundle.Colors) {
		score += weightColor
	}
	if anyContained(occasion, bundle.Occasions) {
		score += weightOccasion
	}
	if anyEqual(category, bundle.Categories) {
		score += weightCategory
	}
	if anyContained(style, bundle.Styles) {
		score += weightStyle
	}
	if anyContained(material, bundle.Materials) {
		score += weightMaterial
	}

	if title != "" {
		for _, kw := range bundle.Keywords {
			if kw = fold(kw); kw != "" && strings.Contains(title, kw) {
				score += weightTitleTerm
			}
		}
	}

	if record.MatchCount > 0 {
		score += min(float64(record.MatchCount)*weightMatchCount, maxMatchCountPts)
	}

	return clampScore(score)
}

// ScoreAll sets RelevanceScore on every record in place
func ScoreAll(records []domain.CatalogRecord, bundle domain.KeywordBundle) {
	for i := range records {
		records[i].RelevanceScore = Score(records[i], bundle)
	}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// anyEqual reports whether value equals one of the terms
func anyEqual(value string, terms []string) bool {
	if value == "" {
		return false
	}
	for _, t := range terms {
		if fold(t) == value {
			return true
		}
	}
	return false
}

// anyContained reports whether one of the terms is a substring of value
func anyContained(value string, terms []string) bool {
	if value == "" {
		return false
	}
	for _, t := range terms {
		if t = fold(t); t != "" && strings.Contains(value, t) {
			return true
		}
	}
	return false
}
