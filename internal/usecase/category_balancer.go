package usecase

import (
	"sort"
	"strings"

	"github.com/outfitlens/backend/internal/domain"
)

// titleCategoryWords map title words to the category they force.
// This patches upstream attribute gaps (e.g. a "Wrap Dress" stored as "top")
// and should be revisited once the vision attributes are reliable.
var titleCategoryWords = []struct {
	category string
	words    []string
}{
	{domain.CategoryDress, []string{"dress", "dresses", "gown", "gowns", "sundress", "jumpsuit"}},
	{domain.CategoryOuterwear, []string{"jacket", "coat", "blazer", "cardigan", "parka", "trench", "overcoat", "topcoat", "windbreaker"}},
	{domain.CategoryBottom, []string{"pants", "trousers", "jeans", "skirt", "shorts", "leggings", "chinos", "joggers", "culottes"}},
	{domain.CategoryTop, []string{"blouse", "shirt", "tee", "t-shirt", "tshirt", "top", "sweater", "tank", "camisole", "hoodie", "polo", "jumper", "bodysuit"}},
}

// storeCategoryAliases normalize store-reported categories
var storeCategoryAliases = map[string]string{
	"top": domain.CategoryTop, "tops": domain.CategoryTop, "shirt": domain.CategoryTop,
	"shirts": domain.CategoryTop, "blouse": domain.CategoryTop, "t-shirt": domain.CategoryTop,
	"tshirt": domain.CategoryTop, "sweater": domain.CategoryTop, "knitwear": domain.CategoryTop,
	"hoodie": domain.CategoryTop,

	"bottom": domain.CategoryBottom, "bottoms": domain.CategoryBottom, "pants": domain.CategoryBottom,
	"trousers": domain.CategoryBottom, "jeans": domain.CategoryBottom, "skirt": domain.CategoryBottom,
	"skirts": domain.CategoryBottom, "shorts": domain.CategoryBottom,

	"dress": domain.CategoryDress, "dresses": domain.CategoryDress, "gown": domain.CategoryDress,
	"jumpsuit": domain.CategoryDress,

	"outerwear": domain.CategoryOuterwear, "jacket": domain.CategoryOuterwear,
	"jackets": domain.CategoryOuterwear, "coat": domain.CategoryOuterwear,
	"coats": domain.CategoryOuterwear, "blazer": domain.CategoryOuterwear,
	"cardigan": domain.CategoryOuterwear,
}

// ClassifyCategory returns the outfit category of a record: a category word in
// the title wins over the store-reported category
func ClassifyCategory(record domain.CatalogRecord) string {
	if category, ok := categoryFromTitle(record.Title); ok {
		return category
	}
	return NormalizeCategory(record.Category)
}

// NormalizeCategory maps a store category onto top/bottom/dress/outerwear/other
func NormalizeCategory(category string) string {
	if c, ok := storeCategoryAliases[fold(category)]; ok {
		return c
	}
	return domain.CategoryOther
}

func categoryFromTitle(title string) (string, bool) {
	words := titleWords(title)
	if len(words) == 0 {
		return "", false
	}
	for _, group := range titleCategoryWords {
		for _, w := range group.words {
			if words[w] {
				return group.category, true
			}
		}
	}
	return "", false
}

func titleWords(title string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-')
	})
	words := make(map[string]bool, len(fields)*2)
	for _, f := range fields {
		words[f] = true
		// "wrap-dress" also counts as "dress"
		for _, part := range strings.Split(f, "-") {
			if part != "" {
				words[part] = true
			}
		}
	}
	return words
}

// CategoryBalance counts records per outfit category
type CategoryBalance map[string]int

// Balance classifies every record and counts the categories
func Balance(records []domain.CatalogRecord) CategoryBalance {
	counts := CategoryBalance{}
	for _, r := range records {
		counts[ClassifyCategory(r)]++
	}
	return counts
}

// Missing lists the categories that must be topped up so that a complete outfit
// can be formed: nothing when a dress exists, otherwise whichever of top and
// bottom is absent
func (b CategoryBalance) Missing() []string {
	if b[domain.CategoryDress] > 0 {
		return nil
	}
	var missing []string
	if b[domain.CategoryTop] == 0 {
		missing = append(missing, domain.CategoryTop)
	}
	if b[domain.CategoryBottom] == 0 {
		missing = append(missing, domain.CategoryBottom)
	}
	return missing
}

// Diversify keeps the first record for each distinct product title, so that
// size and color variants of one product do not crowd out the list.
// Titles compare case-insensitively after trimming.
func Diversify(records []domain.CatalogRecord) []domain.CatalogRecord {
	out := make([]domain.CatalogRecord, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		key := fold(r.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// CategoryAliases returns every store category that normalizes to category,
// with category itself first. Unknown categories are returned as-is.
func CategoryAliases(category string) []string {
	category = fold(category)
	aliases := []string{category}
	target, known := storeCategoryAliases[category]
	if !known {
		return aliases
	}
	for _, alias := range sortedAliasKeys {
		if alias != category && storeCategoryAliases[alias] == target {
			aliases = append(aliases, alias)
		}
	}
	return aliases
}

// sortedAliasKeys gives CategoryAliases a stable order
var sortedAliasKeys = func() []string {
	keys := make([]string, 0, len(storeCategoryAliases))
	for k := range storeCategoryAliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()
