package usecase

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/outfitlens/backend/internal/domain"
)

const (
	maxCompleteLooks = 2
	defaultMood      = "versatile"
)

// colorPairs lists neutral and complementary color pairings. Order within a
// pair is irrelevant: compatibility is checked both ways.
var colorPairs = [][2]string{
	{"black", "white"}, {"black", "grey"}, {"black", "beige"}, {"black", "navy"},
	{"black", "blue"}, {"black", "red"}, {"black", "pink"}, {"black", "cream"},
	{"black", "khaki"}, {"black", "gold"}, {"black", "silver"},
	{"white", "navy"}, {"white", "blue"}, {"white", "beige"}, {"white", "grey"},
	{"white", "red"}, {"white", "green"}, {"white", "pink"}, {"white", "brown"},
	{"white", "khaki"}, {"white", "olive"},
	{"grey", "navy"}, {"grey", "pink"}, {"grey", "blue"}, {"grey", "burgundy"},
	{"beige", "navy"}, {"beige", "brown"}, {"beige", "olive"}, {"beige", "blue"},
	{"beige", "green"},
	{"navy", "khaki"}, {"navy", "pink"}, {"navy", "red"}, {"navy", "cream"},
	{"blue", "brown"}, {"blue", "khaki"},
	{"brown", "cream"}, {"brown", "green"}, {"brown", "olive"},
	{"cream", "olive"}, {"cream", "burgundy"},
}

// colorAliases fold color spellings onto the table vocabulary
var colorAliases = map[string]string{
	"gray": "grey", "charcoal": "grey", "navy blue": "navy", "dark blue": "navy",
	"light blue": "blue", "denim": "blue", "ivory": "cream", "off-white": "cream",
	"off white": "cream", "tan": "beige", "camel": "beige", "sand": "beige",
	"maroon": "burgundy", "wine": "burgundy",
}

var compatibleColors = buildColorTable(colorPairs)

func buildColorTable(pairs [][2]string) map[string]map[string]bool {
	table := make(map[string]map[string]bool)
	link := func(a, b string) {
		if table[a] == nil {
			table[a] = make(map[string]bool)
		}
		table[a][b] = true
	}
	for _, p := range pairs {
		link(p[0], p[1])
		link(p[1], p[0])
	}
	return table
}

// NormalizeColor lower-cases, trims and folds color aliases
func NormalizeColor(color string) string {
	c := strings.Join(strings.Fields(strings.ToLower(color)), " ")
	if alias, ok := colorAliases[c]; ok {
		return alias
	}
	return c
}

// ColorsCompatible reports whether two colors can be worn together.
// Identical colors match; a color outside the table is treated as compatible.
func ColorsCompatible(a, b string) bool {
	a, b = NormalizeColor(a), NormalizeColor(b)
	if a == "" || b == "" || a == b {
		return true
	}
	pa, knownA := compatibleColors[a]
	_, knownB := compatibleColors[b]
	if !knownA || !knownB {
		return true
	}
	return pa[b]
}

// ComposerConfig holds configuration for the outfit composer
type ComposerConfig struct {
	ImageBaseURL   string
	ProductBaseURL string
}

// OutfitComposer assembles scored products into ranked outfits
type OutfitComposer struct {
	imageBaseURL   string
	productBaseURL string
}

// NewOutfitComposer creates an outfit composer
func NewOutfitComposer(config ComposerConfig) *OutfitComposer {
	return &OutfitComposer{
		imageBaseURL:   config.ImageBaseURL,
		productBaseURL: config.ProductBaseURL,
	}
}

// Compose builds at most limit outfits from records: up to two single-dress
// looks, then compatible top and bottom pairs, then single statement pieces.
// Each record is used once. The result is ordered by best item relevance,
// then by lower total price.
func (c *OutfitComposer) Compose(
	records []domain.CatalogRecord,
	bundle domain.KeywordBundle,
	limit int,
) []domain.OutfitCandidate {
	if limit <= 0 || len(records) == 0 {
		return []domain.OutfitCandidate{}
	}

	ranked := make([]classified, len(records))
	for i, r := range records {
		ranked[i] = classified{record: r, category: ClassifyCategory(r)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].record.RelevanceScore > ranked[j].record.RelevanceScore
	})

	used := make([]bool, len(ranked))
	outfits := make([]domain.OutfitCandidate, 0, limit)
	mood := c.mood(bundle)

	// Dresses as complete looks
	looks := 0
	for i, item := range ranked {
		if len(outfits) >= limit || looks >= maxCompleteLooks {
			break
		}
		if item.category != domain.CategoryDress {
			continue
		}
		used[i] = true
		looks++
		outfits = append(outfits, c.completeLook(item, mood, bundle))
	}

	// Coordinated top and bottom sets
	for i, top := range ranked {
		if len(outfits) >= limit {
			break
		}
		if used[i] || top.category != domain.CategoryTop {
			continue
		}
		for j, bottom := range ranked {
			if used[j] || bottom.category != domain.CategoryBottom {
				continue
			}
			if !ColorsCompatible(top.record.Color, bottom.record.Color) {
				continue
			}
			used[i], used[j] = true, true
			outfits = append(outfits, c.coordinatedSet(top, bottom, mood, bundle))
			break
		}
	}

	// Statement pieces from whatever is left
	for i, item := range ranked {
		if len(outfits) >= limit {
			break
		}
		if used[i] {
			continue
		}
		switch item.category {
		case domain.CategoryTop, domain.CategoryDress, domain.CategoryOuterwear:
			used[i] = true
			outfits = append(outfits, c.statementPiece(item, mood, bundle))
		}
	}

	sort.SliceStable(outfits, func(i, j int) bool {
		ri, rj := outfits[i].MaxRelevance(), outfits[j].MaxRelevance()
		if ri != rj {
			return ri > rj
		}
		return outfits[i].TotalPrice < outfits[j].TotalPrice
	})

	if len(outfits) > limit {
		outfits = outfits[:limit]
	}
	return outfits
}

// classified pairs a record with its corrected category
type classified struct {
	record   domain.CatalogRecord
	category string
}

func (c *OutfitComposer) completeLook(item classified, mood string, bundle domain.KeywordBundle) domain.OutfitCandidate {
	return c.outfit(
		domain.OutfitCompleteLook,
		fmt.Sprintf("%s One-Piece Look", mood),
		withExplanation(fmt.Sprintf("The %s carries the whole look on its own.", item.record.Title), bundle),
		item,
	)
}

func (c *OutfitComposer) coordinatedSet(top, bottom classified, mood string, bundle domain.KeywordBundle) domain.OutfitCandidate {
	return c.outfit(
		domain.OutfitCoordinatedSet,
		fmt.Sprintf("%s Coordinated Set", mood),
		withExplanation(fmt.Sprintf("Pairs the %s with the %s in %s.",
			top.record.Title, bottom.record.Title, colorPhrase(top.record.Color, bottom.record.Color)), bundle),
		top, bottom,
	)
}

func (c *OutfitComposer) statementPiece(item classified, mood string, bundle domain.KeywordBundle) domain.OutfitCandidate {
	return c.outfit(
		domain.OutfitStatementPiece,
		fmt.Sprintf("%s Statement Piece", mood),
		withExplanation(fmt.Sprintf("Build the outfit around the %s.", item.record.Title), bundle),
		item,
	)
}

func (c *OutfitComposer) outfit(kind domain.OutfitType, title, explanation string, items ...classified) domain.OutfitCandidate {
	formatted := make([]domain.FormattedItem, 0, len(items))
	total := 0.0
	for _, it := range items {
		formatted = append(formatted, c.FormatItem(it.record, it.category))
		total += it.record.Price
	}
	return domain.OutfitCandidate{
		Title:            title,
		Items:            formatted,
		TotalPrice:       total,
		StyleExplanation: explanation,
		OutfitType:       kind,
	}
}

// FormatItem builds the caller-facing item. URLs are the configured base URLs
// concatenated with the image key and sku, unchanged.
func (c *OutfitComposer) FormatItem(record domain.CatalogRecord, category string) domain.FormattedItem {
	return domain.FormattedItem{
		SKU:            record.SKU,
		Title:          record.Title,
		Price:          record.Price,
		ImageURL:       c.imageBaseURL + record.ImageKey,
		ProductURL:     c.productBaseURL + record.SKU,
		Color:          record.Color,
		Category:       category,
		RelevanceScore: record.RelevanceScore,
	}
}

func (c *OutfitComposer) mood(bundle domain.KeywordBundle) string {
	mood := strings.TrimSpace(bundle.Mood)
	if mood == "" {
		mood = defaultMood
	}
	// A Caser is stateful, so each call gets its own
	return cases.Title(language.English).String(mood)
}

func withExplanation(sentence string, bundle domain.KeywordBundle) string {
	if bundle.Explanation == "" {
		return sentence
	}
	return sentence + " " + bundle.Explanation
}

func colorPhrase(a, b string) string {
	a, b = NormalizeColor(a), NormalizeColor(b)
	switch {
	case a == "" && b == "":
		return "easy-to-match tones"
	case a == "" || a == b:
		return b + " tones"
	case b == "":
		return a + " tones"
	default:
		return a + " and " + b
	}
}
