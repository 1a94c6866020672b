package domain

// Outfit categories used for balancing and composition
const (
	CategoryTop       = "top"
	CategoryBottom    = "bottom"
	CategoryDress     = "dress"
	CategoryOuterwear = "outerwear"
	CategoryOther     = "other"
)

// CatalogRecord is one product row joined with its vision-derived attributes
type CatalogRecord struct {
	SKU            string  `json:"sku"`
	Title          string  `json:"title"`
	Price          float64 `json:"price"`
	ImageKey       string  `json:"image_key"`
	Color          string  `json:"color"`
	Category       string  `json:"category"`
	Occasion       string  `json:"occasion"`
	Style          string  `json:"style"`
	Material       string  `json:"material"`
	Description    string  `json:"description"`
	MatchCount     int     `json:"match_count"`
	RelevanceScore float64 `json:"relevance_score"` // computed, 0-100
}

// CategoryQuery narrows a category lookup. A record matches when its category
// equals any of Categories. Empty Colors and Style mean no constraint.
type CategoryQuery struct {
	Categories []string
	Colors     []string
	Style      string
	Limit      int
}
