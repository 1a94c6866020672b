package domain

// OutfitType describes how an outfit was assembled
type OutfitType string

const (
	OutfitCompleteLook   OutfitType = "complete_look"
	OutfitCoordinatedSet OutfitType = "coordinated_set"
	OutfitStatementPiece OutfitType = "statement_piece"
)

// FormattedItem is the caller-facing view of a CatalogRecord
type FormattedItem struct {
	SKU            string  `json:"sku"`
	Title          string  `json:"title"`
	Price          float64 `json:"price"`
	ImageURL       string  `json:"image_url"`
	ProductURL     string  `json:"product_url"`
	Color          string  `json:"color"`
	Category       string  `json:"category"`
	RelevanceScore float64 `json:"relevance_score"`
}

// OutfitCandidate is a complete outfit returned to the caller
type OutfitCandidate struct {
	Title            string          `json:"title"`
	Items            []FormattedItem `json:"items"`
	TotalPrice       float64         `json:"total_price"`
	StyleExplanation string          `json:"style_explanation"`
	OutfitType       OutfitType      `json:"outfit_type"`
}

// MaxRelevance returns the highest item relevance score in the outfit
func (o OutfitCandidate) MaxRelevance() float64 {
	best := 0.0
	for _, item := range o.Items {
		if item.RelevanceScore > best {
			best = item.RelevanceScore
		}
	}
	return best
}
