package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/outfitlens/backend/internal/domain"
)

// selectColumns are the identity columns shared by every catalog query
const selectColumns = `
	p.sku, p.title, p.price, COALESCE(p.image_key, ''),
	COALESCE(v.color, ''), COALESCE(v.category, ''), COALESCE(v.occasion, ''),
	COALESCE(v.style, ''), COALESCE(v.material, ''), COALESCE(p.description, '')`

const fromClause = `
	FROM products p
	JOIN vision_attributes v ON v.sku = p.sku`

const groupByClause = `
	GROUP BY p.sku, p.title, p.price, p.image_key, v.color, v.category,
		v.occasion, v.style, v.material, p.description`

// keywordFields are matched by the keyword strategy
var keywordFields = []string{"v.occasion", "v.color", "v.style", "v.material", "p.title"}

// Session runs read-only queries on one reserved connection
type Session struct {
	conn    *sql.Conn
	dialect dialect
}

// Close returns the connection to the pool
func (s *Session) Close() error {
	return s.conn.Close()
}

// SearchByKeywords returns products where any keyword appears in the occasion,
// color, style, material or title. match_count is the number of keywords that
// matched. Rows are ordered by match_count descending, then price ascending.
func (s *Session) SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]domain.CatalogRecord, error) {
	if len(keywords) == 0 || limit <= 0 {
		return nil, nil
	}

	a := &args{dialect: s.dialect}
	matchClause := func(kw string) string {
		pattern := "%" + strings.ToLower(kw) + "%"
		ors := make([]string, len(keywordFields))
		for i, field := range keywordFields {
			ors[i] = fmt.Sprintf("LOWER(COALESCE(%s, '')) LIKE %s", field, a.add(pattern))
		}
		return "(" + strings.Join(ors, " OR ") + ")"
	}

	// Placeholders are handed out in textual order: SELECT, WHERE, LIMIT
	cases := make([]string, len(keywords))
	for i, kw := range keywords {
		cases[i] = "CASE WHEN " + matchClause(kw) + " THEN 1 ELSE 0 END"
	}
	predicates := make([]string, len(keywords))
	for i, kw := range keywords {
		predicates[i] = matchClause(kw)
	}

	query := `SELECT` + selectColumns + `,
	SUM(` + strings.Join(cases, " + ") + `) AS match_count` + fromClause + `
	WHERE ` + strings.Join(predicates, " OR ") + groupByClause + `
	ORDER BY match_count DESC, p.price ASC
	LIMIT ` + a.add(limit)

	return s.queryRecords(ctx, query, a.values...)
}

// FindByCategory returns the cheapest products in any of q.Categories,
// optionally constrained to q.Colors and a q.Style substring
func (s *Session) FindByCategory(ctx context.Context, q domain.CategoryQuery) ([]domain.CatalogRecord, error) {
	if len(q.Categories) == 0 || q.Limit <= 0 {
		return nil, nil
	}

	a := &args{dialect: s.dialect}
	where := []string{"LOWER(v.category) IN (" + a.list(lowerAll(q.Categories)) + ")"}
	if len(q.Colors) > 0 {
		where = append(where, "LOWER(v.color) IN ("+a.list(lowerAll(q.Colors))+")")
	}
	if style := strings.TrimSpace(q.Style); style != "" {
		where = append(where, "LOWER(COALESCE(v.style, '')) LIKE "+a.add("%"+strings.ToLower(style)+"%"))
	}

	query := `SELECT` + selectColumns + `,
	0 AS match_count` + fromClause + `
	WHERE ` + strings.Join(where, " AND ") + groupByClause + `
	ORDER BY p.price ASC
	LIMIT ` + a.add(q.Limit)

	return s.queryRecords(ctx, query, a.values...)
}

func (s *Session) queryRecords(ctx context.Context, query string, values ...interface{}) ([]domain.CatalogRecord, error) {
	rows, err := s.conn.QueryContext(ctx, query, values...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogQuery, err)
	}
	defer rows.Close()

	var records []domain.CatalogRecord
	for rows.Next() {
		var r domain.CatalogRecord
		if err := rows.Scan(
			&r.SKU, &r.Title, &r.Price, &r.ImageKey,
			&r.Color, &r.Category, &r.Occasion,
			&r.Style, &r.Material, &r.Description,
			&r.MatchCount,
		); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", domain.ErrCatalogQuery, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogQuery, err)
	}
	return records, nil
}

func lowerAll(vs []string) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}
