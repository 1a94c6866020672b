package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/outfitlens/backend/internal/domain"
)

// --- Mock implementations shared by the usecase tests ---

// mockGenerator is a mock implementation of domain.TextGenerator
type mockGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	delay    time.Duration
	calls    int
	lastReq  domain.GenerationRequest
}

func (m *mockGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	m.mu.Lock()
	m.calls++
	m.lastReq = req
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(m.delay):
		}
	}
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockGenerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockCacheRepository is a mock implementation of domain.CacheRepository
type mockCacheRepository struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMockCacheRepository() *mockCacheRepository {
	return &mockCacheRepository{data: make(map[string][]byte)}
}

func (m *mockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *mockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

// fakeSession is an in-memory domain.CatalogSession that evaluates queries
// over inventory the way the SQL store does
type fakeSession struct {
	mu            sync.Mutex
	inventory     []domain.CatalogRecord
	keywordErr    error
	categoryErr   error
	blockKeyword  bool
	keywordCalls  [][]string
	categoryCalls []domain.CategoryQuery
	closed        int
}

func (s *fakeSession) SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]domain.CatalogRecord, error) {
	s.mu.Lock()
	s.keywordCalls = append(s.keywordCalls, keywords)
	s.mu.Unlock()

	if s.blockKeyword {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.keywordErr != nil {
		return nil, s.keywordErr
	}

	var out []domain.CatalogRecord
	for _, r := range s.inventory {
		fields := strings.ToLower(strings.Join([]string{r.Occasion, r.Color, r.Style, r.Material, r.Title}, "|"))
		count := 0
		for _, kw := range keywords {
			if strings.Contains(fields, strings.ToLower(kw)) {
				count++
			}
		}
		if count > 0 {
			r.MatchCount = count
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MatchCount != out[j].MatchCount {
			return out[i].MatchCount > out[j].MatchCount
		}
		return out[i].Price < out[j].Price
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeSession) FindByCategory(ctx context.Context, q domain.CategoryQuery) ([]domain.CatalogRecord, error) {
	s.mu.Lock()
	s.categoryCalls = append(s.categoryCalls, q)
	s.mu.Unlock()

	if s.categoryErr != nil {
		return nil, s.categoryErr
	}

	var out []domain.CatalogRecord
	for _, r := range s.inventory {
		if !containsFold(q.Categories, r.Category) {
			continue
		}
		if len(q.Colors) > 0 && !containsFold(q.Colors, r.Color) {
			continue
		}
		if q.Style != "" && !strings.Contains(strings.ToLower(r.Style), strings.ToLower(q.Style)) {
			continue
		}
		r.MatchCount = 0
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

// fakeStore hands out the same fakeSession on every Acquire
type fakeStore struct {
	session  *fakeSession
	err      error
	acquired int
}

func (s *fakeStore) Acquire(ctx context.Context) (domain.CatalogSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.acquired++
	return s.session, nil
}

// record builds a catalog record for tests
func record(sku, title, category, color string, price float64) domain.CatalogRecord {
	return domain.CatalogRecord{
		SKU:      sku,
		Title:    title,
		Category: category,
		Color:    color,
		Price:    price,
		ImageKey: sku + ".jpg",
	}
}

// testInventory is a small catalog covering every category
func testInventory() []domain.CatalogRecord {
	withAttrs := func(r domain.CatalogRecord, occasion, style, material string) domain.CatalogRecord {
		r.Occasion, r.Style, r.Material = occasion, style, material
		return r
	}
	return []domain.CatalogRecord{
		withAttrs(record("D1", "Black Sequin Party Dress", "dress", "black", 89), "party", "glamorous", "sequin"),
		withAttrs(record("D2", "Red Satin Gown", "dress", "red", 149), "evening party", "elegant", "satin"),
		withAttrs(record("T1", "White Linen Shirt", "tops", "white", 39), "travel", "relaxed", "linen"),
		withAttrs(record("T2", "Navy Cotton Tee", "top", "navy", 19), "casual", "casual", "cotton"),
		withAttrs(record("T3", "Black Silk Blouse", "top", "black", 59), "work", "formal", "silk"),
		withAttrs(record("B1", "Beige Chino Pants", "bottom", "beige", 49), "travel", "casual", "cotton"),
		withAttrs(record("B2", "Blue Denim Jeans", "jeans", "blue", 59), "casual", "casual", "denim"),
		withAttrs(record("B3", "Black Tailored Trousers", "bottom", "black", 79), "work", "formal", "wool"),
		withAttrs(record("O1", "Camel Wool Coat", "outerwear", "camel", 199), "work", "classic", "wool"),
	}
}
