package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/outfitlens/backend/internal/domain"
)

// Search stages, in execution order
const (
	StageKeyword          = "keyword"
	StageCategoryFallback = "category_fallback"
	StageBalance          = "category_balance"
)

const (
	defaultQueryTimeout = 3 * time.Second
	balanceTopUpLimit   = 3
	balanceStyleFilter  = "casual"
)

// defaultFallbackCategories are used when the bundle names no categories
var defaultFallbackCategories = []string{domain.CategoryTop, domain.CategoryBottom, domain.CategoryDress}

// OutcomeKind classifies how a search stage ended
type OutcomeKind string

const (
	OutcomeOK       OutcomeKind = "ok"
	OutcomeEmpty    OutcomeKind = "empty"
	OutcomeFailed   OutcomeKind = "failed"
	OutcomeTimedOut OutcomeKind = "timed_out"
	OutcomeSkipped  OutcomeKind = "skipped"
)

// StageOutcome reports what one search stage contributed
type StageOutcome struct {
	Stage   string      `json:"stage"`
	Kind    OutcomeKind `json:"kind"`
	Added   int         `json:"added"`
	Queries int         `json:"queries"`
	Err     error       `json:"-"`
}

// SearchResult is the merged, scored candidate list with per-stage outcomes
type SearchResult struct {
	Records []domain.CatalogRecord
	Stages  []StageOutcome
}

// SearchConfig holds configuration for the search coordinator
type SearchConfig struct {
	QueryTimeout       time.Duration
	EnableDebugLogging bool
}

// SearchCoordinator runs the keyword, category-fallback and category-balance
// strategies against a catalog session and merges their results
type SearchCoordinator struct {
	preprocessor       *QueryPreprocessor
	queryTimeout       time.Duration
	enableDebugLogging bool
}

// NewSearchCoordinator creates a search coordinator
func NewSearchCoordinator(config SearchConfig) *SearchCoordinator {
	timeout := config.QueryTimeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &SearchCoordinator{
		preprocessor:       NewQueryPreprocessor(config.EnableDebugLogging),
		queryTimeout:       timeout,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// mergeSet accumulates records unique by sku, first stage wins
type mergeSet struct {
	records []domain.CatalogRecord
	skus    map[string]bool
}

func newMergeSet() *mergeSet {
	return &mergeSet{skus: make(map[string]bool)}
}

// add appends records whose sku is new and returns how many were added
func (m *mergeSet) add(records []domain.CatalogRecord) int {
	added := 0
	for _, r := range records {
		if m.skus[r.SKU] {
			continue
		}
		m.skus[r.SKU] = true
		m.records = append(m.records, r)
		added++
	}
	return added
}

func (m *mergeSet) len() int { return len(m.records) }

// Search runs the strategies in order until size unique records are collected.
// The balance stage always inspects the merged set. Query failures are logged
// and counted as empty; Search itself never fails.
func (c *SearchCoordinator) Search(
	ctx context.Context,
	session domain.CatalogSession,
	bundle domain.KeywordBundle,
	size int,
) SearchResult {
	logger := log.Ctx(ctx).With().Str("component", "search").Logger()
	merged := newMergeSet()
	var stages []StageOutcome

	keyword := c.keywordStage(ctx, session, bundle, size)
	keyword.Added = merged.add(keyword.records)
	stages = append(stages, keyword.StageOutcome)

	var fallback stageRun
	if merged.len() < size {
		fallback = c.categoryFallbackStage(ctx, session, bundle, size-merged.len())
		fallback.Added = merged.add(fallback.records)
	} else {
		fallback = skipped(StageCategoryFallback)
	}
	stages = append(stages, fallback.StageOutcome)

	balance := c.balanceStage(ctx, session, bundle, merged.records)
	balance.Added = merged.add(balance.records)
	stages = append(stages, balance.StageOutcome)

	ScoreAll(merged.records, bundle)

	for _, s := range stages {
		c.logOutcome(logger, s)
	}

	return SearchResult{Records: merged.records, Stages: stages}
}

// stageRun carries a stage outcome plus its rows before merging
type stageRun struct {
	StageOutcome
	records []domain.CatalogRecord
}

func skipped(stage string) stageRun {
	return stageRun{StageOutcome: StageOutcome{Stage: stage, Kind: OutcomeSkipped}}
}

// keywordStage matches sanitized keywords, colors, occasions, styles and
// materials against the catalog
func (c *SearchCoordinator) keywordStage(
	ctx context.Context,
	session domain.CatalogSession,
	bundle domain.KeywordBundle,
	size int,
) stageRun {
	terms := make([]string, 0, len(bundle.Keywords)+len(bundle.Colors)+len(bundle.Occasions)+len(bundle.Styles)+len(bundle.Materials))
	terms = append(terms, bundle.Keywords...)
	terms = append(terms, bundle.Colors...)
	terms = append(terms, bundle.Occasions...)
	terms = append(terms, bundle.Styles...)
	terms = append(terms, bundle.Materials...)

	keywords := c.preprocessor.SanitizeKeywords(terms)
	if len(keywords) == 0 || size <= 0 {
		return skipped(StageKeyword)
	}

	run := stageRun{StageOutcome: StageOutcome{Stage: StageKeyword, Queries: 1}}
	records, err := c.query(ctx, func(qctx context.Context) ([]domain.CatalogRecord, error) {
		return session.SearchByKeywords(qctx, keywords, size)
	})
	run.records = uniqueBySKU(records)
	run.finish(err)
	return run
}

// categoryFallbackStage fetches the cheapest items of each bundle category in
// the bundle colors, splitting remaining evenly across categories
func (c *SearchCoordinator) categoryFallbackStage(
	ctx context.Context,
	session domain.CatalogSession,
	bundle domain.KeywordBundle,
	remaining int,
) stageRun {
	categories := bundle.Categories
	if len(categories) == 0 {
		categories = defaultFallbackCategories
	}
	perCategory := (remaining + len(categories) - 1) / len(categories)

	run := stageRun{StageOutcome: StageOutcome{Stage: StageCategoryFallback}}
	var lastErr error
	for _, category := range categories {
		run.Queries++
		records, err := c.query(ctx, func(qctx context.Context) ([]domain.CatalogRecord, error) {
			return session.FindByCategory(qctx, domain.CategoryQuery{
				Categories: CategoryAliases(category),
				Colors:     bundle.Colors,
				Limit:      perCategory,
			})
		})
		if err != nil {
			lastErr = err
			continue
		}
		run.records = append(run.records, records...)
	}
	run.records = uniqueBySKU(run.records)
	run.finish(lastErr)
	return run
}

// balanceStage tops up a missing top or bottom when no dress is present.
// Each top-up tries the bundle colors, then a casual style, then the bare
// category, and keeps the first non-empty answer.
func (c *SearchCoordinator) balanceStage(
	ctx context.Context,
	session domain.CatalogSession,
	bundle domain.KeywordBundle,
	current []domain.CatalogRecord,
) stageRun {
	missing := Balance(current).Missing()
	if len(missing) == 0 {
		return skipped(StageBalance)
	}

	run := stageRun{StageOutcome: StageOutcome{Stage: StageBalance}}
	var lastErr error
	for _, category := range missing {
		aliases := CategoryAliases(category)
		var attempts []domain.CategoryQuery
		if len(bundle.Colors) > 0 {
			attempts = append(attempts, domain.CategoryQuery{Categories: aliases, Colors: bundle.Colors, Limit: balanceTopUpLimit})
		}
		attempts = append(attempts,
			domain.CategoryQuery{Categories: aliases, Style: balanceStyleFilter, Limit: balanceTopUpLimit},
			domain.CategoryQuery{Categories: aliases, Limit: balanceTopUpLimit},
		)

		for _, q := range attempts {
			run.Queries++
			records, err := c.query(ctx, func(qctx context.Context) ([]domain.CatalogRecord, error) {
				return session.FindByCategory(qctx, q)
			})
			if err != nil {
				lastErr = err
				if ctx.Err() != nil {
					break
				}
				continue
			}
			if len(records) > 0 {
				if len(records) > balanceTopUpLimit {
					records = records[:balanceTopUpLimit]
				}
				run.records = append(run.records, records...)
				break
			}
		}
	}
	run.records = uniqueBySKU(run.records)
	run.finish(lastErr)
	return run
}

// query runs one store call under the per-query timeout
func (c *SearchCoordinator) query(
	ctx context.Context,
	fn func(ctx context.Context) ([]domain.CatalogRecord, error),
) ([]domain.CatalogRecord, error) {
	qctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()
	return fn(qctx)
}

// finish sets the outcome kind. Rows collected before an error are kept.
func (r *stageRun) finish(err error) {
	r.Err = err
	switch {
	case len(r.records) > 0:
		r.Kind = OutcomeOK
	case err == nil:
		r.Kind = OutcomeEmpty
	case errors.Is(err, context.DeadlineExceeded):
		r.Kind = OutcomeTimedOut
	default:
		r.Kind = OutcomeFailed
	}
}

func (c *SearchCoordinator) logOutcome(logger zerolog.Logger, s StageOutcome) {
	switch {
	case s.Err != nil:
		logger.Warn().Err(s.Err).Str("stage", s.Stage).Str("kind", string(s.Kind)).
			Int("added", s.Added).Msg("search stage degraded")
	case c.enableDebugLogging:
		logger.Debug().Str("stage", s.Stage).Str("kind", string(s.Kind)).
			Int("added", s.Added).Int("queries", s.Queries).Msg("search stage finished")
	}
}

func uniqueBySKU(records []domain.CatalogRecord) []domain.CatalogRecord {
	if len(records) == 0 {
		return records
	}
	seen := make(map[string]bool, len(records))
	out := records[:0:0]
	for _, r := range records {
		if seen[r.SKU] {
			continue
		}
		seen[r.SKU] = true
		out = append(out, r)
	}
	return out
}
