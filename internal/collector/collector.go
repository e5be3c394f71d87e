// Package collector gathers novel search results across provider pages.
// It owns the de-duplication logic: given a set of already-seen result ids,
// it keeps fetching pages until enough unseen results are collected, the
// upstream runs dry, or the attempt budget is spent.
package collector

import (
	"context"

	"go.uber.org/zap"

	"github.com/rmedina/placepix/internal/model"
	"github.com/rmedina/placepix/internal/provider"
)

const (
	// TargetCount is how many novel results one gather aims to produce.
	TargetCount = 6
	// PageSize is the fixed per-page fetch size.
	PageSize = 18
	// MaxPageFetches bounds the pages fetched per gather, guaranteeing
	// termination even when the upstream keeps serving only-seen results.
	MaxPageFetches = 5
)

// Batch is the outcome of one gather: up to TargetCount novel results, the
// page to resume from on "show more", and the grown seen set. Seen is a new
// set; the input set passed to Gather is never mutated.
type Batch struct {
	Results  []model.SearchResult
	NextPage int
	Seen     map[string]struct{}
	Total    int
}

// Collector drives repeated provider searches for one record's query.
type Collector struct {
	logger *zap.Logger
}

// New creates a Collector.
func New(logger *zap.Logger) *Collector {
	return &Collector{logger: logger}
}

// Gather collects up to TargetCount results whose ids are not in seen,
// starting at startPage. Stops early when the target is reached or a page
// comes back empty (upstream exhausted), and unconditionally after
// MaxPageFetches pages. Any fetch error aborts the whole attempt: the
// partial batch is discarded and the error returned; callers treat that as
// "no images available now", not a fatal condition.
func (c *Collector) Gather(ctx context.Context, p provider.Provider, query string, startPage int, seen map[string]struct{}) (*Batch, error) {
	if startPage < 1 {
		startPage = 1
	}

	batch := &Batch{
		Seen: make(map[string]struct{}, len(seen)+TargetCount),
	}
	for id := range seen {
		batch.Seen[id] = struct{}{}
	}

	page := startPage
	for fetches := 0; fetches < MaxPageFetches; fetches++ {
		pg, err := p.Search(ctx, query, page, PageSize)
		if err != nil {
			c.logger.Warn("gather aborted",
				zap.String("provider", p.Name()),
				zap.String("query", query),
				zap.Int("page", page),
				zap.Error(err),
			)
			return nil, err
		}
		batch.Total = pg.Total
		page++

		if len(pg.Results) == 0 {
			break
		}

		for _, r := range pg.Results {
			if _, dup := batch.Seen[r.ID]; dup {
				continue
			}
			batch.Seen[r.ID] = struct{}{}
			batch.Results = append(batch.Results, r)
			if len(batch.Results) == TargetCount {
				break
			}
		}
		if len(batch.Results) == TargetCount {
			break
		}
	}

	batch.NextPage = page
	c.logger.Debug("gather complete",
		zap.String("provider", p.Name()),
		zap.String("query", query),
		zap.Int("collected", len(batch.Results)),
		zap.Int("next_page", batch.NextPage),
	)
	return batch, nil
}
