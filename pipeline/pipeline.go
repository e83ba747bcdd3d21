package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"recommend-service/cache"
	"recommend-service/metrics"
	"recommend-service/model"
	"recommend-service/source"
)

// ErrAllSourcesFailed is the only pipeline error callers ever see: every
// source failed and no usable cache entry remained.
var ErrAllSourcesFailed = errors.New("all product sources failed")

const topN = 3

// Recommendation is the pipeline's terminal output: the winning source
// result, the ranked product cut, and an optional explanation.
type Recommendation struct {
	Result      *model.SourceResult
	Products    []model.ProductRecord
	Explanation string
}

// Engine runs the fallback chain: API source, then scrape source, then the
// freshest surviving cache entry. Per-source failures drive the transitions
// and are never surfaced individually.
type Engine struct {
	cache     *cache.Manager
	sources   []source.ProductSource
	explainer Explainer
}

// NewEngine wires the fallback chain in source order. A nil explainer
// degrades to no explanations.
func NewEngine(c *cache.Manager, explainer Explainer, sources ...source.ProductSource) *Engine {
	if explainer == nil {
		explainer = NoopExplainer{}
	}
	return &Engine{cache: c, sources: sources, explainer: explainer}
}

func (e *Engine) Recommend(ctx context.Context, userID string) (*Recommendation, error) {
	var lastErr error

	for _, src := range e.sources {
		res, err := e.cache.GetOrFetch(ctx, src.Name(), src.FetchProducts)
		if err != nil {
			metrics.SourceFetchesTotal.WithLabelValues(src.Name(), "error").Inc()
			log.Printf("Source %s failed for user=%s: %v", src.Name(), userID, err)
			lastErr = err
			continue
		}
		metrics.SourceFetchesTotal.WithLabelValues(src.Name(), "ok").Inc()
		return e.finalize(ctx, userID, res), nil
	}

	// Terminal fallback: freshest last-known-good entry from any source key,
	// TTL ignored (the hard ceiling still applies inside Peek).
	if res := e.freshestCached(); res != nil {
		log.Printf("Serving last-known-good cache for user=%s (stale=%v)", userID, res.Stale)
		return e.finalize(ctx, userID, res), nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrAllSourcesFailed, lastErr)
	}
	return nil, ErrAllSourcesFailed
}

func (e *Engine) freshestCached() *model.SourceResult {
	var best *model.SourceResult
	for _, src := range e.sources {
		if res, ok := e.cache.Peek(src.Name()); ok {
			if best == nil || res.FetchedAt.After(best.FetchedAt) {
				best = res
			}
		}
	}
	return best
}

func (e *Engine) finalize(ctx context.Context, userID string, res *model.SourceResult) *Recommendation {
	rec := &Recommendation{
		Result:   res,
		Products: Rank(res.Products, topN),
	}

	explanation, err := e.explainer.Explain(ctx, userID, rec.Products)
	if err != nil {
		// The explainer is best-effort; a failure never fails the request.
		log.Printf("Explainer failed for user=%s: %v", userID, err)
		return rec
	}
	rec.Explanation = explanation
	return rec
}

// Rank returns the top n products by price descending, id ascending on
// ties. The input is never mutated and short inputs are returned whole,
// never padded.
func Rank(products []model.ProductRecord, n int) []model.ProductRecord {
	ranked := make([]model.ProductRecord, len(products))
	copy(ranked, products)

	sort.Slice(ranked, func(i, j int) bool {
		si, sj := ranked[i].Price.Score(), ranked[j].Price.Score()
		if si != sj {
			return si > sj
		}
		return ranked[i].ID < ranked[j].ID
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
