package source

import (
	"context"
	"errors"

	"recommend-service/model"
)

// Error taxonomy for product sources. The pipeline matches on these with
// errors.Is to drive its fallback transitions.
var (
	// ErrUpstreamUnavailable covers refused connections, timeouts and
	// non-2xx responses.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMalformedResponse means transport succeeded but the payload failed
	// schema validation after best-effort coercion. Kept separate from
	// ErrUpstreamUnavailable because it signals a contract break, not an
	// outage.
	ErrMalformedResponse = errors.New("malformed upstream response")

	// ErrScrapeParse means the page was reachable but yielded zero
	// extractable product entries, i.e. the markup drifted.
	ErrScrapeParse = errors.New("no products extracted from page")
)

// ProductSource is one fetching strategy for product data. Variants are
// selected by the pipeline's fallback order, so adding a source type never
// touches pipeline logic.
type ProductSource interface {
	FetchProducts(ctx context.Context) (*model.SourceResult, error)
	Name() string
}
