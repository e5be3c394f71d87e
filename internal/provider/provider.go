// Package provider contains one search adapter per photo service.
// Each adapter issues a single HTTP query per call and maps the provider's
// response shape into the uniform model.SearchResult. Retry policy lives
// with the caller; an adapter makes exactly one attempt per page.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/rmedina/placepix/internal/model"
)

// Page is one page of normalized search results plus the provider's declared
// total-count hint. Zero results for a valid query is not an error.
type Page struct {
	Total   int
	Results []model.SearchResult
}

// ErrMissingCredential marks a configuration problem: the provider requires
// an API key that isn't set. Distinct from search failures: callers surface
// it verbatim instead of treating it as "no results".
var ErrMissingCredential = errors.New("provider credential not configured")

// ErrUnknownProvider marks a provider name outside the supported set.
var ErrUnknownProvider = errors.New("unknown provider")

// UpstreamError reports a non-success HTTP status from a provider API.
type UpstreamError struct {
	Provider string
	Status   int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.Provider, e.Status)
}

// Provider is the interface every photo-search adapter implements.
type Provider interface {
	// Name returns the provider identifier, e.g. "pixabay".
	Name() string

	// Search fetches one page of results for a free-text query.
	Search(ctx context.Context, query string, page, perPage int) (*Page, error)
}
