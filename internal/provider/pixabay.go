package provider

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rmedina/placepix/internal/model"
)

// Pixabay queries the Pixabay image API. It is the default provider because
// it works with a shared non-secret key; the credential rides in the query
// string rather than a header.
type Pixabay struct {
	key     string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewPixabay creates the adapter. The key may be the baked-in fallback.
func NewPixabay(key string, logger *zap.Logger) *Pixabay {
	return &Pixabay{
		key:     key,
		baseURL: "https://pixabay.com/api/",
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

func (p *Pixabay) Name() string {
	return string(model.ProviderPixabay)
}

// pixabayHit is one entry of the API's hits array. Pixabay serves three
// sizes: previewURL (thumbnail), webformatURL (display), largeImageURL.
type pixabayHit struct {
	ID            int64  `json:"id"`
	Tags          string `json:"tags"`
	PreviewURL    string `json:"previewURL"`
	WebformatURL  string `json:"webformatURL"`
	LargeImageURL string `json:"largeImageURL"`
	ImageWidth    int    `json:"imageWidth"`
	ImageHeight   int    `json:"imageHeight"`
}

type pixabayResponse struct {
	Total     int          `json:"total"`
	TotalHits int          `json:"totalHits"`
	Hits      []pixabayHit `json:"hits"`
}

func (p *Pixabay) Search(ctx context.Context, query string, page, perPage int) (*Page, error) {
	if p.key == "" {
		return nil, ErrMissingCredential
	}

	params := url.Values{}
	params.Set("key", p.key)
	params.Set("q", query)
	params.Set("image_type", "photo")
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	var body pixabayResponse
	if err := getJSON(ctx, p.client, p.Name(), p.baseURL+"?"+params.Encode(), nil, &body); err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(body.Hits))
	for _, hit := range body.Hits {
		results = append(results, model.SearchResult{
			ID:           strconv.FormatInt(hit.ID, 10),
			Label:        hit.Tags,
			ThumbnailURL: firstNonEmpty(hit.PreviewURL, hit.WebformatURL),
			MediumURL:    firstNonEmpty(hit.WebformatURL, hit.LargeImageURL),
			FullURL:      firstNonEmpty(hit.LargeImageURL, hit.WebformatURL),
			Width:        hit.ImageWidth,
			Height:       hit.ImageHeight,
		})
	}

	p.logger.Debug("pixabay search",
		zap.String("query", query),
		zap.Int("page", page),
		zap.Int("results", len(results)),
		zap.Int("total", body.TotalHits),
	)

	// totalHits is the accessible count; total includes results beyond the
	// API's pagination window.
	return &Page{Total: body.TotalHits, Results: results}, nil
}
