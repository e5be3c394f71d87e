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

// Unsplash queries the Unsplash search API. Requires an access key passed as
// `Authorization: Client-ID <key>`; fails closed when unconfigured.
type Unsplash struct {
	key     string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewUnsplash creates the adapter.
func NewUnsplash(key string, logger *zap.Logger) *Unsplash {
	return &Unsplash{
		key:     key,
		baseURL: "https://api.unsplash.com",
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

func (u *Unsplash) Name() string {
	return string(model.ProviderUnsplash)
}

type unsplashURLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

type unsplashPhoto struct {
	ID             string       `json:"id"`
	Description    string       `json:"description"`
	AltDescription string       `json:"alt_description"`
	URLs           unsplashURLs `json:"urls"`
	Width          int          `json:"width"`
	Height         int          `json:"height"`
}

type unsplashResponse struct {
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
	Results    []unsplashPhoto `json:"results"`
}

func (u *Unsplash) Search(ctx context.Context, query string, page, perPage int) (*Page, error) {
	if u.key == "" {
		return nil, ErrMissingCredential
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	headers := map[string]string{
		"Authorization":  "Client-ID " + u.key,
		"Accept-Version": "v1",
	}

	var body unsplashResponse
	endpoint := u.baseURL + "/search/photos?" + params.Encode()
	if err := getJSON(ctx, u.client, u.Name(), endpoint, headers, &body); err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(body.Results))
	for _, photo := range body.Results {
		results = append(results, model.SearchResult{
			ID:           photo.ID,
			Label:        firstNonEmpty(photo.Description, photo.AltDescription),
			ThumbnailURL: firstNonEmpty(photo.URLs.Thumb, photo.URLs.Small),
			MediumURL:    firstNonEmpty(photo.URLs.Small, photo.URLs.Regular),
			FullURL:      firstNonEmpty(photo.URLs.Regular, photo.URLs.Full, photo.URLs.Small),
			Width:        photo.Width,
			Height:       photo.Height,
		})
	}

	u.logger.Debug("unsplash search",
		zap.String("query", query),
		zap.Int("page", page),
		zap.Int("results", len(results)),
		zap.Int("total", body.Total),
	)

	return &Page{Total: body.Total, Results: results}, nil
}
