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

// Pexels queries the Pexels photo API. Requires an API key passed as a bare
// Authorization header; fails closed when unconfigured.
type Pexels struct {
	key     string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewPexels creates the adapter.
func NewPexels(key string, logger *zap.Logger) *Pexels {
	return &Pexels{
		key:     key,
		baseURL: "https://api.pexels.com",
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

func (p *Pexels) Name() string {
	return string(model.ProviderPexels)
}

type pexelsSrc struct {
	Original string `json:"original"`
	Large2x  string `json:"large2x"`
	Large    string `json:"large"`
	Medium   string `json:"medium"`
	Small    string `json:"small"`
	Tiny     string `json:"tiny"`
}

type pexelsPhoto struct {
	ID           int64     `json:"id"`
	Alt          string    `json:"alt"`
	Photographer string    `json:"photographer"`
	Src          pexelsSrc `json:"src"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
}

type pexelsResponse struct {
	TotalResults int           `json:"total_results"`
	Page         int           `json:"page"`
	PerPage      int           `json:"per_page"`
	Photos       []pexelsPhoto `json:"photos"`
}

func (p *Pexels) Search(ctx context.Context, query string, page, perPage int) (*Page, error) {
	if p.key == "" {
		return nil, ErrMissingCredential
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	headers := map[string]string{"Authorization": p.key}

	var body pexelsResponse
	endpoint := p.baseURL + "/v1/search?" + params.Encode()
	if err := getJSON(ctx, p.client, p.Name(), endpoint, headers, &body); err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(body.Photos))
	for _, photo := range body.Photos {
		results = append(results, model.SearchResult{
			ID:           strconv.FormatInt(photo.ID, 10),
			Label:        firstNonEmpty(photo.Alt, photo.Photographer),
			ThumbnailURL: firstNonEmpty(photo.Src.Tiny, photo.Src.Small),
			MediumURL:    firstNonEmpty(photo.Src.Medium, photo.Src.Large),
			FullURL:      firstNonEmpty(photo.Src.Original, photo.Src.Large2x, photo.Src.Large),
			Width:        photo.Width,
			Height:       photo.Height,
		})
	}

	p.logger.Debug("pexels search",
		zap.String("query", query),
		zap.Int("page", page),
		zap.Int("results", len(results)),
		zap.Int("total", body.TotalResults),
	)

	return &Page{Total: body.TotalResults, Results: results}, nil
}
