package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/rmedina/placepix/internal/config"
)

func TestPixabay_MapsResponse(t *testing.T) {
	var gotQuery, gotKey, gotPage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("key")
		gotPage = r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"total": 500, "totalHits": 120,
			"hits": [
				{"id": 123, "tags": "paris, tower", "previewURL": "p.jpg", "webformatURL": "w.jpg", "largeImageURL": "l.jpg", "imageWidth": 1920, "imageHeight": 1080},
				{"id": 456, "tags": "seine", "previewURL": "p2.jpg", "webformatURL": "w2.jpg", "largeImageURL": "", "imageWidth": 800, "imageHeight": 600}
			]
		}`))
	}))
	defer server.Close()

	p := NewPixabay("test-key", zap.NewNop())
	p.baseURL = server.URL

	page, err := p.Search(context.Background(), "paris france", 2, 18)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if gotQuery != "paris france" || gotKey != "test-key" || gotPage != "2" {
		t.Errorf("unexpected request params: q=%q key=%q page=%q", gotQuery, gotKey, gotPage)
	}
	if page.Total != 120 {
		t.Errorf("expected totalHits 120, got %d", page.Total)
	}
	if len(page.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(page.Results))
	}

	first := page.Results[0]
	if first.ID != "123" || first.Label != "paris, tower" {
		t.Errorf("unexpected first result: %+v", first)
	}
	if first.ThumbnailURL != "p.jpg" || first.MediumURL != "w.jpg" || first.FullURL != "l.jpg" {
		t.Errorf("unexpected urls: %+v", first)
	}
	if first.Width != 1920 || first.Height != 1080 {
		t.Errorf("unexpected dimensions: %+v", first)
	}

	// Missing large image falls back to the web-format url.
	if page.Results[1].FullURL != "w2.jpg" {
		t.Errorf("expected webformat fallback, got %q", page.Results[1].FullURL)
	}
}

func TestUnsplash_MapsResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Client-ID unsplash-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"total": 42, "total_pages": 3,
			"results": [
				{"id": "abc", "description": null, "alt_description": "eiffel tower", "width": 4000, "height": 3000,
				 "urls": {"raw": "r.jpg", "full": "f.jpg", "regular": "reg.jpg", "small": "s.jpg", "thumb": "t.jpg"}}
			]
		}`))
	}))
	defer server.Close()

	u := NewUnsplash("unsplash-key", zap.NewNop())
	u.baseURL = server.URL

	page, err := u.Search(context.Background(), "paris", 1, 18)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 42 {
		t.Errorf("expected total 42, got %d", page.Total)
	}

	r := page.Results[0]
	if r.ID != "abc" {
		t.Errorf("unexpected id: %q", r.ID)
	}
	// Null description falls back to alt_description.
	if r.Label != "eiffel tower" {
		t.Errorf("unexpected label: %q", r.Label)
	}
	if r.ThumbnailURL != "t.jpg" || r.MediumURL != "s.jpg" || r.FullURL != "reg.jpg" {
		t.Errorf("unexpected urls: %+v", r)
	}
}

func TestPexels_MapsResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "pexels-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"total_results": 7, "page": 1, "per_page": 18,
			"photos": [
				{"id": 99, "alt": "", "photographer": "Jane Doe", "width": 3500, "height": 2000,
				 "src": {"original": "o.jpg", "large2x": "l2.jpg", "large": "l.jpg", "medium": "m.jpg", "small": "s.jpg", "tiny": "t.jpg"}}
			]
		}`))
	}))
	defer server.Close()

	p := NewPexels("pexels-key", zap.NewNop())
	p.baseURL = server.URL

	page, err := p.Search(context.Background(), "paris", 1, 18)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 7 {
		t.Errorf("expected total 7, got %d", page.Total)
	}

	r := page.Results[0]
	if r.ID != "99" {
		t.Errorf("unexpected id: %q", r.ID)
	}
	// Empty alt falls back to the photographer credit.
	if r.Label != "Jane Doe" {
		t.Errorf("unexpected label: %q", r.Label)
	}
	if r.ThumbnailURL != "t.jpg" || r.MediumURL != "m.jpg" || r.FullURL != "o.jpg" {
		t.Errorf("unexpected urls: %+v", r)
	}
}

func TestSearch_MissingCredential(t *testing.T) {
	for _, p := range []Provider{
		NewPixabay("", zap.NewNop()),
		NewUnsplash("", zap.NewNop()),
		NewPexels("", zap.NewNop()),
	} {
		_, err := p.Search(context.Background(), "paris", 1, 18)
		if !errors.Is(err, ErrMissingCredential) {
			t.Errorf("%s: expected ErrMissingCredential, got %v", p.Name(), err)
		}
	}
}

func TestSearch_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewPixabay("key", zap.NewNop())
	p.baseURL = server.URL

	_, err := p.Search(context.Background(), "paris", 1, 18)
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", upstream.Status)
	}
	if upstream.Provider != "pixabay" {
		t.Errorf("expected provider pixabay, got %s", upstream.Provider)
	}
}

func TestSearch_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total": 0, "totalHits": 0, "hits": []}`))
	}))
	defer server.Close()

	p := NewPixabay("key", zap.NewNop())
	p.baseURL = server.URL

	page, err := p.Search(context.Background(), "zzzzz", 1, 18)
	if err != nil {
		t.Fatalf("zero results must not be an error: %v", err)
	}
	if len(page.Results) != 0 || page.Total != 0 {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestRegistry_ClosedSet(t *testing.T) {
	registry := NewRegistry(config.ProvidersConfig{PixabayKey: "k"}, zap.NewNop())

	for _, name := range []string{"pixabay", "unsplash", "pexels"} {
		p, err := registry.ForName(name)
		if err != nil {
			t.Errorf("expected provider %s: %v", name, err)
		}
		if p.Name() != name {
			t.Errorf("expected name %s, got %s", name, p.Name())
		}
	}

	if _, err := registry.ForName("flickr"); err == nil {
		t.Error("expected error for unknown provider")
	}

	if registry.Default().Name() != "pixabay" {
		t.Errorf("expected pixabay default, got %s", registry.Default().Name())
	}
}
