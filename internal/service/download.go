// Package service contains the business logic: downloading picked images,
// persisting assignments, and the per-operator session workflow.
package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DownloadError reports a non-success HTTP status while fetching a chosen
// image. The record stays unfinished; the operator can retry the same or a
// different candidate.
type DownloadError struct {
	URL    string
	Status int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("downloading %s: HTTP %d", e.URL, e.Status)
}

// Downloader fetches image binaries from provider CDNs.
type Downloader struct {
	client *http.Client
	logger *zap.Logger
}

// NewDownloader creates a Downloader with a generous timeout; full-size
// photos can be tens of megabytes.
func NewDownloader(logger *zap.Logger) *Downloader {
	return &Downloader{
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}
}

// Fetch downloads the binary at url. Reads are capped at 50MB.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "placepix/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &DownloadError{URL: url, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 50<<20))
	if err != nil {
		return nil, fmt.Errorf("reading image body: %w", err)
	}

	d.logger.Debug("image downloaded",
		zap.String("url", url),
		zap.Int("bytes", len(data)),
	)
	return data, nil
}
