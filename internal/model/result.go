package model

// ProviderName identifies one of the supported photo-search services.
// The set is closed: adding a provider means a new adapter plus a registry
// entry, nothing else.
type ProviderName string

const (
	ProviderPixabay  ProviderName = "pixabay"
	ProviderUnsplash ProviderName = "unsplash"
	ProviderPexels   ProviderName = "pexels"
)

// AllProviders is the ordered list of supported providers.
var AllProviders = []ProviderName{ProviderPixabay, ProviderUnsplash, ProviderPexels}

// DefaultProvider is used when the operator hasn't chosen one.
const DefaultProvider = ProviderPixabay

// ValidProvider checks if a string names a supported provider.
func ValidProvider(s string) bool {
	for _, p := range AllProviders {
		if string(p) == s {
			return true
		}
	}
	return false
}

// SearchResult is the uniform shape every provider response is mapped into.
// IDs are provider-scoped: they are only used to de-duplicate results within
// one record's gathering session, never across providers.
type SearchResult struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	ThumbnailURL string `json:"thumbnailUrl"`
	MediumURL    string `json:"mediumUrl"`
	FullURL      string `json:"fullUrl"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
}

// DownloadURL returns the best URL to fetch for local storage: the full-size
// image when the provider supplied one, otherwise the medium variant.
func (r SearchResult) DownloadURL() string {
	if r.FullURL != "" {
		return r.FullURL
	}
	return r.MediumURL
}
