package proposal

import "strings"

// AssetResolver turns stored image references into absolute URLs.
type AssetResolver struct {
	BaseURL string
}

// Resolve prefixes root-relative references with the asset base URL and
// returns anything else unchanged.
func (r AssetResolver) Resolve(ref string) string {
	if !strings.HasPrefix(ref, "/") {
		return ref
	}
	base := strings.TrimRight(r.BaseURL, "/")
	if base == "" {
		base = DefaultAssetBaseURL
	}
	return base + ref
}

// ResolveImage resolves ref against the default asset base URL.
func ResolveImage(ref string) string {
	return AssetResolver{}.Resolve(ref)
}
