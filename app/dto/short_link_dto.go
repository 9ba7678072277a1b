package dto

// SetShortLinkRequest mints (or re-fetches) the token for an application key.
// Calling twice with the same key yields the same token; target and metadata
// are overwritten each call.
type SetShortLinkRequest struct {
	Key       string            `json:"key" validate:"required,max=255"`
	TargetURL string            `json:"target_url" validate:"required,url"`
	OwnerKey  string            `json:"owner_key,omitempty" validate:"omitempty,max=255"`
	Metadata  map[string]string `json:"metadata,omitempty" validate:"omitempty"`
}

// ShortLinkDTO describes one minted link
type ShortLinkDTO struct {
	Key      string `json:"key"`
	Token    string `json:"token"`
	URL      string `json:"url"`
	ShortURL string `json:"short_url"`
	QRURL    string `json:"qr_url,omitempty"`
}

// VerifyShortLinkResponse reports token existence and active state
type VerifyShortLinkResponse struct {
	Token  string `json:"token"`
	Active bool   `json:"active"`
}

// ExpireShortLinksRequest deactivates every token owned by the given key
type ExpireShortLinksRequest struct {
	OwnerKey string `json:"owner_key" validate:"required,max=255"`
}
