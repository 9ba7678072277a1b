package models

// Shortlink registry state lives in the durable property store as JSON blobs
// under fixed keys, one blob per table. The maps below are the decoded forms.
// Blob writes are atomic per key; cross-process read-modify-write is
// last-writer-wins at the blob level.

// Durable property store keys for the shortlink tables
const (
	ShortLinkMapKey       = "SHORTLINKS_MAP_V2"
	ShortLinkTargetsKey   = "SHORTLINKS_TARGETS_V2"
	ShortLinkMetadataKey  = "SHORTLINKS_METADATA_V1"
	ShortLinkAnalyticsKey = "SHORTLINKS_ANALYTICS_V1"
)

// KeyTokenMap maps caller-chosen application keys to minted tokens.
// A key resolves to the same token for its whole lifetime.
type KeyTokenMap map[string]string

// TokenTargetMap maps tokens to destination URLs. Presence in this map is
// what makes a token exist.
type TokenTargetMap map[string]string

// LinkMetadata carries per-token bookkeeping. Extra caller-supplied fields
// ride along in Extra and survive round-trips untouched.
type LinkMetadata struct {
	CreatedAt string            `json:"created_at"`
	Active    bool              `json:"active"`
	OwnerKey  string            `json:"owner_key,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// TokenMetadataMap maps tokens to their metadata records.
type TokenMetadataMap map[string]*LinkMetadata

// ClickEvent is a single recorded resolution of a token.
type ClickEvent struct {
	Timestamp string `json:"ts"`
	UserAgent string `json:"ua,omitempty"`
	Referrer  string `json:"ref,omitempty"`
	SourceIP  string `json:"ip,omitempty"`
}

// TokenAnalyticsMap maps tokens to their click histories, capped at the most
// recent MaxClickEvents entries per token (oldest evicted first).
type TokenAnalyticsMap map[string][]ClickEvent
