package utils

import (
	"time"
)

// ContextKey is the type used for request-scoped context values.
type ContextKey string

// Context keys used by handlers to pass request metadata into flows
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Shortlink constants
const (
	// LinkTokenLength is the length of public shortlink tokens
	LinkTokenLength = 12

	// MaxClickEvents is the per-token cap on stored click analytics (oldest evicted first)
	MaxClickEvents = 1000

	// PublicLinkKeyPrefix prefixes the application key minted for each event
	PublicLinkKeyPrefix = "event-"

	// PublicLinkKeySuffix suffixes the application key minted for each event
	PublicLinkKeySuffix = "-public"
)

// Rate limiting constants
const (
	// DefaultRateLimitWindow is the window applied to unrecognized operations
	DefaultRateLimitWindow = time.Minute

	// DefaultRateLimitMax is the request budget applied to unrecognized operations
	DefaultRateLimitMax = 30
)

// PublicLinkKey builds the stable application key for an event's public shortlink.
func PublicLinkKey(eventUUID string) string {
	return PublicLinkKeyPrefix + eventUUID + PublicLinkKeySuffix
}

// EventOwnerKey builds the owner key stored in shortlink metadata for cascade expiry.
func EventOwnerKey(eventUUID string) string {
	return PublicLinkKeyPrefix + eventUUID
}
