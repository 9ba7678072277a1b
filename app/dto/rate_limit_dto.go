package dto

// CheckRateLimitRequest probes (and consumes) one unit of quota for an
// operation on behalf of an actor.
type CheckRateLimitRequest struct {
	Operation string `json:"operation" validate:"required,max=100"`
	Actor     string `json:"actor" validate:"required,max=255"`
}

// RateLimitInfo reports the limiter decision. RetryAfterSeconds is set only
// on rejection.
type RateLimitInfo struct {
	Allowed           bool `json:"allowed"`
	Remaining         int  `json:"remaining"`
	RetryAfterSeconds int  `json:"retry_after_seconds,omitempty"`
}
