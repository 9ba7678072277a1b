// Package utils provides utility functions for the application.
package utils

import "time"

// UTCNow returns the current time in UTC. All persisted timestamps and
// rate-limit arithmetic go through this so clocks are comparable across
// stores.
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowRFC3339 returns the current UTC time in RFC3339 form, the format
// stored in shortlink metadata and click events.
func UTCNowRFC3339() string {
	return UTCNow().Format(time.RFC3339)
}
