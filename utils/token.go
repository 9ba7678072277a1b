package utils

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// NewLinkToken mints a candidate shortlink token: a fresh random UUID with
// the hyphens stripped, truncated to LinkTokenLength characters. Collision
// checking against existing tokens is the caller's responsibility.
func NewLinkToken() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	if len(raw) > LinkTokenLength {
		raw = raw[:LinkTokenLength]
	}
	return raw
}

// QRCodeURL builds an external chart-service URL rendering the given target
// as a QR code image.
func QRCodeURL(target string, size int) string {
	if size <= 0 {
		size = 240
	}
	return fmt.Sprintf("https://api.qrserver.com/v1/create-qr-code/?size=%dx%d&data=%s",
		size, size, url.QueryEscape(target))
}
