// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/eventdesk/eventdesk/app/dto"
	"github.com/eventdesk/eventdesk/models"
	"github.com/eventdesk/eventdesk/utils"
)

// ClickContext holds the client-side details recorded with each shortlink
// resolution
type ClickContext struct {
	UserAgent string `json:"user_agent,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
}

// NewClickContext creates a ClickContext from raw request values
func NewClickContext(userAgent, referrer, ip string) *ClickContext {
	return &ClickContext{
		UserAgent: userAgent,
		Referrer:  referrer,
		IPAddress: ip,
	}
}

// LinkInfo describes a previously minted link without touching analytics
type LinkInfo struct {
	Token    string
	URL      string
	ShortURL string
}

// ToEventDTO converts an event model to its public DTO, filling in the
// short URL and QR URL when a public token was minted.
func ToEventDTO(event *models.Event, shortLinkBase string) dto.EventDTO {
	d := dto.EventDTO{
		UUID:      event.UUID,
		Name:      event.Name,
		Slug:      event.Slug,
		StartDate: event.StartDate,
		Status:    event.Status,
		IsDefault: event.IsDefault,
		CreatedAt: event.CreatedAt.UTC().Format(time.RFC3339),
	}
	if event.PublicToken != nil && *event.PublicToken != "" {
		d.PublicToken = *event.PublicToken
		d.ShortURL = shortLinkBase + "/" + *event.PublicToken
		d.QRURL = utils.QRCodeURL(d.ShortURL, 0)
	}
	return d
}
