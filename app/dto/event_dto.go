package dto

// CreateEventRequest creates an event, or returns the existing one when the
// name matches an existing row exactly.
type CreateEventRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
}

// EventDTO is the public representation of an event row
type EventDTO struct {
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	StartDate   string `json:"start_date"`
	Status      string `json:"status"`
	IsDefault   bool   `json:"is_default"`
	PublicToken string `json:"public_token,omitempty"`
	ShortURL    string `json:"short_url,omitempty"`
	QRURL       string `json:"qr_url,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// CreateEventResponse reports the created-or-reused event
type CreateEventResponse struct {
	Event   EventDTO `json:"event"`
	Existed bool     `json:"existed"`
}

// EventListResponse wraps the full event listing
type EventListResponse struct {
	Events []EventDTO `json:"events"`
	Total  int        `json:"total"`
}
