package businessflow

import (
	"context"
	"strings"

	"github.com/eventdesk/eventdesk/app/dto"
	"github.com/eventdesk/eventdesk/app/services"
	"github.com/eventdesk/eventdesk/models"
	"github.com/eventdesk/eventdesk/repository"
	"github.com/eventdesk/eventdesk/utils"
	"github.com/google/uuid"
)

// EventFlow manages the event lifecycle: idempotent creation with page and
// shortlink provisioning, listing, default selection, and archiving with its
// shortlink cascade.
type EventFlow interface {
	CreateOrReuse(ctx context.Context, req *dto.CreateEventRequest) (*dto.CreateEventResponse, error)
	List(ctx context.Context) (*dto.EventListResponse, error)
	Get(ctx context.Context, eventUUID string) (*dto.EventDTO, error)
	SetDefault(ctx context.Context, eventUUID string) error
	Archive(ctx context.Context, eventUUID string) error
}

type EventFlowImpl struct {
	events        repository.EventRepository
	links         ShortLinkFlow
	assets        services.AssetProvisioner
	shortLinkBase string
}

func NewEventFlow(
	events repository.EventRepository,
	links ShortLinkFlow,
	assets services.AssetProvisioner,
	shortLinkBase string,
) EventFlow {
	return &EventFlowImpl{
		events:        events,
		links:         links,
		assets:        assets,
		shortLinkBase: strings.TrimRight(shortLinkBase, "/"),
	}
}

// CreateOrReuse creates an event or returns the existing one when the name
// matches a row exactly. Dedup scans the full table rather than relying on a
// unique index so a reused name reports the original row unchanged.
//
// For a new event it provisions the public page asset, registers the public
// shortlink, and only then persists the row. A failure at any step leaves no
// event row; earlier side effects (a copied asset, a registered link) are not
// rolled back and are overwritten by a successful retry.
func (f *EventFlowImpl) CreateOrReuse(ctx context.Context, req *dto.CreateEventRequest) (*dto.CreateEventResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEventNameRequired
	}
	if strings.TrimSpace(req.StartDate) == "" {
		return nil, ErrStartDateRequired
	}

	existing, err := f.findByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		d := ToEventDTO(existing, f.shortLinkBase)
		return &dto.CreateEventResponse{Event: d, Existed: true}, nil
	}

	eventUUID := uuid.NewString()
	slug := utils.DeriveSlug(name)
	if slug == "" {
		slug = eventUUID[:8]
	}

	assetKey, pageURL, err := f.assets.ProvisionEventPage(ctx, slug)
	if err != nil {
		return nil, NewBusinessError("EVENT_PROVISIONING_FAILED", "Failed to provision event page", err)
	}

	token, err := f.links.Set(ctx, utils.PublicLinkKey(eventUUID), pageURL, utils.EventOwnerKey(eventUUID), map[string]string{
		"event": eventUUID,
		"kind":  "public-page",
	})
	if err != nil {
		return nil, NewBusinessError("EVENT_LINK_FAILED", "Failed to register public short link", err)
	}

	event := &models.Event{
		UUID:        eventUUID,
		Name:        name,
		Slug:        slug,
		StartDate:   req.StartDate,
		Status:      models.EventStatusActive,
		PublicToken: &token,
	}
	if assetKey != "" {
		event.PageAssetKey = &assetKey
	}
	if err := f.events.Save(ctx, event); err != nil {
		return nil, NewBusinessError("EVENT_SAVE_FAILED", "Failed to save event", err)
	}

	d := ToEventDTO(event, f.shortLinkBase)
	return &dto.CreateEventResponse{Event: d, Existed: false}, nil
}

// findByName scans all rows for an exact name match. Whitespace inside the
// name is significant; only leading and trailing space is stripped before the
// comparison, matching what CreateOrReuse stores.
func (f *EventFlowImpl) findByName(ctx context.Context, name string) (*models.Event, error) {
	all, err := f.events.ListAll(ctx)
	if err != nil {
		return nil, NewBusinessError("EVENT_LIST_FAILED", "Failed to list events", err)
	}
	for _, event := range all {
		if event.Name == name {
			return event, nil
		}
	}
	return nil, nil
}

func (f *EventFlowImpl) List(ctx context.Context) (*dto.EventListResponse, error) {
	all, err := f.events.ListAll(ctx)
	if err != nil {
		return nil, NewBusinessError("EVENT_LIST_FAILED", "Failed to list events", err)
	}

	events := make([]dto.EventDTO, 0, len(all))
	for _, event := range all {
		events = append(events, ToEventDTO(event, f.shortLinkBase))
	}
	return &dto.EventListResponse{Events: events, Total: len(events)}, nil
}

func (f *EventFlowImpl) Get(ctx context.Context, eventUUID string) (*dto.EventDTO, error) {
	event, err := f.mustFind(ctx, eventUUID)
	if err != nil {
		return nil, err
	}
	d := ToEventDTO(event, f.shortLinkBase)
	return &d, nil
}

// SetDefault marks one event as the default, clearing the flag on every
// other row in the same transaction. Archived events cannot become default.
func (f *EventFlowImpl) SetDefault(ctx context.Context, eventUUID string) error {
	event, err := f.mustFind(ctx, eventUUID)
	if err != nil {
		return err
	}
	if event.IsArchived() {
		return ErrEventArchived
	}
	if err := f.events.SetDefault(ctx, event.UUID); err != nil {
		return NewBusinessError("EVENT_SAVE_FAILED", "Failed to set default event", err)
	}
	return nil
}

// Archive flips the event to archived and deactivates every shortlink owned
// by it. Archiving an already archived event is a no-op. The status write
// lands before the link cascade, so a cascade failure leaves an archived
// event with live links; re-running Archive retries the cascade.
func (f *EventFlowImpl) Archive(ctx context.Context, eventUUID string) error {
	event, err := f.mustFind(ctx, eventUUID)
	if err != nil {
		return err
	}
	if event.IsArchived() {
		return nil
	}

	if err := f.events.UpdateStatus(ctx, event.UUID, models.EventStatusArchived); err != nil {
		return NewBusinessError("EVENT_SAVE_FAILED", "Failed to archive event", err)
	}
	if err := f.links.ExpireByOwner(ctx, utils.EventOwnerKey(event.UUID)); err != nil {
		return NewBusinessError("EVENT_LINK_FAILED", "Failed to expire event short links", err)
	}
	return nil
}

func (f *EventFlowImpl) mustFind(ctx context.Context, eventUUID string) (*models.Event, error) {
	if strings.TrimSpace(eventUUID) == "" {
		return nil, ErrEventNotFound
	}
	event, err := f.events.ByUUID(ctx, eventUUID)
	if err != nil {
		return nil, NewBusinessError("EVENT_LOOKUP_FAILED", "Failed to lookup event", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}
