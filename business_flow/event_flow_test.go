package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/eventdesk/eventdesk/app/dto"
	"github.com/eventdesk/eventdesk/app/services"
	"github.com/eventdesk/eventdesk/repository"
	"github.com/eventdesk/eventdesk/storage"
	testhelpers "github.com/eventdesk/eventdesk/testing"
	"github.com/eventdesk/eventdesk/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingProvisioner simulates an object-storage outage
type failingProvisioner struct{}

func (failingProvisioner) ProvisionEventPage(context.Context, string) (string, string, error) {
	return "", "", errors.New("bucket unreachable")
}

type eventFlowHarness struct {
	events *testhelpers.InMemoryEventRepository
	links  ShortLinkFlow
	repo   repository.ShortLinkRepository
	flow   EventFlow
}

func newEventFlowHarness() *eventFlowHarness {
	events := testhelpers.NewInMemoryEventRepository()
	linkRepo := repository.NewShortLinkRepository(storage.NewMemoryProperties())
	links := NewShortLinkFlow(linkRepo, "https://go.test/s")
	assets := &services.StaticAssetProvisioner{PublicBaseURL: "https://pages.test"}
	return &eventFlowHarness{
		events: events,
		links:  links,
		repo:   linkRepo,
		flow:   NewEventFlow(events, links, assets, "https://go.test/s"),
	}
}

func createRequest(name string) *dto.CreateEventRequest {
	return &dto.CreateEventRequest{Name: name, StartDate: "2026-09-15"}
}

func TestCreateOrReuseCreatesEvent(t *testing.T) {
	h := newEventFlowHarness()
	ctx := context.Background()

	result, err := h.flow.CreateOrReuse(ctx, createRequest("Tech Conference 2026!"))
	require.NoError(t, err)
	assert.False(t, result.Existed)

	event := result.Event
	assert.NotEmpty(t, event.UUID)
	assert.Equal(t, "Tech Conference 2026!", event.Name)
	assert.Equal(t, "tech-conference-2026", event.Slug)
	assert.Equal(t, "2026-09-15", event.StartDate)
	assert.Equal(t, "active", event.Status)
	assert.NotEmpty(t, event.PublicToken)
	assert.Equal(t, "https://go.test/s/"+event.PublicToken, event.ShortURL)
	assert.Contains(t, event.QRURL, "api.qrserver.com")

	// The public shortlink points at the provisioned page.
	target, err := h.links.Resolve(ctx, event.PublicToken, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://pages.test/events/tech-conference-2026", target)
}

func TestCreateOrReuseIsIdempotent(t *testing.T) {
	h := newEventFlowHarness()
	ctx := context.Background()

	first, err := h.flow.CreateOrReuse(ctx, createRequest("Launch Party"))
	require.NoError(t, err)
	require.False(t, first.Existed)

	second, err := h.flow.CreateOrReuse(ctx, createRequest("Launch Party"))
	require.NoError(t, err)
	assert.True(t, second.Existed)
	assert.Equal(t, first.Event.UUID, second.Event.UUID)
	assert.Equal(t, first.Event.PublicToken, second.Event.PublicToken)

	all, err := h.events.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateOrReuseValidation(t *testing.T) {
	h := newEventFlowHarness()
	ctx := context.Background()

	_, err := h.flow.CreateOrReuse(ctx, &dto.CreateEventRequest{Name: "  ", StartDate: "2026-09-15"})
	assert.ErrorIs(t, err, ErrEventNameRequired)

	_, err = h.flow.CreateOrReuse(ctx, &dto.CreateEventRequest{Name: "ok", StartDate: ""})
	assert.ErrorIs(t, err, ErrStartDateRequired)
}

func TestCreateOrReuseProvisioningFailureLeavesNoRow(t *testing.T) {
	events := testhelpers.NewInMemoryEventRepository()
	linkRepo := repository.NewShortLinkRepository(storage.NewMemoryProperties())
	links := NewShortLinkFlow(linkRepo, "https://go.test/s")
	flow := NewEventFlow(events, links, failingProvisioner{}, "https://go.test/s")

	ctx := context.Background()
	_, err := flow.CreateOrReuse(ctx, createRequest("Doomed Event"))
	require.Error(t, err)
	assert.Equal(t, "EVENT_PROVISIONING_FAILED", ErrorCode(err))

	all, err := events.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListAndGet(t *testing.T) {
	h := newEventFlowHarness()
	ctx := context.Background()

	created, err := h.flow.CreateOrReuse(ctx, createRequest("Summit"))
	require.NoError(t, err)
	_, err = h.flow.CreateOrReuse(ctx, createRequest("Gala"))
	require.NoError(t, err)

	list, err := h.flow.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.Len(t, list.Events, 2)

	got, err := h.flow.Get(ctx, created.Event.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Summit", got.Name)

	_, err = h.flow.Get(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestSetDefaultMovesFlag(t *testing.T) {
	h := newEventFlowHarness()
	ctx := context.Background()

	first, err := h.flow.CreateOrReuse(ctx, createRequest("First"))
	require.NoError(t, err)
	second, err := h.flow.CreateOrReuse(ctx, createRequest("Second"))
	require.NoError(t, err)

	require.NoError(t, h.flow.SetDefault(ctx, first.Event.UUID))
	require.NoError(t, h.flow.SetDefault(ctx, second.Event.UUID))

	list, err := h.flow.List(ctx)
	require.NoError(t, err)
	defaults := 0
	for _, e := range list.Events {
		if e.IsDefault {
			defaults++
			assert.Equal(t, second.Event.UUID, e.UUID)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestSetDefaultRejectsArchived(t *testing.T) {
	h := newEventFlowHarness()
	ctx := context.Background()

	created, err := h.flow.CreateOrReuse(ctx, createRequest("Old News"))
	require.NoError(t, err)
	require.NoError(t, h.flow.Archive(ctx, created.Event.UUID))

	err = h.flow.SetDefault(ctx, created.Event.UUID)
	assert.ErrorIs(t, err, ErrEventArchived)
}

func TestArchiveCascadesToShortLinks(t *testing.T) {
	h := newEventFlowHarness()
	ctx := context.Background()

	created, err := h.flow.CreateOrReuse(ctx, createRequest("Ephemeral"))
	require.NoError(t, err)
	token := created.Event.PublicToken

	// An extra link registered under the same owner is expired too.
	extra, err := h.links.Set(ctx, "ephemeral-speakers", "https://pages.test/speakers",
		utils.EventOwnerKey(created.Event.UUID), nil)
	require.NoError(t, err)

	require.NoError(t, h.flow.Archive(ctx, created.Event.UUID))

	got, err := h.flow.Get(ctx, created.Event.UUID)
	require.NoError(t, err)
	assert.Equal(t, "archived", got.Status)

	_, err = h.links.Resolve(ctx, token, nil)
	assert.ErrorIs(t, err, ErrShortLinkInactive)
	_, err = h.links.Resolve(ctx, extra, nil)
	assert.ErrorIs(t, err, ErrShortLinkInactive)

	// Archiving again is a no-op.
	require.NoError(t, h.flow.Archive(ctx, created.Event.UUID))
}

func TestArchiveUnknownEvent(t *testing.T) {
	h := newEventFlowHarness()
	err := h.flow.Archive(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

// TestEventLifecycleEndToEnd walks the whole flow: create, follow the public
// link, reuse the name, archive, and observe the dead link.
func TestEventLifecycleEndToEnd(t *testing.T) {
	h := newEventFlowHarness()
	ctx := context.Background()

	created, err := h.flow.CreateOrReuse(ctx, createRequest("Demo Day 2026"))
	require.NoError(t, err)
	token := created.Event.PublicToken

	target, err := h.links.Resolve(ctx, token, NewClickContext("browser", "", "10.0.0.9"))
	require.NoError(t, err)
	assert.Equal(t, "https://pages.test/events/demo-day-2026", target)

	reused, err := h.flow.CreateOrReuse(ctx, createRequest("Demo Day 2026"))
	require.NoError(t, err)
	assert.True(t, reused.Existed)
	assert.Equal(t, token, reused.Event.PublicToken)

	require.NoError(t, h.flow.Archive(ctx, created.Event.UUID))

	_, err = h.links.Resolve(ctx, token, nil)
	assert.ErrorIs(t, err, ErrShortLinkInactive)

	// The click recorded before archiving is retained.
	analytics, err := h.repo.LoadAnalytics(ctx)
	require.NoError(t, err)
	assert.Len(t, analytics[token], 1)
}
