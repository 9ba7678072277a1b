package testing

import (
	"context"
	"sync"

	"github.com/eventdesk/eventdesk/models"
	"github.com/eventdesk/eventdesk/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	db *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{db: db}
}

// CreateTestEvent inserts an active event row
func (tf *TestFixtures) CreateTestEvent(name string) (*models.Event, error) {
	event := &models.Event{
		UUID:      uuid.NewString(),
		Name:      name,
		Slug:      utils.DeriveSlug(name),
		StartDate: "2026-09-01",
		Status:    models.EventStatusActive,
	}
	if err := tf.db.DB.Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// CreateArchivedEvent inserts an archived event row
func (tf *TestFixtures) CreateArchivedEvent(name string) (*models.Event, error) {
	event := &models.Event{
		UUID:      uuid.NewString(),
		Name:      name,
		Slug:      utils.DeriveSlug(name),
		StartDate: "2026-09-01",
		Status:    models.EventStatusArchived,
	}
	if err := tf.db.DB.Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// InMemoryEventRepository is a map-backed event repository for flow tests
// that do not need a database.
type InMemoryEventRepository struct {
	mu     sync.Mutex
	nextID uint
	events []*models.Event
}

func NewInMemoryEventRepository() *InMemoryEventRepository {
	return &InMemoryEventRepository{nextID: 1}
}

func (r *InMemoryEventRepository) ByID(_ context.Context, id uint) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *InMemoryEventRepository) ByUUID(_ context.Context, eventUUID string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.UUID == eventUUID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *InMemoryEventRepository) ByFilter(_ context.Context, filter models.EventFilter, _ string, limit, offset int) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Event
	for _, e := range r.events {
		if filter.Name != nil && e.Name != *filter.Name {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		copied := *e
		out = append(out, &copied)
	}
	if offset > 0 && offset < len(out) {
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryEventRepository) Save(_ context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == 0 {
		event.ID = r.nextID
		r.nextID++
		copied := *event
		r.events = append(r.events, &copied)
		return nil
	}
	for i, e := range r.events {
		if e.ID == event.ID {
			copied := *event
			r.events[i] = &copied
			return nil
		}
	}
	copied := *event
	r.events = append(r.events, &copied)
	return nil
}

func (r *InMemoryEventRepository) Count(ctx context.Context, filter models.EventFilter) (int64, error) {
	matched, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (r *InMemoryEventRepository) Exists(ctx context.Context, filter models.EventFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

func (r *InMemoryEventRepository) ListAll(_ context.Context) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Event, 0, len(r.events))
	for _, e := range r.events {
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

func (r *InMemoryEventRepository) UpdateStatus(_ context.Context, eventUUID string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.UUID == eventUUID {
			e.Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *InMemoryEventRepository) SetDefault(_ context.Context, eventUUID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := false
	for _, e := range r.events {
		if e.UUID == eventUUID {
			found = true
		}
	}
	if !found {
		return gorm.ErrRecordNotFound
	}
	for _, e := range r.events {
		e.IsDefault = e.UUID == eventUUID
	}
	return nil
}

func (r *InMemoryEventRepository) Delete(_ context.Context, eventUUID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.events {
		if e.UUID == eventUUID {
			r.events = append(r.events[:i], r.events[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
