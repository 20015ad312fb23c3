package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence contract the leads service depends on.
// *Repository is the PostgreSQL implementation; mock.Store backs tests.
type Store interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	ApplyScoring(ctx context.Context, id uuid.UUID, params ScoringParams) (Lead, error)
	MarkOutreachSent(ctx context.Context, id uuid.UUID, sentAt time.Time, preview string) (Lead, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error)
	List(ctx context.Context, params ListParams) ([]Lead, int, error)

	InsertEvent(ctx context.Context, leadID uuid.UUID, eventType string, data map[string]interface{}) error
	ListEventsByLead(ctx context.Context, leadID uuid.UUID) ([]Event, error)

	InsertOutreach(ctx context.Context, params InsertOutreachParams) (Outreach, error)
	LatestOutreach(ctx context.Context, leadID uuid.UUID) (Outreach, error)

	Stats(ctx context.Context) (Stats, error)
}

var _ Store = (*Repository)(nil)
