package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	EventType string
	EventData map[string]interface{}
	CreatedAt time.Time
}

// InsertEvent appends a timeline event for a lead.
func (r *Repository) InsertEvent(ctx context.Context, leadID uuid.UUID, eventType string, data map[string]interface{}) error {
	if data == nil {
		data = map[string]interface{}{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO events (lead_id, event_type, event_data)
		VALUES ($1, $2, $3)
	`, leadID, eventType, payload)
	return err
}

// ListEventsByLead returns the lead's timeline, newest first.
func (r *Repository) ListEventsByLead(ctx context.Context, leadID uuid.UUID) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, event_type, event_data, created_at
		FROM events
		WHERE lead_id = $1
		ORDER BY created_at DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Event, 0)
	for rows.Next() {
		var item Event
		var raw []byte
		if err := rows.Scan(&item.ID, &item.LeadID, &item.EventType, &raw, &item.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &item.EventData); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

type ActivityRow struct {
	EventType string
	LeadID    uuid.UUID
	LeadName  string
	CreatedAt time.Time
}

// RecentActivity returns the latest events across all leads.
func (r *Repository) RecentActivity(ctx context.Context, limit int) ([]ActivityRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.event_type, e.lead_id, l.name, e.created_at
		FROM events e
		JOIN leads l ON l.id = e.lead_id
		ORDER BY e.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]ActivityRow, 0, limit)
	for rows.Next() {
		var item ActivityRow
		if err := rows.Scan(&item.EventType, &item.LeadID, &item.LeadName, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}
