// Package repository persists leads, their timeline events and outreach
// records in PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pulsecapture_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID             uuid.UUID
	Name           string
	Email          string
	Company        *string
	Website        *string
	ProblemText    string
	Status         domain.Status
	UseCaseLabel   *string
	FitScore       *int
	FitBand        *string
	AIRationale    *string
	CompanySize    *string
	Industry       *string
	Location       *string
	RevenueRange   *string
	OutreachSentAt *time.Time
	OutreachView   *string
	EventCount     int
	LastActivityAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CreateLeadParams struct {
	Name        string
	Email       string
	Company     *string
	Website     *string
	ProblemText string
}

const leadColumns = `id, name, email, company, website, problem_text, status,
	use_case_label, fit_score, fit_band, ai_rationale,
	company_size, industry, location, revenue_range,
	outreach_sent_at, outreach_preview, created_at, updated_at`

func scanLead(row pgx.Row, lead *Lead) error {
	return row.Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Company, &lead.Website,
		&lead.ProblemText, &lead.Status, &lead.UseCaseLabel, &lead.FitScore,
		&lead.FitBand, &lead.AIRationale, &lead.CompanySize, &lead.Industry,
		&lead.Location, &lead.RevenueRange, &lead.OutreachSentAt,
		&lead.OutreachView, &lead.CreatedAt, &lead.UpdatedAt,
	)
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	var lead Lead
	err := scanLead(r.pool.QueryRow(ctx, `
		INSERT INTO leads (name, email, company, website, problem_text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+leadColumns,
		params.Name, params.Email, params.Company, params.Website, params.ProblemText,
	), &lead)
	return lead, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	var lead Lead
	err := scanLead(r.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1`, id,
	), &lead)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

type ScoringParams struct {
	UseCaseLabel *string
	FitScore     *int
	FitBand      *string
	AIRationale  *string
	CompanySize  *string
	Industry     *string
	Location     *string
	RevenueRange *string
}

// ApplyScoring writes scoring results and moves the lead to scored.
func (r *Repository) ApplyScoring(ctx context.Context, id uuid.UUID, params ScoringParams) (Lead, error) {
	var lead Lead
	err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads SET
			use_case_label = $2, fit_score = $3, fit_band = $4, ai_rationale = $5,
			company_size = $6, industry = $7, location = $8, revenue_range = $9,
			status = $10, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns,
		id, params.UseCaseLabel, params.FitScore, params.FitBand, params.AIRationale,
		params.CompanySize, params.Industry, params.Location, params.RevenueRange,
		domain.StatusScored,
	), &lead)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// MarkOutreachSent records the outreach timestamp and preview on the lead and
// moves it to outreach_sent.
func (r *Repository) MarkOutreachSent(ctx context.Context, id uuid.UUID, sentAt time.Time, preview string) (Lead, error) {
	var lead Lead
	err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads SET
			outreach_sent_at = $2, outreach_preview = $3,
			status = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns,
		id, sentAt, preview, domain.StatusOutreachSent,
	), &lead)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

type UpdateLeadParams struct {
	Status       *domain.Status
	UseCaseLabel *string
	FitScore     *int
	FitBand      *string
	AIRationale  *string
}

// Update applies a partial admin edit. Only non-nil fields are written.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	sets := make([]string, 0, 6)
	args := []interface{}{id}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Status != nil {
		addSet("status", *params.Status)
	}
	if params.UseCaseLabel != nil {
		addSet("use_case_label", *params.UseCaseLabel)
	}
	if params.FitScore != nil {
		addSet("fit_score", *params.FitScore)
	}
	if params.FitBand != nil {
		addSet("fit_band", *params.FitBand)
	}
	if params.AIRationale != nil {
		addSet("ai_rationale", *params.AIRationale)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	sets = append(sets, "updated_at = now()")

	var lead Lead
	query := `UPDATE leads SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING ` + leadColumns
	err := scanLead(r.pool.QueryRow(ctx, query, args...), &lead)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

type ListParams struct {
	Status       *domain.Status
	FitBand      *string
	UseCaseLabel *string
	Search       *string
	Limit        int
	Offset       int
}

// List returns leads newest first with per-lead event counts, plus the total
// matching count for pagination.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)

	addFilter := func(column string, value interface{}) {
		args = append(args, value)
		where = append(where, fmt.Sprintf("l.%s = $%d", column, len(args)))
	}

	if params.Status != nil {
		addFilter("status", *params.Status)
	}
	if params.FitBand != nil {
		addFilter("fit_band", *params.FitBand)
	}
	if params.UseCaseLabel != nil {
		addFilter("use_case_label", *params.UseCaseLabel)
	}
	if params.Search != nil {
		args = append(args, "%"+*params.Search+"%")
		where = append(where, fmt.Sprintf(
			"(l.name ILIKE $%d OR l.company ILIKE $%d OR l.email ILIKE $%d)",
			len(args), len(args), len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM leads l ` + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit)
	limitPos := len(args)
	args = append(args, params.Offset)
	offsetPos := len(args)

	query := fmt.Sprintf(`
		SELECT l.id, l.name, l.email, l.company, l.website, l.problem_text, l.status,
			l.use_case_label, l.fit_score, l.fit_band, l.ai_rationale,
			l.company_size, l.industry, l.location, l.revenue_range,
			l.outreach_sent_at, l.outreach_preview, l.created_at, l.updated_at,
			COUNT(e.id) AS event_count,
			MAX(e.created_at) AS last_activity_at
		FROM leads l
		LEFT JOIN events e ON e.lead_id = l.id
		%s
		GROUP BY l.id
		ORDER BY l.created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, limitPos, offsetPos)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(
			&lead.ID, &lead.Name, &lead.Email, &lead.Company, &lead.Website,
			&lead.ProblemText, &lead.Status, &lead.UseCaseLabel, &lead.FitScore,
			&lead.FitBand, &lead.AIRationale, &lead.CompanySize, &lead.Industry,
			&lead.Location, &lead.RevenueRange, &lead.OutreachSentAt,
			&lead.OutreachView, &lead.CreatedAt, &lead.UpdatedAt,
			&lead.EventCount, &lead.LastActivityAt,
		); err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}

	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return leads, total, nil
}
