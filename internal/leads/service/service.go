// Package service implements the lead lifecycle use cases.
package service

import (
	"context"
	"errors"
	"math"
	"time"

	"pulsecapture_backend/internal/events"
	"pulsecapture_backend/internal/leads/domain"
	"pulsecapture_backend/internal/leads/repository"
	"pulsecapture_backend/internal/leads/transport"
	"pulsecapture_backend/internal/workflow"
	"pulsecapture_backend/platform/apperr"
	"pulsecapture_backend/platform/httpkit"
	"pulsecapture_backend/platform/logger"
	"pulsecapture_backend/platform/validator"

	"github.com/google/uuid"
)

// Event types recorded on the lead timeline.
const (
	EventLeadCaptured  = "lead_captured"
	EventLeadScored    = "lead_scored"
	EventOutreachSent  = "outreach_sent"
	EventStatusChanged = "status_changed"
)

const outreachPreviewLimit = 200

// TriggerDispatcher fires lead-processing triggers without blocking.
type TriggerDispatcher interface {
	DispatchLeadProcessing(ctx context.Context, payload workflow.LeadPayload)
}

// OutreachTrigger starts an outreach run on the workflow engine.
type OutreachTrigger interface {
	TriggerOutreach(ctx context.Context, leadID uuid.UUID) workflow.Result
}

type Service struct {
	repo       repository.Store
	dispatcher TriggerDispatcher
	outreach   OutreachTrigger
	bus        events.Bus
	validate   *validator.Validator
	log        *logger.Logger
}

func New(repo repository.Store, dispatcher TriggerDispatcher, outreach OutreachTrigger, bus events.Bus, validate *validator.Validator, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		dispatcher: dispatcher,
		outreach:   outreach,
		bus:        bus,
		validate:   validate,
		log:        log,
	}
}

// Create captures a new lead, records the capture event and fires the
// scoring trigger. The trigger outcome never affects the response.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.CreateLeadResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return transport.CreateLeadResponse{}, apperr.Validation("Validation error").
			WithDetails(validator.FormatErrors(err))
	}

	lead, err := s.repo.Create(ctx, repository.CreateLeadParams{
		Name:        req.Name,
		Email:       req.Email,
		Company:     optional(req.Company),
		Website:     optional(req.Website),
		ProblemText: req.ProblemText,
	})
	if err != nil {
		s.log.DatabaseError("create lead", err)
		return transport.CreateLeadResponse{}, apperr.Internal("Failed to create lead")
	}

	if err := s.repo.InsertEvent(ctx, lead.ID, EventLeadCaptured, map[string]interface{}{
		"source": "website",
	}); err != nil {
		s.log.DatabaseError("record capture event", err)
	}

	httpkit.RecordLeadCaptured()

	s.bus.Publish(ctx, events.LeadCaptured{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Name:      lead.Name,
		Email:     lead.Email,
		Company:   deref(lead.Company),
	})

	s.dispatcher.DispatchLeadProcessing(ctx, workflow.LeadPayload{
		LeadID:      lead.ID.String(),
		Name:        lead.Name,
		Email:       lead.Email,
		Company:     deref(lead.Company),
		Website:     deref(lead.Website),
		ProblemText: lead.ProblemText,
		Timestamp:   time.Now().UTC(),
	})

	return transport.CreateLeadResponse{
		Success: true,
		Message: "Lead captured successfully",
		LeadID:  lead.ID.String(),
	}, nil
}

// GetPublic returns the restricted lead view for the public status endpoint.
func (s *Service) GetPublic(ctx context.Context, rawID string) (transport.PublicLeadResponse, error) {
	lead, err := s.getLead(ctx, rawID)
	if err != nil {
		return transport.PublicLeadResponse{}, err
	}

	return transport.PublicLeadResponse{
		ID:        lead.ID.String(),
		Name:      lead.Name,
		Email:     lead.Email,
		Company:   lead.Company,
		Status:    lead.Status.String(),
		CreatedAt: lead.CreatedAt,
	}, nil
}

// Get returns the full lead view for the admin dashboard.
func (s *Service) Get(ctx context.Context, rawID string) (transport.AdminLeadResponse, error) {
	lead, err := s.getLead(ctx, rawID)
	if err != nil {
		return transport.AdminLeadResponse{}, err
	}
	return toAdminResponse(lead), nil
}

// Detail returns the admin lead view together with its timeline.
func (s *Service) Detail(ctx context.Context, rawID string) (transport.LeadDetailResponse, error) {
	lead, err := s.Get(ctx, rawID)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}
	timeline, err := s.Events(ctx, rawID)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}
	return transport.LeadDetailResponse{Lead: lead, Events: timeline}, nil
}

// ApplyScoring records scoring results delivered by the workflow engine and
// moves the lead to scored. Repeated deliveries for the same lead overwrite
// the previous results.
func (s *Service) ApplyScoring(ctx context.Context, req transport.ScoringResultRequest) (transport.AdminLeadResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return transport.AdminLeadResponse{}, apperr.Validation("Validation error").
			WithDetails(validator.FormatErrors(err))
	}

	lead, err := s.getLead(ctx, req.LeadID)
	if err != nil {
		return transport.AdminLeadResponse{}, err
	}

	if !lead.Status.CanTransition(domain.StatusScored) {
		return transport.AdminLeadResponse{}, apperr.Conflict(
			"Lead in status '" + lead.Status.String() + "' cannot accept scoring results")
	}

	updated, err := s.repo.ApplyScoring(ctx, lead.ID, repository.ScoringParams{
		UseCaseLabel: optional(req.UseCaseLabel),
		FitScore:     req.FitScore,
		FitBand:      optional(req.FitBand),
		AIRationale:  optional(req.AIRationale),
		CompanySize:  optional(req.CompanySize),
		Industry:     optional(req.Industry),
		Location:     optional(req.Location),
		RevenueRange: optional(req.RevenueRange),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.AdminLeadResponse{}, apperr.NotFound("Lead not found")
		}
		s.log.DatabaseError("apply scoring", err)
		return transport.AdminLeadResponse{}, apperr.Internal("Failed to apply scoring results")
	}

	if err := s.repo.InsertEvent(ctx, updated.ID, EventLeadScored, map[string]interface{}{
		"fit_score":      req.FitScore,
		"fit_band":       req.FitBand,
		"use_case_label": req.UseCaseLabel,
	}); err != nil {
		s.log.DatabaseError("record scoring event", err)
	}

	s.bus.Publish(ctx, events.LeadScored{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       updated.ID,
		LeadName:     updated.Name,
		Company:      deref(updated.Company),
		FitScore:     derefInt(updated.FitScore),
		FitBand:      deref(updated.FitBand),
		UseCaseLabel: deref(updated.UseCaseLabel),
	})

	return toAdminResponse(updated), nil
}

// ApplyOutreach records an outreach email delivered by the workflow engine,
// stamps the lead and moves it to outreach_sent.
func (s *Service) ApplyOutreach(ctx context.Context, req transport.OutreachResultRequest) (transport.AdminLeadResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return transport.AdminLeadResponse{}, apperr.Validation("Validation error").
			WithDetails(validator.FormatErrors(err))
	}

	lead, err := s.getLead(ctx, req.LeadID)
	if err != nil {
		return transport.AdminLeadResponse{}, err
	}

	if !lead.Status.CanTransition(domain.StatusOutreachSent) {
		return transport.AdminLeadResponse{}, apperr.Conflict(
			"Lead in status '" + lead.Status.String() + "' cannot accept outreach results")
	}

	status := req.Status
	if status == "" {
		status = "sent"
	}

	record, err := s.repo.InsertOutreach(ctx, repository.InsertOutreachParams{
		LeadID:       lead.ID,
		EmailSubject: optional(req.EmailSubject),
		EmailBody:    optional(req.EmailBody),
		Status:       status,
	})
	if err != nil {
		s.log.DatabaseError("insert outreach", err)
		return transport.AdminLeadResponse{}, apperr.Internal("Failed to record outreach")
	}

	updated, err := s.repo.MarkOutreachSent(ctx, lead.ID, record.SentAt, preview(req.EmailBody))
	if err != nil {
		s.log.DatabaseError("mark outreach sent", err)
		return transport.AdminLeadResponse{}, apperr.Internal("Failed to record outreach")
	}

	if err := s.repo.InsertEvent(ctx, updated.ID, EventOutreachSent, map[string]interface{}{
		"subject": req.EmailSubject,
		"sent_at": record.SentAt,
	}); err != nil {
		s.log.DatabaseError("record outreach event", err)
	}

	s.bus.Publish(ctx, events.OutreachRecorded{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    updated.ID,
		Subject:   req.EmailSubject,
	})

	return toAdminResponse(updated), nil
}

// TriggerOutreach asks the workflow engine to start an outreach run for a
// scored lead. The lead only moves to outreach_sent once the engine reports
// the email back through the outreach callback.
func (s *Service) TriggerOutreach(ctx context.Context, rawID string) (workflow.Result, error) {
	lead, err := s.getLead(ctx, rawID)
	if err != nil {
		return workflow.Result{}, err
	}

	if !lead.Status.CanTransition(domain.StatusOutreachSent) {
		return workflow.Result{}, apperr.Conflict(
			"Lead in status '" + lead.Status.String() + "' cannot receive outreach")
	}

	result := s.outreach.TriggerOutreach(ctx, lead.ID)
	httpkit.RecordDispatch("send_outreach", result.Success)
	if !result.Success {
		return result, apperr.Unavailable("Failed to trigger outreach").WithDetails(result.Error)
	}
	return result, nil
}

// Update applies a partial admin edit. Status changes must follow the
// lifecycle transitions.
func (s *Service) Update(ctx context.Context, rawID string, req transport.UpdateLeadRequest) (transport.AdminLeadResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return transport.AdminLeadResponse{}, apperr.Validation("Validation error").
			WithDetails(validator.FormatErrors(err))
	}

	lead, err := s.getLead(ctx, rawID)
	if err != nil {
		return transport.AdminLeadResponse{}, err
	}

	params := repository.UpdateLeadParams{
		UseCaseLabel: req.UseCaseLabel,
		FitScore:     req.FitScore,
		FitBand:      req.FitBand,
		AIRationale:  req.AIRationale,
	}

	var statusChanged bool
	if req.Status != nil {
		target, err := domain.Parse(*req.Status)
		if err != nil {
			return transport.AdminLeadResponse{}, apperr.Validation("Validation error").
				WithDetails([]string{err.Error()})
		}
		if target != lead.Status {
			if !lead.Status.CanTransition(target) {
				return transport.AdminLeadResponse{}, apperr.Conflict(
					"Cannot change status from '" + lead.Status.String() + "' to '" + target.String() + "'")
			}
			params.Status = &target
			statusChanged = true
		}
	}

	updated, err := s.repo.Update(ctx, lead.ID, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.AdminLeadResponse{}, apperr.NotFound("Lead not found")
		}
		s.log.DatabaseError("update lead", err)
		return transport.AdminLeadResponse{}, apperr.Internal("Failed to update lead")
	}

	if statusChanged {
		if err := s.repo.InsertEvent(ctx, updated.ID, EventStatusChanged, map[string]interface{}{
			"from": lead.Status.String(),
			"to":   updated.Status.String(),
		}); err != nil {
			s.log.DatabaseError("record status event", err)
		}
	}

	return toAdminResponse(updated), nil
}

// List returns the paginated admin lead listing.
func (s *Service) List(ctx context.Context, query transport.ListLeadsQuery) (transport.ListLeadsResponse, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	params := repository.ListParams{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if query.Status != "" {
		status, err := domain.Parse(query.Status)
		if err != nil {
			return transport.ListLeadsResponse{}, apperr.Validation("Validation error").
				WithDetails([]string{err.Error()})
		}
		params.Status = &status
	}
	if query.FitBand != "" {
		params.FitBand = &query.FitBand
	}
	if query.UseCaseLabel != "" {
		params.UseCaseLabel = &query.UseCaseLabel
	}
	if query.Search != "" {
		params.Search = &query.Search
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.log.DatabaseError("list leads", err)
		return transport.ListLeadsResponse{}, apperr.Internal("Failed to list leads")
	}

	items := make([]transport.AdminLeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, toAdminResponse(lead))
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return transport.ListLeadsResponse{
		Leads:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Events returns the lead's timeline, newest first.
func (s *Service) Events(ctx context.Context, rawID string) ([]transport.EventResponse, error) {
	lead, err := s.getLead(ctx, rawID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListEventsByLead(ctx, lead.ID)
	if err != nil {
		s.log.DatabaseError("list lead events", err)
		return nil, apperr.Internal("Failed to load lead events")
	}

	items := make([]transport.EventResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, transport.EventResponse{
			ID:        row.ID.String(),
			LeadID:    row.LeadID.String(),
			EventType: row.EventType,
			EventData: row.EventData,
			CreatedAt: row.CreatedAt,
		})
	}
	return items, nil
}

// LatestOutreach returns the most recent outreach email for a lead.
func (s *Service) LatestOutreach(ctx context.Context, rawID string) (transport.OutreachResponse, error) {
	lead, err := s.getLead(ctx, rawID)
	if err != nil {
		return transport.OutreachResponse{}, err
	}

	record, err := s.repo.LatestOutreach(ctx, lead.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNoOutreach) {
			return transport.OutreachResponse{}, apperr.NotFound("No outreach found for this lead")
		}
		s.log.DatabaseError("load latest outreach", err)
		return transport.OutreachResponse{}, apperr.Internal("Failed to load outreach")
	}

	return transport.OutreachResponse{
		ID:           record.ID.String(),
		LeadID:       record.LeadID.String(),
		EmailSubject: record.EmailSubject,
		EmailBody:    record.EmailBody,
		Status:       record.Status,
		SentAt:       record.SentAt,
	}, nil
}

// Stats builds the admin dashboard summary.
func (s *Service) Stats(ctx context.Context) (transport.StatsResponse, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.log.DatabaseError("load stats", err)
		return transport.StatsResponse{}, apperr.Internal("Failed to load stats")
	}

	sources := make([]transport.SourceStat, 0, len(stats.TopSources))
	for _, src := range stats.TopSources {
		pct := 0.0
		if stats.TotalLeads > 0 {
			pct = math.Round(float64(src.Count)/float64(stats.TotalLeads)*10000) / 100
		}
		sources = append(sources, transport.SourceStat{
			Company:    src.Company,
			Count:      src.Count,
			Percentage: pct,
		})
	}

	recent := make([]transport.ActivityEntry, 0, len(stats.Recent))
	for _, row := range stats.Recent {
		recent = append(recent, transport.ActivityEntry{
			EventType: row.EventType,
			LeadID:    row.LeadID.String(),
			LeadName:  row.LeadName,
			CreatedAt: row.CreatedAt,
		})
	}

	var avg *float64
	if stats.AvgFitScore != nil {
		rounded := math.Round(*stats.AvgFitScore*100) / 100
		avg = &rounded
	}

	return transport.StatsResponse{
		TotalLeads:     stats.TotalLeads,
		ByStatus:       stats.ByStatus,
		ByFitBand:      stats.ByFitBand,
		AvgFitScore:    avg,
		TopSources:     sources,
		RecentActivity: recent,
	}, nil
}

func (s *Service) getLead(ctx context.Context, rawID string) (repository.Lead, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return repository.Lead{}, apperr.NotFound("Lead not found")
	}

	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound("Lead not found")
		}
		s.log.DatabaseError("get lead", err)
		return repository.Lead{}, apperr.Internal("Failed to load lead")
	}
	return lead, nil
}

func toAdminResponse(lead repository.Lead) transport.AdminLeadResponse {
	return transport.AdminLeadResponse{
		ID:             lead.ID.String(),
		Name:           lead.Name,
		Email:          lead.Email,
		Company:        lead.Company,
		Website:        lead.Website,
		ProblemText:    lead.ProblemText,
		Status:         lead.Status.String(),
		UseCaseLabel:   lead.UseCaseLabel,
		FitScore:       lead.FitScore,
		FitBand:        lead.FitBand,
		AIRationale:    lead.AIRationale,
		CompanySize:    lead.CompanySize,
		Industry:       lead.Industry,
		Location:       lead.Location,
		RevenueRange:   lead.RevenueRange,
		OutreachSentAt: lead.OutreachSentAt,
		OutreachView:   lead.OutreachView,
		EventCount:     lead.EventCount,
		LastActivityAt: lead.LastActivityAt,
		CreatedAt:      lead.CreatedAt,
		UpdatedAt:      lead.UpdatedAt,
	}
}

// preview returns the first 200 characters of the body plus a trailing
// ellipsis, even when the body is shorter than the limit.
func preview(body string) string {
	runes := []rune(body)
	if len(runes) > outreachPreviewLimit {
		runes = runes[:outreachPreviewLimit]
	}
	return string(runes) + "..."
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func derefInt(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}
