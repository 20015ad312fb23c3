// Package mock provides an in-memory Store implementation for tests.
package mock

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pulsecapture_backend/internal/leads/domain"
	"pulsecapture_backend/internal/leads/repository"

	"github.com/google/uuid"
)

// Store keeps leads, events and outreach in memory. All methods are safe for
// concurrent use.
type Store struct {
	mu       sync.Mutex
	leads    map[uuid.UUID]repository.Lead
	events   []repository.Event
	outreach []repository.Outreach
}

func NewStore() *Store {
	return &Store{
		leads: make(map[uuid.UUID]repository.Lead),
	}
}

func (s *Store) Create(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	lead := repository.Lead{
		ID:          uuid.New(),
		Name:        params.Name,
		Email:       params.Email,
		Company:     params.Company,
		Website:     params.Website,
		ProblemText: params.ProblemText,
		Status:      domain.StatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.leads[lead.ID] = lead
	return lead, nil
}

func (s *Store) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (s *Store) ApplyScoring(_ context.Context, id uuid.UUID, params repository.ScoringParams) (repository.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}

	lead.UseCaseLabel = params.UseCaseLabel
	lead.FitScore = params.FitScore
	lead.FitBand = params.FitBand
	lead.AIRationale = params.AIRationale
	lead.CompanySize = params.CompanySize
	lead.Industry = params.Industry
	lead.Location = params.Location
	lead.RevenueRange = params.RevenueRange
	lead.Status = domain.StatusScored
	lead.UpdatedAt = time.Now()
	s.leads[id] = lead
	return lead, nil
}

func (s *Store) MarkOutreachSent(_ context.Context, id uuid.UUID, sentAt time.Time, preview string) (repository.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}

	lead.OutreachSentAt = &sentAt
	lead.OutreachView = &preview
	lead.Status = domain.StatusOutreachSent
	lead.UpdatedAt = time.Now()
	s.leads[id] = lead
	return lead, nil
}

func (s *Store) Update(_ context.Context, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}

	if params.Status != nil {
		lead.Status = *params.Status
	}
	if params.UseCaseLabel != nil {
		lead.UseCaseLabel = params.UseCaseLabel
	}
	if params.FitScore != nil {
		lead.FitScore = params.FitScore
	}
	if params.FitBand != nil {
		lead.FitBand = params.FitBand
	}
	if params.AIRationale != nil {
		lead.AIRationale = params.AIRationale
	}
	lead.UpdatedAt = time.Now()
	s.leads[id] = lead
	return lead, nil
}

func (s *Store) List(_ context.Context, params repository.ListParams) ([]repository.Lead, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]repository.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		if params.Status != nil && lead.Status != *params.Status {
			continue
		}
		if params.FitBand != nil && (lead.FitBand == nil || *lead.FitBand != *params.FitBand) {
			continue
		}
		if params.UseCaseLabel != nil && (lead.UseCaseLabel == nil || *lead.UseCaseLabel != *params.UseCaseLabel) {
			continue
		}
		if params.Search != nil && !matchesSearch(lead, *params.Search) {
			continue
		}

		for _, event := range s.events {
			if event.LeadID == lead.ID {
				lead.EventCount++
				if lead.LastActivityAt == nil || event.CreatedAt.After(*lead.LastActivityAt) {
					at := event.CreatedAt
					lead.LastActivityAt = &at
				}
			}
		}
		matched = append(matched, lead)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if params.Offset >= total {
		return []repository.Lead{}, total, nil
	}
	end := params.Offset + params.Limit
	if end > total {
		end = total
	}
	return matched[params.Offset:end], total, nil
}

func matchesSearch(lead repository.Lead, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(lead.Name), term) {
		return true
	}
	if lead.Company != nil && strings.Contains(strings.ToLower(*lead.Company), term) {
		return true
	}
	return strings.Contains(strings.ToLower(lead.Email), term)
}

func (s *Store) InsertEvent(_ context.Context, leadID uuid.UUID, eventType string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data == nil {
		data = map[string]interface{}{}
	}
	s.events = append(s.events, repository.Event{
		ID:        uuid.New(),
		LeadID:    leadID,
		EventType: eventType,
		EventData: data,
		CreatedAt: time.Now(),
	})
	return nil
}

func (s *Store) ListEventsByLead(_ context.Context, leadID uuid.UUID) ([]repository.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]repository.Event, 0)
	for _, event := range s.events {
		if event.LeadID == leadID {
			items = append(items, event)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) InsertOutreach(_ context.Context, params repository.InsertOutreachParams) (repository.Outreach, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := repository.Outreach{
		ID:           uuid.New(),
		LeadID:       params.LeadID,
		EmailSubject: params.EmailSubject,
		EmailBody:    params.EmailBody,
		Status:       params.Status,
		SentAt:       time.Now(),
	}
	s.outreach = append(s.outreach, item)
	return item, nil
}

func (s *Store) LatestOutreach(_ context.Context, leadID uuid.UUID) (repository.Outreach, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *repository.Outreach
	for i := range s.outreach {
		item := s.outreach[i]
		if item.LeadID != leadID {
			continue
		}
		if latest == nil || item.SentAt.After(latest.SentAt) {
			latest = &item
		}
	}
	if latest == nil {
		return repository.Outreach{}, repository.ErrNoOutreach
	}
	return *latest, nil
}

func (s *Store) Stats(_ context.Context) (repository.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := repository.Stats{
		ByStatus:  make(map[string]int),
		ByFitBand: make(map[string]int),
	}

	var scoreSum float64
	var scoreCount int
	byCompany := make(map[string]int)

	for _, lead := range s.leads {
		stats.TotalLeads++
		stats.ByStatus[lead.Status.String()]++
		if lead.FitBand != nil {
			stats.ByFitBand[*lead.FitBand]++
		}
		if lead.FitScore != nil {
			scoreSum += float64(*lead.FitScore)
			scoreCount++
		}
		if lead.Company != nil && strings.TrimSpace(*lead.Company) != "" {
			byCompany[*lead.Company]++
		}
	}

	if scoreCount > 0 {
		avg := scoreSum / float64(scoreCount)
		stats.AvgFitScore = &avg
	}

	for company, count := range byCompany {
		stats.TopSources = append(stats.TopSources, repository.SourceCount{Company: company, Count: count})
	}
	sort.Slice(stats.TopSources, func(i, j int) bool {
		return stats.TopSources[i].Count > stats.TopSources[j].Count
	})
	if len(stats.TopSources) > 10 {
		stats.TopSources = stats.TopSources[:10]
	}

	recent := make([]repository.ActivityRow, 0)
	events := append([]repository.Event(nil), s.events...)
	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	for _, event := range events {
		if len(recent) == 10 {
			break
		}
		lead, ok := s.leads[event.LeadID]
		if !ok {
			continue
		}
		recent = append(recent, repository.ActivityRow{
			EventType: event.EventType,
			LeadID:    event.LeadID,
			LeadName:  lead.Name,
			CreatedAt: event.CreatedAt,
		})
	}
	stats.Recent = recent

	return stats, nil
}

var _ repository.Store = (*Store)(nil)
