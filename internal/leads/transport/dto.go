// Package transport defines request and response DTOs for the leads module.
package transport

import "time"

// CreateLeadRequest is the public lead-capture form payload.
type CreateLeadRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Company     string `json:"company" validate:"omitempty,max=255"`
	Website     string `json:"website" validate:"omitempty,url,max=500"`
	ProblemText string `json:"problem_text" validate:"required,min=10,max=2000"`
}

// CreateLeadResponse confirms a captured lead.
type CreateLeadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	LeadID  string `json:"leadId"`
}

// PublicLeadResponse is the restricted lead view returned on the public
// status endpoint. Scoring details are never exposed here.
type PublicLeadResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   *string   `json:"company"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ListLeadsQuery holds admin list filters and pagination. Search matches
// name, company and email case-insensitively.
type ListLeadsQuery struct {
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
	Status       string `form:"status"`
	FitBand      string `form:"fit_band"`
	UseCaseLabel string `form:"use_case_label"`
	Search       string `form:"search"`
}

// AdminLeadResponse is the full lead view for the admin dashboard.
type AdminLeadResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Company        *string    `json:"company"`
	Website        *string    `json:"website"`
	ProblemText    string     `json:"problem_text"`
	Status         string     `json:"status"`
	UseCaseLabel   *string    `json:"use_case_label"`
	FitScore       *int       `json:"fit_score"`
	FitBand        *string    `json:"fit_band"`
	AIRationale    *string    `json:"ai_rationale"`
	CompanySize    *string    `json:"company_size"`
	Industry       *string    `json:"industry"`
	Location       *string    `json:"location"`
	RevenueRange   *string    `json:"revenue_range"`
	OutreachSentAt *time.Time `json:"outreach_sent_at"`
	OutreachView   *string    `json:"outreach_preview"`
	EventCount     int        `json:"event_count"`
	LastActivityAt *time.Time `json:"last_activity_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// LeadDetailResponse is the admin lead view together with its timeline.
type LeadDetailResponse struct {
	Lead   AdminLeadResponse `json:"lead"`
	Events []EventResponse   `json:"events"`
}

// ListLeadsResponse is the paginated admin lead listing.
type ListLeadsResponse struct {
	Leads      []AdminLeadResponse `json:"leads"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"totalPages"`
}

// UpdateLeadRequest carries the admin-editable lead fields. Only fields
// present in the request are updated.
type UpdateLeadRequest struct {
	Status       *string `json:"status" validate:"omitempty,oneof=new scored outreach_sent responded converted lost"`
	UseCaseLabel *string `json:"use_case_label" validate:"omitempty,max=100"`
	FitScore     *int    `json:"fit_score" validate:"omitempty,gte=0,lte=100"`
	FitBand      *string `json:"fit_band" validate:"omitempty,oneof=High Medium Low"`
	AIRationale  *string `json:"ai_rationale"`
}

// ScoringResultRequest is the inbound scoring callback payload from the
// workflow engine.
type ScoringResultRequest struct {
	LeadID       string `json:"lead_id" validate:"required,uuid"`
	UseCaseLabel string `json:"use_case_label" validate:"omitempty,max=100"`
	FitScore     *int   `json:"fit_score" validate:"omitempty,gte=0,lte=100"`
	FitBand      string `json:"fit_band" validate:"omitempty,oneof=High Medium Low"`
	AIRationale  string `json:"ai_rationale"`
	CompanySize  string `json:"company_size"`
	Industry     string `json:"industry"`
	Location     string `json:"location"`
	RevenueRange string `json:"revenue_range"`
}

// OutreachResultRequest is the inbound outreach callback payload.
type OutreachResultRequest struct {
	LeadID       string `json:"lead_id" validate:"required,uuid"`
	EmailSubject string `json:"email_subject"`
	EmailBody    string `json:"email_body"`
	Status       string `json:"status"`
}

// OutreachResponse is the latest recorded outreach for a lead.
type OutreachResponse struct {
	ID           string    `json:"id"`
	LeadID       string    `json:"lead_id"`
	EmailSubject *string   `json:"email_subject"`
	EmailBody    *string   `json:"email_body"`
	Status       string    `json:"status"`
	SentAt       time.Time `json:"sent_at"`
}

// EventResponse is a single timeline entry for a lead.
type EventResponse struct {
	ID        string                 `json:"id"`
	LeadID    string                 `json:"lead_id"`
	EventType string                 `json:"event_type"`
	EventData map[string]interface{} `json:"event_data"`
	CreatedAt time.Time              `json:"created_at"`
}

// SourceStat aggregates lead volume for one company.
type SourceStat struct {
	Company    string  `json:"company"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ActivityEntry is one row of the recent-activity feed.
type ActivityEntry struct {
	EventType string    `json:"event_type"`
	LeadID    string    `json:"lead_id"`
	LeadName  string    `json:"lead_name"`
	CreatedAt time.Time `json:"created_at"`
}

// StatsResponse is the admin dashboard summary.
type StatsResponse struct {
	TotalLeads     int             `json:"total_leads"`
	ByStatus       map[string]int  `json:"by_status"`
	ByFitBand      map[string]int  `json:"by_fit_band"`
	AvgFitScore    *float64        `json:"avg_fit_score"`
	TopSources     []SourceStat    `json:"top_sources"`
	RecentActivity []ActivityEntry `json:"recent_activity"`
}
