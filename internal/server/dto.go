package server

import (
	"planline/internal/dates"
	"planline/internal/domain"
	"planline/internal/readiness"
	"planline/internal/store"
)

// Request payloads

type SwitchPlanRequest struct {
	PlanID string `json:"plan_id" minLength:"1"`
}

type SetStageRequest struct {
	Stage string `json:"stage" enum:"scoping,g1,content,g2,draft,g3,submission,exam,adoption,monitoring"`
}

type SelectReadingRequest struct {
	ReadingID string `json:"reading_id" minLength:"1"`
}

type AddMilestoneRequest struct {
	Label string `json:"label,omitempty"`
	Date  string `json:"date,omitempty" format:"date"`
	Kind  string `json:"kind,omitempty" enum:"programme,consultation,gateway,decision"`
}

type UpdateMilestoneRequest struct {
	Label *string `json:"label,omitempty"`
	Date  *string `json:"date,omitempty" format:"date"`
}

type CloseScopingRequest struct {
	End string `json:"end" format:"date"`
}

type UpdateRepresentationRequest struct {
	Status     *string `json:"status,omitempty" enum:"unread,triaged,summarized"`
	Respondent *string `json:"respondent,omitempty"`
	Summary    *string `json:"summary,omitempty"`
}

type SummaryDraftRequest struct {
	Text string `json:"text"`
}

type SetGatewayStatusRequest struct {
	Status string `json:"status" enum:"not_started,drafting,submitted,advice_received,passed,not_passed"`
}

type ActionRequest struct {
	Title string `json:"title,omitempty"`
}

type AddEvidenceRequest struct {
	Title  string   `json:"title,omitempty"`
	Status string   `json:"status,omitempty" enum:"commissioned,draft,final,iterative"`
	Tags   []string `json:"tags,omitempty"`
	UsedBy []string `json:"used_by,omitempty"`
}

type EvidenceStatusRequest struct {
	Status string `json:"status" enum:"commissioned,draft,final,iterative"`
}

type SignalRequest struct {
	Indicator *string `json:"indicator,omitempty"`
	Baseline  *string `json:"baseline,omitempty"`
	Current   *string `json:"current,omitempty"`
	Target    *string `json:"target,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	Trend     *string `json:"trend,omitempty" enum:"up,down,stable"`
	Severity  *string `json:"severity,omitempty" enum:"High,Medium,Low"`
	Status    *string `json:"status,omitempty" enum:"open,watching,closed"`
}

func (r SignalRequest) patch() store.SignalPatch {
	p := store.SignalPatch{
		Indicator: r.Indicator,
		Baseline:  r.Baseline,
		Current:   r.Current,
		Target:    r.Target,
		Notes:     r.Notes,
	}
	if r.Trend != nil {
		t := domain.Trend(*r.Trend)
		p.Trend = &t
	}
	if r.Severity != nil {
		s := domain.Severity(*r.Severity)
		p.Severity = &s
	}
	if r.Status != nil {
		s := domain.SignalStatus(*r.Status)
		p.Status = &s
	}
	return p
}

type OptionRequest struct {
	Label       *string `json:"label,omitempty"`
	Description *string `json:"description,omitempty"`
}

type ProConRequest struct {
	Text string `json:"text"`
}

type VariantRequest struct {
	Label    *string `json:"label,omitempty"`
	Tweaks   *string `json:"tweaks,omitempty"`
	Outcomes *string `json:"outcomes,omitempty"`
}

type AddSiteRequest struct {
	Name string `json:"name,omitempty"`
}

type SiteRequest struct {
	Ref      *string  `json:"ref,omitempty"`
	Name     *string  `json:"name,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
	AreaHa   *float64 `json:"area_ha,omitempty" minimum:"0"`
	Capacity *int     `json:"capacity,omitempty" minimum:"0"`
}

func (r SiteRequest) patch() store.SitePatch {
	return store.SitePatch{Ref: r.Ref, Name: r.Name, Notes: r.Notes, AreaHa: r.AreaHa, Capacity: r.Capacity}
}

type AddSiteTaskRequest struct {
	Title string `json:"title,omitempty"`
	Owner string `json:"owner,omitempty"`
}

type SiteTaskRequest struct {
	Title  *string `json:"title,omitempty"`
	Owner  *string `json:"owner,omitempty"`
	Status *string `json:"status,omitempty" enum:"not_started,in_progress,done"`
}

func (r SiteTaskRequest) patch() store.SiteTaskPatch {
	p := store.SiteTaskPatch{Title: r.Title, Owner: r.Owner}
	if r.Status != nil {
		s := domain.TaskStatus(*r.Status)
		p.Status = &s
	}
	return p
}

type DevLoginRequest struct {
	ActorID string `json:"actor_id"`
}

// Responses

type DevLoginResponse struct {
	Token string `json:"token"`
}

type PlansResponse struct {
	Active string        `json:"active"`
	Plans  []domain.Plan `json:"plans"`
}

type GatewayResponse struct {
	Gateway   domain.Gateway      `json:"gateway"`
	Readiness readiness.Readiness `json:"readiness"`
}

type TimelineResponse struct {
	TimetablePublishedAt      dates.Stamp           `json:"timetable_published_at"`
	NoticePublishedAt         dates.Stamp           `json:"notice_published_at"`
	ScopingEnd                dates.Date            `json:"scoping_end"`
	VisionOutcomesPublishedAt dates.Stamp           `json:"vision_outcomes_published_at"`
	Readiness                 []readiness.Readiness `json:"readiness"`
}

type SubmissionResponse struct {
	Open bool `json:"open"`
}

type PaginatedEvents struct {
	Items      []domain.Event `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

func timelineResponse(st domain.PlanState, rs []readiness.Readiness) TimelineResponse {
	return TimelineResponse{
		TimetablePublishedAt:      st.TimetablePublishedAt,
		NoticePublishedAt:         st.NoticePublishedAt,
		ScopingEnd:                st.ScopingEnd,
		VisionOutcomesPublishedAt: st.VisionOutcomesPublishedAt,
		Readiness:                 nonNilSlice(rs),
	}
}

func nonNilSlice[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

func parseOptionalDate(field, s string) (dates.Date, error) {
	if s == "" {
		return dates.Date{}, nil
	}
	d, err := dates.ParseDate(s)
	if err != nil {
		return dates.Date{}, badRequest(err.Error(), map[string]any{"field": field})
	}
	return d, nil
}
