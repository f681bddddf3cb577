package domain

import "planline/internal/dates"

// PlanState holds every mutable collection of one plan. The store owns it;
// derived views are computed from a value copy.
type PlanState struct {
	PlanID                    string                            `json:"plan_id"`
	Milestones                []Milestone                       `json:"milestones"`
	TimetablePublishedAt      dates.Stamp                       `json:"timetable_published_at"`
	NoticePublishedAt         dates.Stamp                       `json:"notice_published_at"`
	ScopingEnd                dates.Date                        `json:"scoping_end"`
	VisionOutcomesPublishedAt dates.Stamp                       `json:"vision_outcomes_published_at"`
	Consultations             map[ConsultationType]Consultation `json:"consultations"`
	Gateways                  map[GatewayType]Gateway           `json:"gateways"`
	Evidence                  []EvidenceItem                    `json:"evidence"`
	Signals                   []MonitoringSignal                `json:"signals"`
	Sites                     []Site                            `json:"sites"`
	SiteTasks                 []SiteTask                        `json:"site_tasks"`
	Options                   []Option                          `json:"options"`
	Snapshots                 []Snapshot                        `json:"snapshots"`
	ReadingID                 string                            `json:"reading_id"`
	ReadingChangedAt          dates.Stamp                       `json:"reading_changed_at"`
	ActiveStage               StageKey                          `json:"active_stage"`
}

// NewPlanState returns an empty state with every consultation and gateway present.
func NewPlanState(planID string) PlanState {
	st := PlanState{
		PlanID:        planID,
		Consultations: make(map[ConsultationType]Consultation, len(ConsultationTypes)),
		Gateways:      make(map[GatewayType]Gateway, len(GatewayTypes)),
		ActiveStage:   StageContent,
	}
	st.EnsureComplete()
	return st
}

// EnsureComplete fills in any consultation or gateway missing from a loaded state.
func (s *PlanState) EnsureComplete() {
	if s.Consultations == nil {
		s.Consultations = make(map[ConsultationType]Consultation, len(ConsultationTypes))
	}
	if s.Gateways == nil {
		s.Gateways = make(map[GatewayType]Gateway, len(GatewayTypes))
	}
	for _, ct := range ConsultationTypes {
		if _, ok := s.Consultations[ct]; !ok {
			s.Consultations[ct] = Consultation{ID: "cons-" + string(ct), Type: ct, Representations: []Representation{}}
		}
	}
	for _, gt := range GatewayTypes {
		if _, ok := s.Gateways[gt]; !ok {
			s.Gateways[gt] = Gateway{ID: gt, Status: GatewayNotStarted, Actions: []Action{}}
		}
	}
	if s.ActiveStage == "" {
		s.ActiveStage = StageContent
	}
}

// Clone returns a deep copy so a failed mutation can be discarded.
func (s PlanState) Clone() PlanState {
	out := s
	out.Milestones = append([]Milestone(nil), s.Milestones...)
	out.Consultations = make(map[ConsultationType]Consultation, len(s.Consultations))
	for k, c := range s.Consultations {
		c.Representations = append([]Representation(nil), c.Representations...)
		out.Consultations[k] = c
	}
	out.Gateways = make(map[GatewayType]Gateway, len(s.Gateways))
	for k, g := range s.Gateways {
		g.Actions = append([]Action(nil), g.Actions...)
		out.Gateways[k] = g
	}
	out.Evidence = make([]EvidenceItem, len(s.Evidence))
	for i, e := range s.Evidence {
		e.Tags = append([]string(nil), e.Tags...)
		e.UsedBy = append([]string(nil), e.UsedBy...)
		out.Evidence[i] = e
	}
	out.Signals = append([]MonitoringSignal(nil), s.Signals...)
	out.Sites = make([]Site, len(s.Sites))
	for i, site := range s.Sites {
		if site.Capacity != nil {
			c := *site.Capacity
			site.Capacity = &c
		}
		out.Sites[i] = site
	}
	out.SiteTasks = append([]SiteTask(nil), s.SiteTasks...)
	out.Options = make([]Option, len(s.Options))
	for i, o := range s.Options {
		o.Pros = append([]ProCon(nil), o.Pros...)
		o.Cons = append([]ProCon(nil), o.Cons...)
		o.Variants = append([]Variant(nil), o.Variants...)
		out.Options[i] = o
	}
	out.Snapshots = append([]Snapshot(nil), s.Snapshots...)
	return out
}
