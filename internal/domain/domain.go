package domain

import "planline/internal/dates"

type Plan struct {
	ID        string `json:"id" yaml:"id"`
	Authority string `json:"authority" yaml:"authority"`
	Name      string `json:"name" yaml:"name"`
	Status    string `json:"status" yaml:"status"`
}

type MilestoneKind string

const (
	MilestoneProgramme    MilestoneKind = "programme"
	MilestoneConsultation MilestoneKind = "consultation"
	MilestoneGateway      MilestoneKind = "gateway"
	MilestoneDecision     MilestoneKind = "decision"
)

func (k MilestoneKind) Valid() bool {
	switch k {
	case MilestoneProgramme, MilestoneConsultation, MilestoneGateway, MilestoneDecision:
		return true
	}
	return false
}

type Milestone struct {
	ID    string        `json:"id"`
	Label string        `json:"label"`
	Date  dates.Date    `json:"date"`
	Kind  MilestoneKind `json:"kind" enum:"programme,consultation,gateway,decision"`
}

type ConsultationType string

const (
	ConsultationScoping  ConsultationType = "scoping"
	ConsultationContent  ConsultationType = "content"
	ConsultationProposed ConsultationType = "proposed"
)

// ConsultationTypes lists every consultation round in plan order.
var ConsultationTypes = []ConsultationType{ConsultationScoping, ConsultationContent, ConsultationProposed}

func (c ConsultationType) Valid() bool {
	switch c {
	case ConsultationScoping, ConsultationContent, ConsultationProposed:
		return true
	}
	return false
}

type RepresentationStatus string

const (
	RepresentationUnread     RepresentationStatus = "unread"
	RepresentationTriaged    RepresentationStatus = "triaged"
	RepresentationSummarized RepresentationStatus = "summarized"
)

func (s RepresentationStatus) Valid() bool {
	switch s {
	case RepresentationUnread, RepresentationTriaged, RepresentationSummarized:
		return true
	}
	return false
}

type Representation struct {
	ID         string               `json:"id"`
	Respondent string               `json:"respondent"`
	ReceivedAt dates.Date           `json:"received_at"`
	Summary    string               `json:"summary"`
	Status     RepresentationStatus `json:"status" enum:"unread,triaged,summarized"`
}

type Consultation struct {
	ID                 string           `json:"id"`
	Type               ConsultationType `json:"type"`
	Representations    []Representation `json:"representations"`
	SummaryDraft       string           `json:"summary_draft,omitempty"`
	SummaryPublishedAt dates.Stamp      `json:"summary_published_at"`
}

// RepresentationStats are the per-consultation counts shown next to the inbox.
type RepresentationStats struct {
	Total      int `json:"total"`
	Unread     int `json:"unread"`
	Triaged    int `json:"triaged"`
	Summarized int `json:"summarized"`
}

func (c Consultation) Stats() RepresentationStats {
	st := RepresentationStats{Total: len(c.Representations)}
	for _, r := range c.Representations {
		switch r.Status {
		case RepresentationUnread:
			st.Unread++
		case RepresentationTriaged:
			st.Triaged++
		case RepresentationSummarized:
			st.Summarized++
		}
	}
	return st
}

// Representation returns the index of the representation with id, or -1.
func (c Consultation) Representation(id string) int {
	for i, r := range c.Representations {
		if r.ID == id {
			return i
		}
	}
	return -1
}

type GatewayType string

const (
	GatewayG1 GatewayType = "G1"
	GatewayG2 GatewayType = "G2"
	GatewayG3 GatewayType = "G3"
)

var GatewayTypes = []GatewayType{GatewayG1, GatewayG2, GatewayG3}

func (g GatewayType) Valid() bool {
	switch g {
	case GatewayG1, GatewayG2, GatewayG3:
		return true
	}
	return false
}

type GatewayStatus string

const (
	GatewayNotStarted     GatewayStatus = "not_started"
	GatewayDrafting       GatewayStatus = "drafting"
	GatewaySubmitted      GatewayStatus = "submitted"
	GatewayAdviceReceived GatewayStatus = "advice_received"
	GatewayPassed         GatewayStatus = "passed"
	GatewayNotPassed      GatewayStatus = "not_passed"
)

func (s GatewayStatus) Valid() bool {
	switch s {
	case GatewayNotStarted, GatewayDrafting, GatewaySubmitted, GatewayAdviceReceived, GatewayPassed, GatewayNotPassed:
		return true
	}
	return false
}

// IsTerminal reports whether no further lifecycle step leaves s.
func (s GatewayStatus) IsTerminal() bool {
	return s == GatewayPassed || s == GatewayNotPassed
}

type ActionStatus string

const (
	ActionOpen ActionStatus = "open"
	ActionDone ActionStatus = "done"
)

type Action struct {
	ID     string       `json:"id"`
	Title  string       `json:"title"`
	Status ActionStatus `json:"status" enum:"open,done"`
}

type Gateway struct {
	ID                GatewayType   `json:"id"`
	Status            GatewayStatus `json:"status" enum:"not_started,drafting,submitted,advice_received,passed,not_passed"`
	PublishedAt       dates.Stamp   `json:"published_at"`
	SubmittedAt       dates.Stamp   `json:"submitted_at"`
	AdviceReceivedAt  dates.Stamp   `json:"advice_received_at"`
	AdvicePublishedAt dates.Stamp   `json:"advice_published_at"`
	Actions           []Action      `json:"actions"`
}

type EvidenceStatus string

const (
	EvidenceCommissioned EvidenceStatus = "commissioned"
	EvidenceDraft        EvidenceStatus = "draft"
	EvidenceFinal        EvidenceStatus = "final"
	EvidenceIterative    EvidenceStatus = "iterative"
)

func (s EvidenceStatus) Valid() bool {
	switch s {
	case EvidenceCommissioned, EvidenceDraft, EvidenceFinal, EvidenceIterative:
		return true
	}
	return false
}

type EvidenceItem struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Status EvidenceStatus `json:"status" enum:"commissioned,draft,final,iterative"`
	Tags   []string       `json:"tags"`
	UsedBy []string       `json:"used_by"`
}

type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

func (t Trend) Valid() bool {
	switch t {
	case TrendUp, TrendDown, TrendStable:
		return true
	}
	return false
}

type SignalStatus string

const (
	SignalOpen     SignalStatus = "open"
	SignalWatching SignalStatus = "watching"
	SignalClosed   SignalStatus = "closed"
)

func (s SignalStatus) Valid() bool {
	switch s {
	case SignalOpen, SignalWatching, SignalClosed:
		return true
	}
	return false
}

// MonitoringSignal values are free text; they are not guaranteed numeric.
type MonitoringSignal struct {
	ID        string       `json:"id"`
	Indicator string       `json:"indicator"`
	Baseline  string       `json:"baseline"`
	Current   string       `json:"current"`
	Target    string       `json:"target"`
	Trend     Trend        `json:"trend" enum:"up,down,stable"`
	Severity  Severity     `json:"severity" enum:"High,Medium,Low"`
	Status    SignalStatus `json:"status" enum:"open,watching,closed"`
	Notes     string       `json:"notes"`
}

type SiteStage string

const (
	SiteIdentify SiteStage = "identify"
	SiteAssess   SiteStage = "assess"
	SiteAllocate SiteStage = "allocate"
)

var SiteStages = []SiteStage{SiteIdentify, SiteAssess, SiteAllocate}

func (s SiteStage) Valid() bool {
	switch s {
	case SiteIdentify, SiteAssess, SiteAllocate:
		return true
	}
	return false
}

// Next returns the stage after s. Allocate has no successor.
func (s SiteStage) Next() (SiteStage, bool) {
	switch s {
	case SiteIdentify:
		return SiteAssess, true
	case SiteAssess:
		return SiteAllocate, true
	}
	return "", false
}

// Site is a land availability record moving through the sites pipeline.
// Capacity is only meaningful once the site is allocated.
type Site struct {
	ID       string    `json:"id"`
	Ref      string    `json:"ref"`
	Name     string    `json:"name"`
	Stage    SiteStage `json:"stage" enum:"identify,assess,allocate"`
	AreaHa   float64   `json:"area_ha"`
	Capacity *int      `json:"capacity,omitempty"`
	Notes    string    `json:"notes"`
}

type TaskStatus string

const (
	TaskNotStarted TaskStatus = "not_started"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskNotStarted, TaskInProgress, TaskDone:
		return true
	}
	return false
}

// SiteTask is an environmental or technical study tracked alongside the sites.
type SiteTask struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Owner  string     `json:"owner"`
	Status TaskStatus `json:"status" enum:"not_started,in_progress,done"`
}

type ProCon struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Variant struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Tweaks   string `json:"tweaks"`
	Outcomes string `json:"outcomes"`
}

type Option struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	Pros        []ProCon  `json:"pros"`
	Cons        []ProCon  `json:"cons"`
	Variants    []Variant `json:"variants"`
}

// Snapshot freezes the size of the option set on a given day.
type Snapshot struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Date        dates.Date `json:"date"`
	OptionCount int        `json:"option_count"`
}

type Emphasis struct {
	Key   string `json:"k" yaml:"k"`
	Value string `json:"v" yaml:"v"`
}

type Cue struct {
	Phrase  string `json:"phrase" yaml:"phrase"`
	Meaning string `json:"meaning" yaml:"meaning"`
}

// ReadingProfile is static reference data for the advisory panel.
type ReadingProfile struct {
	ID       string     `json:"id" yaml:"id"`
	Label    string     `json:"label" yaml:"label"`
	Summary  string     `json:"summary" yaml:"summary"`
	Emphasis []Emphasis `json:"emphasis" yaml:"emphasis"`
	Cues     []Cue      `json:"cues" yaml:"cues"`
	Sources  []string   `json:"sources" yaml:"sources"`
}

// Pressure is an advisory risk item; static reference data.
type Pressure struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Severity     Severity `json:"severity" yaml:"severity"`
	Summary      string   `json:"summary" yaml:"summary"`
	WhyNow       []string `json:"why_now" yaml:"why_now"`
	Impacts      []string `json:"impacts" yaml:"impacts"`
	PrimaryRoute string   `json:"primary_route" yaml:"primary_route"`
	OptionsRoute string   `json:"options_route,omitempty" yaml:"options_route"`
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	PlanID     string `json:"plan_id,omitempty"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}
