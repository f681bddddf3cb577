package summary

import (
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"planline/internal/domain"
	"planline/internal/readiness"
)

// Rules are the tunable limits of the home projection.
type Rules struct {
	NextDates        int
	ScrutinyPoints   int
	ImpactsCap       int
	NoticeLeadMonths int
}

func DefaultRules() Rules {
	return Rules{NextDates: 3, ScrutinyPoints: 3, ImpactsCap: 4, NoticeLeadMonths: readiness.DefaultNoticeLeadMonths}
}

func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.NextDates <= 0 {
		r.NextDates = d.NextDates
	}
	if r.ScrutinyPoints <= 0 {
		r.ScrutinyPoints = d.ScrutinyPoints
	}
	if r.ImpactsCap <= 0 {
		r.ImpactsCap = d.ImpactsCap
	}
	if r.NoticeLeadMonths <= 0 {
		r.NoticeLeadMonths = d.NoticeLeadMonths
	}
	return r
}

// Reference is the static data the projection reads alongside plan state.
type Reference struct {
	Pressures []domain.Pressure
	Reading   domain.ReadingProfile
}

type StageLabel struct {
	Key    domain.StageKey `json:"key"`
	Label  string          `json:"label"`
	Status string          `json:"status"`
}

type GateStatus string

const (
	GatePassed     GateStatus = "passed"
	GateInProgress GateStatus = "in_progress"
	GatePending    GateStatus = "pending"
)

type Gate struct {
	ID     domain.GatewayType `json:"id"`
	Status GateStatus         `json:"status"`
}

type DateItem struct {
	Label string               `json:"label"`
	Date  string               `json:"date"`
	Type  domain.MilestoneKind `json:"type"`
}

type Policies struct {
	Vision        string          `json:"vision"`
	Spatial       Pending[string] `json:"spatial"`
	PoliciesCount Pending[int]    `json:"policies_count"`
	PoliciesTotal Pending[int]    `json:"policies_total"`
	Monitoring    Pending[string] `json:"monitoring"`
}

type Churn struct {
	Changed7d     int    `json:"changed_7d"`
	Untouched     int    `json:"untouched"`
	HighChurnArea string `json:"high_churn_area"`
}

type ScrutinyPoint struct {
	Label    string          `json:"label"`
	Severity domain.Severity `json:"severity"`
}

type Reading struct {
	Label       string          `json:"label"`
	LastRevised Pending[string] `json:"last_revised"`
}

type EvidenceCounts struct {
	Final   int          `json:"final"`
	Draft   int          `json:"draft"`
	Missing Pending[int] `json:"missing"`
}

type Sites struct {
	Identified int `json:"identified"`
	Assessed   int `json:"assessed"`
	Allocated  int `json:"allocated"`
}

type Scenarios struct {
	Active int          `json:"active"`
	Stale  Pending[int] `json:"stale"`
}

// HomeSummary is the landing dashboard view. It is a value computed on every
// read and never stored.
type HomeSummary struct {
	Stage     StageLabel      `json:"stage"`
	Gates     []Gate          `json:"gates"`
	NextDates []DateItem      `json:"next_dates"`
	Blocking  int             `json:"blocking"`
	Drift     Pending[string] `json:"drift"`

	Policies Policies       `json:"policies"`
	Churn    Pending[Churn] `json:"churn"`

	ScrutinyPoints []ScrutinyPoint `json:"scrutiny_points"`
	WhereItBites   []string        `json:"where_it_bites"`
	Reading        Reading         `json:"reading"`

	Evidence        EvidenceCounts    `json:"evidence"`
	CriticalMissing Pending[[]string] `json:"critical_missing"`
	RecentlyUpdated string            `json:"recently_updated,omitempty"`

	Sites          Pending[Sites] `json:"sites"`
	AllocationRisk Pending[int]   `json:"allocation_risk"`
	MapGaps        Pending[int]   `json:"map_gaps"`

	Scenarios     Scenarios       `json:"scenarios"`
	EnvelopeChips []string        `json:"envelope_chips"`
	Breadth       Pending[string] `json:"breadth"`

	Intensities Intensities `json:"intensities"`
}

// Summarize projects plan state into the home view without mutating it.
func Summarize(st domain.PlanState, ref Reference, rules Rules, now time.Time) HomeSummary {
	rules = rules.withDefaults()
	ready := readiness.FromState(st, rules.NoticeLeadMonths)
	out := HomeSummary{
		Stage:     stageLabel(st.ActiveStage),
		Gates:     gates(st),
		NextDates: NextDates(st.Milestones, rules.NextDates),
		Blocking:  Blocking(st, ready),
		Drift:     placeholder("on_track"),

		Policies: Policies{
			Vision:        visionLabel(st),
			Spatial:       placeholder("drafted"),
			PoliciesCount: placeholder(48),
			PoliciesTotal: placeholder(52),
			Monitoring:    placeholder("outline"),
		},
		Churn: placeholder(Churn{Changed7d: 3, Untouched: 12, HighChurnArea: "Transport policies"}),

		ScrutinyPoints: scrutinyPoints(ref.Pressures, rules.ScrutinyPoints),
		WhereItBites:   WhereItBites(ref.Pressures, rules.ImpactsCap),
		Reading:        readingLabel(st, ref.Reading, now),

		Evidence:        evidenceCounts(st.Evidence),
		CriticalMissing: placeholder([]string{"Transport baseline study", "Housing viability assessment"}),
		RecentlyUpdated: recentlyFinal(st.Evidence),

		Sites:          placeholder(Sites{Identified: 24, Assessed: 18, Allocated: 12}),
		AllocationRisk: placeholder(2),
		MapGaps:        placeholder(3),

		Scenarios:     Scenarios{Active: len(st.Options), Stale: placeholder(2)},
		EnvelopeChips: []string{"Baseline", "Stretch", "Fallback"},
		Breadth:       placeholder("Stable"),
	}
	out.Intensities = intensitiesOf(st, out)
	return out
}

func stageLabel(key domain.StageKey) StageLabel {
	i := domain.StageIndex(key)
	if i < 0 {
		return StageLabel{Key: key, Label: string(key), Status: "Unknown"}
	}
	return StageLabel{Key: key, Label: domain.Stages[i].Label, Status: "In progress"}
}

func gates(st domain.PlanState) []Gate {
	out := make([]Gate, 0, len(domain.GatewayTypes))
	for _, id := range domain.GatewayTypes {
		g := st.Gateways[id]
		status := GateInProgress
		switch g.Status {
		case domain.GatewayPassed:
			status = GatePassed
		case domain.GatewayNotStarted, "":
			status = GatePending
		}
		out = append(out, Gate{ID: id, Status: status})
	}
	return out
}

// NextDates returns the n earliest milestones, ascending by date. Ties keep
// insertion order. The input slice is not reordered.
func NextDates(ms []domain.Milestone, n int) []DateItem {
	sorted := append([]domain.Milestone(nil), ms...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]DateItem, 0, len(sorted))
	for _, m := range sorted {
		out = append(out, DateItem{Label: m.Label, Date: m.Date.String(), Type: m.Kind})
	}
	return out
}

// Blocking counts gateways being drafted that are not yet ready to submit.
func Blocking(st domain.PlanState, in readiness.Inputs) int {
	n := 0
	for _, id := range domain.GatewayTypes {
		if st.Gateways[id].Status != domain.GatewayDrafting {
			continue
		}
		if !readiness.Compute(id, in).OK {
			n++
		}
	}
	return n
}

func visionLabel(st domain.PlanState) string {
	if st.VisionOutcomesPublishedAt.IsPublished() {
		return "drafted"
	}
	return "missing"
}

func scrutinyPoints(ps []domain.Pressure, n int) []ScrutinyPoint {
	if n >= 0 && len(ps) > n {
		ps = ps[:n]
	}
	out := make([]ScrutinyPoint, 0, len(ps))
	for _, p := range ps {
		out = append(out, ScrutinyPoint{Label: p.Title, Severity: p.Severity})
	}
	return out
}

// WhereItBites flattens every pressure's impacts in order, capped at max.
func WhereItBites(ps []domain.Pressure, max int) []string {
	out := []string{}
	for _, p := range ps {
		for _, imp := range p.Impacts {
			if max >= 0 && len(out) == max {
				return out
			}
			out = append(out, imp)
		}
	}
	return out
}

func readingLabel(st domain.PlanState, rp domain.ReadingProfile, now time.Time) Reading {
	r := Reading{Label: rp.Label}
	if at, ok := st.ReadingChangedAt.At(); ok {
		r.LastRevised = computed(humanize.RelTime(at, now, "ago", "from now"))
	} else {
		r.LastRevised = placeholder("2d ago")
	}
	return r
}

func evidenceCounts(items []domain.EvidenceItem) EvidenceCounts {
	c := EvidenceCounts{Missing: placeholder(3)}
	for _, e := range items {
		switch e.Status {
		case domain.EvidenceFinal:
			c.Final++
		case domain.EvidenceDraft:
			c.Draft++
		}
	}
	return c
}

// recentlyFinal is the first final item in collection order. Items carry no
// update time, so this is not a true latest.
func recentlyFinal(items []domain.EvidenceItem) string {
	for _, e := range items {
		if e.Status == domain.EvidenceFinal {
			return e.Title
		}
	}
	return ""
}
