package summary

import (
	"time"

	"planline/internal/domain"
)

// Intensity is the visual weight of a home card.
type Intensity int

const (
	Dormant Intensity = iota
	Active
	Pressing
	Acute
)

func (i Intensity) String() string {
	switch i {
	case Dormant:
		return "dormant"
	case Active:
		return "active"
	case Pressing:
		return "pressing"
	default:
		return "acute"
	}
}

// Bucket maps a pressure score to an intensity. It is non-decreasing in score
// and always within [Dormant, Acute].
func Bucket(score int) Intensity {
	switch {
	case score <= 0:
		return Dormant
	case score == 1:
		return Active
	case score <= 3:
		return Pressing
	default:
		return Acute
	}
}

type Intensities struct {
	Programme   Intensity `json:"programme"`
	PlanContent Intensity `json:"plan_content"`
	Scrutiny    Intensity `json:"scrutiny"`
	Evidence    Intensity `json:"evidence"`
	Places      Intensity `json:"places"`
	Scenarios   Intensity `json:"scenarios"`
}

var severityWeight = map[domain.Severity]int{
	domain.SeverityHigh:   2,
	domain.SeverityMedium: 1,
	domain.SeverityLow:    0,
}

func intensitiesOf(st domain.PlanState, h HomeSummary) Intensities {
	programme := h.Blocking
	for _, id := range domain.GatewayTypes {
		if st.Gateways[id].Status == domain.GatewayNotPassed {
			programme += 2
		}
	}

	content := 0
	if h.Policies.Vision == "missing" {
		content += 2
	}
	for _, c := range st.Consultations {
		content += c.Stats().Unread
	}

	scrutiny := 0
	for _, p := range h.ScrutinyPoints {
		scrutiny += severityWeight[p.Severity]
	}
	for _, s := range st.Signals {
		if s.Status != domain.SignalClosed && s.Severity == domain.SeverityHigh {
			scrutiny++
		}
	}

	evidence := h.Evidence.Missing.Value
	for _, e := range st.Evidence {
		if e.Status == domain.EvidenceCommissioned {
			evidence++
		}
	}

	places := h.AllocationRisk.Value + h.MapGaps.Value

	scenarios := h.Scenarios.Stale.Value
	if h.Scenarios.Active == 0 {
		scenarios += 2
	}

	return Intensities{
		Programme:   Bucket(programme),
		PlanContent: Bucket(content),
		Scrutiny:    Bucket(scrutiny),
		Evidence:    Bucket(evidence),
		Places:      Bucket(places),
		Scenarios:   Bucket(scenarios),
	}
}

// CardIntensities computes only the card intensities of the home view.
func CardIntensities(st domain.PlanState, ref Reference, rules Rules) Intensities {
	return Summarize(st, ref, rules, time.Time{}).Intensities
}
