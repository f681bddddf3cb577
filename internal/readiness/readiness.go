package readiness

import (
	"fmt"

	"planline/internal/dates"
	"planline/internal/domain"
)

// DefaultNoticeLeadMonths is the minimum gap between the notice and Gateway 1.
const DefaultNoticeLeadMonths = 4

const (
	CodeNoticeNotPublished         = "NOTICE_NOT_PUBLISHED"
	CodeScopingNotClosed           = "SCOPING_NOT_CLOSED"
	CodeContentSummaryUnpublished  = "CONTENT_SUMMARY_UNPUBLISHED"
	CodeProposedSummaryUnpublished = "PROPOSED_SUMMARY_UNPUBLISHED"
	CodeUnknownGateway             = "UNKNOWN_GATEWAY"
)

// Readiness is the verdict for one gateway. Reason and Code are set only when
// OK is false; Hint is advisory and never blocks.
type Readiness struct {
	Gateway domain.GatewayType `json:"gateway"`
	OK      bool               `json:"ok"`
	Code    string             `json:"code,omitempty"`
	Reason  string             `json:"reason,omitempty"`
	Hint    string             `json:"hint,omitempty"`
}

// Inputs is the slice of plan state readiness depends on.
type Inputs struct {
	Milestones        []domain.Milestone
	Consultations     map[domain.ConsultationType]domain.Consultation
	NoticePublishedAt dates.Stamp
	ScopingEnd        dates.Date
	NoticeLeadMonths  int
}

// FromState extracts readiness inputs from a plan snapshot.
func FromState(st domain.PlanState, leadMonths int) Inputs {
	return Inputs{
		Milestones:        st.Milestones,
		Consultations:     st.Consultations,
		NoticePublishedAt: st.NoticePublishedAt,
		ScopingEnd:        st.ScopingEnd,
		NoticeLeadMonths:  leadMonths,
	}
}

// Compute evaluates the precondition for gateway g. It never mutates its
// inputs and has no failure path: missing inputs produce a blocked verdict.
func Compute(g domain.GatewayType, in Inputs) Readiness {
	switch g {
	case domain.GatewayG1:
		return gatewayOne(in)
	case domain.GatewayG2:
		return summaryPublished(g, in, domain.ConsultationContent,
			CodeContentSummaryUnpublished, "Publish the content & evidence consultation summary first")
	case domain.GatewayG3:
		return summaryPublished(g, in, domain.ConsultationProposed,
			CodeProposedSummaryUnpublished, "Publish the proposed plan consultation summary first")
	default:
		return Readiness{Gateway: g, Code: CodeUnknownGateway, Reason: fmt.Sprintf("unknown gateway %q", g)}
	}
}

// All computes readiness for G1, G2 and G3 in order.
func All(in Inputs) []Readiness {
	out := make([]Readiness, 0, len(domain.GatewayTypes))
	for _, g := range domain.GatewayTypes {
		out = append(out, Compute(g, in))
	}
	return out
}

func gatewayOne(in Inputs) Readiness {
	r := Readiness{Gateway: domain.GatewayG1}
	if earliest, ok := EarliestGatewayOne(in.NoticePublishedAt, in.ScopingEnd, in.NoticeLeadMonths); ok {
		r.Hint = "Earliest publish date: " + earliest.String()
	}
	if !in.NoticePublishedAt.IsPublished() {
		r.Code = CodeNoticeNotPublished
		r.Reason = "Publish notice first"
		return r
	}
	if in.ScopingEnd.IsZero() {
		r.Code = CodeScopingNotClosed
		r.Reason = "Close scoping consultation (end date required)"
		return r
	}
	r.OK = true
	return r
}

// EarliestGatewayOne is max(notice + lead months, scoping end). It is only
// defined once the notice is published; an unset scoping end is ignored.
func EarliestGatewayOne(notice dates.Stamp, scopingEnd dates.Date, leadMonths int) (dates.Date, bool) {
	if !notice.IsPublished() {
		return dates.Date{}, false
	}
	if leadMonths <= 0 {
		leadMonths = DefaultNoticeLeadMonths
	}
	return dates.MaxDate(dates.AddMonths(notice.Day(), leadMonths), scopingEnd), true
}

func summaryPublished(g domain.GatewayType, in Inputs, ct domain.ConsultationType, code, reason string) Readiness {
	c, ok := in.Consultations[ct]
	if ok && c.SummaryPublishedAt.IsPublished() {
		return Readiness{Gateway: g, OK: true}
	}
	return Readiness{Gateway: g, Code: code, Reason: reason}
}

// SubmissionOpen reports whether the plan may move to submission, which
// requires Gateway 3 to have passed.
func SubmissionOpen(g3 domain.Gateway) bool {
	return g3.Status == domain.GatewayPassed
}
