package lifecycle

import (
	"strings"
	"time"

	"planline/internal/dates"
	"planline/internal/domain"
)

const (
	DefaultRespondent = "New respondent"
	DefaultRepSummary = "Summary of representation..."
)

// AddRepresentation appends an unread representation received today.
func AddRepresentation(c domain.Consultation, id string, today dates.Date) (domain.Consultation, domain.Representation) {
	rep := domain.Representation{
		ID:         id,
		Respondent: DefaultRespondent,
		ReceivedAt: today,
		Summary:    DefaultRepSummary,
		Status:     domain.RepresentationUnread,
	}
	c.Representations = append(append([]domain.Representation(nil), c.Representations...), rep)
	return c, rep
}

// nextRepresentationStatus is the only forward successor of s.
func nextRepresentationStatus(s domain.RepresentationStatus) (domain.RepresentationStatus, bool) {
	switch s {
	case domain.RepresentationUnread:
		return domain.RepresentationTriaged, true
	case domain.RepresentationTriaged:
		return domain.RepresentationSummarized, true
	}
	return "", false
}

func ensureRepresentationTransition(oldStatus, newStatus domain.RepresentationStatus) error {
	if !newStatus.Valid() {
		return InvalidInput("representation status", string(newStatus))
	}
	if next, ok := nextRepresentationStatus(oldStatus); ok && next == newStatus {
		return nil
	}
	return newError(KindInvalidTransition,
		map[string]any{"from": string(oldStatus), "to": string(newStatus)},
		"invalid representation transition %s -> %s", oldStatus, newStatus)
}

// AdvanceRepresentation moves one representation forward. Setting the status
// it already has is a no-op; anything other than the direct successor is an
// InvalidTransition.
func AdvanceRepresentation(c domain.Consultation, repID string, status domain.RepresentationStatus) (domain.Consultation, error) {
	i := c.Representation(repID)
	if i < 0 {
		return c, NotFound("representation", repID)
	}
	cur := c.Representations[i].Status
	if cur == status {
		return c, nil
	}
	if err := ensureRepresentationTransition(cur, status); err != nil {
		return c, err
	}
	reps := append([]domain.Representation(nil), c.Representations...)
	reps[i].Status = status
	c.Representations = reps
	return c, nil
}

// UpdateRepresentation edits the free-text fields only. Empty arguments keep
// the current value.
func UpdateRepresentation(c domain.Consultation, repID, respondent, summary string) (domain.Consultation, error) {
	i := c.Representation(repID)
	if i < 0 {
		return c, NotFound("representation", repID)
	}
	reps := append([]domain.Representation(nil), c.Representations...)
	if respondent != "" {
		reps[i].Respondent = respondent
	}
	if summary != "" {
		reps[i].Summary = summary
	}
	c.Representations = reps
	return c, nil
}

// PublishSummary stamps the summary as published at now. It requires at
// least one representation and none unread. Re-publishing overwrites the
// previous stamp.
func PublishSummary(c domain.Consultation, now time.Time) (domain.Consultation, error) {
	st := c.Stats()
	if st.Total == 0 {
		return c, newError(KindPublishBlocked,
			map[string]any{"consultation": string(c.Type), "total": 0},
			"no representations received for the %s consultation", c.Type)
	}
	if st.Unread > 0 {
		return c, newError(KindPublishBlocked,
			map[string]any{"consultation": string(c.Type), "unread": st.Unread},
			"%d unread representation(s) must be triaged before publishing", st.Unread)
	}
	c.SummaryPublishedAt = dates.Published(now)
	return c, nil
}

// SetSummaryDraft replaces the draft text unconditionally.
func SetSummaryDraft(c domain.Consultation, text string) domain.Consultation {
	c.SummaryDraft = text
	return c
}

// ThemeCounts tallies representation summaries by the keyword they mention.
type ThemeCounts struct {
	Support int `json:"support"`
	Concern int `json:"concern"`
	Object  int `json:"object"`
}

// Themes counts summaries mentioning support, concern or objection. A
// summary may count towards more than one theme.
func Themes(c domain.Consultation) ThemeCounts {
	var out ThemeCounts
	for _, r := range c.Representations {
		s := strings.ToLower(r.Summary)
		if strings.Contains(s, "support") {
			out.Support++
		}
		if strings.Contains(s, "concern") {
			out.Concern++
		}
		if strings.Contains(s, "object") {
			out.Object++
		}
	}
	return out
}
