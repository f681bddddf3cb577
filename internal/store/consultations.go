package store

import (
	"context"

	"planline/internal/domain"
	"planline/internal/events"
	"planline/internal/lifecycle"
)

func consultationOf(st *domain.PlanState, ct domain.ConsultationType) (domain.Consultation, error) {
	if !ct.Valid() {
		return domain.Consultation{}, lifecycle.InvalidInput("consultation type", string(ct))
	}
	return st.Consultations[ct], nil
}

func (s *Store) GetConsultation(ctx context.Context, ct domain.ConsultationType) (domain.Consultation, error) {
	if !ct.Valid() {
		return domain.Consultation{}, lifecycle.InvalidInput("consultation type", string(ct))
	}
	st, err := s.State(ctx)
	if err != nil {
		return domain.Consultation{}, err
	}
	return st.Consultations[ct], nil
}

// ConsultationStats returns the representation counts of a consultation.
func (s *Store) ConsultationStats(ctx context.Context, ct domain.ConsultationType) (domain.RepresentationStats, error) {
	c, err := s.GetConsultation(ctx, ct)
	if err != nil {
		return domain.RepresentationStats{}, err
	}
	return c.Stats(), nil
}

func (s *Store) Themes(ctx context.Context, ct domain.ConsultationType) (lifecycle.ThemeCounts, error) {
	c, err := s.GetConsultation(ctx, ct)
	if err != nil {
		return lifecycle.ThemeCounts{}, err
	}
	return lifecycle.Themes(c), nil
}

func (s *Store) AddRepresentation(ctx context.Context, ct domain.ConsultationType) (domain.Representation, error) {
	var rep domain.Representation
	_, err := s.apply(ctx, "representation.add", func(st *domain.PlanState) (change, error) {
		c, err := consultationOf(st, ct)
		if err != nil {
			return change{}, err
		}
		c, rep = lifecycle.AddRepresentation(c, s.id("rep"), s.today())
		st.Consultations[ct] = c
		return change{"representation", rep.ID, events.EventPayload{"consultation": string(ct)}}, nil
	})
	return rep, err
}

// SetRepresentationStatus advances a representation through
// unread, triaged and summarized.
func (s *Store) SetRepresentationStatus(ctx context.Context, ct domain.ConsultationType, repID string, status domain.RepresentationStatus) (domain.Representation, error) {
	st, err := s.apply(ctx, "representation.status", func(st *domain.PlanState) (change, error) {
		c, err := consultationOf(st, ct)
		if err != nil {
			return change{}, err
		}
		c, err = lifecycle.AdvanceRepresentation(c, repID, status)
		if err != nil {
			return change{}, err
		}
		st.Consultations[ct] = c
		return change{"representation", repID, events.EventPayload{"consultation": string(ct), "status": string(status)}}, nil
	})
	if err != nil {
		return domain.Representation{}, err
	}
	c := st.Consultations[ct]
	return c.Representations[c.Representation(repID)], nil
}

// UpdateRepresentation edits respondent and summary text. Status is never
// touched here.
func (s *Store) UpdateRepresentation(ctx context.Context, ct domain.ConsultationType, repID, respondent, text string) (domain.Representation, error) {
	st, err := s.apply(ctx, "representation.update", func(st *domain.PlanState) (change, error) {
		c, err := consultationOf(st, ct)
		if err != nil {
			return change{}, err
		}
		c, err = lifecycle.UpdateRepresentation(c, repID, respondent, text)
		if err != nil {
			return change{}, err
		}
		st.Consultations[ct] = c
		return change{"representation", repID, events.EventPayload{"consultation": string(ct)}}, nil
	})
	if err != nil {
		return domain.Representation{}, err
	}
	c := st.Consultations[ct]
	return c.Representations[c.Representation(repID)], nil
}

// EditRepresentation applies a text edit and an optional status change as one
// mutation. If the status change is rejected neither is saved.
func (s *Store) EditRepresentation(ctx context.Context, ct domain.ConsultationType, repID, respondent, text string, status *domain.RepresentationStatus) (domain.Representation, error) {
	st, err := s.apply(ctx, "representation.edit", func(st *domain.PlanState) (change, error) {
		c, err := consultationOf(st, ct)
		if err != nil {
			return change{}, err
		}
		if c.Representation(repID) < 0 {
			return change{}, lifecycle.NotFound("representation", repID)
		}
		payload := events.EventPayload{"consultation": string(ct)}
		if respondent != "" || text != "" {
			if c, err = lifecycle.UpdateRepresentation(c, repID, respondent, text); err != nil {
				return change{}, err
			}
		}
		if status != nil {
			if c, err = lifecycle.AdvanceRepresentation(c, repID, *status); err != nil {
				return change{}, err
			}
			payload["status"] = string(*status)
		}
		st.Consultations[ct] = c
		return change{"representation", repID, payload}, nil
	})
	if err != nil {
		return domain.Representation{}, err
	}
	c := st.Consultations[ct]
	return c.Representations[c.Representation(repID)], nil
}

func (s *Store) PublishConsultationSummary(ctx context.Context, ct domain.ConsultationType) (domain.Consultation, error) {
	st, err := s.apply(ctx, "consultation.publish_summary", func(st *domain.PlanState) (change, error) {
		c, err := consultationOf(st, ct)
		if err != nil {
			return change{}, err
		}
		c, err = lifecycle.PublishSummary(c, s.now())
		if err != nil {
			return change{}, err
		}
		st.Consultations[ct] = c
		return change{"consultation", c.ID, events.EventPayload{"type": string(ct), "published_at": c.SummaryPublishedAt.String()}}, nil
	})
	if err != nil {
		return domain.Consultation{}, err
	}
	return st.Consultations[ct], nil
}

func (s *Store) SetSummaryDraft(ctx context.Context, ct domain.ConsultationType, text string) (domain.Consultation, error) {
	st, err := s.apply(ctx, "consultation.draft", func(st *domain.PlanState) (change, error) {
		c, err := consultationOf(st, ct)
		if err != nil {
			return change{}, err
		}
		c = lifecycle.SetSummaryDraft(c, text)
		st.Consultations[ct] = c
		return change{"consultation", c.ID, events.EventPayload{"type": string(ct), "length": len(text)}}, nil
	})
	if err != nil {
		return domain.Consultation{}, err
	}
	return st.Consultations[ct], nil
}
