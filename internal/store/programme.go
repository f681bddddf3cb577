package store

import (
	"context"
	"sort"
	"strings"

	"planline/internal/dates"
	"planline/internal/domain"
	"planline/internal/events"
	"planline/internal/lifecycle"
)

// ListMilestones returns milestones ascending by date.
func (s *Store) ListMilestones(ctx context.Context) ([]domain.Milestone, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	return sortedMilestones(st.Milestones), nil
}

func sortedMilestones(ms []domain.Milestone) []domain.Milestone {
	out := append([]domain.Milestone{}, ms...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// UpcomingMilestones returns up to n milestones dated today or later. A
// non-positive n uses the configured limit.
func (s *Store) UpcomingMilestones(ctx context.Context, n int) ([]domain.Milestone, error) {
	if n <= 0 {
		n = s.rules().UpcomingMilestones
	}
	if n <= 0 {
		n = 6
	}
	ms, err := s.ListMilestones(ctx)
	if err != nil {
		return nil, err
	}
	today := s.today()
	out := []domain.Milestone{}
	for _, m := range ms {
		if m.Date.Before(today) {
			continue
		}
		out = append(out, m)
		if len(out) == n {
			break
		}
	}
	return out, nil
}

func milestoneIndex(st *domain.PlanState, id string) int {
	for i, m := range st.Milestones {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// AddMilestone appends a milestone. An empty label or kind uses the defaults
// of a new programme milestone dated today.
func (s *Store) AddMilestone(ctx context.Context, label string, date dates.Date, kind domain.MilestoneKind) (domain.Milestone, error) {
	var m domain.Milestone
	_, err := s.apply(ctx, "milestone.add", func(st *domain.PlanState) (change, error) {
		if kind == "" {
			kind = domain.MilestoneProgramme
		}
		if !kind.Valid() {
			return change{}, lifecycle.InvalidInput("milestone kind", string(kind))
		}
		if strings.TrimSpace(label) == "" {
			label = "New milestone"
		}
		if date.IsZero() {
			date = s.today()
		}
		m = domain.Milestone{ID: s.id("ms"), Label: label, Date: date, Kind: kind}
		st.Milestones = append(st.Milestones, m)
		return change{"milestone", m.ID, events.EventPayload{"label": label, "date": date.String(), "kind": string(kind)}}, nil
	})
	return m, err
}

func (s *Store) SetMilestoneDate(ctx context.Context, id string, date dates.Date) (domain.Milestone, error) {
	var m domain.Milestone
	_, err := s.apply(ctx, "milestone.date", func(st *domain.PlanState) (change, error) {
		i := milestoneIndex(st, id)
		if i < 0 {
			return change{}, lifecycle.NotFound("milestone", id)
		}
		if date.IsZero() {
			return change{}, lifecycle.InvalidInput("milestone date", "")
		}
		st.Milestones[i].Date = date
		m = st.Milestones[i]
		return change{"milestone", id, events.EventPayload{"date": date.String()}}, nil
	})
	return m, err
}

func (s *Store) RenameMilestone(ctx context.Context, id, label string) (domain.Milestone, error) {
	var m domain.Milestone
	_, err := s.apply(ctx, "milestone.rename", func(st *domain.PlanState) (change, error) {
		i := milestoneIndex(st, id)
		if i < 0 {
			return change{}, lifecycle.NotFound("milestone", id)
		}
		st.Milestones[i].Label = label
		m = st.Milestones[i]
		return change{"milestone", id, events.EventPayload{"label": label}}, nil
	})
	return m, err
}

func (s *Store) RemoveMilestone(ctx context.Context, id string) error {
	_, err := s.apply(ctx, "milestone.remove", func(st *domain.PlanState) (change, error) {
		i := milestoneIndex(st, id)
		if i < 0 {
			return change{}, lifecycle.NotFound("milestone", id)
		}
		st.Milestones = append(st.Milestones[:i], st.Milestones[i+1:]...)
		return change{kind: "milestone", id: id}, nil
	})
	return err
}

func (s *Store) PublishTimetable(ctx context.Context) (domain.PlanState, error) {
	return s.apply(ctx, "timetable.publish", func(st *domain.PlanState) (change, error) {
		*st = lifecycle.PublishTimetable(*st, s.now())
		return change{kind: "timetable", id: st.PlanID}, nil
	})
}

// PublishNotice fails with TimetableNotPublished until the timetable is out.
func (s *Store) PublishNotice(ctx context.Context) (domain.PlanState, error) {
	return s.apply(ctx, "notice.publish", func(st *domain.PlanState) (change, error) {
		next, err := lifecycle.PublishNotice(*st, s.now())
		if err != nil {
			return change{}, err
		}
		*st = next
		return change{kind: "notice", id: st.PlanID}, nil
	})
}

// CloseScoping records the scoping end date; the zero date clears it.
func (s *Store) CloseScoping(ctx context.Context, end dates.Date) (domain.PlanState, error) {
	return s.apply(ctx, "scoping.close", func(st *domain.PlanState) (change, error) {
		*st = lifecycle.CloseScoping(*st, end)
		return change{"consultation", st.Consultations[domain.ConsultationScoping].ID, events.EventPayload{"end": end.String()}}, nil
	})
}

func (s *Store) PublishVisionOutcomes(ctx context.Context) (domain.PlanState, error) {
	return s.apply(ctx, "vision.publish", func(st *domain.PlanState) (change, error) {
		*st = lifecycle.PublishVisionOutcomes(*st, s.now())
		return change{kind: "vision", id: st.PlanID}, nil
	})
}

func (s *Store) SetStage(ctx context.Context, key domain.StageKey) (domain.Stage, error) {
	var stage domain.Stage
	_, err := s.apply(ctx, "stage.set", func(st *domain.PlanState) (change, error) {
		next, err := lifecycle.SetStage(*st, key)
		if err != nil {
			return change{}, err
		}
		*st = next
		stage = domain.Stages[domain.StageIndex(key)]
		return change{kind: "stage", id: string(key)}, nil
	})
	return stage, err
}

func (s *Store) StageRibbon(ctx context.Context) ([]lifecycle.StageEntry, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	return lifecycle.StageRibbon(st.ActiveStage), nil
}
