package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"planline/internal/dates"
	"planline/internal/domain"
	"planline/internal/events"
	"planline/internal/lifecycle"
)

func (s *Store) ListPlans() []domain.Plan {
	if s.Config == nil {
		return nil
	}
	return append([]domain.Plan{}, s.Config.Plans...)
}

func (s *Store) ActivePlan(ctx context.Context) (domain.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.activePlanLocked(ctx)
	if err != nil {
		return domain.Plan{}, err
	}
	return s.planByID(id)
}

func (s *Store) planByID(id string) (domain.Plan, error) {
	if s.Config == nil {
		return domain.Plan{}, errors.New("config not loaded")
	}
	p, ok := s.Config.Plan(id)
	if !ok {
		return domain.Plan{}, lifecycle.NotFound("plan", id)
	}
	return p, nil
}

// SwitchPlan makes id the active plan. Plan records are not modified; each
// plan keeps its own state.
func (s *Store) SwitchPlan(ctx context.Context, id string) (domain.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.planByID(id)
	if err != nil {
		s.Metrics.rejected("plan.switch", string(lifecycle.KindOf(err)))
		return domain.Plan{}, err
	}
	ev := events.Entry{Type: "plan.switch", PlanID: id, EntityKind: "plan", EntityID: id, ActorID: s.actor(ctx)}
	if err := s.Persist.SetActivePlan(ctx, id, ev); err != nil {
		s.Metrics.failed("plan.switch")
		return domain.Plan{}, fmt.Errorf("switch plan: %w", err)
	}
	s.activeID = id
	s.Metrics.applied("plan.switch")
	s.log().Debug("active plan switched", zap.String("plan_id", id))
	return p, nil
}

func (s *Store) ReadingProfiles() []domain.ReadingProfile {
	if s.Config == nil {
		return nil
	}
	return append([]domain.ReadingProfile{}, s.Config.Readings...)
}

// Reading returns the selected reading profile of the active plan.
func (s *Store) Reading(ctx context.Context) (domain.ReadingProfile, error) {
	st, err := s.State(ctx)
	if err != nil {
		return domain.ReadingProfile{}, err
	}
	return s.reference(st).Reading, nil
}

// SelectReading switches the reading profile and records when it changed.
func (s *Store) SelectReading(ctx context.Context, id string) (domain.ReadingProfile, error) {
	var rp domain.ReadingProfile
	_, err := s.apply(ctx, "reading.select", func(st *domain.PlanState) (change, error) {
		if s.Config == nil {
			return change{}, errors.New("config not loaded")
		}
		found, ok := s.Config.Reading(id)
		if !ok {
			return change{}, lifecycle.NotFound("reading", id)
		}
		rp = found
		st.ReadingID = id
		st.ReadingChangedAt = dates.Published(s.now())
		return change{kind: "reading", id: id}, nil
	})
	return rp, err
}

func (s *Store) Pressures() []domain.Pressure {
	if s.Config == nil {
		return nil
	}
	return append([]domain.Pressure{}, s.Config.Pressures...)
}
