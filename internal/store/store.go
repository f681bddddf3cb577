package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"planline/internal/config"
	"planline/internal/dates"
	"planline/internal/domain"
	"planline/internal/events"
	"planline/internal/lifecycle"
	"planline/internal/readiness"
	"planline/internal/summary"
)

// Store owns the state of every plan in a workspace and is the only way to
// change it. Mutations are serialized; each one is applied to a copy, saved
// with its audit event, and only then made visible.
type Store struct {
	Persist Persister
	Config  *config.Config
	Log     *zap.Logger
	Metrics *Metrics
	Now     func() time.Time
	NewID   func(prefix string) string
	ActorID string

	mu       sync.Mutex
	activeID string
	states   map[string]domain.PlanState
}

func New(p Persister, cfg *config.Config) *Store {
	return &Store{
		Persist: p,
		Config:  cfg,
		Log:     zap.NewNop(),
		Now:     time.Now,
		NewID:   newID,
		states:  map[string]domain.PlanState{},
	}
}

func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// now is truncated to the second so stored and in-memory stamps agree.
func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now().Truncate(time.Second)
	}
	return time.Now().Truncate(time.Second)
}

func (s *Store) today() dates.Date { return dates.Today(s.now()) }

func (s *Store) id(prefix string) string {
	if s.NewID != nil {
		return s.NewID(prefix)
	}
	return newID(prefix)
}

type actorKey struct{}

// WithActor attributes mutations made with ctx to actorID in the audit log.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

func (s *Store) actor(ctx context.Context) string {
	if id, ok := ctx.Value(actorKey{}).(string); ok && id != "" {
		return id
	}
	return s.ActorID
}

func (s *Store) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Store) rules() config.Rules {
	if s.Config == nil {
		return config.Rules{}
	}
	return s.Config.Rules
}

func (s *Store) leadMonths() int {
	if n := s.rules().NoticeLeadMonths; n > 0 {
		return n
	}
	return readiness.DefaultNoticeLeadMonths
}

// activePlanLocked resolves the active plan id, loading the persisted
// selection on first use.
func (s *Store) activePlanLocked(ctx context.Context) (string, error) {
	if s.activeID != "" {
		return s.activeID, nil
	}
	id, err := s.Persist.ActivePlan(ctx)
	if err != nil {
		return "", fmt.Errorf("load active plan: %w", err)
	}
	if id == "" && s.Config != nil {
		id = s.Config.DefaultPlanID()
	}
	if id == "" {
		return "", errors.New("no plan configured")
	}
	s.activeID = id
	return id, nil
}

// stateLocked returns the cached state of planID, loading or seeding it.
func (s *Store) stateLocked(ctx context.Context, planID string) (domain.PlanState, error) {
	if st, ok := s.states[planID]; ok {
		return st, nil
	}
	st, err := s.Persist.Load(ctx, planID)
	if errors.Is(err, ErrNoState) {
		st = s.seed(planID)
		ev := events.Entry{Type: "plan.seed", PlanID: planID, EntityKind: "plan", EntityID: planID, ActorID: s.actor(ctx)}
		if err := s.Persist.Save(ctx, st, ev); err != nil {
			return domain.PlanState{}, fmt.Errorf("seed plan %s: %w", planID, err)
		}
		s.log().Info("seeded plan state", zap.String("plan_id", planID))
	} else if err != nil {
		return domain.PlanState{}, fmt.Errorf("load plan %s: %w", planID, err)
	}
	s.states[planID] = st
	return st, nil
}

func (s *Store) seed(planID string) domain.PlanState {
	if s.Config == nil {
		return domain.NewPlanState(planID)
	}
	return s.Config.SeedState(planID, s.today(), s.id)
}

// State returns a copy of the active plan's state.
func (s *Store) State(ctx context.Context) (domain.PlanState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.activePlanLocked(ctx)
	if err != nil {
		return domain.PlanState{}, err
	}
	st, err := s.stateLocked(ctx, id)
	if err != nil {
		return domain.PlanState{}, err
	}
	return st.Clone(), nil
}

// change describes the entity a mutation touched, for the audit log.
type change struct {
	kind    string
	id      string
	payload events.EventPayload
}

// apply runs fn against a copy of the active plan's state. The copy replaces
// the current state only after it has been saved; on any error the current
// state is returned unchanged.
func (s *Store) apply(ctx context.Context, op string, fn func(st *domain.PlanState) (change, error)) (domain.PlanState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	planID, err := s.activePlanLocked(ctx)
	if err != nil {
		return domain.PlanState{}, err
	}
	cur, err := s.stateLocked(ctx, planID)
	if err != nil {
		return domain.PlanState{}, err
	}
	next := cur.Clone()
	ch, err := fn(&next)
	if err != nil {
		kind := lifecycle.KindOf(err)
		s.Metrics.rejected(op, string(kind))
		s.log().Info("mutation rejected",
			zap.String("plan_id", planID), zap.String("op", op),
			zap.String("kind", string(kind)), zap.Error(err))
		return cur.Clone(), err
	}
	ev := events.Entry{
		Type:       op,
		PlanID:     planID,
		EntityKind: ch.kind,
		EntityID:   ch.id,
		ActorID:    s.actor(ctx),
		Payload:    ch.payload,
	}
	if err := s.Persist.Save(ctx, next, ev); err != nil {
		s.Metrics.failed(op)
		s.log().Error("save failed", zap.String("plan_id", planID), zap.String("op", op), zap.Error(err))
		return cur.Clone(), fmt.Errorf("save %s: %w", op, err)
	}
	s.states[planID] = next
	s.Metrics.applied(op)
	s.log().Debug("mutation applied",
		zap.String("plan_id", planID), zap.String("op", op),
		zap.String("entity_kind", ch.kind), zap.String("entity_id", ch.id))
	return next.Clone(), nil
}

// Readiness computes readiness for one gateway from current state.
func (s *Store) Readiness(ctx context.Context, g domain.GatewayType) (readiness.Readiness, error) {
	if !g.Valid() {
		return readiness.Readiness{}, lifecycle.InvalidInput("gateway", string(g))
	}
	st, err := s.State(ctx)
	if err != nil {
		return readiness.Readiness{}, err
	}
	return readiness.Compute(g, readiness.FromState(st, s.leadMonths())), nil
}

// AllReadiness computes readiness for G1, G2 and G3.
func (s *Store) AllReadiness(ctx context.Context) ([]readiness.Readiness, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	return readiness.All(readiness.FromState(st, s.leadMonths())), nil
}

func (s *Store) summaryRules() summary.Rules {
	r := s.rules()
	return summary.Rules{
		NextDates:        r.NextDates,
		ScrutinyPoints:   r.ScrutinyPoints,
		ImpactsCap:       r.ImpactsCap,
		NoticeLeadMonths: s.leadMonths(),
	}
}

func (s *Store) reference(st domain.PlanState) summary.Reference {
	if s.Config == nil {
		return summary.Reference{}
	}
	rp, _ := s.Config.Reading(st.ReadingID)
	return summary.Reference{Pressures: s.Config.Pressures, Reading: rp}
}

// SummarizeHome projects the active plan into the home dashboard.
func (s *Store) SummarizeHome(ctx context.Context) (summary.HomeSummary, error) {
	st, err := s.State(ctx)
	if err != nil {
		return summary.HomeSummary{}, err
	}
	return summary.Summarize(st, s.reference(st), s.summaryRules(), s.now()), nil
}

// Intensities returns the home card intensities of the active plan.
func (s *Store) Intensities(ctx context.Context) (summary.Intensities, error) {
	st, err := s.State(ctx)
	if err != nil {
		return summary.Intensities{}, err
	}
	return summary.CardIntensities(st, s.reference(st), s.summaryRules()), nil
}
