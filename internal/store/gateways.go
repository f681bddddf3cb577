package store

import (
	"context"
	"time"

	"planline/internal/domain"
	"planline/internal/events"
	"planline/internal/lifecycle"
	"planline/internal/readiness"
)

func gatewayOf(st *domain.PlanState, g domain.GatewayType) (domain.Gateway, error) {
	if !g.Valid() {
		return domain.Gateway{}, lifecycle.InvalidInput("gateway", string(g))
	}
	return st.Gateways[g], nil
}

func (s *Store) GetGateway(ctx context.Context, g domain.GatewayType) (domain.Gateway, error) {
	if !g.Valid() {
		return domain.Gateway{}, lifecycle.InvalidInput("gateway", string(g))
	}
	st, err := s.State(ctx)
	if err != nil {
		return domain.Gateway{}, err
	}
	return st.Gateways[g], nil
}

// transitionGateway applies a gateway transition with readiness computed from
// the same snapshot the transition sees.
func (s *Store) transitionGateway(ctx context.Context, op string, g domain.GatewayType,
	fn func(gw domain.Gateway, r readiness.Readiness, now time.Time) (domain.Gateway, error)) (domain.Gateway, error) {
	st, err := s.apply(ctx, op, func(st *domain.PlanState) (change, error) {
		gw, err := gatewayOf(st, g)
		if err != nil {
			return change{}, err
		}
		r := readiness.Compute(g, readiness.FromState(*st, s.leadMonths()))
		from := gw.Status
		gw, err = fn(gw, r, s.now())
		if err != nil {
			return change{}, err
		}
		st.Gateways[g] = gw
		return change{"gateway", string(g), events.EventPayload{"from": string(from), "to": string(gw.Status)}}, nil
	})
	if err != nil {
		return domain.Gateway{}, err
	}
	return st.Gateways[g], nil
}

func (s *Store) MarkPackDrafting(ctx context.Context, g domain.GatewayType) (domain.Gateway, error) {
	return s.transitionGateway(ctx, "gateway.drafting", g, func(gw domain.Gateway, _ readiness.Readiness, _ time.Time) (domain.Gateway, error) {
		return lifecycle.MarkPackDrafting(gw)
	})
}

// SubmitGateway fails with NotReady whenever readiness for g is false.
func (s *Store) SubmitGateway(ctx context.Context, g domain.GatewayType) (domain.Gateway, error) {
	return s.transitionGateway(ctx, "gateway.submit", g, lifecycle.Submit)
}

func (s *Store) ReceiveGatewayAdvice(ctx context.Context, g domain.GatewayType) (domain.Gateway, error) {
	return s.transitionGateway(ctx, "gateway.receive_advice", g, func(gw domain.Gateway, _ readiness.Readiness, now time.Time) (domain.Gateway, error) {
		return lifecycle.ReceiveAdvice(gw, now)
	})
}

func (s *Store) PublishGatewayAdvice(ctx context.Context, g domain.GatewayType) (domain.Gateway, error) {
	return s.transitionGateway(ctx, "gateway.publish_advice", g, func(gw domain.Gateway, _ readiness.Readiness, now time.Time) (domain.Gateway, error) {
		return lifecycle.PublishAdvice(gw, now)
	})
}

func (s *Store) MarkGatewayPassed(ctx context.Context, g domain.GatewayType) (domain.Gateway, error) {
	return s.transitionGateway(ctx, "gateway.passed", g, func(gw domain.Gateway, _ readiness.Readiness, _ time.Time) (domain.Gateway, error) {
		return lifecycle.MarkPassed(gw)
	})
}

func (s *Store) MarkGatewayNotPassed(ctx context.Context, g domain.GatewayType) (domain.Gateway, error) {
	return s.transitionGateway(ctx, "gateway.not_passed", g, func(gw domain.Gateway, _ readiness.Readiness, _ time.Time) (domain.Gateway, error) {
		return lifecycle.MarkNotPassed(gw)
	})
}

// PublishGatewaySummary publishes the G1 summary and passes the gateway.
func (s *Store) PublishGatewaySummary(ctx context.Context, g domain.GatewayType) (domain.Gateway, error) {
	return s.transitionGateway(ctx, "gateway.publish_summary", g, lifecycle.PublishGatewaySummary)
}

// SetGatewayStatus routes a requested status through the matching
// transition, so it enforces the same rules as the dedicated operations.
func (s *Store) SetGatewayStatus(ctx context.Context, g domain.GatewayType, status domain.GatewayStatus) (domain.Gateway, error) {
	return s.transitionGateway(ctx, "gateway.status", g, func(gw domain.Gateway, r readiness.Readiness, now time.Time) (domain.Gateway, error) {
		return lifecycle.SetStatus(gw, status, r, now)
	})
}

// SubmissionOpen reports whether G3 has passed.
func (s *Store) SubmissionOpen(ctx context.Context) (bool, error) {
	gw, err := s.GetGateway(ctx, domain.GatewayG3)
	if err != nil {
		return false, err
	}
	return readiness.SubmissionOpen(gw), nil
}

func (s *Store) AddGatewayAction(ctx context.Context, g domain.GatewayType, title string) (domain.Action, error) {
	var a domain.Action
	_, err := s.apply(ctx, "gateway.action.add", func(st *domain.PlanState) (change, error) {
		gw, err := gatewayOf(st, g)
		if err != nil {
			return change{}, err
		}
		gw, a = lifecycle.AddAction(gw, s.id("act"), title)
		st.Gateways[g] = gw
		return change{"action", a.ID, events.EventPayload{"gateway": string(g), "title": a.Title}}, nil
	})
	return a, err
}

func (s *Store) ToggleGatewayAction(ctx context.Context, g domain.GatewayType, actionID string) (domain.Gateway, error) {
	st, err := s.apply(ctx, "gateway.action.toggle", func(st *domain.PlanState) (change, error) {
		gw, err := gatewayOf(st, g)
		if err != nil {
			return change{}, err
		}
		gw, err = lifecycle.ToggleAction(gw, actionID)
		if err != nil {
			return change{}, err
		}
		st.Gateways[g] = gw
		return change{"action", actionID, events.EventPayload{"gateway": string(g)}}, nil
	})
	if err != nil {
		return domain.Gateway{}, err
	}
	return st.Gateways[g], nil
}

func (s *Store) RenameGatewayAction(ctx context.Context, g domain.GatewayType, actionID, title string) (domain.Gateway, error) {
	st, err := s.apply(ctx, "gateway.action.rename", func(st *domain.PlanState) (change, error) {
		gw, err := gatewayOf(st, g)
		if err != nil {
			return change{}, err
		}
		gw, err = lifecycle.RenameAction(gw, actionID, title)
		if err != nil {
			return change{}, err
		}
		st.Gateways[g] = gw
		return change{"action", actionID, events.EventPayload{"gateway": string(g), "title": title}}, nil
	})
	if err != nil {
		return domain.Gateway{}, err
	}
	return st.Gateways[g], nil
}
