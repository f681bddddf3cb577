package store

import (
	"context"

	"planline/internal/domain"
	"planline/internal/events"
	"planline/internal/lifecycle"
)

// SignalPatch edits a monitoring signal. Nil fields are left alone.
type SignalPatch struct {
	Indicator *string
	Baseline  *string
	Current   *string
	Target    *string
	Notes     *string
	Trend     *domain.Trend
	Severity  *domain.Severity
	Status    *domain.SignalStatus
}

func (p SignalPatch) validate() error {
	if p.Trend != nil && !p.Trend.Valid() {
		return lifecycle.InvalidInput("trend", string(*p.Trend))
	}
	if p.Severity != nil && !p.Severity.Valid() {
		return lifecycle.InvalidInput("severity", string(*p.Severity))
	}
	if p.Status != nil && !p.Status.Valid() {
		return lifecycle.InvalidInput("signal status", string(*p.Status))
	}
	return nil
}

func (p SignalPatch) applyTo(sig *domain.MonitoringSignal) {
	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setString(&sig.Indicator, p.Indicator)
	setString(&sig.Baseline, p.Baseline)
	setString(&sig.Current, p.Current)
	setString(&sig.Target, p.Target)
	setString(&sig.Notes, p.Notes)
	if p.Trend != nil {
		sig.Trend = *p.Trend
	}
	if p.Severity != nil {
		sig.Severity = *p.Severity
	}
	if p.Status != nil {
		sig.Status = *p.Status
	}
}

// SignalFilter selects signals; empty fields mean all.
type SignalFilter struct {
	Status   domain.SignalStatus
	Severity domain.Severity
}

func (s *Store) ListSignals(ctx context.Context, f SignalFilter) ([]domain.MonitoringSignal, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.MonitoringSignal{}
	for _, sig := range st.Signals {
		if f.Status != "" && sig.Status != f.Status {
			continue
		}
		if f.Severity != "" && sig.Severity != f.Severity {
			continue
		}
		out = append(out, sig)
	}
	return out, nil
}

// SignalStats counts signals by status, severity and trend.
type SignalStats struct {
	Total      int                         `json:"total"`
	ByStatus   map[domain.SignalStatus]int `json:"by_status"`
	BySeverity map[domain.Severity]int     `json:"by_severity"`
	ByTrend    map[domain.Trend]int        `json:"by_trend"`
}

func (s *Store) SignalStats(ctx context.Context) (SignalStats, error) {
	sigs, err := s.ListSignals(ctx, SignalFilter{})
	if err != nil {
		return SignalStats{}, err
	}
	stats := SignalStats{
		Total:      len(sigs),
		ByStatus:   map[domain.SignalStatus]int{},
		BySeverity: map[domain.Severity]int{},
		ByTrend:    map[domain.Trend]int{},
	}
	for _, sig := range sigs {
		stats.ByStatus[sig.Status]++
		stats.BySeverity[sig.Severity]++
		stats.ByTrend[sig.Trend]++
	}
	return stats, nil
}

// AddSignal appends an open, stable, medium-severity indicator.
func (s *Store) AddSignal(ctx context.Context) (domain.MonitoringSignal, error) {
	var sig domain.MonitoringSignal
	_, err := s.apply(ctx, "signal.add", func(st *domain.PlanState) (change, error) {
		sig = domain.MonitoringSignal{
			ID:        s.id("sig"),
			Indicator: "New indicator",
			Trend:     domain.TrendStable,
			Severity:  domain.SeverityMedium,
			Status:    domain.SignalOpen,
		}
		st.Signals = append(st.Signals, sig)
		return change{kind: "signal", id: sig.ID}, nil
	})
	return sig, err
}

func (s *Store) UpdateSignal(ctx context.Context, id string, p SignalPatch) (domain.MonitoringSignal, error) {
	var sig domain.MonitoringSignal
	_, err := s.apply(ctx, "signal.update", func(st *domain.PlanState) (change, error) {
		if err := p.validate(); err != nil {
			return change{}, err
		}
		for i := range st.Signals {
			if st.Signals[i].ID == id {
				p.applyTo(&st.Signals[i])
				sig = st.Signals[i]
				return change{"signal", id, events.EventPayload{"status": string(sig.Status), "severity": string(sig.Severity)}}, nil
			}
		}
		return change{}, lifecycle.NotFound("signal", id)
	})
	return sig, err
}

func (s *Store) RemoveSignal(ctx context.Context, id string) error {
	_, err := s.apply(ctx, "signal.remove", func(st *domain.PlanState) (change, error) {
		for i := range st.Signals {
			if st.Signals[i].ID == id {
				st.Signals = append(st.Signals[:i], st.Signals[i+1:]...)
				return change{kind: "signal", id: id}, nil
			}
		}
		return change{}, lifecycle.NotFound("signal", id)
	})
	return err
}
