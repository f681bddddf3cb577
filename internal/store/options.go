package store

import (
	"context"
	"fmt"

	"planline/internal/domain"
	"planline/internal/events"
	"planline/internal/lifecycle"
)

// ProConSide selects the pros or cons list of an option.
type ProConSide string

const (
	SidePros ProConSide = "pros"
	SideCons ProConSide = "cons"
)

// OptionPatch edits an option's free text; nil fields are left alone.
type OptionPatch struct {
	Label       *string
	Description *string
}

// VariantPatch edits a variant's free text; nil fields are left alone.
type VariantPatch struct {
	Label    *string
	Tweaks   *string
	Outcomes *string
}

func optionIndex(st *domain.PlanState, id string) (int, error) {
	for i, o := range st.Options {
		if o.ID == id {
			return i, nil
		}
	}
	return -1, lifecycle.NotFound("option", id)
}

func (s *Store) ListOptions(ctx context.Context) ([]domain.Option, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	return st.Options, nil
}

func (s *Store) ListSnapshots(ctx context.Context) ([]domain.Snapshot, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	return st.Snapshots, nil
}

func (s *Store) AddOption(ctx context.Context) (domain.Option, error) {
	var opt domain.Option
	_, err := s.apply(ctx, "option.add", func(st *domain.PlanState) (change, error) {
		opt = domain.Option{
			ID:       s.id("opt"),
			Label:    "New option",
			Pros:     []domain.ProCon{},
			Cons:     []domain.ProCon{},
			Variants: []domain.Variant{},
		}
		st.Options = append(st.Options, opt)
		return change{kind: "option", id: opt.ID}, nil
	})
	return opt, err
}

func (s *Store) UpdateOption(ctx context.Context, id string, p OptionPatch) (domain.Option, error) {
	var opt domain.Option
	_, err := s.apply(ctx, "option.update", func(st *domain.PlanState) (change, error) {
		i, err := optionIndex(st, id)
		if err != nil {
			return change{}, err
		}
		if p.Label != nil {
			st.Options[i].Label = *p.Label
		}
		if p.Description != nil {
			st.Options[i].Description = *p.Description
		}
		opt = st.Options[i]
		return change{"option", id, events.EventPayload{"label": opt.Label}}, nil
	})
	return opt, err
}

func (s *Store) RemoveOption(ctx context.Context, id string) error {
	_, err := s.apply(ctx, "option.remove", func(st *domain.PlanState) (change, error) {
		i, err := optionIndex(st, id)
		if err != nil {
			return change{}, err
		}
		st.Options = append(st.Options[:i], st.Options[i+1:]...)
		return change{kind: "option", id: id}, nil
	})
	return err
}

func sideOf(o *domain.Option, side ProConSide) (*[]domain.ProCon, error) {
	switch side {
	case SidePros:
		return &o.Pros, nil
	case SideCons:
		return &o.Cons, nil
	}
	return nil, lifecycle.InvalidInput("side", string(side))
}

func (s *Store) AddProCon(ctx context.Context, optionID string, side ProConSide, text string) (domain.ProCon, error) {
	var pc domain.ProCon
	_, err := s.apply(ctx, "option.procon.add", func(st *domain.PlanState) (change, error) {
		i, err := optionIndex(st, optionID)
		if err != nil {
			return change{}, err
		}
		list, err := sideOf(&st.Options[i], side)
		if err != nil {
			return change{}, err
		}
		pc = domain.ProCon{ID: s.id("pc"), Text: text}
		*list = append(*list, pc)
		return change{"option", optionID, events.EventPayload{"side": string(side), "item": pc.ID}}, nil
	})
	return pc, err
}

func (s *Store) RemoveProCon(ctx context.Context, optionID string, side ProConSide, itemID string) error {
	_, err := s.apply(ctx, "option.procon.remove", func(st *domain.PlanState) (change, error) {
		i, err := optionIndex(st, optionID)
		if err != nil {
			return change{}, err
		}
		list, err := sideOf(&st.Options[i], side)
		if err != nil {
			return change{}, err
		}
		for j, pc := range *list {
			if pc.ID == itemID {
				*list = append((*list)[:j], (*list)[j+1:]...)
				return change{"option", optionID, events.EventPayload{"side": string(side), "item": itemID}}, nil
			}
		}
		return change{}, lifecycle.NotFound(string(side)+" item", itemID)
	})
	return err
}

func (s *Store) AddVariant(ctx context.Context, optionID string) (domain.Variant, error) {
	var v domain.Variant
	_, err := s.apply(ctx, "option.variant.add", func(st *domain.PlanState) (change, error) {
		i, err := optionIndex(st, optionID)
		if err != nil {
			return change{}, err
		}
		o := &st.Options[i]
		v = domain.Variant{ID: s.id("var"), Label: fmt.Sprintf("Variant %d", len(o.Variants)+1)}
		o.Variants = append(o.Variants, v)
		return change{"option", optionID, events.EventPayload{"variant": v.ID}}, nil
	})
	return v, err
}

func (s *Store) UpdateVariant(ctx context.Context, optionID, variantID string, p VariantPatch) (domain.Variant, error) {
	var v domain.Variant
	_, err := s.apply(ctx, "option.variant.update", func(st *domain.PlanState) (change, error) {
		i, err := optionIndex(st, optionID)
		if err != nil {
			return change{}, err
		}
		vs := st.Options[i].Variants
		for j := range vs {
			if vs[j].ID != variantID {
				continue
			}
			if p.Label != nil {
				vs[j].Label = *p.Label
			}
			if p.Tweaks != nil {
				vs[j].Tweaks = *p.Tweaks
			}
			if p.Outcomes != nil {
				vs[j].Outcomes = *p.Outcomes
			}
			v = vs[j]
			return change{"option", optionID, events.EventPayload{"variant": variantID}}, nil
		}
		return change{}, lifecycle.NotFound("variant", variantID)
	})
	return v, err
}

func (s *Store) RemoveVariant(ctx context.Context, optionID, variantID string) error {
	_, err := s.apply(ctx, "option.variant.remove", func(st *domain.PlanState) (change, error) {
		i, err := optionIndex(st, optionID)
		if err != nil {
			return change{}, err
		}
		o := &st.Options[i]
		for j := range o.Variants {
			if o.Variants[j].ID == variantID {
				o.Variants = append(o.Variants[:j], o.Variants[j+1:]...)
				return change{"option", optionID, events.EventPayload{"variant": variantID}}, nil
			}
		}
		return change{}, lifecycle.NotFound("variant", variantID)
	})
	return err
}

// CreateSnapshot records the current number of options under the name
// "Snapshot N".
func (s *Store) CreateSnapshot(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	_, err := s.apply(ctx, "snapshot.create", func(st *domain.PlanState) (change, error) {
		snap = domain.Snapshot{
			ID:          s.id("snap"),
			Name:        fmt.Sprintf("Snapshot %d", len(st.Snapshots)+1),
			Date:        s.today(),
			OptionCount: len(st.Options),
		}
		st.Snapshots = append(st.Snapshots, snap)
		return change{"snapshot", snap.ID, events.EventPayload{"option_count": snap.OptionCount}}, nil
	})
	return snap, err
}
