package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"planline/internal/domain"
	"planline/internal/lifecycle"
	"planline/internal/readiness"
	"planline/internal/repo"
	"planline/internal/summary"
)

func (h handlers) registerPlans(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-plans",
		Method:      http.MethodGet,
		Path:        "/plans",
		Summary:     "List configured plans and the active one",
	}, func(ctx context.Context, _ *struct{}) (*out[PlansResponse], error) {
		active, err := h.store.ActivePlan(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(PlansResponse{Active: active.ID, Plans: nonNilSlice(h.store.ListPlans())}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "switch-plan",
		Method:      http.MethodPut,
		Path:        "/plans/active",
		Summary:     "Switch the active plan",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		Body SwitchPlanRequest `json:"body"`
	}) (*out[domain.Plan], error) {
		p, err := h.store.SwitchPlan(ctx, input.Body.PlanID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(p), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-state",
		Method:      http.MethodGet,
		Path:        "/state",
		Summary:     "Full state of the active plan",
	}, func(ctx context.Context, _ *struct{}) (*out[domain.PlanState], error) {
		st, err := h.store.State(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(st), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-readings",
		Method:      http.MethodGet,
		Path:        "/readings",
		Summary:     "Reading profiles",
	}, func(ctx context.Context, _ *struct{}) (*out[[]domain.ReadingProfile], error) {
		return reply(nonNilSlice(h.store.ReadingProfiles())), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-reading",
		Method:      http.MethodGet,
		Path:        "/readings/active",
		Summary:     "Selected reading profile",
	}, func(ctx context.Context, _ *struct{}) (*out[domain.ReadingProfile], error) {
		rp, err := h.store.Reading(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(rp), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "select-reading",
		Method:      http.MethodPut,
		Path:        "/readings/active",
		Summary:     "Select a reading profile",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		Body SelectReadingRequest `json:"body"`
	}) (*out[domain.ReadingProfile], error) {
		rp, err := h.store.SelectReading(ctx, input.Body.ReadingID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(rp), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-pressures",
		Method:      http.MethodGet,
		Path:        "/pressures",
		Summary:     "Advisory pressures",
	}, func(ctx context.Context, _ *struct{}) (*out[[]domain.Pressure], error) {
		return reply(nonNilSlice(h.store.Pressures())), nil
	})
}

func (h handlers) registerHome(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "home-summary",
		Method:      http.MethodGet,
		Path:        "/home",
		Summary:     "Home dashboard summary",
	}, func(ctx context.Context, _ *struct{}) (*out[summary.HomeSummary], error) {
		hs, err := h.store.SummarizeHome(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(hs), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "home-intensities",
		Method:      http.MethodGet,
		Path:        "/home/intensities",
		Summary:     "Home card intensities",
	}, func(ctx context.Context, _ *struct{}) (*out[summary.Intensities], error) {
		in, err := h.store.Intensities(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(in), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-readiness",
		Method:      http.MethodGet,
		Path:        "/readiness",
		Summary:     "Readiness of every gateway",
	}, func(ctx context.Context, _ *struct{}) (*out[[]readiness.Readiness], error) {
		rs, err := h.store.AllReadiness(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNilSlice(rs)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-readiness",
		Method:      http.MethodGet,
		Path:        "/readiness/{gateway}",
		Summary:     "Readiness of one gateway",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *gatewayPath) (*out[readiness.Readiness], error) {
		r, err := h.store.Readiness(ctx, domain.GatewayType(input.Gateway))
		if err != nil {
			return nil, handleError(err)
		}
		return reply(r), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "stage-ribbon",
		Method:      http.MethodGet,
		Path:        "/stages",
		Summary:     "Statutory stages relative to the active one",
	}, func(ctx context.Context, _ *struct{}) (*out[[]lifecycle.StageEntry], error) {
		ribbon, err := h.store.StageRibbon(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(ribbon), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-stage",
		Method:      http.MethodPut,
		Path:        "/stages/active",
		Summary:     "Set the active stage",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		Body SetStageRequest `json:"body"`
	}) (*out[domain.Stage], error) {
		stage, err := h.store.SetStage(ctx, domain.StageKey(input.Body.Stage))
		if err != nil {
			return nil, handleError(err)
		}
		return reply(stage), nil
	})
}

func (h handlers) registerEvents(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "Audit events of the active plan, newest first",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Type       string `query:"type"`
		EntityKind string `query:"entity_kind"`
		EntityID   string `query:"entity_id"`
		Limit      int    `query:"limit" default:"50"`
		Cursor     string `query:"cursor"`
	}) (*out[PaginatedEvents], error) {
		plan, err := h.store.ActivePlan(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		limit := normalizeLimit(input.Limit)
		f := repo.EventFilter{PlanID: plan.ID, Type: input.Type, EntityKind: input.EntityKind, EntityID: input.EntityID}
		if input.Cursor != "" {
			before, err := strconv.ParseInt(input.Cursor, 10, 64)
			if err != nil {
				return nil, badRequest("invalid cursor", map[string]any{"cursor": input.Cursor})
			}
			f.Before = before
		}
		items, err := h.repo.LatestEvents(ctx, limit+1, f)
		if err != nil {
			return nil, handleError(err)
		}
		resp := PaginatedEvents{Items: []domain.Event{}}
		if len(items) > limit {
			items = items[:limit]
			resp.NextCursor = strconv.FormatInt(items[limit-1].ID, 10)
		}
		resp.Items = append(resp.Items, items...)
		return reply(resp), nil
	})
}
