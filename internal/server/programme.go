package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"planline/internal/dates"
	"planline/internal/domain"
)

type milestonePath struct {
	MilestoneID string `path:"milestone_id"`
}

func (h handlers) timeline(ctx context.Context, st domain.PlanState) (*out[TimelineResponse], error) {
	rs, err := h.store.AllReadiness(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	return reply(timelineResponse(st, rs)), nil
}

func (h handlers) registerProgramme(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-milestones",
		Method:      http.MethodGet,
		Path:        "/milestones",
		Summary:     "Milestones in date order",
	}, func(ctx context.Context, input *struct {
		Upcoming bool `query:"upcoming" doc:"Only milestones dated today or later"`
		Limit    int  `query:"limit"`
	}) (*out[[]domain.Milestone], error) {
		var (
			ms  []domain.Milestone
			err error
		)
		if input.Upcoming {
			ms, err = h.store.UpcomingMilestones(ctx, input.Limit)
		} else {
			ms, err = h.store.ListMilestones(ctx)
		}
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNilSlice(ms)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-milestone",
		Method:        http.MethodPost,
		Path:          "/milestones",
		Summary:       "Add a milestone",
		DefaultStatus: http.StatusCreated,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *struct {
		Body AddMilestoneRequest `json:"body"`
	}) (*out[domain.Milestone], error) {
		d, err := parseOptionalDate("date", input.Body.Date)
		if err != nil {
			return nil, err
		}
		m, err := h.store.AddMilestone(ctx, input.Body.Label, d, domain.MilestoneKind(input.Body.Kind))
		if err != nil {
			return nil, handleError(err)
		}
		return reply(m), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-milestone",
		Method:      http.MethodPatch,
		Path:        "/milestones/{milestone_id}",
		Summary:     "Rename or move a milestone",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		MilestoneID string                 `path:"milestone_id"`
		Body        UpdateMilestoneRequest `json:"body"`
	}) (*out[domain.Milestone], error) {
		var (
			m   domain.Milestone
			err error
		)
		if input.Body.Label == nil && input.Body.Date == nil {
			return nil, badRequest("label or date is required", nil)
		}
		if input.Body.Date != nil {
			d, perr := dates.ParseDate(*input.Body.Date)
			if perr != nil {
				return nil, badRequest(perr.Error(), map[string]any{"field": "date"})
			}
			if m, err = h.store.SetMilestoneDate(ctx, input.MilestoneID, d); err != nil {
				return nil, handleError(err)
			}
		}
		if input.Body.Label != nil {
			if m, err = h.store.RenameMilestone(ctx, input.MilestoneID, *input.Body.Label); err != nil {
				return nil, handleError(err)
			}
		}
		return reply(m), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "remove-milestone",
		Method:        http.MethodDelete,
		Path:          "/milestones/{milestone_id}",
		Summary:       "Remove a milestone",
		DefaultStatus: http.StatusNoContent,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *milestonePath) (*struct{}, error) {
		if err := h.store.RemoveMilestone(ctx, input.MilestoneID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-timeline",
		Method:      http.MethodGet,
		Path:        "/timeline",
		Summary:     "Statutory timeline stamps and gateway readiness",
	}, func(ctx context.Context, _ *struct{}) (*out[TimelineResponse], error) {
		st, err := h.store.State(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return h.timeline(ctx, st)
	})

	publish := []struct {
		id, path, summary string
		fn                func(context.Context) (domain.PlanState, error)
	}{
		{"publish-timetable", "/timeline/timetable/publish", "Publish the timetable", h.store.PublishTimetable},
		{"publish-notice", "/timeline/notice/publish", "Publish the notice of commencement", h.store.PublishNotice},
		{"publish-vision-outcomes", "/timeline/vision-outcomes/publish", "Publish vision and outcomes", h.store.PublishVisionOutcomes},
	}
	for _, p := range publish {
		fn := p.fn
		huma.Register(api, huma.Operation{
			OperationID: p.id,
			Method:      http.MethodPost,
			Path:        p.path,
			Summary:     p.summary,
			Errors:      errorStatuses,
		}, func(ctx context.Context, _ *struct{}) (*out[TimelineResponse], error) {
			st, err := fn(ctx)
			if err != nil {
				return nil, handleError(err)
			}
			return h.timeline(ctx, st)
		})
	}

	huma.Register(api, huma.Operation{
		OperationID: "close-scoping",
		Method:      http.MethodPut,
		Path:        "/timeline/scoping-end",
		Summary:     "Record the scoping consultation end date",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		Body CloseScopingRequest `json:"body"`
	}) (*out[TimelineResponse], error) {
		end, err := dates.ParseDate(input.Body.End)
		if err != nil {
			return nil, badRequest(err.Error(), map[string]any{"field": "end"})
		}
		st, err := h.store.CloseScoping(ctx, end)
		if err != nil {
			return nil, handleError(err)
		}
		return h.timeline(ctx, st)
	})
}
