package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"planline/internal/domain"
	"planline/internal/store"
)

func (h handlers) registerSites(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-sites",
		Method:      http.MethodGet,
		Path:        "/sites",
		Summary:     "Sites pipeline, optionally filtered by stage",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		Stage string `query:"stage" enum:"identify,assess,allocate"`
	}) (*out[[]domain.Site], error) {
		sites, err := h.store.ListSites(ctx, domain.SiteStage(input.Stage))
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNilSlice(sites)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "site-stats",
		Method:      http.MethodGet,
		Path:        "/sites/stats",
		Summary:     "Site counts by stage and allocated totals",
	}, func(ctx context.Context, _ *struct{}) (*out[store.SiteStats], error) {
		stats, err := h.store.SiteStats(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(stats), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-site",
		Method:        http.MethodPost,
		Path:          "/sites",
		Summary:       "Add a site at the identify stage",
		DefaultStatus: http.StatusCreated,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *struct {
		Body *AddSiteRequest `json:"body,omitempty" required:"false"`
	}) (*out[domain.Site], error) {
		var name string
		if input.Body != nil {
			name = input.Body.Name
		}
		site, err := h.store.AddSite(ctx, name)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(site), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-site",
		Method:      http.MethodPatch,
		Path:        "/sites/{site_id}",
		Summary:     "Edit a site's reference, name, notes, area or capacity",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		SiteID string      `path:"site_id"`
		Body   SiteRequest `json:"body"`
	}) (*out[domain.Site], error) {
		site, err := h.store.UpdateSite(ctx, input.SiteID, input.Body.patch())
		if err != nil {
			return nil, handleError(err)
		}
		return reply(site), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "advance-site",
		Method:      http.MethodPost,
		Path:        "/sites/{site_id}/advance",
		Summary:     "Move a site to the next stage",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		SiteID string `path:"site_id"`
	}) (*out[domain.Site], error) {
		site, err := h.store.AdvanceSite(ctx, input.SiteID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(site), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "remove-site",
		Method:        http.MethodDelete,
		Path:          "/sites/{site_id}",
		Summary:       "Remove a site",
		DefaultStatus: http.StatusNoContent,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *struct {
		SiteID string `path:"site_id"`
	}) (*struct{}, error) {
		if err := h.store.RemoveSite(ctx, input.SiteID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-site-tasks",
		Method:      http.MethodGet,
		Path:        "/site-tasks",
		Summary:     "Environmental and technical study tasks",
	}, func(ctx context.Context, _ *struct{}) (*out[[]domain.SiteTask], error) {
		tasks, err := h.store.ListSiteTasks(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNilSlice(tasks)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-site-task",
		Method:        http.MethodPost,
		Path:          "/site-tasks",
		Summary:       "Add a not-started task",
		DefaultStatus: http.StatusCreated,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *struct {
		Body *AddSiteTaskRequest `json:"body,omitempty" required:"false"`
	}) (*out[domain.SiteTask], error) {
		var title, owner string
		if input.Body != nil {
			title, owner = input.Body.Title, input.Body.Owner
		}
		task, err := h.store.AddSiteTask(ctx, title, owner)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(task), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-site-task",
		Method:      http.MethodPatch,
		Path:        "/site-tasks/{task_id}",
		Summary:     "Edit a task or change its status",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		TaskID string          `path:"task_id"`
		Body   SiteTaskRequest `json:"body"`
	}) (*out[domain.SiteTask], error) {
		task, err := h.store.UpdateSiteTask(ctx, input.TaskID, input.Body.patch())
		if err != nil {
			return nil, handleError(err)
		}
		return reply(task), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "remove-site-task",
		Method:        http.MethodDelete,
		Path:          "/site-tasks/{task_id}",
		Summary:       "Remove a task",
		DefaultStatus: http.StatusNoContent,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *struct {
		TaskID string `path:"task_id"`
	}) (*struct{}, error) {
		if err := h.store.RemoveSiteTask(ctx, input.TaskID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}
