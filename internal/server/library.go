package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"planline/internal/domain"
	"planline/internal/store"
)

func (h handlers) registerEvidence(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-evidence",
		Method:      http.MethodGet,
		Path:        "/evidence",
		Summary:     "Evidence library, optionally filtered",
	}, func(ctx context.Context, input *struct {
		Q string `query:"q" doc:"Case-insensitive match on title, tags and used-by"`
	}) (*out[[]domain.EvidenceItem], error) {
		items, err := h.store.SearchEvidence(ctx, input.Q)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNilSlice(items)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-evidence",
		Method:        http.MethodPost,
		Path:          "/evidence",
		Summary:       "Add an evidence item",
		DefaultStatus: http.StatusCreated,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *struct {
		Body AddEvidenceRequest `json:"body"`
	}) (*out[domain.EvidenceItem], error) {
		item, err := h.store.AddEvidence(ctx, input.Body.Title, domain.EvidenceStatus(input.Body.Status), input.Body.Tags, input.Body.UsedBy)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(item), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-evidence-status",
		Method:      http.MethodPut,
		Path:        "/evidence/{evidence_id}/status",
		Summary:     "Change the status of an evidence item",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		EvidenceID string                `path:"evidence_id"`
		Body       EvidenceStatusRequest `json:"body"`
	}) (*out[domain.EvidenceItem], error) {
		item, err := h.store.SetEvidenceStatus(ctx, input.EvidenceID, domain.EvidenceStatus(input.Body.Status))
		if err != nil {
			return nil, handleError(err)
		}
		return reply(item), nil
	})
}

func (h handlers) registerSignals(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-signals",
		Method:      http.MethodGet,
		Path:        "/signals",
		Summary:     "Monitoring signals",
	}, func(ctx context.Context, input *struct {
		Status   string `query:"status" enum:"open,watching,closed"`
		Severity string `query:"severity" enum:"High,Medium,Low"`
	}) (*out[[]domain.MonitoringSignal], error) {
		sigs, err := h.store.ListSignals(ctx, store.SignalFilter{
			Status:   domain.SignalStatus(input.Status),
			Severity: domain.Severity(input.Severity),
		})
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNilSlice(sigs)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "signal-stats",
		Method:      http.MethodGet,
		Path:        "/signals/stats",
		Summary:     "Signal counts by status, severity and trend",
	}, func(ctx context.Context, _ *struct{}) (*out[store.SignalStats], error) {
		stats, err := h.store.SignalStats(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(stats), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-signal",
		Method:        http.MethodPost,
		Path:          "/signals",
		Summary:       "Add a monitoring signal",
		DefaultStatus: http.StatusCreated,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *struct {
		Body *SignalRequest `json:"body,omitempty" required:"false"`
	}) (*out[domain.MonitoringSignal], error) {
		sig, err := h.store.AddSignal(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		if input.Body != nil {
			if sig, err = h.store.UpdateSignal(ctx, sig.ID, input.Body.patch()); err != nil {
				return nil, handleError(err)
			}
		}
		return reply(sig), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-signal",
		Method:      http.MethodPatch,
		Path:        "/signals/{signal_id}",
		Summary:     "Edit a monitoring signal",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		SignalID string        `path:"signal_id"`
		Body     SignalRequest `json:"body"`
	}) (*out[domain.MonitoringSignal], error) {
		sig, err := h.store.UpdateSignal(ctx, input.SignalID, input.Body.patch())
		if err != nil {
			return nil, handleError(err)
		}
		return reply(sig), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "remove-signal",
		Method:        http.MethodDelete,
		Path:          "/signals/{signal_id}",
		Summary:       "Remove a monitoring signal",
		DefaultStatus: http.StatusNoContent,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *struct {
		SignalID string `path:"signal_id"`
	}) (*struct{}, error) {
		if err := h.store.RemoveSignal(ctx, input.SignalID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func (h handlers) registerOptions(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-options",
		Method:      http.MethodGet,
		Path:        "/options",
		Summary:     "Spatial options",
	}, func(ctx context.Context, _ *struct{}) (*out[[]domain.Option], error) {
		opts, err := h.store.ListOptions(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNilSlice(opts)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-option",
		Method:        http.MethodPost,
		Path:          "/options",
		Summary:       "Add a spatial option",
		DefaultStatus: http.StatusCreated,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *struct {
		Body *OptionRequest `json:"body,omitempty" required:"false"`
	}) (*out[domain.Option], error) {
		opt, err := h.store.AddOption(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		if input.Body != nil && (input.Body.Label != nil || input.Body.Description != nil) {
			patch := store.OptionPatch{Label: input.Body.Label, Description: input.Body.Description}
			if opt, err = h.store.UpdateOption(ctx, opt.ID, patch); err != nil {
				return nil, handleError(err)
			}
		}
		return reply(opt), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-option",
		Method:      http.MethodPatch,
		Path:        "/options/{option_id}",
		Summary:     "Edit an option",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		OptionID string        `path:"option_id"`
		Body     OptionRequest `json:"body"`
	}) (*out[domain.Option], error) {
		opt, err := h.store.UpdateOption(ctx, input.OptionID, store.OptionPatch{Label: input.Body.Label, Description: input.Body.Description})
		if err != nil {
			return nil, handleError(err)
		}
		return reply(opt), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "remove-option",
		Method:        http.MethodDelete,
		Path:          "/options/{option_id}",
		Summary:       "Remove an option",
		DefaultStatus: http.StatusNoContent,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *struct {
		OptionID string `path:"option_id"`
	}) (*struct{}, error) {
		if err := h.store.RemoveOption(ctx, input.OptionID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-procon",
		Method:        http.MethodPost,
		Path:          "/options/{option_id}/{side}",
		Summary:       "Add a pro or con",
		DefaultStatus: http.StatusCreated,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *struct {
		OptionID string        `path:"option_id"`
		Side     string        `path:"side" enum:"pros,cons"`
		Body     ProConRequest `json:"body"`
	}) (*out[domain.ProCon], error) {
		pc, err := h.store.AddProCon(ctx, input.OptionID, store.ProConSide(input.Side), input.Body.Text)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(pc), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "remove-procon",
		Method:        http.MethodDelete,
		Path:          "/options/{option_id}/{side}/{item_id}",
		Summary:       "Remove a pro or con",
		DefaultStatus: http.StatusNoContent,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *struct {
		OptionID string `path:"option_id"`
		Side     string `path:"side" enum:"pros,cons"`
		ItemID   string `path:"item_id"`
	}) (*struct{}, error) {
		if err := h.store.RemoveProCon(ctx, input.OptionID, store.ProConSide(input.Side), input.ItemID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-variant",
		Method:        http.MethodPost,
		Path:          "/options/{option_id}/variants",
		Summary:       "Add a variant to an option",
		DefaultStatus: http.StatusCreated,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *struct {
		OptionID string `path:"option_id"`
	}) (*out[domain.Variant], error) {
		v, err := h.store.AddVariant(ctx, input.OptionID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(v), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-variant",
		Method:      http.MethodPatch,
		Path:        "/options/{option_id}/variants/{variant_id}",
		Summary:     "Edit a variant",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		OptionID  string         `path:"option_id"`
		VariantID string         `path:"variant_id"`
		Body      VariantRequest `json:"body"`
	}) (*out[domain.Variant], error) {
		v, err := h.store.UpdateVariant(ctx, input.OptionID, input.VariantID, store.VariantPatch{
			Label:    input.Body.Label,
			Tweaks:   input.Body.Tweaks,
			Outcomes: input.Body.Outcomes,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return reply(v), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "remove-variant",
		Method:        http.MethodDelete,
		Path:          "/options/{option_id}/variants/{variant_id}",
		Summary:       "Remove a variant",
		DefaultStatus: http.StatusNoContent,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *struct {
		OptionID  string `path:"option_id"`
		VariantID string `path:"variant_id"`
	}) (*struct{}, error) {
		if err := h.store.RemoveVariant(ctx, input.OptionID, input.VariantID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-snapshots",
		Method:      http.MethodGet,
		Path:        "/snapshots",
		Summary:     "Option set snapshots",
	}, func(ctx context.Context, _ *struct{}) (*out[[]domain.Snapshot], error) {
		snaps, err := h.store.ListSnapshots(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNilSlice(snaps)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-snapshot",
		Method:        http.MethodPost,
		Path:          "/snapshots",
		Summary:       "Snapshot the current option set",
		DefaultStatus: http.StatusCreated,
		Errors:        errorStatuses,
	}, func(ctx context.Context, _ *struct{}) (*out[domain.Snapshot], error) {
		snap, err := h.store.CreateSnapshot(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(snap), nil
	})
}
