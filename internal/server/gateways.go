package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"planline/internal/domain"
)

type gatewayPath struct {
	Gateway string `path:"gateway" enum:"G1,G2,G3"`
}

func (p gatewayPath) gw() domain.GatewayType { return domain.GatewayType(p.Gateway) }

// gatewayView pairs a gateway with readiness computed after the change.
func (h handlers) gatewayView(ctx context.Context, gw domain.Gateway) (*out[GatewayResponse], error) {
	r, err := h.store.Readiness(ctx, gw.ID)
	if err != nil {
		return nil, handleError(err)
	}
	return reply(GatewayResponse{Gateway: gw, Readiness: r}), nil
}

func (h handlers) registerGateways(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-gateway",
		Method:      http.MethodGet,
		Path:        "/gateways/{gateway}",
		Summary:     "Gateway status, actions and readiness",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *gatewayPath) (*out[GatewayResponse], error) {
		gw, err := h.store.GetGateway(ctx, input.gw())
		if err != nil {
			return nil, handleError(err)
		}
		return h.gatewayView(ctx, gw)
	})

	huma.Register(api, huma.Operation{
		OperationID: "submission-open",
		Method:      http.MethodGet,
		Path:        "/submission",
		Summary:     "Whether the plan may be submitted for examination",
	}, func(ctx context.Context, _ *struct{}) (*out[SubmissionResponse], error) {
		open, err := h.store.SubmissionOpen(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(SubmissionResponse{Open: open}), nil
	})

	transitions := map[string]func(context.Context, domain.GatewayType) (domain.Gateway, error){
		"drafting":        h.store.MarkPackDrafting,
		"submit":          h.store.SubmitGateway,
		"receive-advice":  h.store.ReceiveGatewayAdvice,
		"publish-advice":  h.store.PublishGatewayAdvice,
		"pass":            h.store.MarkGatewayPassed,
		"not-pass":        h.store.MarkGatewayNotPassed,
		"publish-summary": h.store.PublishGatewaySummary,
	}
	huma.Register(api, huma.Operation{
		OperationID: "gateway-transition",
		Method:      http.MethodPost,
		Path:        "/gateways/{gateway}/transitions/{transition}",
		Summary:     "Apply a lifecycle transition to a gateway",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		Gateway    string `path:"gateway" enum:"G1,G2,G3"`
		Transition string `path:"transition" enum:"drafting,submit,receive-advice,publish-advice,pass,not-pass,publish-summary"`
	}) (*out[GatewayResponse], error) {
		fn, ok := transitions[input.Transition]
		if !ok {
			return nil, badRequest("unknown transition", map[string]any{"transition": input.Transition})
		}
		gw, err := fn(ctx, domain.GatewayType(input.Gateway))
		if err != nil {
			return nil, handleError(err)
		}
		return h.gatewayView(ctx, gw)
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-gateway-status",
		Method:      http.MethodPut,
		Path:        "/gateways/{gateway}/status",
		Summary:     "Set a gateway status through the lifecycle",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		Gateway string                  `path:"gateway" enum:"G1,G2,G3"`
		Body    SetGatewayStatusRequest `json:"body"`
	}) (*out[GatewayResponse], error) {
		gw, err := h.store.SetGatewayStatus(ctx, domain.GatewayType(input.Gateway), domain.GatewayStatus(input.Body.Status))
		if err != nil {
			return nil, handleError(err)
		}
		return h.gatewayView(ctx, gw)
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-gateway-action",
		Method:        http.MethodPost,
		Path:          "/gateways/{gateway}/actions",
		Summary:       "Add an action to a gateway",
		DefaultStatus: http.StatusCreated,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *struct {
		Gateway string        `path:"gateway" enum:"G1,G2,G3"`
		Body    ActionRequest `json:"body"`
	}) (*out[domain.Action], error) {
		a, err := h.store.AddGatewayAction(ctx, domain.GatewayType(input.Gateway), input.Body.Title)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(a), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "toggle-gateway-action",
		Method:      http.MethodPost,
		Path:        "/gateways/{gateway}/actions/{action_id}/toggle",
		Summary:     "Toggle an action between open and done",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		Gateway  string `path:"gateway" enum:"G1,G2,G3"`
		ActionID string `path:"action_id"`
	}) (*out[GatewayResponse], error) {
		gw, err := h.store.ToggleGatewayAction(ctx, domain.GatewayType(input.Gateway), input.ActionID)
		if err != nil {
			return nil, handleError(err)
		}
		return h.gatewayView(ctx, gw)
	})

	huma.Register(api, huma.Operation{
		OperationID: "rename-gateway-action",
		Method:      http.MethodPatch,
		Path:        "/gateways/{gateway}/actions/{action_id}",
		Summary:     "Rename an action",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		Gateway  string        `path:"gateway" enum:"G1,G2,G3"`
		ActionID string        `path:"action_id"`
		Body     ActionRequest `json:"body"`
	}) (*out[GatewayResponse], error) {
		gw, err := h.store.RenameGatewayAction(ctx, domain.GatewayType(input.Gateway), input.ActionID, input.Body.Title)
		if err != nil {
			return nil, handleError(err)
		}
		return h.gatewayView(ctx, gw)
	})
}
