package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"planline/internal/domain"
	"planline/internal/lifecycle"
)

type consultationPath struct {
	Type string `path:"type" enum:"scoping,content,proposed"`
}

func (p consultationPath) ct() domain.ConsultationType { return domain.ConsultationType(p.Type) }

func (h handlers) registerConsultations(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-consultation",
		Method:      http.MethodGet,
		Path:        "/consultations/{type}",
		Summary:     "Consultation round with its representations",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *consultationPath) (*out[domain.Consultation], error) {
		c, err := h.store.GetConsultation(ctx, input.ct())
		if err != nil {
			return nil, handleError(err)
		}
		return reply(c), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "consultation-stats",
		Method:      http.MethodGet,
		Path:        "/consultations/{type}/stats",
		Summary:     "Representation counts by status",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *consultationPath) (*out[domain.RepresentationStats], error) {
		stats, err := h.store.ConsultationStats(ctx, input.ct())
		if err != nil {
			return nil, handleError(err)
		}
		return reply(stats), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "consultation-themes",
		Method:      http.MethodGet,
		Path:        "/consultations/{type}/themes",
		Summary:     "Representation themes",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *consultationPath) (*out[lifecycle.ThemeCounts], error) {
		themes, err := h.store.Themes(ctx, input.ct())
		if err != nil {
			return nil, handleError(err)
		}
		return reply(themes), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-representation",
		Method:        http.MethodPost,
		Path:          "/consultations/{type}/representations",
		Summary:       "Log a new unread representation",
		DefaultStatus: http.StatusCreated,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *consultationPath) (*out[domain.Representation], error) {
		rep, err := h.store.AddRepresentation(ctx, input.ct())
		if err != nil {
			return nil, handleError(err)
		}
		return reply(rep), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-representation",
		Method:      http.MethodPatch,
		Path:        "/consultations/{type}/representations/{rep_id}",
		Summary:     "Edit a representation or advance its status",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		Type  string                      `path:"type" enum:"scoping,content,proposed"`
		RepID string                      `path:"rep_id"`
		Body  UpdateRepresentationRequest `json:"body"`
	}) (*out[domain.Representation], error) {
		ct := domain.ConsultationType(input.Type)
		if input.Body.Respondent == nil && input.Body.Summary == nil && input.Body.Status == nil {
			return nil, badRequest("status, respondent or summary is required", nil)
		}
		respondent, text := "", ""
		if input.Body.Respondent != nil {
			respondent = *input.Body.Respondent
		}
		if input.Body.Summary != nil {
			text = *input.Body.Summary
		}
		var status *domain.RepresentationStatus
		if input.Body.Status != nil {
			s := domain.RepresentationStatus(*input.Body.Status)
			status = &s
		}
		rep, err := h.store.EditRepresentation(ctx, ct, input.RepID, respondent, text, status)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(rep), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-summary-draft",
		Method:      http.MethodPut,
		Path:        "/consultations/{type}/summary/draft",
		Summary:     "Save the consultation summary draft",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		Type string              `path:"type" enum:"scoping,content,proposed"`
		Body SummaryDraftRequest `json:"body"`
	}) (*out[domain.Consultation], error) {
		c, err := h.store.SetSummaryDraft(ctx, domain.ConsultationType(input.Type), input.Body.Text)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(c), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "publish-consultation-summary",
		Method:      http.MethodPost,
		Path:        "/consultations/{type}/summary/publish",
		Summary:     "Publish the consultation summary",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *consultationPath) (*out[domain.Consultation], error) {
		c, err := h.store.PublishConsultationSummary(ctx, input.ct())
		if err != nil {
			return nil, handleError(err)
		}
		return reply(c), nil
	})
}
