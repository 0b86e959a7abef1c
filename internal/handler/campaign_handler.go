// internal/handler/campaign_handler.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/targetly/crm-backend/internal/predicate"
	"github.com/targetly/crm-backend/internal/service"
)

// CampaignHandler holds the dependencies for campaign-related HTTP handlers.
type CampaignHandler struct {
	Service  *service.CampaignService
	Delivery *service.DeliveryService
	Logger   *slog.Logger
}

type segmentRequest struct {
	Name          string          `json:"name"`
	SegmentRules  json.RawMessage `json:"segmentRules,omitempty"`
	NaturalPrompt string          `json:"naturalPrompt,omitempty"`
	CreatedBy     string          `json:"createdBy,omitempty"`
}

// CreateSegment resolves an audience from explicit rules or a natural-language
// prompt and creates a pending campaign. With ?preview=true it only reports
// the resolved rules and audience size.
func (h *CampaignHandler) CreateSegment(w http.ResponseWriter, r *http.Request) {
	var body segmentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	input := service.SegmentInput{Prompt: body.NaturalPrompt}
	if len(body.SegmentRules) > 0 && string(body.SegmentRules) != "null" {
		rules, err := predicate.Parse(body.SegmentRules)
		if err != nil {
			writeError(w, h.Logger, err)
			return
		}
		input.Rules = &rules
	}

	if r.URL.Query().Get("preview") == "true" {
		rules, size, err := h.Service.Segments.PreviewSegment(r.Context(), input)
		if err != nil {
			writeError(w, h.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"audienceSize":   size,
			"generatedQuery": rules,
		})
		return
	}

	campaign, err := h.Service.CreateSegmentCampaign(r.Context(), body.Name, body.CreatedBy, input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"campaign":       campaign,
		"generatedQuery": campaign.SegmentRules,
	})
}

// Trigger launches a pending campaign with the given message template.
func (h *CampaignHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MessageTemplate string `json:"messageTemplate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	result, err := h.Service.Trigger(r.Context(), chi.URLParam(r, "id"), body.MessageTemplate)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"campaign":    result.Campaign,
		"logsCreated": result.LogsCreated,
		"message":     "Campaign triggered. Delivery receipts will update status.",
	})
}

func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.Service.ListAll(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// Summary reports delivered/failed counts as a human-readable line.
func (h *CampaignHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Delivery.Summarize(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary.Text()})
}

// Logs returns a campaign's communication logs with customers joined.
func (h *CampaignHandler) Logs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Delivery.Logs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// Suggest returns an AI-drafted message template for the campaign's segment.
func (h *CampaignHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	suggestion, err := h.Service.SuggestMessage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"suggestedMessage": suggestion})
}
