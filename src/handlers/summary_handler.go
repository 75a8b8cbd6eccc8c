// backend/src/handlers/summary_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/cfolens/backend/src/logger"
	"github.com/username/cfolens/backend/src/models"
	"github.com/username/cfolens/backend/src/services"
	"github.com/username/cfolens/backend/src/utils"
)

type SummaryHandler struct {
	summaryService services.SummaryService
}

func NewSummaryHandler(summaryService services.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

// HandleSummarize forwards a numeric report summary to the summarization
// model and returns its structured response. Summarization failures are
// upstream errors; the report data the caller already has stays valid.
func (h *SummaryHandler) HandleSummarize(w http.ResponseWriter, r *http.Request) {
	if _, ok := GetTenantIDFromContext(r.Context()); !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req models.SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Mode == "" {
		req.Mode = models.SummaryModeInsights
	}
	if req.Mode != models.SummaryModeInsights && req.Mode != models.SummaryModeAnswer {
		utils.SendJSONError(w, "mode must be 'insights' or 'answer'", http.StatusBadRequest)
		return
	}
	if len(req.Summary) == 0 {
		utils.SendJSONError(w, "summary data is required", http.StatusBadRequest)
		return
	}

	result, err := h.summaryService.Summarize(r.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrUpstream) {
			logger.FromContext(r.Context()).Error("Summarization service failed", "error", err)
			utils.SendJSONError(w, err.Error(), http.StatusBadGateway)
			return
		}
		utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
