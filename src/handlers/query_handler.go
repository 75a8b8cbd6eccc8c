// backend/src/handlers/query_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/cfolens/backend/src/logger"
	"github.com/username/cfolens/backend/src/models"
	"github.com/username/cfolens/backend/src/security/validation"
	"github.com/username/cfolens/backend/src/services"
	"github.com/username/cfolens/backend/src/utils"
)

type QueryHandler struct {
	queryService services.QueryService
}

func NewQueryHandler(queryService services.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

// HandleRunQuery executes a caller-supplied read-only report query. The
// SQL goes through the allowlist validator and the tenant-scope check
// before anything touches the store; a rejected query returns 400 and is
// never executed, not even partially.
func (h *QueryHandler) HandleRunQuery(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := GetTenantIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req models.RunQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.queryService.Run(r.Context(), tenantID, req)
	if err != nil {
		switch {
		case errors.Is(err, validation.ErrValidationFailed):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrUpstream):
			logger.FromContext(r.Context()).Error("Report query failed upstream", "error", err)
			utils.SendJSONError(w, err.Error(), http.StatusBadGateway)
		default:
			utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
