// backend/src/handlers/balance_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/username/cfolens/backend/src/logger"
	"github.com/username/cfolens/backend/src/models"
	"github.com/username/cfolens/backend/src/security/validation"
	"github.com/username/cfolens/backend/src/services"
	"github.com/username/cfolens/backend/src/store"
	"github.com/username/cfolens/backend/src/utils"
)

type BalanceHandler struct {
	store         *store.LedgerStore
	reportService services.ReportService
}

func NewBalanceHandler(ledgerStore *store.LedgerStore, reportService services.ReportService) *BalanceHandler {
	return &BalanceHandler{store: ledgerStore, reportService: reportService}
}

func (h *BalanceHandler) HandleListManualBalances(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := GetTenantIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	balances, err := h.store.ManualBalances(r.Context(), tenantID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Listing manual balances failed", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("failed to load manual balances: %v", err), http.StatusInternalServerError)
		return
	}
	if balances == nil {
		balances = []models.ManualBalance{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(balances)
}

// HandleUpsertManualBalance writes one opening-balance override and drops
// the tenant's cached reports so the next report reflects it.
func (h *BalanceHandler) HandleUpsertManualBalance(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := GetTenantIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var mb models.ManualBalance
	if err := json.NewDecoder(r.Body).Decode(&mb); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	mb.TenantID = tenantID

	if err := validateManualBalance(mb); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.UpsertManualBalance(r.Context(), mb); err != nil {
		logger.FromContext(r.Context()).Error("Upserting manual balance failed", "account", mb.Account, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("failed to save manual balance: %v", err), http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateTenantCache(tenantID)
	logger.FromContext(r.Context()).Info("Manual balance saved, tenant report cache invalidated", "account", mb.Account)

	w.WriteHeader(http.StatusNoContent)
}

func validateManualBalance(mb models.ManualBalance) error {
	if err := validation.ValidateStringNotEmpty(mb.Account, "account"); err != nil {
		return err
	}
	if err := validation.ValidateStringNotEmpty(mb.AccountType, "account_type"); err != nil {
		return err
	}
	if _, err := validation.ValidateDateString(mb.AsOfDate, "as_of_date"); err != nil {
		return err
	}
	if mb.Source != models.ManualSourcePersisted && mb.Source != models.ManualSourceCached {
		return fmt.Errorf("%w: source must be %q or %q", validation.ErrValidationFailed,
			models.ManualSourcePersisted, models.ManualSourceCached)
	}
	return nil
}
