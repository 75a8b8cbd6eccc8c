// backend/src/handlers/transaction_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/cfolens/backend/src/config"
	"github.com/username/cfolens/backend/src/logger"
	"github.com/username/cfolens/backend/src/models"
	"github.com/username/cfolens/backend/src/pagination"
	"github.com/username/cfolens/backend/src/security/validation"
	"github.com/username/cfolens/backend/src/store"
	"github.com/username/cfolens/backend/src/utils"
)

type TransactionHandler struct {
	store *store.LedgerStore
}

func NewTransactionHandler(ledgerStore *store.LedgerStore) *TransactionHandler {
	return &TransactionHandler{store: ledgerStore}
}

// exportHeader is the fixed CSV column order of the export endpoint.
var exportHeader = []string{
	"date", "entry_number", "line_number", "account", "account_type",
	"class", "property", "debit", "credit", "amount", "memo", "vendor",
}

// parseLineFilter builds the store filter from the search query string.
func parseLineFilter(r *http.Request, tenantID string) (store.LineFilter, error) {
	q := r.URL.Query()
	f := store.LineFilter{
		TenantID:    tenantID,
		Class:       q.Get("class"),
		Vendor:      q.Get("vendor"),
		AccountType: q.Get("account_type"),
		AccountName: q.Get("account_name"),
		Search:      q.Get("search"),
	}
	if v := q.Get("startDate"); v != "" {
		if _, err := validation.ValidateDateString(v, "startDate"); err != nil {
			return f, err
		}
		f.StartDate = v
	}
	if v := q.Get("endDate"); v != "" {
		if _, err := validation.ValidateDateString(v, "endDate"); err != nil {
			return f, err
		}
		f.EndDate = v
	}
	if v := q.Get("minAmount"); v != "" {
		min, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, fmt.Errorf("%w: minAmount (%q) is not a valid number", validation.ErrValidationFailed, v)
		}
		f.MinAmount = &min
	}
	if v := q.Get("maxAmount"); v != "" {
		max, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, fmt.Errorf("%w: maxAmount (%q) is not a valid number", validation.ErrValidationFailed, v)
		}
		f.MaxAmount = &max
	}
	return f, nil
}

// HandleSearch serves one keyset page of ledger lines plus filter-level
// aggregates. "Load more" calls are idempotent reads: the same cursor
// with the same filters resumes exactly where the last page ended.
func (h *TransactionHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := GetTenantIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	f, err := parseLineFilter(r, tenantID)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	sort, err := pagination.ParseSort(q.Get("sort"))
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var cursor *pagination.Cursor
	if token := q.Get("cursor"); token != "" {
		c, err := pagination.Decode(token)
		if err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		cursor = &c
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil {
			utils.SendJSONError(w, fmt.Sprintf("invalid limit %q", v), http.StatusBadRequest)
			return
		}
	}
	limit = pagination.ClampLimit(limit, config.Cfg.SearchPageLimit)

	rows, hasNext, nextCursor, err := h.store.SearchPage(r.Context(), f, sort, cursor, limit)
	if err != nil {
		logger.FromContext(r.Context()).Error("Transaction search failed", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("failed to load transactions: %v", err), http.StatusInternalServerError)
		return
	}
	count, err := h.store.CountLines(r.Context(), f)
	if err != nil {
		logger.FromContext(r.Context()).Error("Transaction count failed", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("failed to load transactions: %v", err), http.StatusInternalServerError)
		return
	}

	if rows == nil {
		rows = []models.LedgerLine{}
	}
	var pageTotal float64
	for _, row := range rows {
		pageTotal += row.Amount
	}

	result := models.SearchResult{
		Rows:       rows,
		HasNext:    hasNext,
		NextCursor: nextCursor,
		Aggregates: models.SearchAggregates{
			Count:           count,
			PageTotalAmount: utils.RoundFloat(pageTotal, 2),
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleExport streams the filtered rows as CSV with a fixed header order,
// every field quoted. The row cap is server-enforced.
func (h *TransactionHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := GetTenantIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	f, err := parseLineFilter(r, tenantID)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.store.ExportRows(r.Context(), f, config.Cfg.ExportRowCap)
	if err != nil {
		logger.FromContext(r.Context()).Error("Transaction export failed", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("failed to export transactions: %v", err), http.StatusInternalServerError)
		return
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, exportHeader)
	for _, line := range rows {
		records = append(records, []string{
			line.Date,
			strconv.FormatInt(line.EntryNumber, 10),
			strconv.Itoa(line.LineNumber),
			line.Account,
			line.AccountType,
			line.Class,
			line.Property,
			strconv.FormatFloat(line.Debit, 'f', 2, 64),
			strconv.FormatFloat(line.Credit, 'f', 2, 64),
			strconv.FormatFloat(line.Amount, 'f', 2, 64),
			line.Memo,
			line.Vendor,
		})
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="ledger_export.csv"`)
	if err := utils.WriteQuotedCSV(w, records); err != nil {
		logger.FromContext(r.Context()).Error("Writing CSV export failed", "error", err)
	}
}
