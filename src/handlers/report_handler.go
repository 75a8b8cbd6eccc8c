// backend/src/handlers/report_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/cfolens/backend/src/logger"
	"github.com/username/cfolens/backend/src/security/validation"
	"github.com/username/cfolens/backend/src/services"
	"github.com/username/cfolens/backend/src/utils"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// windowParams pulls and validates the start/end query parameters shared
// by the period reports.
func windowParams(r *http.Request) (string, string, error) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if err := validation.ValidateDateRange(start, end); err != nil {
		return "", "", err
	}
	return start, end, nil
}

// writeReportError maps the error taxonomy onto status codes: validation
// failures are the caller's fault (400), upstream failures are reported
// as bad gateway with the upstream message attached for diagnostics.
func writeReportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, validation.ErrValidationFailed):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrUpstream):
		utils.SendJSONError(w, err.Error(), http.StatusBadGateway)
	default:
		utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *ReportHandler) HandleGetBalanceSheet(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := GetTenantIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	start, end, err := windowParams(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.FromContext(r.Context()).Info("Handling GetBalanceSheet", "start", start, "end", end)

	bs, err := h.reportService.BalanceSheet(r.Context(), tenantID, start, end)
	if err != nil {
		writeReportError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bs)
}

func (h *ReportHandler) HandleGetIncomeStatement(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := GetTenantIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	start, end, err := windowParams(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.FromContext(r.Context()).Info("Handling GetIncomeStatement", "start", start, "end", end)

	is, err := h.reportService.IncomeStatement(r.Context(), tenantID, start, end)
	if err != nil {
		writeReportError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(is)
}

func (h *ReportHandler) HandleGetTrend(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := GetTenantIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	q := r.URL.Query()

	opts := services.TrendOptions{
		Bucketing: q.Get("bucket"),
		Dimension: q.Get("dimension"),
		EndMonth:  q.Get("endMonth"),
		StartDate: q.Get("start"),
		EndDate:   q.Get("end"),
	}
	if monthsStr := q.Get("months"); monthsStr != "" {
		months, err := strconv.Atoi(monthsStr)
		if err != nil || months <= 0 || months > 60 {
			utils.SendJSONError(w, fmt.Sprintf("invalid months value %q", monthsStr), http.StatusBadRequest)
			return
		}
		opts.Months = months
	}
	switch opts.Bucketing {
	case "", "month", "isoWeek":
	default:
		utils.SendJSONError(w, fmt.Sprintf("invalid bucket value %q", opts.Bucketing), http.StatusBadRequest)
		return
	}
	switch opts.Dimension {
	case "", "class", "property":
	default:
		utils.SendJSONError(w, fmt.Sprintf("invalid dimension value %q", opts.Dimension), http.StatusBadRequest)
		return
	}

	points, err := h.reportService.Trend(r.Context(), tenantID, opts)
	if err != nil {
		writeReportError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(points)
}

func (h *ReportHandler) HandleGetCompare(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := GetTenantIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	q := r.URL.Query()

	if err := validation.ValidateDateRange(q.Get("aStart"), q.Get("aEnd")); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateDateRange(q.Get("bStart"), q.Get("bEnd")); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts := services.CompareOptions{
		CurrentStart: q.Get("aStart"),
		CurrentEnd:   q.Get("aEnd"),
		BaseStart:    q.Get("bStart"),
		BaseEnd:      q.Get("bEnd"),
		CurrentClass: q.Get("aClass"),
		BaseClass:    q.Get("bClass"),
	}
	if topStr := q.Get("top"); topStr != "" {
		top, err := strconv.Atoi(topStr)
		if err != nil || top <= 0 || top > 100 {
			utils.SendJSONError(w, fmt.Sprintf("invalid top value %q", topStr), http.StatusBadRequest)
			return
		}
		opts.TopN = top
	}

	rows, err := h.reportService.Compare(r.Context(), tenantID, opts)
	if err != nil {
		writeReportError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}
