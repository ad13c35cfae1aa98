package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"amlscreen/internal/address"
	"amlscreen/internal/repository/postgres"
	"amlscreen/pkg/errors"
	"amlscreen/pkg/logger"

	"github.com/gorilla/mux"
)

// ReportHandler serves stored screening reports.
type ReportHandler struct {
	repo   *postgres.ReportRepository
	logger logger.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(repo *postgres.ReportRepository, log logger.Logger) *ReportHandler {
	return &ReportHandler{
		repo:   repo,
		logger: log,
	}
}

// List returns recent report summaries, newest first.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	reports, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list reports", map[string]interface{}{"error": err.Error()})
		h.respondError(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"limit":   limit,
		"offset":  offset,
	})
}

// Get returns one full report by its ID.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	report, err := h.repo.GetByID(r.Context(), vars["id"])
	if err != nil {
		if errors.Is(err, errors.ErrReportNotFound) {
			h.respondError(w, http.StatusNotFound, "Report not found")
			return
		}
		h.logger.Error("Failed to fetch report", map[string]interface{}{
			"report": vars["id"],
			"error":  err.Error(),
		})
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch report")
		return
	}

	h.respondJSON(w, http.StatusOK, report)
}

// History returns past screenings of one address on one chain.
func (h *ReportHandler) History(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	chain, err := address.ParseChain(vars["chain"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Unsupported chain")
		return
	}

	reports, err := h.repo.ListByAddress(r.Context(), string(chain), vars["address"])
	if err != nil {
		h.logger.Error("Failed to fetch address history", map[string]interface{}{
			"chain":   chain,
			"address": vars["address"],
			"error":   err.Error(),
		})
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch address history")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"chain":   chain,
		"address": vars["address"],
		"reports": reports,
	})
}

func (h *ReportHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("json encode failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *ReportHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
