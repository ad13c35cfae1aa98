// Package handler provides HTTP handlers for the AML screening API.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"amlscreen/internal/address"
	"amlscreen/internal/compliance"
	"amlscreen/internal/domain"
	"amlscreen/internal/screening"
	"amlscreen/pkg/errors"
	"amlscreen/pkg/logger"
	"amlscreen/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now (CORS)
	},
}

// ReportStore persists finished reports. May be nil to disable persistence.
type ReportStore interface {
	Save(ctx context.Context, report *domain.Report) error
}

// ScreenHandler manages screening endpoints.
type ScreenHandler struct {
	service   *screening.Service
	assessor  *compliance.Assessor
	store     ReportStore
	validator *validator.Validator
	logger    logger.Logger
}

// NewScreenHandler creates a ScreenHandler.
func NewScreenHandler(service *screening.Service, assessor *compliance.Assessor, store ReportStore, val *validator.Validator, log logger.Logger) *ScreenHandler {
	return &ScreenHandler{
		service:   service,
		assessor:  assessor,
		store:     store,
		validator: val,
		logger:    log,
	}
}

// ScreenRequest is the POST /api/screen payload.
type ScreenRequest struct {
	Chain   string `json:"chain" validate:"required,chain"`
	Address string `json:"address" validate:"required,min=20,max=128"`
}

// ScreenResponse bundles the risk report with its compliance assessment.
type ScreenResponse struct {
	Report     *domain.Report              `json:"report"`
	Compliance domain.ComplianceAssessment `json:"compliance"`
}

// Screen runs a full screening for the submitted address.
func (h *ScreenHandler) Screen(w http.ResponseWriter, r *http.Request) {
	var req ScreenRequest

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		if err == io.EOF {
			h.respondError(w, http.StatusBadRequest, "Request body is required")
			return
		}
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if valErrs := h.validator.ValidateStructured(&req); valErrs != nil {
		h.respondValidationErrors(w, valErrs)
		return
	}

	chain, err := address.ParseChain(req.Chain)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Unsupported chain")
		return
	}

	h.screen(w, r, domain.AddressInput{Chain: chain, Address: req.Address})
}

// ScreenQuery runs a screening using query parameters (?chain=...&address=...).
func (h *ScreenHandler) ScreenQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	chainStr := strings.TrimSpace(q.Get("chain"))
	addr := strings.TrimSpace(q.Get("address"))
	if chainStr == "" || addr == "" {
		h.respondError(w, http.StatusBadRequest, "chain and address query parameters are required")
		return
	}

	chain, err := address.ParseChain(chainStr)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Unsupported chain")
		return
	}

	h.screen(w, r, domain.AddressInput{Chain: chain, Address: addr})
}

// ScreenByPath runs a screening for /api/screen/{chain}/{address}.
func (h *ScreenHandler) ScreenByPath(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	chain, err := address.ParseChain(vars["chain"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Unsupported chain")
		return
	}

	h.screen(w, r, domain.AddressInput{Chain: chain, Address: vars["address"]})
}

func (h *ScreenHandler) screen(w http.ResponseWriter, r *http.Request, input domain.AddressInput) {
	report, err := h.service.Screen(r.Context(), input)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidAddress) || errors.Is(err, errors.ErrChainNotSupported) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Screening failed", map[string]interface{}{
			"chain":   input.Chain,
			"address": input.Address,
			"error":   err.Error(),
		})
		h.respondError(w, http.StatusInternalServerError, "Screening failed")
		return
	}

	h.persist(r.Context(), report)

	h.respondJSON(w, http.StatusOK, ScreenResponse{
		Report:     report,
		Compliance: h.assessor.Assess(report),
	})
}

func (h *ScreenHandler) persist(ctx context.Context, report *domain.Report) {
	if h.store == nil {
		return
	}
	if err := h.store.Save(ctx, report); err != nil {
		h.logger.Warn("Failed to persist report", map[string]interface{}{
			"report": report.ID,
			"error":  err.Error(),
		})
	}
}

// progressEvent is one message on the live screening stream.
type progressEvent struct {
	Type      string    `json:"type"`
	Stage     string    `json:"stage,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LiveScreen streams pipeline progress over a websocket. The client sends
// one ScreenRequest and receives progress events followed by the final
// report, then the connection closes.
func (h *ScreenHandler) LiveScreen(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer conn.Close()

	var req ScreenRequest
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	if err := conn.ReadJSON(&req); err != nil {
		h.writeStreamError(conn, nil, "Invalid screening request")
		return
	}

	if valErrs := h.validator.ValidateStructured(&req); valErrs != nil {
		h.writeStreamError(conn, nil, "Validation failed")
		return
	}

	chain, err := address.ParseChain(req.Chain)
	if err != nil {
		h.writeStreamError(conn, nil, "Unsupported chain")
		return
	}

	// Pipeline branches report progress concurrently; serialize writes.
	var mu sync.Mutex
	notify := func(stage, detail string) {
		mu.Lock()
		defer mu.Unlock()
		_ = conn.WriteJSON(progressEvent{
			Type:      "progress",
			Stage:     stage,
			Detail:    detail,
			Timestamp: time.Now().UTC(),
		})
	}

	input := domain.AddressInput{Chain: chain, Address: req.Address}
	report, err := h.service.ScreenWithProgress(r.Context(), input, notify)
	if err != nil {
		h.writeStreamError(conn, &mu, err.Error())
		return
	}
	h.persist(r.Context(), report)

	mu.Lock()
	defer mu.Unlock()
	if err := conn.WriteJSON(map[string]interface{}{
		"type":       "report",
		"timestamp":  time.Now().UTC(),
		"report":     report,
		"compliance": h.assessor.Assess(report),
	}); err != nil {
		h.logger.Error("Failed to send report", map[string]interface{}{"error": err.Error()})
	}
}

func (h *ScreenHandler) writeStreamError(conn *websocket.Conn, mu *sync.Mutex, message string) {
	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	_ = conn.WriteJSON(map[string]interface{}{
		"type":      "error",
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}

func (h *ScreenHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("json encode failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *ScreenHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func (h *ScreenHandler) respondValidationErrors(w http.ResponseWriter, errors map[string]string) {
	h.respondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":             "Validation failed",
		"validation_errors": errors,
	})
}
