package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"amlscreen/internal/riskscore"
	"amlscreen/internal/sanctions"
	"amlscreen/internal/scamdb"
	"amlscreen/pkg/logger"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports service and provider health.
type HealthHandler struct {
	db          *sqlx.DB
	redisClient *redis.Client
	sanctions   *sanctions.Service
	scamDB      *scamdb.Service
	riskScore   *riskscore.Service
	logger      logger.Logger
	startTime   time.Time
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db *sqlx.DB, redisClient *redis.Client, sanc *sanctions.Service, scam *scamdb.Service, risk *riskscore.Service, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
		sanctions:   sanc,
		scamDB:      scam,
		riskScore:   risk,
		logger:      log,
		startTime:   time.Now(),
	}
}

// Health returns overall status plus per-dependency detail. Degraded
// optional dependencies do not fail the check; a dead database does.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	httpStatus := http.StatusOK

	dbStatus := "connected"
	if err := h.db.PingContext(r.Context()); err != nil {
		dbStatus = "unreachable"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
		h.logger.Error("Database ping failed", map[string]interface{}{"error": err.Error()})
	}

	redisStatus := "disabled"
	if h.redisClient != nil {
		redisStatus = "connected"
		if err := h.redisClient.Ping(r.Context()).Err(); err != nil {
			redisStatus = "unreachable"
			if status == "healthy" {
				status = "degraded"
			}
		}
	}

	h.respondJSON(w, httpStatus, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startTime).Round(time.Second).String(),
		"database":  dbStatus,
		"cache":     redisStatus,
		"providers": map[string]interface{}{
			"sanctions_entries": h.sanctions.Size(),
			"scam_db":           h.scamDB.Enabled(),
			"risk_scorer":       h.riskScore.Enabled(),
		},
	})
}

func (h *HealthHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("json encode failed", map[string]interface{}{"error": err.Error()})
	}
}
