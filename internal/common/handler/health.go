package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	statusOK       = "ok"
	statusError    = "error"
	statusDisabled = "disabled"
)

// HealthHandler handles health check endpoints. Either dependency may be nil
// when the configured backends do not need it.
type HealthHandler struct {
	db  *sql.DB
	rdb *redis.Client
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *sql.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:  db,
		rdb: rdb,
	}
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// ReadyResponse represents readiness check response
type ReadyResponse struct {
	Status string `json:"status" example:"ok"`
	DB     string `json:"db" example:"ok"`
	Redis  string `json:"redis" example:"ok"`
}

// Health godoc
// @Summary Health check
// @Description Returns server health status
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: statusOK})
}

// Ready godoc
// @Summary Readiness check
// @Description Returns readiness including DB and Redis connectivity when those backends are enabled
// @Tags health
// @Produce json
// @Success 200 {object} ReadyResponse
// @Failure 503 {object} ReadyResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	response := ReadyResponse{
		Status: statusOK,
		DB:     statusDisabled,
		Redis:  statusDisabled,
	}
	statusCode := http.StatusOK

	if h.db != nil {
		response.DB = statusOK
		if err := h.db.PingContext(ctx); err != nil {
			response.DB = statusError
			response.Status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}
	}

	if h.rdb != nil {
		response.Redis = statusOK
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			response.Redis = statusError
			response.Status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}
	}

	c.JSON(statusCode, response)
}
