// Package api exposes the corroboration service over HTTP.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"truthlens/internal/app"
	"truthlens/internal/discovery"
	"truthlens/internal/logger"
)

// maxCount bounds the number of references a caller may ask for.
const maxCount = 20

// Handler holds HTTP request handlers.
type Handler struct {
	service   *app.Service
	providers []discovery.Provider
	logger    logger.Logger
}

// NewHandler creates a new handler. providers is the full configured set,
// including unavailable ones, for status reporting.
func NewHandler(service *app.Service, providers []discovery.Provider, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{service: service, providers: providers, logger: log}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}

// CorroborateRequest is the body of POST /api/v1/corroborate.
type CorroborateRequest struct {
	Text  string `json:"text"`
	Count int    `json:"count,omitempty"`
}

func respondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, ErrorResponse{Error: msg, Code: code, Timestamp: time.Now().UTC()})
}

// Corroborate handles GET (?text=&count=) and POST corroboration requests.
func (h *Handler) Corroborate(c *gin.Context) {
	var req CorroborateRequest
	if c.Request.Method == http.MethodGet {
		req.Text = c.Query("text")
		if raw := c.Query("count"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "count must be an integer")
				return
			}
			req.Count = n
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid corroborate request body", logger.Error(err))
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", app.ErrEmptyText.Error())
		return
	}
	if req.Count < 0 || req.Count > maxCount {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "count must be between 0 and "+strconv.Itoa(maxCount))
		return
	}

	c.JSON(http.StatusOK, h.service.Corroborate(c.Request.Context(), req.Text, req.Count))
}

// Analyze handles POST /api/v1/analyze.
func (h *Handler) Analyze(c *gin.Context) {
	var req app.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid analyze request body", logger.Error(err))
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if req.Count < 0 || req.Count > maxCount {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "count must be between 0 and "+strconv.Itoa(maxCount))
		return
	}

	analysis, err := h.service.Analyze(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, app.ErrEmptyText) || errors.Is(err, app.ErrInvalidVerdict) {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		h.logger.Error("analysis failed", logger.Error(err))
		respondError(c, http.StatusInternalServerError, "ANALYSIS_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// Providers reports which providers are configured and available.
func (h *Handler) Providers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"providers": discovery.Statuses(h.providers),
		"active":    h.service.Providers(),
	})
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}
