package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mediasearch/src/core/search"
)

type Handler struct {
	searchService *search.Service
}

func NewHandler(searchService *search.Service) *Handler {
	return &Handler{
		searchService: searchService,
	}
}

// RegisterRoutes registers all search API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/search", h.Search)
	r.GET("/search/providers/status", h.ProviderStatus)
	r.GET("/health", h.CheckHealth)
}

// Envelope is the common response body shape.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func sendError(c *gin.Context, err error) {
	var status int
	var code string
	switch {
	case errors.Is(err, search.ErrInvalidQuery):
		status, code = http.StatusBadRequest, "INVALID_QUERY"
	case errors.Is(err, search.ErrNoProviderAvailable):
		status, code = http.StatusUnprocessableEntity, "NO_PROVIDER_AVAILABLE"
	case errors.Is(err, search.ErrSearchTimeout):
		status, code = http.StatusGatewayTimeout, "SEARCH_TIMEOUT"
	case errors.Is(err, search.ErrBackendUnavailable):
		status, code = http.StatusBadGateway, "BACKEND_UNAVAILABLE"
	default:
		status, code = http.StatusInternalServerError, "INTERNAL_ERROR"
	}

	c.JSON(status, Envelope{
		Status:  code,
		Message: err.Error(),
	})
}

func sendData(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{
		Status:  "ok",
		Message: message,
		Data:    data,
	})
}

// CheckHealth godoc
// @Summary Liveness probe
// @Router /health [get]
func (h *Handler) CheckHealth(c *gin.Context) {
	sendData(c, "healthy", nil)
}
