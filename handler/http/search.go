package http

import (
	"github.com/gin-gonic/gin"

	"mediasearch/src/core/search"
)

type searchRequest struct {
	Q                 string  `form:"q"`
	Page              int     `form:"page"`
	PageSize          int     `form:"pageSize"`
	Semantic          bool    `form:"semantic"`
	Type              string  `form:"type"`
	Extension         string  `form:"extension"`
	AssetSizeGTE      int64   `form:"asset_size_gte"`
	AssetSizeLTE      int64   `form:"asset_size_lte"`
	IngestedDateGTE   string  `form:"ingested_date_gte"`
	IngestedDateLTE   string  `form:"ingested_date_lte"`
	MinScore          float64 `form:"min_score"`
	StorageIdentifier string  `form:"storageIdentifier"`
	Facets            bool    `form:"facets"`
}

// Search godoc
// @Summary Search media assets by keyword or semantic similarity
// @Tags search
// @Produce json
// @Param q query string true "Search text"
// @Param semantic query bool false "Use semantic similarity search"
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Results per page (max 500)"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 422 {object} Envelope
// @Failure 502 {object} Envelope
// @Router /search [get]
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		sendError(c, search.ErrInvalidQuery)
		return
	}

	resp, err := h.searchService.Search(c.Request.Context(), search.RawQuery{
		Text:              req.Q,
		Page:              req.Page,
		PageSize:          req.PageSize,
		Semantic:          req.Semantic,
		MediaType:         req.Type,
		Extension:         req.Extension,
		SizeGTE:           req.AssetSizeGTE,
		SizeLTE:           req.AssetSizeLTE,
		IngestedGTE:       req.IngestedDateGTE,
		IngestedLTE:       req.IngestedDateLTE,
		MinScore:          req.MinScore,
		StorageIdentifier: req.StorageIdentifier,
		Facets:            req.Facets,
	})
	if err != nil {
		sendError(c, err)
		return
	}

	message := "search complete"
	if len(resp.Warnings) > 0 {
		message = "search complete with degraded fields"
	}
	sendData(c, message, resp)
}

// ProviderStatus godoc
// @Summary Report configured semantic providers and their capabilities
// @Tags search
// @Produce json
// @Success 200 {object} Envelope
// @Router /search/providers/status [get]
func (h *Handler) ProviderStatus(c *gin.Context) {
	statuses := h.searchService.ProviderStatuses(c.Request.Context())
	sendData(c, "provider status", gin.H{"providers": statuses})
}
