package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"subharvest/domain/dto"
	"subharvest/domain/model"
	"subharvest/usecase"

	"github.com/gin-gonic/gin"
)

// ISearchHandler defines the interface for search HTTP handlers.
type ISearchHandler interface {
	Search(ctx *gin.Context)
	Health(ctx *gin.Context)
}

// SearchHandler implements the search HTTP handlers.
type SearchHandler struct {
	searchUseCase usecase.ISearchUseCase
}

// NewSearchHandler creates a new search handler instance.
func NewSearchHandler(searchUseCase usecase.ISearchUseCase) ISearchHandler {
	return &SearchHandler{searchUseCase: searchUseCase}
}

// Search handles GET /search
func (h *SearchHandler) Search(ctx *gin.Context) {
	queryParam := ctx.Query("query")
	if queryParam == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Search query is required",
		})
		return
	}

	req := &dto.SearchRequest{
		Query:  queryParam,
		Fields: ctx.QueryArray("fields"),
	}

	// Support both snake_case and camelCase query params from frontend
	pageRaw := ctx.Query("page")
	if pageRaw != "" {
		if val, err := strconv.Atoi(pageRaw); err == nil {
			req.Page = val
		}
	}
	pageSizeRaw := ctx.Query("page_size")
	if pageSizeRaw == "" {
		pageSizeRaw = ctx.Query("pageSize")
	}
	if pageSizeRaw != "" {
		if val, err := strconv.Atoi(pageSizeRaw); err == nil {
			req.PageSize = val
		}
	}

	response, err := h.searchUseCase.Search(ctx.Request.Context(), req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Search failed",
			"message": err.Error(),
		})
		return
	}

	if len(req.Fields) > 0 {
		ctx.JSON(http.StatusOK, gin.H{
			"success":  true,
			"query":    response.Query,
			"pageInfo": response.PageInfo,
			"results":  projectFields(response.Results, req.Fields),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": response})
}

// Health handles GET /healthz
func (h *SearchHandler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// projectFields narrows each record to the requested JSON fields.
func projectFields(records []model.VideoRecord, fields []string) []map[string]interface{} {
	wanted := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		wanted[field] = struct{}{}
	}

	projected := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		serialized, err := json.Marshal(record)
		if err != nil {
			continue
		}
		var full map[string]interface{}
		if err := json.Unmarshal(serialized, &full); err != nil {
			continue
		}
		narrow := make(map[string]interface{}, len(wanted))
		for key, value := range full {
			if _, ok := wanted[key]; ok {
				narrow[key] = value
			}
		}
		projected = append(projected, narrow)
	}
	return projected
}
