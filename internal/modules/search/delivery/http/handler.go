package handler

import (
	"net/http"

	search "forumcore/internal/modules/search/service"
	"forumcore/pkg/response"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	indexer search.IndexerService
}

func NewSearchHandler(indexer search.IndexerService) *SearchHandler {
	return &SearchHandler{indexer: indexer}
}

// RebuildIndex drops the relational search index and repopulates it from the
// live threads.
func (h *SearchHandler) RebuildIndex(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.indexer.ClearIndex(ctx); err != nil {
		response.ResponseError(c, err)
		return
	}

	written, err := h.indexer.RebuildIndex(ctx)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"indexed": written})
}
