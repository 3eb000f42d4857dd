package handler

import (
	"net/http"

	like "forumcore/internal/modules/like/service"
	"forumcore/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LikeHandler struct {
	service like.LikeService
}

func NewLikeHandler(service like.LikeService) *LikeHandler {
	return &LikeHandler{service: service}
}

func (h *LikeHandler) LikePost(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("post_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	viewerID, err := response.GetViewerID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	liked, count, err := h.service.Like(c.Request.Context(), postID, viewerID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"like": liked, "like_count": count})
}

func (h *LikeHandler) UnlikePost(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("post_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	viewerID, err := response.GetViewerID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	count, err := h.service.Unlike(c.Request.Context(), postID, viewerID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post unliked", "like_count": count})
}
