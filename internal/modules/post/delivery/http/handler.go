package handler

import (
	"net/http"

	postDto "forumcore/internal/modules/post/dto"
	post "forumcore/internal/modules/post/service"
	"forumcore/pkg/response"
	"forumcore/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PostHandler struct {
	service post.PostService
}

func NewPostHandler(service post.PostService) *PostHandler {
	return &PostHandler{service: service}
}

func (h *PostHandler) GetPosts(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("thread_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	var filter postDto.PostFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, err)
		return
	}

	viewerID, err := response.GetViewerID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	posts, err := h.service.GetPosts(c.Request.Context(), viewerID, threadID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	var req postDto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	viewerID, err := response.GetViewerID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	created, err := h.service.CreatePost(c.Request.Context(), viewerID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("post_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	var req postDto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	updated, err := h.service.UpdatePostContent(c.Request.Context(), postID, req.Content)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if updated == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *PostHandler) UpdatePromptingPost(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("post_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	var req postDto.UpdatePromptingPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	var promptingID *uuid.UUID
	if req.PromptingPostID != nil {
		pid, err := uuid.Parse(*req.PromptingPostID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompting post id"})
			return
		}
		promptingID = &pid
	}

	updated, err := h.service.UpdatePromptingPost(c.Request.Context(), postID, promptingID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if updated == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("post_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	if _, err := h.service.DestroyPost(c.Request.Context(), postID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted successfully"})
}
