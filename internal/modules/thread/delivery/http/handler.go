package handler

import (
	"net/http"

	threadDto "forumcore/internal/modules/thread/dto"
	thread "forumcore/internal/modules/thread/service"
	"forumcore/pkg/response"
	"forumcore/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ThreadHandler struct {
	service thread.ThreadService
}

func NewThreadHandler(service thread.ThreadService) *ThreadHandler {
	return &ThreadHandler{service: service}
}

func (h *ThreadHandler) GetThreads(c *gin.Context) {
	var filter threadDto.ThreadFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, err)
		return
	}

	viewerID, err := response.GetViewerID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	threads, err := h.service.GetThreads(c.Request.Context(), viewerID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, threads)
}

func (h *ThreadHandler) GetThread(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("thread_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	viewerID, err := response.GetViewerID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	decorated, err := h.service.GetThread(c.Request.Context(), viewerID, threadID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, decorated)
}

func (h *ThreadHandler) CreateThread(c *gin.Context) {
	var req threadDto.CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	viewerID, err := response.GetViewerID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	created, err := h.service.CreateThread(c.Request.Context(), viewerID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *ThreadHandler) UpdateThread(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("thread_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	var req threadDto.UpdateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	viewerID, err := response.GetViewerID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	updated, err := h.service.UpdateThread(c.Request.Context(), viewerID, threadID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if updated == nil {
		// Silent miss by contract, the caller gets a no-content ack.
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *ThreadHandler) SetState(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("thread_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	var req threadDto.SetStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	viewerID, err := response.GetViewerID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if _, err := h.service.SetState(c.Request.Context(), viewerID, threadID, req.State); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "thread state updated"})
}

func (h *ThreadHandler) DeleteThread(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("thread_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	viewerID, err := response.GetViewerID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if _, err := h.service.DestroyThread(c.Request.Context(), viewerID, threadID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "thread deleted successfully"})
}

func (h *ThreadHandler) MarkRead(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("thread_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	// Body is optional, an empty body means "read as of now".
	var req threadDto.MarkReadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ResponseError(c, err)
			return
		}
	}

	viewerID, err := response.GetViewerID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), threadID, viewerID, req.ReadOn); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "thread marked read"})
}

func (h *ThreadHandler) FollowThread(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("thread_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	viewerID, err := response.GetViewerID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Follow(c.Request.Context(), threadID, viewerID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "thread followed"})
}

func (h *ThreadHandler) UnfollowThread(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("thread_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	viewerID, err := response.GetViewerID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Unfollow(c.Request.Context(), threadID, viewerID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "thread unfollowed"})
}
