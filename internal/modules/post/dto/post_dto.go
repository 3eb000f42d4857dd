package dto

import (
	"forumcore/internal/entity"
	commonDto "forumcore/pkg/dto"
)

type CreatePostRequest struct {
	ThreadID        string `json:"thread_id" binding:"required,uuid"`
	Content         string `json:"content" binding:"required,max=10000"`
	PromptingPostID string `json:"prompting_post_id"` // Optional, must be a post in the same thread
}

type UpdatePostRequest struct {
	Content string `json:"content" binding:"required,max=10000"`
}

type UpdatePromptingPostRequest struct {
	PromptingPostID *string `json:"prompting_post_id"`
}

type PostFilter struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type PaginatedPostResponse struct {
	Data []entity.DecoratedPost   `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
