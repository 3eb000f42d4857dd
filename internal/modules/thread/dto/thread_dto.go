package dto

import (
	"time"

	"forumcore/internal/entity"
	commonDto "forumcore/pkg/dto"
)

type ThreadFilter struct {
	CategoryIDs []string `form:"category_ids"`
	Pinned      bool     `form:"pinned"`
	Followed    *bool    `form:"followed"`
	Page        int      `form:"page"`
	Limit       int      `form:"limit"`
}

type CreateThreadRequest struct {
	CategoryID string `json:"category_id" binding:"required,uuid"`
	Title      string `json:"title" binding:"required,max=255"`
	FirstPost  string `json:"first_post" binding:"required,max=10000"`
	Pinned     bool   `json:"pinned"`
}

type UpdateThreadRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

type SetStateRequest struct {
	State string `json:"state" binding:"required,oneof=published draft hidden"`
}

type MarkReadRequest struct {
	ReadOn *time.Time `json:"read_on"`
}

type PaginatedThreadResponse struct {
	Data []entity.DecoratedThread `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
