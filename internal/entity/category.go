package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Slug        string     `gorm:"size:255;index" json:"slug"`
	Description string     `gorm:"type:text" json:"description"`
	Weight      int        `gorm:"not null;default:0" json:"weight"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (Category) TableName() string {
	return TableCategories
}

func (c *Category) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// DecoratedCategory carries the aggregate fields added by the category
// decorator: the published post count across the category's threads plus a
// snapshot of the most recent post and its author.
type DecoratedCategory struct {
	Category
	PostCount  int64           `gorm:"-" json:"post_count"`
	LatestPost *LatestPostInfo `gorm:"-" json:"latest_post,omitempty"`
}

type LatestPostInfo struct {
	ID                uuid.UUID `json:"id"`
	ThreadID          uuid.UUID `json:"thread_id"`
	ThreadTitle       string    `json:"thread_title"`
	AuthorID          uuid.UUID `json:"author_id"`
	AuthorDisplayName string    `json:"author_display_name"`
	AuthorAvatarURL   string    `json:"author_avatar_url"`
	AuthorAccessLevel string    `json:"author_access_level"`
	CreatedAt         time.Time `json:"created_at"`
}
