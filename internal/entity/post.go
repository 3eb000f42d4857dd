package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ThreadID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"thread_id"`
	AuthorID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	Content         string     `gorm:"type:text;not null" json:"content"`
	PromptingPostID *uuid.UUID `gorm:"type:uuid" json:"prompting_post_id,omitempty"`
	State           string     `gorm:"size:20;not null;default:published" json:"state"`
	PublishedOn     time.Time  `gorm:"not null;index" json:"published_on"`
	EditedOn        *time.Time `json:"edited_on,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (Post) TableName() string {
	return TablePosts
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

// DecoratedPost is a post row plus the viewer-scoped columns attached by the
// query composer and the author block merged in by the post decorator. The
// nested Author block is the canonical author contract for posts.
type DecoratedPost struct {
	Post
	LikeCount       int64      `json:"like_count"`
	IsLikedByViewer bool       `json:"is_liked_by_viewer"`
	PublishedOnDiff string     `gorm:"-" json:"published_on_diff"`
	Author          PostAuthor `gorm:"-" json:"author"`
}

// PostAuthor is the decorated author block. All fields default to zero values
// when the identity provider does not know the author id.
type PostAuthor struct {
	DisplayName    string `json:"display_name"`
	AvatarURL      string `json:"avatar_url"`
	TotalPosts     int64  `json:"total_posts"`
	DaysAsMember   int    `json:"days_as_member"`
	Signature      string `json:"signature"`
	AccessLevel    string `json:"access_level"`
	XP             int64  `json:"xp"`
	XPRank         int64  `json:"xp_rank"`
	TotalPostLikes int64  `json:"total_post_likes"`
}

type PostLike struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID  uuid.UUID `gorm:"type:uuid;not null;index:idx_post_likes_liker,priority:1" json:"post_id"`
	LikerID uuid.UUID `gorm:"type:uuid;not null;index:idx_post_likes_liker,priority:2" json:"liker_id"`
	LikedOn time.Time `gorm:"not null" json:"liked_on"`
}

func (PostLike) TableName() string {
	return TablePostLikes
}

func (l *PostLike) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID, err = uuid.NewV7()
	}
	return
}

// UserSignature stores the per-brand forum signature shown under a user's
// posts.
type UserSignature struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Brand     string    `gorm:"size:100;not null" json:"brand"`
	Signature string    `gorm:"type:text" json:"signature"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserSignature) TableName() string {
	return TableUserSignatures
}

func (s *UserSignature) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}
