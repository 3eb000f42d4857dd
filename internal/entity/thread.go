package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Thread states. Only published threads are visible in viewer-facing listings;
// draft and hidden threads are excluded regardless of who is asking.
const (
	StatePublished = "published"
	StateDraft     = "draft"
	StateHidden    = "hidden"
)

// AccessibleStates is the set of states a listing query may return.
var AccessibleStates = []string{StatePublished}

type Thread struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID uuid.UUID  `gorm:"type:uuid;not null;index" json:"category_id"`
	AuthorID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	Title      string     `gorm:"size:255;not null" json:"title"`
	Slug       string     `gorm:"size:255;index" json:"slug"`
	State      string     `gorm:"size:20;not null;default:published" json:"state"`
	Pinned     bool       `gorm:"not null;default:false" json:"pinned"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (Thread) TableName() string {
	return TableThreads
}

func (t *Thread) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		// v7 ids are time ordered, so "id DESC" doubles as a creation-time
		// tiebreak in listing queries.
		t.ID, err = uuid.NewV7()
	}
	return
}

// DecoratedThread is a thread row plus the five derived columns the query
// composer attaches via correlated subqueries, and the presentation fields the
// thread decorator merges in afterwards (empty until decorated).
type DecoratedThread struct {
	Thread
	PostCount           int64      `json:"post_count"`
	LastPostPublishedOn *time.Time `json:"last_post_published_on"`
	LastPostID          *uuid.UUID `gorm:"type:uuid" json:"last_post_id"`
	LastPostUserID      *uuid.UUID `gorm:"type:uuid" json:"last_post_user_id"`
	IsRead              bool       `json:"is_read"`
	IsFollowed          bool       `json:"is_followed"`

	AuthorDisplayName         string `gorm:"-" json:"author_display_name"`
	AuthorAvatarURL           string `gorm:"-" json:"author_avatar_url"`
	AuthorAccessLevel         string `gorm:"-" json:"author_access_level"`
	LastPostAuthorDisplayName string `gorm:"-" json:"last_post_author_display_name"`
	LastPostAuthorAvatarURL   string `gorm:"-" json:"last_post_author_avatar_url"`
	LastPostAuthorAccessLevel string `gorm:"-" json:"last_post_author_access_level"`
	URL                       string `gorm:"-" json:"url"`
}

type ThreadRead struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ThreadID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_thread_reads_reader,priority:1" json:"thread_id"`
	ReaderID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_thread_reads_reader,priority:2" json:"reader_id"`
	ReadOn   time.Time `gorm:"not null" json:"read_on"`
}

func (ThreadRead) TableName() string {
	return TableThreadReads
}

func (r *ThreadRead) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

// ThreadFollow subscribes a user to a thread. Presence of a row is the whole
// contract; unfollow removes it.
type ThreadFollow struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ThreadID   uuid.UUID `gorm:"type:uuid;not null;index:idx_thread_follows_follower,priority:1" json:"thread_id"`
	FollowerID uuid.UUID `gorm:"type:uuid;not null;index:idx_thread_follows_follower,priority:2" json:"follower_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ThreadFollow) TableName() string {
	return TableThreadFollows
}

func (f *ThreadFollow) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = uuid.NewV7()
	}
	return
}
