package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SearchIndex is one row of the relational search index. Values are split into
// relevance tiers: high outranks medium outranks low. A thread contributes a
// single row with its title at medium and its author's display name at low.
type SearchIndex struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	HighValue   *string    `gorm:"type:text" json:"high_value"`
	MediumValue *string    `gorm:"type:text" json:"medium_value"`
	LowValue    *string    `gorm:"type:text" json:"low_value"`
	ThreadID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"thread_id"`
	PostID      *uuid.UUID `gorm:"type:uuid" json:"post_id"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SearchIndex) TableName() string {
	return TableSearchIndexes
}

func (s *SearchIndex) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}
