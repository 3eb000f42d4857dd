package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the subset of an identity-provider account the forum cares about.
type User struct {
	ID                uuid.UUID `json:"id"`
	DisplayName       string    `json:"display_name"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
	CreatedAt         time.Time `json:"created_at"`
}

// AvatarURLOr returns the user's profile picture, or the fallback when the
// provider has none on record.
func (u User) AvatarURLOr(fallback string) string {
	if u.ProfilePictureURL != nil && *u.ProfilePictureURL != "" {
		return *u.ProfilePictureURL
	}
	return fallback
}

// XPRank is a user's experience total and leaderboard rank.
type XPRank struct {
	XP     int64 `json:"xp"`
	XPRank int64 `json:"xp_rank"`
}

// Provider is the narrow contract against the external identity system. All
// multi-id lookups are batched; callers must never loop single-id calls over a
// result set. A missing id is not an error: batch results simply omit it.
type Provider interface {
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]User, error)
	GetUserAccessLevel(ctx context.Context, id uuid.UUID) (string, error)
	GetUsersAccessLevel(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	GetUsersXPAndRank(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]XPRank, error)
}
