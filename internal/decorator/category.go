package decorator

import (
	"context"
	"time"

	"forumcore/internal/entity"
	"forumcore/internal/identity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryDecorator attaches discussion aggregates to category rows: the
// published post count across the category's threads and a snapshot of the
// most recent post with its author's display fields.
type CategoryDecorator struct {
	db               *gorm.DB
	provider         identity.Provider
	defaultAvatarURL string
}

func NewCategoryDecorator(db *gorm.DB, provider identity.Provider, defaultAvatarURL string) *CategoryDecorator {
	return &CategoryDecorator{
		db:               db,
		provider:         provider,
		defaultAvatarURL: defaultAvatarURL,
	}
}

func (d *CategoryDecorator) Decorate(ctx context.Context, categories []entity.DecoratedCategory) error {
	if len(categories) == 0 {
		return nil
	}

	categoryIDs := make([]uuid.UUID, len(categories))
	for i, c := range categories {
		categoryIDs[i] = c.ID
	}

	counts, err := d.countPostsByCategory(ctx, categoryIDs)
	if err != nil {
		return err
	}

	latest, err := d.latestPostByCategory(ctx, categoryIDs)
	if err != nil {
		return err
	}

	authorIDs := make([]uuid.UUID, 0, len(latest))
	for _, lp := range latest {
		authorIDs = append(authorIDs, lp.AuthorID)
	}
	authorIDs = dedupe(authorIDs)

	users, err := d.provider.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return err
	}
	accessLevels, err := d.provider.GetUsersAccessLevel(ctx, authorIDs)
	if err != nil {
		return err
	}

	for i := range categories {
		c := &categories[i]
		c.PostCount = counts[c.ID]

		lp, ok := latest[c.ID]
		if !ok {
			continue
		}
		info := &entity.LatestPostInfo{
			ID:          lp.PostID,
			ThreadID:    lp.ThreadID,
			ThreadTitle: lp.ThreadTitle,
			AuthorID:    lp.AuthorID,
			CreatedAt:   lp.PublishedOn,
		}
		if user, ok := users[lp.AuthorID]; ok {
			info.AuthorDisplayName = user.DisplayName
			info.AuthorAvatarURL = user.AvatarURLOr(d.defaultAvatarURL)
		}
		info.AuthorAccessLevel = accessLevels[lp.AuthorID]
		c.LatestPost = info
	}

	return nil
}

func (d *CategoryDecorator) countPostsByCategory(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	type row struct {
		CategoryID uuid.UUID
		Count      int64
	}
	var rows []row
	err := d.db.WithContext(ctx).
		Table(entity.TablePosts+" AS p").
		Select("t.category_id, COUNT(*) as count").
		Joins("JOIN "+entity.TableThreads+" AS t ON t.id = p.thread_id").
		Where("p.deleted_at IS NULL AND t.deleted_at IS NULL AND t.category_id IN ?", ids).
		Group("t.category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.CategoryID] = r.Count
	}
	return counts, nil
}

type latestPostRow struct {
	CategoryID  uuid.UUID
	PostID      uuid.UUID
	ThreadID    uuid.UUID
	ThreadTitle string
	AuthorID    uuid.UUID
	PublishedOn time.Time
}

// latestPostByCategory resolves the newest post of every category in a single
// grouped query, ranking posts per category so the round-trip count stays
// constant however many categories are listed.
func (d *CategoryDecorator) latestPostByCategory(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]latestPostRow, error) {
	ranked := d.db.WithContext(ctx).
		Table(entity.TablePosts+" AS p").
		Select("t.category_id, p.id AS post_id, p.thread_id, t.title AS thread_title, p.author_id, p.published_on, "+
			"ROW_NUMBER() OVER (PARTITION BY t.category_id ORDER BY p.published_on DESC, p.id DESC) AS rn").
		Joins("JOIN "+entity.TableThreads+" AS t ON t.id = p.thread_id").
		Where("p.deleted_at IS NULL AND t.deleted_at IS NULL AND t.category_id IN ?", ids)

	var rows []latestPostRow
	err := d.db.WithContext(ctx).
		Table("(?) AS ranked", ranked).
		Where("rn = 1").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]latestPostRow, len(rows))
	for _, r := range rows {
		out[r.CategoryID] = r
	}
	return out, nil
}
