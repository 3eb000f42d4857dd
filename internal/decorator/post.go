package decorator

import (
	"context"
	"time"

	"forumcore/internal/entity"
	"forumcore/internal/identity"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// PostDecorator fills the nested author block on decorated post rows. Identity
// data (accounts, access levels, XP) comes from the provider; post counts,
// given-like counts and signatures come from grouped queries against our own
// tables. Everything is batched over the distinct author ids of the
// collection, so the number of round trips is constant in the row count.
//
// A missing author degrades to zero values; it never fails the collection.
type PostDecorator struct {
	db               *gorm.DB
	provider         identity.Provider
	brand            string
	defaultAvatarURL string
}

func NewPostDecorator(db *gorm.DB, provider identity.Provider, brand, defaultAvatarURL string) *PostDecorator {
	return &PostDecorator{
		db:               db,
		provider:         provider,
		brand:            brand,
		defaultAvatarURL: defaultAvatarURL,
	}
}

func (d *PostDecorator) Decorate(ctx context.Context, posts []entity.DecoratedPost) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.AuthorID)
	}
	ids = dedupe(ids)

	var (
		users        map[uuid.UUID]identity.User
		accessLevels map[uuid.UUID]string
		xp           map[uuid.UUID]identity.XPRank
		postCounts   map[uuid.UUID]int64
		likeCounts   map[uuid.UUID]int64
		signatures   map[uuid.UUID]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = d.provider.GetUsersByIDs(gctx, ids)
		return
	})
	g.Go(func() (err error) {
		accessLevels, err = d.provider.GetUsersAccessLevel(gctx, ids)
		return
	})
	g.Go(func() (err error) {
		xp, err = d.provider.GetUsersXPAndRank(gctx, ids)
		return
	})
	g.Go(func() (err error) {
		postCounts, err = d.countPostsByAuthors(gctx, ids)
		return
	})
	g.Go(func() (err error) {
		likeCounts, err = d.countLikesByLikers(gctx, ids)
		return
	})
	g.Go(func() (err error) {
		signatures, err = d.findSignatures(gctx, ids)
		return
	})
	if err := g.Wait(); err != nil {
		return err
	}

	now := time.Now()
	for i := range posts {
		p := &posts[i]
		p.PublishedOnDiff = humanize.Time(p.PublishedOn)

		author := entity.PostAuthor{
			AvatarURL:      d.defaultAvatarURL,
			TotalPosts:     postCounts[p.AuthorID],
			TotalPostLikes: likeCounts[p.AuthorID],
			Signature:      signatures[p.AuthorID],
			AccessLevel:    accessLevels[p.AuthorID],
		}
		if user, ok := users[p.AuthorID]; ok {
			author.DisplayName = user.DisplayName
			author.AvatarURL = user.AvatarURLOr(d.defaultAvatarURL)
			author.DaysAsMember = int(now.Sub(user.CreatedAt).Hours() / 24)
		}
		if rank, ok := xp[p.AuthorID]; ok {
			author.XP = rank.XP
			author.XPRank = rank.XPRank
		}
		p.Author = author
	}

	return nil
}

func (d *PostDecorator) countPostsByAuthors(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	type row struct {
		AuthorID uuid.UUID
		Count    int64
	}
	var rows []row
	err := d.db.WithContext(ctx).
		Table(entity.TablePosts).
		Select("author_id, COUNT(*) as count").
		Where("author_id IN ? AND deleted_at IS NULL", ids).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.AuthorID] = r.Count
	}
	return counts, nil
}

func (d *PostDecorator) countLikesByLikers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	type row struct {
		LikerID uuid.UUID
		Count   int64
	}
	var rows []row
	err := d.db.WithContext(ctx).
		Table(entity.TablePostLikes).
		Select("liker_id, COUNT(*) as count").
		Where("liker_id IN ?", ids).
		Group("liker_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.LikerID] = r.Count
	}
	return counts, nil
}

func (d *PostDecorator) findSignatures(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	type row struct {
		UserID    uuid.UUID
		Signature string
	}
	var rows []row
	err := d.db.WithContext(ctx).
		Table(entity.TableUserSignatures).
		Select("user_id, signature").
		Where("user_id IN ? AND brand = ?", ids, d.brand).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	signatures := make(map[uuid.UUID]string, len(rows))
	for _, r := range rows {
		signatures[r.UserID] = r.Signature
	}
	return signatures, nil
}
