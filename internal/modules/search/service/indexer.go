package service

import (
	"context"

	"forumcore/internal/decorator"
	"forumcore/internal/entity"
	searchRepo "forumcore/internal/modules/search/repository"
	threadRepo "forumcore/internal/modules/thread/repository"
	"github.com/google/uuid"
)

type IndexerService interface {
	RebuildIndex(ctx context.Context) (int64, error)
	ClearIndex(ctx context.Context) error
	RemoveThread(ctx context.Context, threadID uuid.UUID) (int64, error)
}

type indexerService struct {
	threadRepo threadRepo.ThreadRepository
	searchRepo searchRepo.SearchIndexRepository
	decorator  *decorator.ThreadDecorator
}

func NewIndexerService(threads threadRepo.ThreadRepository, indexes searchRepo.SearchIndexRepository, threadDecorator *decorator.ThreadDecorator) IndexerService {
	return &indexerService{
		threadRepo: threads,
		searchRepo: indexes,
		decorator:  threadDecorator,
	}
}

// RebuildIndex scans all live threads in chunks and writes one index row per
// thread: title at medium relevance, author display name at low. It appends
// to whatever rows exist; call ClearIndex first for a rebuild from scratch.
// Returns the number of rows written.
func (s *indexerService) RebuildIndex(ctx context.Context) (int64, error) {
	var written int64
	err := s.threadRepo.EachBatch(ctx, threadRepo.ChunkSize, func(threads []entity.Thread) error {
		decorated := make([]entity.DecoratedThread, len(threads))
		for i, t := range threads {
			decorated[i] = entity.DecoratedThread{Thread: t}
		}
		if err := s.decorator.Decorate(ctx, decorated); err != nil {
			return err
		}

		rows := make([]entity.SearchIndex, 0, len(decorated))
		for _, d := range decorated {
			title := d.Title
			author := d.AuthorDisplayName
			rows = append(rows, entity.SearchIndex{
				MediumValue: &title,
				LowValue:    &author,
				ThreadID:    d.ID,
			})
		}
		if err := s.searchRepo.InsertBatch(ctx, rows); err != nil {
			return err
		}
		written += int64(len(rows))
		return nil
	})
	return written, err
}

func (s *indexerService) ClearIndex(ctx context.Context) error {
	return s.searchRepo.Clear(ctx)
}

// RemoveThread drops a thread's rows from the relational index, so destroyed
// or hidden threads stop surfacing in search between rebuilds. Returns the
// number of rows removed; zero when the thread was never indexed.
func (s *indexerService) RemoveThread(ctx context.Context, threadID uuid.UUID) (int64, error) {
	rows, err := s.searchRepo.FindByThreadIDs(ctx, []string{threadID.String()})
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	if err := s.searchRepo.DeleteByIDs(ctx, ids); err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}
