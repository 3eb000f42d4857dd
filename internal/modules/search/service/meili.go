package service

import (
	"fmt"
	"log"

	"forumcore/internal/entity"
	"forumcore/pkg/apperror"
	"github.com/meilisearch/meilisearch-go"
)

const threadIndexUID = "threads"

// ThreadDocument is the shape pushed to the search engine for full-text
// queries. Relevance fields mirror the database-side search index rows so the
// two stores rank the same way.
type ThreadDocument struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	AuthorName string `json:"author_name"`
	CategoryID string `json:"category_id"`
	State      string `json:"state"`
	CreatedAt  int64  `json:"created_at"`
	LastPostAt int64  `json:"last_post_at"`
	PostCount  int64  `json:"post_count"`
	URL        string `json:"url"`
}

type MeiliService interface {
	IndexThread(thread entity.DecoratedThread) error
	DeleteThread(id string) error
}

type meiliService struct {
	client meilisearch.ServiceManager
}

func NewMeiliService(client meilisearch.ServiceManager) MeiliService {
	s := &meiliService{client: client}
	s.initIndex()
	return s
}

// initIndex pushes the thread index settings. Failures are logged and not
// fatal, the engine may simply not be up yet.
func (s *meiliService) initIndex() {
	filterableAttrs := []string{"category_id", "state"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	_, err := s.client.Index(threadIndexUID).UpdateFilterableAttributes(&filterableInterface)
	if err != nil {
		log.Printf("Failed to update threads filterable attributes: %v", err)
	}

	sortableAttrs := []string{"created_at", "last_post_at"}
	_, err = s.client.Index(threadIndexUID).UpdateSortableAttributes(&sortableAttrs)
	if err != nil {
		log.Printf("Failed to update threads sortable attributes: %v", err)
	}
}

func strPtr(s string) *string { return &s }

func (s *meiliService) IndexThread(thread entity.DecoratedThread) error {
	doc := ThreadDocument{
		ID:         thread.ID.String(),
		Title:      thread.Title,
		Slug:       thread.Slug,
		AuthorName: thread.AuthorDisplayName,
		CategoryID: thread.CategoryID.String(),
		State:      thread.State,
		CreatedAt:  thread.CreatedAt.Unix(),
		PostCount:  thread.PostCount,
		URL:        thread.URL,
	}
	if thread.LastPostPublishedOn != nil {
		doc.LastPostAt = thread.LastPostPublishedOn.Unix()
	}

	_, err := s.client.Index(threadIndexUID).AddDocuments([]ThreadDocument{doc}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index thread %s: %w", doc.ID, apperror.ErrDependency)
	}
	return nil
}

func (s *meiliService) DeleteThread(id string) error {
	_, err := s.client.Index(threadIndexUID).DeleteDocument(id)
	if err != nil {
		return fmt.Errorf("delete thread %s from search: %w", id, apperror.ErrDependency)
	}
	return nil
}
