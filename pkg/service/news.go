package service

import (
	"context"

	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/domain"
)

// NewsRepository stores news articles.
type NewsRepository = Repository[domain.News, domain.NewsPatch, domain.NewsFilter]

// NewsService manages portal news.
type NewsService struct {
	*Resource[domain.News, domain.NewsPatch, domain.NewsFilter]
}

// NewNewsService returns a news service over repo.
func NewNewsService(repo NewsRepository, opts ...Option) *NewsService {
	return &NewsService{NewResource(domain.ResourceNews, repo, ValidateNews, opts...)}
}

// Publish makes a draft visible and stamps its publication time.
func (s *NewsService) Publish(ctx context.Context, id string) (domain.News, error) {
	if s.remote != nil {
		return s.remote.Action(ctx, id, domain.ActionPublish)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.News{}, err
	}
	if current.Status != domain.NewsDraft {
		return domain.News{}, &apperr.InvalidTransitionError{Resource: domain.ResourceNews, From: string(current.Status), To: string(domain.NewsPublished)}
	}
	now := s.now()
	status := domain.NewsPublished
	updated, err := s.repo.Update(ctx, id, domain.NewsPatch{Status: &status, PublishedAt: &now})
	if err != nil {
		return updated, err
	}
	s.log.Info("news published", "id", id)
	return updated, nil
}

// Archive withdraws an article.
func (s *NewsService) Archive(ctx context.Context, id string) (domain.News, error) {
	if s.remote != nil {
		return s.remote.Action(ctx, id, domain.ActionArchive)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.News{}, err
	}
	if current.Status == domain.NewsArchived {
		return domain.News{}, &apperr.InvalidTransitionError{Resource: domain.ResourceNews, From: string(current.Status), To: string(domain.NewsArchived)}
	}
	status := domain.NewsArchived
	updated, err := s.repo.Update(ctx, id, domain.NewsPatch{Status: &status})
	if err != nil {
		return updated, err
	}
	s.log.Info("news archived", "id", id)
	return updated, nil
}
