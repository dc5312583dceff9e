package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"article_cms/internal/domain"
)

// ArticleStore is the system of record for articles.
type ArticleStore interface {
	List(ctx context.Context) ([]domain.Article, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Article, error)
	Insert(ctx context.Context, article *domain.Article) error
	Update(ctx context.Context, article *domain.Article) error
	Delete(ctx context.Context, id string) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, event domain.ArticleEvent) error
	Close() error
}

// SessionGate turns a bearer credential into the capability handed to mutations.
type SessionGate interface {
	Authorize(ctx context.Context, token string) (domain.Capability, error)
}
