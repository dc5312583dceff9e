package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"article_cms/internal/domain"
)

const (
	uniqueViolation     = pq.ErrorCode("23505")
	foreignKeyViolation = pq.ErrorCode("23503")
)

const articleColumns = `id, title, slug, content, parent_id, status, created_at, updated_at`

type ArticleStore struct {
	db *sqlx.DB
}

func NewArticleStore(db *sqlx.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// List returns every article, newest first. Articles created in the same
// instant come back in id order.
func (s *ArticleStore) List(ctx context.Context) ([]domain.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles ORDER BY created_at DESC, id`

	var articles []domain.Article
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &articles, query); err != nil {
		return nil, err
	}
	return articles, nil
}

func (s *ArticleStore) GetBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE slug = $1`

	var article domain.Article
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &article, query, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "article", Key: slug}
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (s *ArticleStore) Insert(ctx context.Context, article *domain.Article) error {
	query := `
		INSERT INTO articles (
			id, title, slug, content, parent_id, status, created_at, updated_at
		) VALUES (
			:id, :title, :slug, :content, :parent_id, :status, :created_at, :updated_at
		)`

	_, err := sqlx.NamedExecContext(ctx, GetExecutor(ctx, s.db), query, article)
	return translate(err, article)
}

func (s *ArticleStore) Update(ctx context.Context, article *domain.Article) error {
	query := `
		UPDATE articles SET
			title = :title,
			slug = :slug,
			content = :content,
			parent_id = :parent_id,
			status = :status,
			updated_at = :updated_at
		WHERE id = :id`

	res, err := sqlx.NamedExecContext(ctx, GetExecutor(ctx, s.db), query, article)
	if err != nil {
		return translate(err, article)
	}
	return expectRow(res, article.ID)
}

func (s *ArticleStore) Delete(ctx context.Context, id string) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return &domain.ValidationError{Field: "id", Value: id, Message: "article still has child articles"}
		}
		return err
	}
	return expectRow(res, id)
}

func expectRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Resource: "article", Key: id}
	}
	return nil
}

// translate turns constraint violations that slipped past the service checks
// (concurrent writers) into validation errors.
func translate(err error, article *domain.Article) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case uniqueViolation:
		return &domain.ValidationError{Field: "slug", Value: article.Slug, Message: "slug is already used by another article"}
	case foreignKeyViolation:
		parent := ""
		if article.ParentID != nil {
			parent = *article.ParentID
		}
		return &domain.ValidationError{Field: "parent_id", Value: parent, Message: "parent article does not exist"}
	default:
		return err
	}
}
