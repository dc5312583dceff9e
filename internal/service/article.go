package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"article_cms/internal/config"
	"article_cms/internal/domain"
	"article_cms/internal/listing"
	"article_cms/internal/metrics"
	"article_cms/internal/slug"
	"article_cms/internal/tree"
)

const (
	MaxTitleLength = 255
	MaxSlugLength  = 255
)

// ArticleService creates, edits and deletes articles and serves the list and tree views.
//
// Every call works on one snapshot of the store taken at its start. Mutations are
// last-write-wins: there is no locking or version check across requests, and the
// unique slug index in the store is the final guard against concurrent duplicates.
type ArticleService struct {
	articles  ArticleStore
	txManager TransactionManager
	publisher Publisher
	logger    *slog.Logger
	config    config.ListingConfig

	now   func() time.Time
	newID func() string
}

func NewArticleService(
	articles ArticleStore,
	txManager TransactionManager,
	publisher Publisher,
	logger *slog.Logger,
	cfg config.ListingConfig,
) *ArticleService {
	return &ArticleService{
		articles:  articles,
		txManager: txManager,
		publisher: publisher,
		logger:    logger.With("component", "articles"),
		config:    cfg,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *ArticleService) Create(ctx context.Context, capability domain.Capability, in domain.CreateArticleInput) (*domain.Article, error) {
	article, err := s.create(ctx, capability, in)
	metrics.ObserveMutation(domain.ActionCreated, err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("article created",
		"id", article.ID,
		"slug", article.Slug,
		"parent_id", article.ParentID,
		"subject", capability.Subject,
	)
	s.publish(ctx, domain.ActionCreated, *article)

	return article, nil
}

func (s *ArticleService) create(ctx context.Context, capability domain.Capability, in domain.CreateArticleInput) (*domain.Article, error) {
	if err := requireWrite(capability); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	articleSlug := slug.Derive(title)
	if strings.TrimSpace(in.Slug) != "" {
		articleSlug = slug.Normalize(in.Slug)
	}
	if err := validateSlug(articleSlug, in.Slug); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	article := &domain.Article{
		ID:        s.newID(),
		Title:     title,
		Slug:      articleSlug,
		Content:   in.Content,
		ParentID:  normalizeID(in.ParentID),
		Status:    domain.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		snapshot, err := s.snapshot(txCtx)
		if err != nil {
			return err
		}
		idx := tree.New(snapshot)

		if err := checkSlugFree(snapshot, article.Slug, ""); err != nil {
			return err
		}
		if err := checkParent(idx, article.ID, article.ParentID); err != nil {
			return err
		}

		if err := s.articles.Insert(txCtx, article); err != nil {
			return domain.Collaborator("insert article", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return article, nil
}

func (s *ArticleService) Update(ctx context.Context, capability domain.Capability, id string, patch domain.ArticlePatch) (*domain.Article, error) {
	article, err := s.update(ctx, capability, id, patch)
	metrics.ObserveMutation(domain.ActionUpdated, err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("article updated",
		"id", article.ID,
		"slug", article.Slug,
		"parent_id", article.ParentID,
		"status", article.Status,
		"subject", capability.Subject,
	)
	s.publish(ctx, domain.ActionUpdated, *article)

	return article, nil
}

func (s *ArticleService) update(ctx context.Context, capability domain.Capability, id string, patch domain.ArticlePatch) (*domain.Article, error) {
	if err := requireWrite(capability); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, &domain.ValidationError{Field: "patch", Message: "at least one field must be provided"}
	}

	var updated domain.Article
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		snapshot, err := s.snapshot(txCtx)
		if err != nil {
			return err
		}
		idx := tree.New(snapshot)

		current, ok := idx.Get(id)
		if !ok {
			return &domain.NotFoundError{Resource: "article", Key: id}
		}

		next, err := applyPatch(current, patch)
		if err != nil {
			return err
		}

		if next.Slug != current.Slug {
			if err := checkSlugFree(snapshot, next.Slug, id); err != nil {
				return err
			}
		}
		if !domain.SameParent(current.ParentID, next.ParentID) {
			if err := checkParent(idx, id, next.ParentID); err != nil {
				return err
			}
		}

		next.UpdatedAt = s.now().UTC()
		if next.UpdatedAt.Before(next.CreatedAt) {
			next.UpdatedAt = next.CreatedAt
		}

		if err := s.articles.Update(txCtx, &next); err != nil {
			return domain.Collaborator("update article", err)
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete removes an article. Articles that still have children are rejected so the
// parent relation never points at a missing article.
func (s *ArticleService) Delete(ctx context.Context, capability domain.Capability, id string) error {
	deleted, err := s.delete(ctx, capability, id)
	metrics.ObserveMutation(domain.ActionDeleted, err)
	if err != nil {
		return err
	}

	s.logger.Info("article deleted",
		"id", deleted.ID,
		"slug", deleted.Slug,
		"subject", capability.Subject,
	)
	s.publish(ctx, domain.ActionDeleted, deleted)

	return nil
}

func (s *ArticleService) delete(ctx context.Context, capability domain.Capability, id string) (domain.Article, error) {
	if err := requireWrite(capability); err != nil {
		return domain.Article{}, err
	}

	var deleted domain.Article
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		snapshot, err := s.snapshot(txCtx)
		if err != nil {
			return err
		}
		idx := tree.New(snapshot)

		article, ok := idx.Get(id)
		if !ok {
			return &domain.NotFoundError{Resource: "article", Key: id}
		}
		if idx.HasChildren(id) {
			return &domain.ValidationError{
				Field: "id",
				Value: id,
				Message: fmt.Sprintf("article has %d child article(s) and %d descendant(s) in total; move or delete them first",
					len(idx.ChildrenOf(&id)), len(idx.DescendantsOf(id))),
			}
		}

		if err := s.articles.Delete(txCtx, id); err != nil {
			return domain.Collaborator("delete article", err)
		}
		deleted = article
		return nil
	})

	return deleted, err
}

func (s *ArticleService) Get(ctx context.Context, articleSlug string) (*domain.Article, error) {
	article, err := s.articles.GetBySlug(ctx, articleSlug)
	if err != nil {
		return nil, domain.Collaborator("get article", err)
	}
	return article, nil
}

// ListView returns one page of the article list.
func (s *ArticleService) ListView(ctx context.Context, params listing.Params) (*listing.Page, error) {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if params.PageSize < 1 {
		params.PageSize = s.config.DefaultPageSize
	}
	if s.config.MaxPageSize > 0 && params.PageSize > s.config.MaxPageSize {
		params.PageSize = s.config.MaxPageSize
	}

	page := listing.Run(snapshot, params)
	return &page, nil
}

// TreeView lists the direct children of parentID (top level when nil).
func (s *ArticleService) TreeView(ctx context.Context, parentID *string) ([]domain.Article, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	return idx.ChildrenOf(normalizeID(parentID)), nil
}

// Tree returns the nested hierarchy below parentID.
func (s *ArticleService) Tree(ctx context.Context, parentID *string) ([]tree.Node, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Build(normalizeID(parentID)), nil
}

// ParentOptions lists the articles an editor may offer as parent for excludeID.
func (s *ArticleService) ParentOptions(ctx context.Context, excludeID string) ([]domain.Article, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	return idx.TopLevelExcluding(excludeID), nil
}

// Ancestors returns the breadcrumb trail of an article, nearest parent first.
func (s *ArticleService) Ancestors(ctx context.Context, id string) ([]domain.Article, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := idx.Get(id); !ok {
		return nil, &domain.NotFoundError{Resource: "article", Key: id}
	}
	return idx.AncestorsOf(id), nil
}

// Orphans lists articles whose parent no longer exists.
func (s *ArticleService) Orphans(ctx context.Context) ([]domain.Article, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Orphans(), nil
}

// Audit counts articles per status, past-due articles and orphans.
func (s *ArticleService) Audit(ctx context.Context) (*domain.AuditReport, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	report := &domain.AuditReport{
		CheckedAt: now,
		Total:     idx.Len(),
		ByStatus:  make(map[domain.Status]int, len(domain.Statuses)),
	}
	for _, st := range domain.Statuses {
		report.ByStatus[st] = 0
	}

	for _, a := range idx.All() {
		status := a.Status
		if status == "" {
			status = domain.StatusDraft
		}
		report.ByStatus[status]++
		if status != domain.StatusActive && listing.Due(a.CreatedAt, now).PastDue {
			report.PastDue++
		}
	}
	for _, orphan := range idx.Orphans() {
		report.OrphanIDs = append(report.OrphanIDs, orphan.ID)
	}

	metrics.ObserveAudit(report)
	return report, nil
}

func (s *ArticleService) snapshot(ctx context.Context) ([]domain.Article, error) {
	articles, err := s.articles.List(ctx)
	if err != nil {
		return nil, domain.Collaborator("list articles", err)
	}
	metrics.ListSnapshotSize.Observe(float64(len(articles)))
	return articles, nil
}

func (s *ArticleService) index(ctx context.Context) (*tree.Index, error) {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return tree.New(snapshot), nil
}

func (s *ArticleService) publish(ctx context.Context, action domain.EventAction, article domain.Article) {
	if s.publisher == nil {
		return
	}

	err := s.publisher.Publish(ctx, domain.ArticleEvent{
		Action:     action,
		Article:    article,
		OccurredAt: s.now().UTC(),
	})
	metrics.ObservePublish(action, err)
	if err != nil {
		s.logger.Warn("failed to publish article event",
			"action", action,
			"id", article.ID,
			"error", err,
		)
	}
}

func requireWrite(capability domain.Capability) error {
	if !capability.CanWrite() {
		return &domain.UnauthorizedError{Message: "editing articles requires a signed-in editor"}
	}
	return nil
}

func applyPatch(current domain.Article, patch domain.ArticlePatch) (domain.Article, error) {
	next := current

	if patch.Title != nil {
		next.Title = strings.TrimSpace(*patch.Title)
		if err := validateTitle(next.Title); err != nil {
			return domain.Article{}, err
		}
	}
	if patch.Slug != nil {
		next.Slug = slug.Normalize(*patch.Slug)
		if err := validateSlug(next.Slug, *patch.Slug); err != nil {
			return domain.Article{}, err
		}
	}
	if patch.Content != nil {
		next.Content = *patch.Content
	}
	if patch.Status != nil {
		if err := validateStatus(*patch.Status); err != nil {
			return domain.Article{}, err
		}
		next.Status = *patch.Status
	}
	if patch.ParentID.Set {
		next.ParentID = normalizeID(patch.ParentID.Value)
	}

	return next, nil
}

func validateTitle(title string) error {
	return checkField("title", title, title,
		validation.Required,
		validation.RuneLength(1, MaxTitleLength),
	)
}

func validateSlug(normalized, raw string) error {
	return checkField("slug", normalized, raw,
		validation.Required.Error("is empty after normalization"),
		validation.RuneLength(1, MaxSlugLength),
		validation.By(func(value interface{}) error {
			if s, _ := value.(string); !slug.Valid(s) {
				return errors.New("must be lower-case words joined by single hyphens")
			}
			return nil
		}),
	)
}

func validateStatus(status domain.Status) error {
	allowed := make([]interface{}, len(domain.Statuses))
	for i, st := range domain.Statuses {
		allowed[i] = st
	}
	return checkField("status", status, string(status),
		validation.Required,
		validation.In(allowed...).Error("unknown status"),
	)
}

func checkField(field string, value interface{}, shown string, rules ...validation.Rule) error {
	if err := validation.Validate(value, rules...); err != nil {
		return &domain.ValidationError{Field: field, Value: shown, Message: err.Error()}
	}
	return nil
}

func checkSlugFree(snapshot []domain.Article, articleSlug, selfID string) error {
	for _, a := range snapshot {
		if a.Slug == articleSlug && a.ID != selfID {
			return &domain.ValidationError{Field: "slug", Value: articleSlug, Message: "slug is already used by another article"}
		}
	}
	return nil
}

func checkParent(idx *tree.Index, id string, parentID *string) error {
	if parentID == nil {
		return nil
	}
	if _, ok := idx.Get(*parentID); !ok {
		return &domain.ValidationError{Field: "parent_id", Value: *parentID, Message: "parent article does not exist"}
	}
	if idx.WouldCreateCycle(id, parentID) {
		return &domain.ValidationError{Field: "parent_id", Value: *parentID, Message: "article cannot be placed under itself or one of its descendants"}
	}
	return nil
}

// normalizeID treats an empty or blank id as "no parent".
func normalizeID(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	v := strings.TrimSpace(*id)
	return &v
}
