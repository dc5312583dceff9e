package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"article_cms/internal/domain"
	"article_cms/internal/listing"
	"article_cms/internal/middleware"
	"article_cms/internal/render"
	"article_cms/internal/tree"
)

const excerptLength = 160

// ArticleService is the part of service.ArticleService the HTTP layer uses.
type ArticleService interface {
	Create(ctx context.Context, capability domain.Capability, in domain.CreateArticleInput) (*domain.Article, error)
	Update(ctx context.Context, capability domain.Capability, id string, patch domain.ArticlePatch) (*domain.Article, error)
	Delete(ctx context.Context, capability domain.Capability, id string) error
	Get(ctx context.Context, slug string) (*domain.Article, error)
	ListView(ctx context.Context, params listing.Params) (*listing.Page, error)
	TreeView(ctx context.Context, parentID *string) ([]domain.Article, error)
	Tree(ctx context.Context, parentID *string) ([]tree.Node, error)
	ParentOptions(ctx context.Context, excludeID string) ([]domain.Article, error)
	Ancestors(ctx context.Context, id string) ([]domain.Article, error)
	Orphans(ctx context.Context) ([]domain.Article, error)
}

type ArticleHandler struct {
	articles ArticleService
	renderer *render.Renderer
	now      func() time.Time
}

func NewArticleHandler(articles ArticleService, renderer *render.Renderer) *ArticleHandler {
	return &ArticleHandler{
		articles: articles,
		renderer: renderer,
		now:      time.Now,
	}
}

// Register mounts the article routes on rg.
func (h *ArticleHandler) Register(rg *gin.RouterGroup) {
	articles := rg.Group("/articles")

	articles.GET("", h.List)
	articles.POST("", h.Create)
	articles.GET("/tree", h.Tree)
	articles.GET("/children", h.Children)
	articles.GET("/parent-options", h.ParentOptions)
	articles.GET("/orphans", h.Orphans)
	articles.GET("/:slug", h.Get)
	articles.GET("/:slug/preview", h.Preview)
	articles.PATCH("/:id", h.Update)
	articles.DELETE("/:id", h.Delete)
}

type CreateArticleRequest struct {
	Title    string  `json:"title"`
	Slug     string  `json:"slug"`
	Content  string  `json:"content"`
	ParentID *string `json:"parent_id"`
}

type UpdateArticleRequest struct {
	Title    *string        `json:"title"`
	Slug     *string        `json:"slug"`
	Content  *string        `json:"content"`
	Status   *string        `json:"status"`
	ParentID OptionalString `json:"parent_id"`
}

type ListItem struct {
	domain.Article
	Category string            `json:"category,omitempty"`
	Excerpt  string            `json:"excerpt"`
	Due      listing.DueStatus `json:"due"`
}

// ListResponse echoes the effective view state so the client can send it
// back as prev_* on the next request.
type ListResponse struct {
	Items       []ListItem          `json:"items"`
	TotalCount  int                 `json:"total_count"`
	TotalPages  int                 `json:"total_pages"`
	CurrentPage int                 `json:"current_page"`
	PageSize    int                 `json:"page_size"`
	Query       string              `json:"q"`
	Tab         listing.Tab         `json:"tab"`
	Sort        listing.SortKey     `json:"sort"`
	Direction   listing.Direction   `json:"dir"`
	Tabs        []listing.Tab       `json:"tabs"`
	TabCounts   map[listing.Tab]int `json:"tab_counts"`
}

type ArticleResponse struct {
	Article   domain.Article   `json:"article"`
	Ancestors []domain.Article `json:"ancestors"`
	Children  []domain.Article `json:"children"`
}

type PreviewResponse struct {
	Slug     string `json:"slug"`
	HTML     string `json:"html,omitempty"`
	Markdown string `json:"markdown,omitempty"`
}

// List handles GET /articles. When the client sends the previous view as
// prev_q, prev_tab, prev_sort and prev_dir, a changed filter set restarts at page 1.
func (h *ArticleHandler) List(c *gin.Context) {
	params, err := parseListParams(c)
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.articles.ListView(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	now := h.now()
	items := make([]ListItem, 0, len(page.Items))
	for _, a := range page.Items {
		items = append(items, ListItem{
			Article:  a,
			Category: page.Categories[a.ID],
			Excerpt:  h.renderer.Excerpt(a.Content, excerptLength),
			Due:      listing.Due(a.CreatedAt, now),
		})
	}

	c.JSON(http.StatusOK, ListResponse{
		Items:       items,
		TotalCount:  page.TotalCount,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
		PageSize:    page.PageSize,
		Query:       params.FilterText,
		Tab:         params.Tab,
		Sort:        params.SortKey,
		Direction:   params.Direction,
		Tabs:        listing.Tabs,
		TabCounts:   page.TabCounts,
	})
}

// Get handles GET /articles/:slug and adds breadcrumbs and direct children.
func (h *ArticleHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	article, err := h.articles.Get(ctx, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	ancestors, err := h.articles.Ancestors(ctx, article.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	children, err := h.articles.TreeView(ctx, &article.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ArticleResponse{
		Article:   *article,
		Ancestors: nonNil(ancestors),
		Children:  nonNil(children),
	})
}

// Preview handles GET /articles/:slug/preview?format=html|markdown.
func (h *ArticleHandler) Preview(c *gin.Context) {
	article, err := h.articles.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := PreviewResponse{Slug: article.Slug}
	switch strings.ToLower(c.DefaultQuery("format", "html")) {
	case "html":
		resp.HTML = h.renderer.Preview(article.Content)
	case "markdown", "md":
		resp.Markdown, err = h.renderer.Markdown(article.Content)
		if err != nil {
			respondError(c, err)
			return
		}
	default:
		badRequest(c, "format", "must be html or markdown")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Tree handles GET /articles/tree.
func (h *ArticleHandler) Tree(c *gin.Context) {
	nodes, err := h.articles.Tree(c.Request.Context(), optionalQuery(c, "parent_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nodes": nodes})
}

// Children handles GET /articles/children.
func (h *ArticleHandler) Children(c *gin.Context) {
	children, err := h.articles.TreeView(c.Request.Context(), optionalQuery(c, "parent_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": nonNil(children)})
}

// ParentOptions handles GET /articles/parent-options.
func (h *ArticleHandler) ParentOptions(c *gin.Context) {
	options, err := h.articles.ParentOptions(c.Request.Context(), c.Query("exclude_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": nonNil(options)})
}

// Orphans handles GET /articles/orphans.
func (h *ArticleHandler) Orphans(c *gin.Context) {
	orphans, err := h.articles.Orphans(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": nonNil(orphans)})
}

// Create handles POST /articles.
func (h *ArticleHandler) Create(c *gin.Context) {
	var req CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", "invalid JSON body")
		return
	}

	article, err := h.articles.Create(c.Request.Context(), middleware.GetCapability(c), domain.CreateArticleInput{
		Title:    req.Title,
		Slug:     req.Slug,
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, article)
}

// Update handles PATCH /articles/:id.
func (h *ArticleHandler) Update(c *gin.Context) {
	var req UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", "invalid JSON body")
		return
	}

	patch := domain.ArticlePatch{
		Title:   req.Title,
		Slug:    req.Slug,
		Content: req.Content,
		ParentID: domain.OptionalID{
			Set:   req.ParentID.Present,
			Value: req.ParentID.Value,
		},
	}
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		patch.Status = &status
	}

	article, err := h.articles.Update(c.Request.Context(), middleware.GetCapability(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// Delete handles DELETE /articles/:id.
func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.articles.Delete(c.Request.Context(), middleware.GetCapability(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseListParams(c *gin.Context) (listing.Params, error) {
	params := listing.DefaultParams()
	params.FilterText = strings.TrimSpace(c.Query("q"))

	var err error
	if params.Tab, err = listing.ParseTab(c.Query("tab")); err != nil {
		return params, err
	}
	if params.SortKey, err = listing.ParseSortKey(c.Query("sort")); err != nil {
		return params, err
	}
	if params.Direction, err = listing.ParseDirection(c.Query("dir")); err != nil {
		return params, err
	}
	if params.Page, err = intQuery(c, "page", 1); err != nil {
		return params, err
	}
	if params.PageSize, err = intQuery(c, "page_size", 0); err != nil {
		return params, err
	}

	prev, ok, err := previousParams(c, params)
	if err != nil {
		return params, err
	}
	if ok {
		params = params.Reconcile(prev)
	}

	return params, nil
}

// previousParams reads the prev_* view state. Fields the client left out are
// taken as unchanged; ok is false when none were sent.
func previousParams(c *gin.Context, current listing.Params) (listing.Params, bool, error) {
	prev := current
	ok := false

	if raw, sent := c.GetQuery("prev_q"); sent {
		prev.FilterText = strings.TrimSpace(raw)
		ok = true
	}

	var err error
	if raw, sent := c.GetQuery("prev_tab"); sent {
		if prev.Tab, err = listing.ParseTab(raw); err != nil {
			return prev, false, err
		}
		ok = true
	}
	if raw, sent := c.GetQuery("prev_sort"); sent {
		if prev.SortKey, err = listing.ParseSortKey(raw); err != nil {
			return prev, false, err
		}
		ok = true
	}
	if raw, sent := c.GetQuery("prev_dir"); sent {
		if prev.Direction, err = listing.ParseDirection(raw); err != nil {
			return prev, false, err
		}
		ok = true
	}

	return prev, ok, nil
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.ValidationError{Field: name, Value: raw, Message: "must be an integer"}
	}
	return n, nil
}

func optionalQuery(c *gin.Context, name string) *string {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil
	}
	return &v
}

func nonNil(articles []domain.Article) []domain.Article {
	if articles == nil {
		return []domain.Article{}
	}
	return articles
}
