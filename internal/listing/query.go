// Package listing computes the filtered, sorted and paginated article list.
package listing

import (
	"slices"
	"strings"

	"article_cms/internal/domain"
	"article_cms/internal/tree"
)

type Page struct {
	Items       []domain.Article
	TotalCount  int
	TotalPages  int
	CurrentPage int
	PageSize    int
	// TabCounts counts the whole snapshot per tab, independent of the filter.
	TabCounts map[Tab]int
	// Categories maps the id of each item on the page to its parent title.
	Categories map[string]string
}

// Run applies filter, stable sort and pagination to a snapshot. It never fails
// and never modifies articles.
func Run(articles []domain.Article, params Params) Page {
	p := params.normalized()
	idx := tree.New(articles)

	filtered := filter(articles, idx, p)
	sortArticles(filtered, p.SortKey, p.Direction)

	total := len(filtered)
	totalPages := total / p.PageSize
	if total%p.PageSize != 0 {
		totalPages++
	}

	// Bounds are checked before multiplying so huge page numbers cannot overflow.
	start, end := total, total
	if p.Page <= totalPages {
		start = (p.Page - 1) * p.PageSize
		end = start + min(p.PageSize, total-start)
	}
	items := slices.Clone(filtered[start:end])

	categories := make(map[string]string, len(items))
	for _, a := range items {
		if title, ok := idx.ParentTitle(a.ID); ok {
			categories[a.ID] = title
		}
	}

	return Page{
		Items:       items,
		TotalCount:  total,
		TotalPages:  totalPages,
		CurrentPage: p.Page,
		PageSize:    p.PageSize,
		TabCounts:   CountTabs(articles),
		Categories:  categories,
	}
}

// CountTabs returns how many articles each tab would show without a text filter.
func CountTabs(articles []domain.Article) map[Tab]int {
	counts := make(map[Tab]int, len(Tabs))
	for _, t := range Tabs {
		counts[t] = 0
	}
	for _, a := range articles {
		counts[TabAll]++
		for _, t := range Tabs {
			if status, ok := t.Status(); ok && status == effectiveStatus(a) {
				counts[t]++
			}
		}
	}
	return counts
}

func filter(articles []domain.Article, idx *tree.Index, p Params) []domain.Article {
	needle := strings.ToLower(p.FilterText)
	status, byStatus := p.Tab.Status()

	out := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if byStatus && effectiveStatus(a) != status {
			continue
		}
		if needle != "" && !matchesText(a, idx, needle) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func matchesText(a domain.Article, idx *tree.Index, needle string) bool {
	if strings.Contains(strings.ToLower(a.Title), needle) ||
		strings.Contains(strings.ToLower(a.Content), needle) {
		return true
	}
	category, ok := idx.ParentTitle(a.ID)
	return ok && strings.Contains(strings.ToLower(category), needle)
}

// effectiveStatus treats rows without a status as drafts.
func effectiveStatus(a domain.Article) domain.Status {
	if a.Status == "" {
		return domain.StatusDraft
	}
	return a.Status
}

func sortArticles(articles []domain.Article, key SortKey, dir Direction) {
	cmp := compareBy(key)
	if dir == Desc {
		asc := cmp
		cmp = func(a, b domain.Article) int { return -asc(a, b) }
	}
	slices.SortStableFunc(articles, cmp)
}

func compareBy(key SortKey) func(a, b domain.Article) int {
	switch key {
	case SortTitle:
		return func(a, b domain.Article) int { return strings.Compare(a.Title, b.Title) }
	case SortCreatedAt:
		return func(a, b domain.Article) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return func(a, b domain.Article) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	}
}
