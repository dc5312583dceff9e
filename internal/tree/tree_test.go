package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"article_cms/internal/domain"
)

func article(id, title string, parent *string) domain.Article {
	return domain.Article{ID: id, Title: title, Slug: id, ParentID: parent, Status: domain.StatusDraft}
}

func ids(articles []domain.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.ID)
	}
	return out
}

// math
// ├── algebra
// │   └── linear
// └── geometry
// science
// └── physics
func fixture() []domain.Article {
	return []domain.Article{
		article("math", "Math", nil),
		article("algebra", "Algebra", domain.Ptr("math")),
		article("science", "Science", nil),
		article("linear", "Linear Equations", domain.Ptr("algebra")),
		article("geometry", "Geometry", domain.Ptr("math")),
		article("physics", "Physics", domain.Ptr("science")),
	}
}

func TestChildrenOf_PreservesSnapshotOrder(t *testing.T) {
	idx := New(fixture())

	assert.Equal(t, []string{"math", "science"}, ids(idx.ChildrenOf(nil)))
	assert.Equal(t, []string{"algebra", "geometry"}, ids(idx.ChildrenOf(domain.Ptr("math"))))
	assert.Empty(t, idx.ChildrenOf(domain.Ptr("linear")))
	assert.Empty(t, idx.ChildrenOf(domain.Ptr("missing")))
}

func TestHasChildren(t *testing.T) {
	idx := New(fixture())

	assert.True(t, idx.HasChildren("math"))
	assert.True(t, idx.HasChildren("algebra"))
	assert.False(t, idx.HasChildren("linear"))
	assert.False(t, idx.HasChildren("missing"))
}

func TestAncestorsOf(t *testing.T) {
	idx := New(fixture())

	assert.Equal(t, []string{"algebra", "math"}, ids(idx.AncestorsOf("linear")))
	assert.Empty(t, idx.AncestorsOf("math"))
	assert.Empty(t, idx.AncestorsOf("missing"))
}

func TestAncestorsOf_StopsOnCorruptedCycle(t *testing.T) {
	idx := New([]domain.Article{
		article("a", "A", domain.Ptr("b")),
		article("b", "B", domain.Ptr("a")),
	})

	assert.Equal(t, []string{"b"}, ids(idx.AncestorsOf("a")))
}

func TestAncestorsOf_StopsOnDanglingParent(t *testing.T) {
	idx := New([]domain.Article{
		article("child", "Child", domain.Ptr("gone")),
	})

	assert.Empty(t, idx.AncestorsOf("child"))
}

func TestWouldCreateCycle(t *testing.T) {
	idx := New(fixture())

	tests := []struct {
		name      string
		candidate string
		parent    *string
		want      bool
	}{
		{"move to top level", "algebra", nil, false},
		{"self parent", "math", domain.Ptr("math"), true},
		{"under direct child", "math", domain.Ptr("algebra"), true},
		{"under grandchild", "math", domain.Ptr("linear"), true},
		{"under sibling subtree", "algebra", domain.Ptr("geometry"), false},
		{"under other root", "math", domain.Ptr("science"), false},
		{"leaf under unrelated", "linear", domain.Ptr("physics"), false},
		{"unknown parent", "math", domain.Ptr("missing"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, idx.WouldCreateCycle(tt.candidate, tt.parent))
		})
	}
}

func TestTopLevelExcluding(t *testing.T) {
	idx := New(fixture())

	assert.Equal(t, []string{"science"}, ids(idx.TopLevelExcluding("math")))
	assert.Equal(t, []string{"math", "science"}, ids(idx.TopLevelExcluding("linear")))
	assert.Equal(t, []string{"math", "science"}, ids(idx.TopLevelExcluding("")))
}

func TestDescendantsOf(t *testing.T) {
	idx := New(fixture())

	assert.Equal(t, []string{"algebra", "linear", "geometry"}, ids(idx.DescendantsOf("math")))
	assert.Empty(t, idx.DescendantsOf("linear"))
}

func TestParentTitle(t *testing.T) {
	idx := New(fixture())

	title, ok := idx.ParentTitle("linear")
	assert.True(t, ok)
	assert.Equal(t, "Algebra", title)

	_, ok = idx.ParentTitle("math")
	assert.False(t, ok)
}

func TestOrphans(t *testing.T) {
	articles := append(fixture(), article("stray", "Stray", domain.Ptr("deleted")))
	idx := New(articles)

	assert.Equal(t, []string{"stray"}, ids(idx.Orphans()))
}

func TestBuild(t *testing.T) {
	idx := New(fixture())

	forest := idx.Build(nil)
	require.Len(t, forest, 2)
	assert.Equal(t, "math", forest[0].Article.ID)
	require.Len(t, forest[0].Children, 2)
	assert.Equal(t, "algebra", forest[0].Children[0].Article.ID)
	require.Len(t, forest[0].Children[0].Children, 1)
	assert.Equal(t, "linear", forest[0].Children[0].Children[0].Article.ID)
	assert.Empty(t, forest[0].Children[0].Children[0].Children)

	sub := idx.Build(domain.Ptr("science"))
	require.Len(t, sub, 1)
	assert.Equal(t, "physics", sub[0].Article.ID)
}

func TestNew_DoesNotAliasInput(t *testing.T) {
	articles := fixture()
	idx := New(articles)

	articles[0].Title = "Changed"

	a, ok := idx.Get("math")
	require.True(t, ok)
	assert.Equal(t, "Math", a.Title)
}

func TestAll_ReturnsIndependentCopy(t *testing.T) {
	idx := New(fixture())

	all := idx.All()
	require.Len(t, all, idx.Len())
	assert.Equal(t, ids(fixture()), ids(all))

	all[0].Title = "changed"
	got, ok := idx.Get("math")
	require.True(t, ok)
	assert.Equal(t, "Math", got.Title)
}
