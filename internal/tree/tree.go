// Package tree answers hierarchy questions over a flat article snapshot.
//
// An Index is rebuilt from the authoritative collection on every call site and
// never mutated afterwards, so deleted articles cannot leave dangling pointers.
package tree

import "article_cms/internal/domain"

// rootKey groups articles without a parent.
const rootKey = ""

// Node is one level of a nested tree view.
type Node struct {
	Article  domain.Article `json:"article"`
	Children []Node         `json:"children"`
}

type Index struct {
	arena    []domain.Article
	byID     map[string]int
	children map[string][]int
}

// New indexes a snapshot. The slice is copied; later changes to it are not seen.
func New(articles []domain.Article) *Index {
	idx := &Index{
		arena:    make([]domain.Article, len(articles)),
		byID:     make(map[string]int, len(articles)),
		children: make(map[string][]int),
	}
	copy(idx.arena, articles)

	for i, a := range idx.arena {
		idx.byID[a.ID] = i
		key := rootKey
		if !a.IsTopLevel() {
			key = *a.ParentID
		}
		idx.children[key] = append(idx.children[key], i)
	}

	return idx
}

func (x *Index) Len() int {
	return len(x.arena)
}

// All returns a copy of the indexed snapshot in its original order.
func (x *Index) All() []domain.Article {
	out := make([]domain.Article, len(x.arena))
	copy(out, x.arena)
	return out
}

func (x *Index) Get(id string) (domain.Article, bool) {
	i, ok := x.byID[id]
	if !ok {
		return domain.Article{}, false
	}
	return x.arena[i], true
}

// ChildrenOf returns the direct children of parentID in snapshot order.
// A nil parentID selects the top-level articles.
func (x *Index) ChildrenOf(parentID *string) []domain.Article {
	key := rootKey
	if parentID != nil {
		key = *parentID
	}
	return x.collect(x.children[key])
}

func (x *Index) HasChildren(id string) bool {
	return len(x.children[id]) > 0
}

// AncestorsOf walks from the immediate parent up to the root.
// The walk stops at a dangling parent reference or when it would revisit an article.
func (x *Index) AncestorsOf(id string) []domain.Article {
	a, ok := x.Get(id)
	if !ok {
		return nil
	}

	var ancestors []domain.Article
	seen := map[string]bool{id: true}
	for a.ParentID != nil {
		parent, ok := x.Get(*a.ParentID)
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		ancestors = append(ancestors, parent)
		a = parent
	}
	return ancestors
}

// WouldCreateCycle reports whether making proposedParentID the parent of candidateID
// would let the candidate reach itself through parent edges.
func (x *Index) WouldCreateCycle(candidateID string, proposedParentID *string) bool {
	if proposedParentID == nil {
		return false
	}
	if *proposedParentID == candidateID {
		return true
	}
	for _, ancestor := range x.AncestorsOf(*proposedParentID) {
		if ancestor.ID == candidateID {
			return true
		}
	}
	return false
}

// TopLevelExcluding lists parentless articles except excludeID. It backs the
// "choose parent" selector of the editor.
func (x *Index) TopLevelExcluding(excludeID string) []domain.Article {
	var out []domain.Article
	for _, i := range x.children[rootKey] {
		if x.arena[i].ID != excludeID {
			out = append(out, x.arena[i])
		}
	}
	return out
}

// DescendantsOf enumerates the subtree below id in depth-first pre-order.
func (x *Index) DescendantsOf(id string) []domain.Article {
	var out []domain.Article
	seen := map[string]bool{id: true}

	var walk func(parent string)
	walk = func(parent string) {
		for _, i := range x.children[parent] {
			child := x.arena[i]
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			out = append(out, child)
			walk(child.ID)
		}
	}
	walk(id)

	return out
}

// ParentTitle resolves the category title of an article.
func (x *Index) ParentTitle(id string) (string, bool) {
	a, ok := x.Get(id)
	if !ok || a.IsTopLevel() {
		return "", false
	}
	parent, ok := x.Get(*a.ParentID)
	if !ok {
		return "", false
	}
	return parent.Title, true
}

// Orphans lists articles whose parent reference points at a missing article.
func (x *Index) Orphans() []domain.Article {
	var out []domain.Article
	for _, a := range x.arena {
		if a.IsTopLevel() {
			continue
		}
		if _, ok := x.byID[*a.ParentID]; !ok {
			out = append(out, a)
		}
	}
	return out
}

// Build nests the subtree starting at parentID (nil for the whole forest).
func (x *Index) Build(parentID *string) []Node {
	seen := make(map[string]bool)
	if parentID != nil {
		seen[*parentID] = true
	}
	return x.build(parentID, seen)
}

func (x *Index) build(parentID *string, seen map[string]bool) []Node {
	children := x.ChildrenOf(parentID)
	nodes := make([]Node, 0, len(children))
	for _, child := range children {
		if seen[child.ID] {
			continue
		}
		seen[child.ID] = true
		id := child.ID
		nodes = append(nodes, Node{
			Article:  child,
			Children: x.build(&id, seen),
		})
	}
	return nodes
}

func (x *Index) collect(positions []int) []domain.Article {
	out := make([]domain.Article, 0, len(positions))
	for _, i := range positions {
		out = append(out, x.arena[i])
	}
	return out
}
