package listing

import (
	"strings"

	"article_cms/internal/domain"
)

const DefaultPageSize = 10

type Tab string

const (
	TabAll       Tab = "All"
	TabDraft     Tab = "Draft"
	TabActive    Tab = "Active"
	TabAmendment Tab = "Amendment"
	TabUpcoming  Tab = "Upcoming"
)

// Tabs lists the tabs in the order the article list shows them.
var Tabs = []Tab{TabAll, TabUpcoming, TabDraft, TabAmendment, TabActive}

// Status returns the article status a tab selects; ok is false for TabAll.
func (t Tab) Status() (domain.Status, bool) {
	if t == TabAll {
		return "", false
	}
	return domain.Status(strings.ToLower(string(t))), true
}

func ParseTab(raw string) (Tab, error) {
	if raw == "" {
		return TabAll, nil
	}
	for _, t := range Tabs {
		if strings.EqualFold(raw, string(t)) {
			return t, nil
		}
	}
	return "", &domain.ValidationError{Field: "tab", Value: raw, Message: "unknown status tab"}
}

type SortKey string

const (
	SortTitle     SortKey = "title"
	SortCreatedAt SortKey = "createdAt"
	SortUpdatedAt SortKey = "updatedAt"
)

func ParseSortKey(raw string) (SortKey, error) {
	switch strings.ToLower(raw) {
	case "":
		return SortUpdatedAt, nil
	case "title":
		return SortTitle, nil
	case "createdat", "created_at":
		return SortCreatedAt, nil
	case "updatedat", "updated_at":
		return SortUpdatedAt, nil
	}
	return "", &domain.ValidationError{Field: "sort", Value: raw, Message: "unknown sort key"}
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(raw) {
	case "":
		return Desc, nil
	case "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	}
	return "", &domain.ValidationError{Field: "dir", Value: raw, Message: "unknown sort direction"}
}

// Params are the view parameters of one list request.
type Params struct {
	FilterText string
	Tab        Tab
	SortKey    SortKey
	Direction  Direction
	Page       int
	PageSize   int
}

// DefaultParams matches the list's initial state: every status, most recently updated first.
func DefaultParams() Params {
	return Params{
		Tab:       TabAll,
		SortKey:   SortUpdatedAt,
		Direction: Desc,
		Page:      1,
		PageSize:  DefaultPageSize,
	}
}

// Reconcile moves from prev to p. Any change to the filter set sends the view
// back to the first page; a pure page change is kept.
func (p Params) Reconcile(prev Params) Params {
	if p.FilterText != prev.FilterText ||
		p.Tab != prev.Tab ||
		p.SortKey != prev.SortKey ||
		p.Direction != prev.Direction {
		p.Page = 1
	}
	return p
}

func (p Params) normalized() Params {
	if p.Tab == "" {
		p.Tab = TabAll
	}
	if p.SortKey == "" {
		p.SortKey = SortUpdatedAt
	}
	if p.Direction == "" {
		p.Direction = Desc
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	return p
}
