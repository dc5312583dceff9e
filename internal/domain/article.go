package domain

import (
	"strings"
	"time"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusAmendment Status = "amendment"
	StatusUpcoming  Status = "upcoming"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusDraft, StatusActive, StatusAmendment, StatusUpcoming}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// ParseStatus accepts any letter case; an empty string yields StatusDraft.
func ParseStatus(raw string) (Status, error) {
	if strings.TrimSpace(raw) == "" {
		return StatusDraft, nil
	}
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", &ValidationError{Field: "status", Value: raw, Message: "unknown status"}
	}
	return s, nil
}

type Article struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Slug      string    `db:"slug" json:"slug"`
	Content   string    `db:"content" json:"content"`
	ParentID  *string   `db:"parent_id" json:"parent_id"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsTopLevel reports whether the article is a category root.
func (a Article) IsTopLevel() bool {
	return a.ParentID == nil
}

// CreateArticleInput is the write-side payload for a new article.
// An empty Slug means "derive from Title".
type CreateArticleInput struct {
	Title    string
	Slug     string
	Content  string
	ParentID *string
}

// OptionalID distinguishes "leave as is" (Set=false) from "clear" (Set=true, Value=nil).
type OptionalID struct {
	Set   bool
	Value *string
}

// ArticlePatch holds the fields an update may change. Nil pointers are left untouched.
type ArticlePatch struct {
	Title    *string
	Slug     *string
	Content  *string
	Status   *Status
	ParentID OptionalID
}

func (p ArticlePatch) Empty() bool {
	return p.Title == nil && p.Slug == nil && p.Content == nil && p.Status == nil && !p.ParentID.Set
}

// Capability is the verdict of the session gate, passed explicitly into every mutation.
type Capability struct {
	Subject string
	Write   bool
}

func (c Capability) CanWrite() bool {
	return c.Subject != "" && c.Write
}

func Ptr[T any](v T) *T {
	return &v
}

// SameParent compares two optional parent references by value.
func SameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
