package domain

import "time"

type EventAction string

const (
	ActionCreated EventAction = "created"
	ActionUpdated EventAction = "updated"
	ActionDeleted EventAction = "deleted"
)

// ArticleEvent describes a committed mutation for downstream consumers.
type ArticleEvent struct {
	Action     EventAction `json:"action"`
	Article    Article     `json:"article"`
	OccurredAt time.Time   `json:"occurred_at"`
}
