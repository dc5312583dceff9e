package listing

import (
	"fmt"
	"time"
)

// ReviewWindow is how long an article may stay unreviewed after creation.
const ReviewWindow = 30 * day

const day = 24 * time.Hour

type DueStatus struct {
	PastDue  bool   `json:"past_due"`
	DaysLeft int    `json:"days_left"`
	Label    string `json:"label"`
}

// Due reports the review status of an article created at createdAt.
func Due(createdAt, now time.Time) DueStatus {
	window := int(ReviewWindow / day)
	days := int(now.Sub(createdAt) / day)
	if days > window {
		return DueStatus{PastDue: true, Label: "Past Due"}
	}
	left := window - days
	return DueStatus{DaysLeft: left, Label: fmt.Sprintf("in %d days", left)}
}
