package domain

import "time"

// AuditReport summarizes the health of the article hierarchy at one point in time.
type AuditReport struct {
	CheckedAt time.Time
	Total     int
	ByStatus  map[Status]int
	// OrphanIDs lists articles whose parent reference points at a missing article.
	OrphanIDs []string
	PastDue   int
}
