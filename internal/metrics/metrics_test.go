package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"article_cms/internal/domain"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "invalid", Outcome(&domain.ValidationError{Field: "slug", Message: "taken"}))
	assert.Equal(t, "not_found", Outcome(&domain.NotFoundError{Resource: "article", Key: "x"}))
	assert.Equal(t, "unauthorized", Outcome(&domain.UnauthorizedError{}))
	assert.Equal(t, "error", Outcome(&domain.CollaboratorError{Op: "insert article", Err: errors.New("boom")}))
}

func TestObserveMutation(t *testing.T) {
	initial := testutil.ToFloat64(ArticleMutationsTotal.WithLabelValues("created", "invalid"))

	ObserveMutation(domain.ActionCreated, &domain.ValidationError{Field: "title", Message: "cannot be blank"})

	assert.Equal(t, initial+1, testutil.ToFloat64(ArticleMutationsTotal.WithLabelValues("created", "invalid")))
}

func TestObservePublish(t *testing.T) {
	okBefore := testutil.ToFloat64(ArticleEventsPublished.WithLabelValues("deleted", "success"))
	failBefore := testutil.ToFloat64(ArticleEventsPublished.WithLabelValues("deleted", "failure"))

	ObservePublish(domain.ActionDeleted, nil)
	ObservePublish(domain.ActionDeleted, errors.New("channel closed"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ArticleEventsPublished.WithLabelValues("deleted", "success")))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(ArticleEventsPublished.WithLabelValues("deleted", "failure")))
}

func TestObserveAudit(t *testing.T) {
	ObserveAudit(&domain.AuditReport{
		Total:     4,
		ByStatus:  map[domain.Status]int{domain.StatusDraft: 3, domain.StatusActive: 1},
		OrphanIDs: []string{"x", "y"},
		PastDue:   2,
	})

	assert.Equal(t, float64(3), testutil.ToFloat64(ArticlesByStatus.WithLabelValues("draft")))
	assert.Equal(t, float64(1), testutil.ToFloat64(ArticlesByStatus.WithLabelValues("active")))
	assert.Equal(t, float64(2), testutil.ToFloat64(OrphanArticles))
	assert.Equal(t, float64(2), testutil.ToFloat64(PastDueArticles))
}
