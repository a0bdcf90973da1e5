package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("/api/courses", "GET", "200"))

	ObserveRequest("/api/courses", "GET", 200, 15*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("/api/courses", "GET", "200")))
}

func TestObserveUnmatchedRoute(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("unmatched", "GET", "404"))

	ObserveRequest("", "GET", 404, time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("unmatched", "GET", "404")))
}

func TestAccountDecision(t *testing.T) {
	before := testutil.ToFloat64(accountDecisions.WithLabelValues("HOD", ResultApproved))

	AccountDecision("HOD", ResultApproved)

	assert.Equal(t, before+1, testutil.ToFloat64(accountDecisions.WithLabelValues("HOD", ResultApproved)))
}

func TestRateLimited(t *testing.T) {
	before := testutil.ToFloat64(rateLimited)
	RateLimited()
	assert.Equal(t, before+1, testutil.ToFloat64(rateLimited))
}
