package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(transitions.WithLabelValues("church", "approve"))
	ObserveTransition("church", "approve")
	ObserveTransition("church", "approve")
	assert.Equal(t, before+2, testutil.ToFloat64(transitions.WithLabelValues("church", "approve")))

	before = testutil.ToFloat64(httpRequests.WithLabelValues("GET", "404"))
	ObserveRequest("GET", 404, 3*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "404")))

	before = testutil.ToFloat64(claimsResolved.WithLabelValues("rejected"))
	ObserveClaimResolved("rejected")
	assert.Equal(t, before+1, testutil.ToFloat64(claimsResolved.WithLabelValues("rejected")))
}

func TestModerationQueueGaugeIsSet(t *testing.T) {
	SetModerationQueue("store", 4)
	SetModerationQueue("store", 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(moderationQueue.WithLabelValues("store")))
}
