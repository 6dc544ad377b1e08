package metrics

import (
	"testing"
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/providers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	reg := prometheus.NewRegistry()

	m, err := New(reg)
	require.NoError(t, err)
	require.NotNil(t, m)

	_, err = New(reg)
	assert.Error(t, err, "registering twice should fail")
}

func TestObserver(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	var observer providers.Observer = m
	observer.PageFetched("cosmos", "sender", 50)
	observer.PageFetched("cosmos", "sender", 12)
	observer.RequestRetried("cosmos", "recipient")
	observer.BranchFinished("cosmos", "sender", providers.BranchStatus{Complete: true})
	observer.BranchFinished("cosmos", "recipient", providers.BranchStatus{Failed: true})
	observer.BranchFinished("sui", "from", providers.BranchStatus{})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.pagesFetched.WithLabelValues("cosmos", "sender")))
	assert.Equal(t, float64(62), testutil.ToFloat64(m.recordsFetched.WithLabelValues("cosmos", "sender")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.retries.WithLabelValues("cosmos", "recipient")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.branches.WithLabelValues("cosmos", "sender", OutcomeComplete)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.branches.WithLabelValues("cosmos", "recipient", OutcomeFailed)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.branches.WithLabelValues("sui", "from", OutcomePageLimit)))
}

func TestFetchCompleted(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.FetchCompleted("osmosis", "complete", 2*time.Second, 3)
	m.FetchCompleted("osmosis", "partial", time.Second, 0)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.fetches.WithLabelValues("osmosis", "complete")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.fetches.WithLabelValues("osmosis", "partial")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.recordsDropped.WithLabelValues("osmosis")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.fetchDuration))
}
