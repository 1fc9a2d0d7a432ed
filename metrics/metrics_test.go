package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	before := testutil.ToFloat64(requestTotal.WithLabelValues("Article", "Show"))
	Observe("Article", "Show", 15*time.Millisecond)
	Observe("Article", "Show", 20*time.Millisecond)
	after := testutil.ToFloat64(requestTotal.WithLabelValues("Article", "Show"))
	assert.Equal(t, before+2, after)

	//不同方法的计数互不影响
	Observe("Article", "List", time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(requestTotal.WithLabelValues("Article", "List")))
}
