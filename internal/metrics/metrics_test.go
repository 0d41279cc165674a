package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestObserveAccumulatesCallsAndErrors(t *testing.T) {
	r := New()
	r.Observe("analyze_complexity", 10*time.Millisecond, nil)
	r.Observe("analyze_complexity", 20*time.Millisecond, errors.New("boom"))

	snap := r.Snapshot()
	stats := snap["analyze_complexity"]
	require.Equal(t, int64(2), stats.Calls)
	require.Equal(t, int64(1), stats.Errors)
	require.Greater(t, stats.TotalNanos, int64(0))
}

func TestMethodNamesSortedAndIsolatedPerMethod(t *testing.T) {
	r := New()
	r.Observe("b_method", time.Millisecond, nil)
	r.Observe("a_method", time.Millisecond, nil)

	require.Equal(t, []string{"a_method", "b_method"}, r.MethodNames())
	require.Equal(t, int64(1), r.Snapshot()["a_method"].Calls)
	require.Equal(t, int64(1), r.Snapshot()["b_method"].Calls)
}
