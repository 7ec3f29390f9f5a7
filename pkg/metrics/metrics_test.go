package metrics_test

import (
	"testing"
	"time"

	"github.com/go-atpg/atpg/pkg/metrics"
	"github.com/stretchr/testify/require"
)

func TestRecordFaultCountsSumsTotal(t *testing.T) {
	var r metrics.Run
	r.RecordFaultCounts(7, 2, 1, 0)
	require.Equal(t, 10, r.TotalFaults)
	require.InDelta(t, 0.7, r.CoverageRatio(), 1e-9)
}

func TestCoverageRatioZeroFaultsIsZero(t *testing.T) {
	var r metrics.Run
	require.Equal(t, float64(0), r.CoverageRatio())
}

func TestStartPhaseAccumulatesIntoDestination(t *testing.T) {
	var r metrics.Run
	r.StartPhase(&r.ATPGTime)
	time.Sleep(time.Millisecond)
	r.EndPhase()
	require.Greater(t, r.ATPGTime, time.Duration(0))
}
