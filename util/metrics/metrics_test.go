package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordFrameCounters(t *testing.T) {
	before := testutil.ToFloat64(FramesReceivedTotal.WithLabelValues("camtest", "fanout"))
	RecordFrameReceived("camtest", "fanout")
	RecordFrameReceived("camtest", "fanout")
	after := testutil.ToFloat64(FramesReceivedTotal.WithLabelValues("camtest", "fanout"))
	if after-before != 2 {
		t.Errorf("FramesReceivedTotal delta = %v, want 2", after-before)
	}

	before = testutil.ToFloat64(FramesDroppedTotal.WithLabelValues("yolotest"))
	RecordFrameDropped("yolotest")
	after = testutil.ToFloat64(FramesDroppedTotal.WithLabelValues("yolotest"))
	if after-before != 1 {
		t.Errorf("FramesDroppedTotal delta = %v, want 1", after-before)
	}
}

func TestQueueDepthGauge(t *testing.T) {
	SetWorkerQueueDepth("bliptest", 42)
	if got := testutil.ToFloat64(WorkerQueueDepth.WithLabelValues("bliptest")); got != 42 {
		t.Errorf("WorkerQueueDepth = %v, want 42", got)
	}
	SetWorkerQueueDepth("bliptest", 0)
	if got := testutil.ToFloat64(WorkerQueueDepth.WithLabelValues("bliptest")); got != 0 {
		t.Errorf("WorkerQueueDepth = %v, want 0", got)
	}
}

func TestActiveSessionsGauge(t *testing.T) {
	SetActiveSessions(3)
	if got := testutil.ToFloat64(ActiveSessions); got != 3 {
		t.Errorf("ActiveSessions = %v, want 3", got)
	}
	SetActiveSessions(0)
}
