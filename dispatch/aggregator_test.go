package dispatch

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mentat-Vision/moe/expert"
	"github.com/Mentat-Vision/moe/session"
)

func startAggregator(t *testing.T) (*Aggregator, *session.Manager) {
	t.Helper()
	agg := NewAggregator(nil)
	agg.Start()
	t.Cleanup(agg.Stop)
	manager := session.NewManager()
	t.Cleanup(manager.Stop)
	return agg, manager
}

func TestAggregatorStragglerDiscarded(t *testing.T) {
	agg, manager := startAggregator(t)
	sess := manager.Register("cam1", "")

	// No aggregate was ever opened for this key.
	agg.Collect(expert.Result{Expert: "yolo", CameraID: "cam1", Sequence: 5, Payload: expert.Payload{}})

	select {
	case msg := <-sess.Outbound():
		t.Fatalf("straggler must not produce a delivery, got %s", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestAggregatorWithdrawAllDeliversEmpty(t *testing.T) {
	agg, manager := startAggregator(t)
	sess := manager.Register("cam1", "")

	agg.Open(sess, 1, []string{"yolo"}, time.Minute)
	agg.Withdraw("cam1", 1, "yolo")

	select {
	case msg := <-sess.Outbound():
		var resp map[string]any
		require.NoError(t, json.Unmarshal(msg, &resp))
		assert.Empty(t, resp["results"])
	case <-time.After(2 * time.Second):
		t.Fatal("withdrawing the last expert must complete the aggregate")
	}
}

func TestAggregatorUnexpectedExpertIgnored(t *testing.T) {
	agg, manager := startAggregator(t)
	sess := manager.Register("cam1", "")

	agg.Open(sess, 1, []string{"yolo", "blip"}, time.Minute)
	// A result from an expert that was never part of this aggregate does
	// not complete it or corrupt the results map.
	agg.Collect(expert.Result{Expert: "clip", CameraID: "cam1", Sequence: 1, Payload: expert.Payload{}})
	agg.Collect(expert.Result{Expert: "yolo", CameraID: "cam1", Sequence: 1, Payload: expert.Payload{}})

	select {
	case <-sess.Outbound():
		t.Fatal("aggregate completed with blip still outstanding")
	case <-time.After(100 * time.Millisecond):
	}

	agg.Collect(expert.Result{Expert: "blip", CameraID: "cam1", Sequence: 1, Payload: expert.Payload{}})
	select {
	case msg := <-sess.Outbound():
		var resp map[string]any
		require.NoError(t, json.Unmarshal(msg, &resp))
		results := resp["results"].(map[string]any)
		assert.Len(t, results, 2)
		assert.NotContains(t, results, "clip")
	case <-time.After(2 * time.Second):
		t.Fatal("aggregate did not complete")
	}
}

func TestAggregatorCombinedHook(t *testing.T) {
	agg := NewAggregator(nil)
	got := make(chan []byte, 1)
	agg.OnCombined(func(cameraID string, combined []byte) {
		assert.Equal(t, "cam1", cameraID)
		got <- combined
	})
	agg.Start()
	t.Cleanup(agg.Stop)

	manager := session.NewManager()
	t.Cleanup(manager.Stop)
	sess := manager.Register("cam1", "")

	agg.Open(sess, 1, []string{"yolo"}, time.Minute)
	agg.Collect(expert.Result{Expert: "yolo", CameraID: "cam1", Sequence: 1, Payload: expert.Payload{"detections": []any{}}})

	select {
	case combined := <-got:
		var resp map[string]any
		require.NoError(t, json.Unmarshal(combined, &resp))
		assert.Contains(t, resp["results"].(map[string]any), "yolo")
	case <-time.After(2 * time.Second):
		t.Fatal("combined hook not invoked")
	}
}
