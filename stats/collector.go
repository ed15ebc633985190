package stats

import (
	"sync"
	"time"

	"github.com/Mentat-Vision/moe/expert"
)

// fpsWindow is how many recent frame timestamps are kept per camera for
// the rolling fps figure.
const fpsWindow = 60

// StaleAfter is how long without a frame before a camera is reported
// inactive with fps 0.
const StaleAfter = 10 * time.Second

// CameraStats is the per-camera block of a ServerStats snapshot.
type CameraStats struct {
	CameraID   string  `json:"camera_id"`
	Name       string  `json:"name,omitempty"`
	Status     string  `json:"status"`
	FPS        float64 `json:"fps"`
	LastUpdate float64 `json:"last_update"`
}

// ServerStats is the server-wide snapshot embedded in combined results
// and served to the dashboard.
type ServerStats struct {
	Workers       map[string]expert.WorkerStats `json:"workers"`
	Cameras       map[string]CameraStats        `json:"cameras"`
	UptimeSeconds float64                       `json:"uptime_seconds"`
	TotalFrames   uint64                        `json:"total_frames"`
}

type cameraTrack struct {
	name       string
	timestamps []time.Time
	lastUpdate time.Time
	frames     uint64
}

// Collector tracks per-camera frame arrival and computes rolling fps
// over the last fpsWindow timestamps. Worker figures come straight from
// the registry; the collector never writes worker state.
type Collector struct {
	registry  *expert.Registry
	startTime time.Time

	mu      sync.Mutex
	cameras map[string]*cameraTrack
}

func NewCollector(registry *expert.Registry) *Collector {
	return &Collector{
		registry:  registry,
		startTime: time.Now(),
		cameras:   make(map[string]*cameraTrack),
	}
}

// RegisterCamera creates or renames a camera track. Frame arrival also
// creates tracks implicitly; this only attaches the display name.
func (c *Collector) RegisterCamera(cameraID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	track := c.track(cameraID)
	if name != "" {
		track.name = name
	}
}

// RecordFrame notes one frame from the camera.
func (c *Collector) RecordFrame(cameraID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	track := c.track(cameraID)
	now := time.Now()
	track.timestamps = append(track.timestamps, now)
	if len(track.timestamps) > fpsWindow {
		track.timestamps = track.timestamps[len(track.timestamps)-fpsWindow:]
	}
	track.lastUpdate = now
	track.frames++
}

// caller holds c.mu
func (c *Collector) track(cameraID string) *cameraTrack {
	track, ok := c.cameras[cameraID]
	if !ok {
		track = &cameraTrack{}
		c.cameras[cameraID] = track
	}
	return track
}

// CameraFPS returns the rolling fps for one camera. Stale cameras report 0.
func (c *Collector) CameraFPS(cameraID string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	track, ok := c.cameras[cameraID]
	if !ok {
		return 0
	}
	return rollingFPS(track, time.Now())
}

func rollingFPS(track *cameraTrack, now time.Time) float64 {
	if now.Sub(track.lastUpdate) > StaleAfter {
		return 0
	}
	n := len(track.timestamps)
	if n < 2 {
		return 0
	}
	window := track.timestamps[n-1].Sub(track.timestamps[0]).Seconds()
	if window <= 0 {
		return 0
	}
	return float64(n-1) / window
}

// Snapshot builds the full server-wide stats block.
func (c *Collector) Snapshot() ServerStats {
	now := time.Now()

	c.mu.Lock()
	cameras := make(map[string]CameraStats, len(c.cameras))
	var totalFrames uint64
	for id, track := range c.cameras {
		status := "active"
		if now.Sub(track.lastUpdate) > StaleAfter {
			status = "inactive"
		}
		cameras[id] = CameraStats{
			CameraID:   id,
			Name:       track.name,
			Status:     status,
			FPS:        rollingFPS(track, now),
			LastUpdate: float64(track.lastUpdate.UnixNano()) / 1e9,
		}
		totalFrames += track.frames
	}
	c.mu.Unlock()

	return ServerStats{
		Workers:       c.registry.StatsSnapshot(),
		Cameras:       cameras,
		UptimeSeconds: now.Sub(c.startTime).Seconds(),
		TotalFrames:   totalFrames,
	}
}
