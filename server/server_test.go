package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/Mentat-Vision/moe/client"
	"github.com/Mentat-Vision/moe/config"
	pb "github.com/Mentat-Vision/moe/proto"
	"github.com/Mentat-Vision/moe/util/testutil"
)

// fakeBackend answers every Process call with a fixed JSON payload.
type fakeBackend struct {
	pb.UnimplementedExpertBackendServer
	model   string
	payload string
}

func (b *fakeBackend) Process(ctx context.Context, req *pb.ProcessRequest) (*pb.ProcessResponse, error) {
	return &pb.ProcessResponse{Payload: []byte(b.payload), Model: b.model}, nil
}

func startBackend(t *testing.T, backend *fakeBackend) string {
	t.Helper()
	addr := testutil.GetFreeAddress()
	lis, err := net.Listen("tcp", addr)
	require.NoError(t, err)
	srv := grpc.NewServer()
	pb.RegisterExpertBackendServer(srv, backend)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)
	return addr
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// startTestServer brings up a full server with yolo and blip backends.
func startTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	yoloAddr := startBackend(t, &fakeBackend{model: "yolov8n", payload: `{"detections":[{"label":"person","confidence":0.9}]}`})
	blipAddr := startBackend(t, &fakeBackend{model: "blip-base", payload: `{"caption":"a test pattern"}`})

	listenAddr := testutil.GetFreeAddress()
	cfg := &config.Config{
		Version: 1,
		Server: config.ServerConfig{
			ListenAddr:  listenAddr,
			ScaleFactor: 0.5,
		},
		Experts: []config.ExpertConfig{
			{Name: "yolo", BackendAddr: yoloAddr, Timeout: 2 * time.Second},
			{Name: "blip", BackendAddr: blipAddr, Timeout: 2 * time.Second},
		},
	}
	require.NoError(t, cfg.Validate())

	s, err := NewServer(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go s.Start(ctx)
	t.Cleanup(func() {
		cancel()
		s.Stop()
	})

	testutil.WaitFor(t, 5*time.Second, "server accepting connections", func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/healthz", listenAddr))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	})

	return s, listenAddr
}

func dialCamera(t *testing.T, addr, cameraID string) *client.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := client.Connect(ctx, addr)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	require.NoError(t, c.Register(cameraID, ""))
	ack, err := c.Recv()
	require.NoError(t, err)
	require.Equal(t, "registered", ack["type"])
	require.Equal(t, cameraID, ack["camera_id"])
	return c
}

func TestServerPingPong(t *testing.T) {
	_, addr := startTestServer(t)
	c := dialCamera(t, addr, "cam1")

	require.NoError(t, c.Ping())
	resp, err := c.Recv()
	require.NoError(t, err)
	assert.Equal(t, "pong", resp["type"])
	ts, ok := resp["timestamp"].(float64)
	require.True(t, ok)
	assert.InDelta(t, float64(time.Now().UnixNano())/1e9, ts, 5.0)
}

func TestServerSingleExpertFrame(t *testing.T) {
	_, addr := startTestServer(t)
	c := dialCamera(t, addr, "cam1")

	require.NoError(t, c.SendExpertFrame("yolo", "cam1", testJPEG(t)))

	resp, err := c.Recv()
	require.NoError(t, err)
	assert.Equal(t, "cam1", resp["camera_id"])
	assert.Contains(t, resp, "detections")
	assert.Contains(t, resp, "fps")
	assert.NotContains(t, resp, "error")
}

func TestServerFanOutBinaryFrame(t *testing.T) {
	_, addr := startTestServer(t)
	c := dialCamera(t, addr, "cam1")

	require.NoError(t, c.SendFrame(testJPEG(t)))

	resp, err := c.Recv()
	require.NoError(t, err)
	assert.Equal(t, "cam1", resp["camera_id"])
	assert.Contains(t, resp, "timestamp")
	assert.Contains(t, resp, "server_stats")

	results, ok := resp["results"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, results, "yolo")
	assert.Contains(t, results, "blip")
}

func TestServerBinaryImplicitRegistration(t *testing.T) {
	_, addr := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := client.Connect(ctx, addr)
	require.NoError(t, err)
	defer c.Close()

	// Legacy cameras send raw frames with no register message; the
	// connection address becomes the camera identity.
	require.NoError(t, c.SendFrame(testJPEG(t)))
	resp, err := c.Recv()
	require.NoError(t, err)
	assert.NotContains(t, resp, "error")
	assert.NotEmpty(t, resp["camera_id"])
	assert.Contains(t, resp, "results")
}

func TestServerUnknownExpertKeepsConnectionOpen(t *testing.T) {
	_, addr := startTestServer(t)
	c := dialCamera(t, addr, "cam1")

	require.NoError(t, c.SendExpertFrame("nope", "cam1", testJPEG(t)))
	resp, err := c.Recv()
	require.NoError(t, err)
	assert.Contains(t, resp, "error")

	// The connection survives the error.
	require.NoError(t, c.Ping())
	resp, err = c.Recv()
	require.NoError(t, err)
	assert.Equal(t, "pong", resp["type"])
}

func TestServerStatsMessage(t *testing.T) {
	_, addr := startTestServer(t)
	c := dialCamera(t, addr, "cam1")

	require.NoError(t, c.RequestStats())
	resp, err := c.Recv()
	require.NoError(t, err)
	assert.Equal(t, "stats", resp["type"])

	data, ok := resp["data"].(map[string]any)
	require.True(t, ok)
	workers, ok := data["workers"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, workers, "yolo")
	assert.Contains(t, workers, "blip")
}

func TestServerUndecodableFrame(t *testing.T) {
	_, addr := startTestServer(t)
	c := dialCamera(t, addr, "cam1")

	require.NoError(t, c.SendExpertFrame("yolo", "cam1", []byte("not a jpeg")))
	resp, err := c.Recv()
	require.NoError(t, err)
	assert.Contains(t, resp, "error")
}

func TestServerModelToggleAPI(t *testing.T) {
	_, addr := startTestServer(t)

	// Initial states.
	resp, err := http.Get(fmt.Sprintf("http://%s/api/models", addr))
	require.NoError(t, err)
	var models struct {
		Models map[string]bool `json:"models"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&models))
	resp.Body.Close()
	assert.Equal(t, map[string]bool{"yolo": true, "blip": true}, models.Models)

	// Toggle blip off.
	resp, err = http.Post(fmt.Sprintf("http://%s/api/models/blip/toggle", addr), "application/json", nil)
	require.NoError(t, err)
	var toggled struct {
		Model   string `json:"model"`
		Enabled bool   `json:"enabled"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&toggled))
	resp.Body.Close()
	assert.Equal(t, "blip", toggled.Model)
	assert.False(t, toggled.Enabled)

	// The next fan-out excludes blip.
	c := dialCamera(t, addr, "cam1")
	require.NoError(t, c.SendFrame(testJPEG(t)))
	combined, err := c.Recv()
	require.NoError(t, err)
	results := combined["results"].(map[string]any)
	assert.Contains(t, results, "yolo")
	assert.NotContains(t, results, "blip")

	// Unknown model is a 404.
	resp, err = http.Post(fmt.Sprintf("http://%s/api/models/nope/toggle", addr), "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServerCameraAPIs(t *testing.T) {
	_, addr := startTestServer(t)
	c := dialCamera(t, addr, "cam7")

	require.NoError(t, c.SendFrame(testJPEG(t)))
	_, err := c.Recv() // combined result
	require.NoError(t, err)

	// /api/cameras lists the camera.
	resp, err := http.Get(fmt.Sprintf("http://%s/api/cameras", addr))
	require.NoError(t, err)
	var cameras struct {
		Cameras map[string]struct {
			Status string `json:"status"`
		} `json:"cameras"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cameras))
	resp.Body.Close()
	require.Contains(t, cameras.Cameras, "cam7")
	assert.Equal(t, "active", cameras.Cameras["cam7"].Status)

	// /api/cameras/{id}/latest serves the retained combined result.
	testutil.WaitFor(t, 2*time.Second, "latest result retained", func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/api/cameras/cam7/latest", addr))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	})

	resp, err = http.Get(fmt.Sprintf("http://%s/api/cameras/cam7/latest", addr))
	require.NoError(t, err)
	var latest map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&latest))
	resp.Body.Close()
	assert.Equal(t, "cam7", latest["camera_id"])

	// Unknown camera is a 404.
	resp, err = http.Get(fmt.Sprintf("http://%s/api/cameras/ghost/latest", addr))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServerStatsAndMetricsEndpoints(t *testing.T) {
	_, addr := startTestServer(t)

	resp, err := http.Get(fmt.Sprintf("http://%s/api/stats", addr))
	require.NoError(t, err)
	var snapshot map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snapshot))
	resp.Body.Close()
	assert.Contains(t, snapshot, "workers")
	assert.Contains(t, snapshot, "uptime_seconds")

	resp, err = http.Get(fmt.Sprintf("http://%s/metrics", addr))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServerReconnectReplacesSession(t *testing.T) {
	_, addr := startTestServer(t)

	first := dialCamera(t, addr, "cam1")
	second := dialCamera(t, addr, "cam1")

	// The fresh connection works.
	require.NoError(t, second.SendFrame(testJPEG(t)))
	resp, err := second.Recv()
	require.NoError(t, err)
	assert.Contains(t, resp, "results")

	// The stale one receives no results for frames it sends now; its
	// session is closed, so the server drops delivery.
	_ = first
}
