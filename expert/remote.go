package expert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	pb "github.com/Mentat-Vision/moe/proto"
	moeerrors "github.com/Mentat-Vision/moe/util/errors"
)

// RemoteCapability calls an expert model server over gRPC. The backend owns
// the actual model; the core only ships frames and merges the JSON payload
// it gets back.
type RemoteCapability struct {
	address string
	timeout time.Duration
	conn    *grpc.ClientConn
	client  pb.ExpertBackendClient
}

// NewRemoteCapability creates a capability that dials the given backend
// address on Initialize. timeout bounds each Process call (short for
// detection-class experts, long for captioning-class ones).
func NewRemoteCapability(address string, timeout time.Duration) *RemoteCapability {
	return &RemoteCapability{
		address: address,
		timeout: timeout,
	}
}

// Initialize establishes the client connection to the backend.
func (c *RemoteCapability) Initialize(ctx context.Context) error {
	if c.address == "" {
		return fmt.Errorf("backend address cannot be empty")
	}
	conn, err := grpc.NewClient(c.address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to connect to backend %s: %w", c.address, err)
	}
	c.conn = conn
	c.client = pb.NewExpertBackendClient(conn)
	return nil
}

// Process sends one frame to the backend and unmarshals its JSON payload.
func (c *RemoteCapability) Process(ctx context.Context, job *Job) (Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Process(ctx, &pb.ProcessRequest{
		CameraId: job.CameraID,
		Sequence: job.Frame.Sequence,
		Frame:    job.Frame.Data,
	})
	if err != nil {
		if moeerrors.IsTimeout(err) {
			return nil, moeerrors.NewTimeoutError("inference", job.CameraID, err)
		}
		return nil, fmt.Errorf("backend call failed: %w", err)
	}

	payload := Payload{}
	if len(resp.Payload) > 0 {
		if err := json.Unmarshal(resp.Payload, &payload); err != nil {
			return nil, fmt.Errorf("backend returned invalid payload: %w", err)
		}
	}
	if resp.Model != "" {
		payload["model"] = resp.Model
	}
	return payload, nil
}

// Close tears down the backend connection.
func (c *RemoteCapability) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
