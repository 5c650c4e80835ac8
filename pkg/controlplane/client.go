package controlplane

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client talks to a Server over the same UNIX socket the engine process listens on,
// wrapping its "reload", "shutdown", "status", and "tap" RPCs.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to the control socket at socketPath.
func Dial(socketPath string) (*Client, error) {
	conn, err := grpc.NewClient("unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{})),
	)
	if err != nil {
		return nil, fmt.Errorf("controlplane: dial %s: %w", socketPath, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) Reload(ctx context.Context, configPath string) (*ReloadResponse, error) {
	resp := new(ReloadResponse)
	err := c.conn.Invoke(ctx, "/"+serviceName+"/Reload", &ReloadRequest{ConfigPath: configPath}, resp)
	return resp, err
}

func (c *Client) Shutdown(ctx context.Context, deadlineMillis int64) (*ShutdownResponse, error) {
	resp := new(ShutdownResponse)
	err := c.conn.Invoke(ctx, "/"+serviceName+"/Shutdown", &ShutdownRequest{DeadlineMillis: deadlineMillis}, resp)
	return resp, err
}

func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	resp := new(StatusResponse)
	err := c.conn.Invoke(ctx, "/"+serviceName+"/Status", &StatusRequest{}, resp)
	return resp, err
}

// Tap opens the server-streaming Tap RPC and returns a channel of samples, closed
// when ctx is cancelled or the stream ends.
func (c *Client) Tap(ctx context.Context, component string) (<-chan *TapSample, error) {
	stream, err := c.conn.NewStream(ctx, &serviceDesc.Streams[0], "/"+serviceName+"/Tap")
	if err != nil {
		return nil, fmt.Errorf("controlplane: open tap stream: %w", err)
	}
	if err := stream.SendMsg(&TapRequest{Component: component}); err != nil {
		return nil, fmt.Errorf("controlplane: send tap request: %w", err)
	}
	if err := stream.CloseSend(); err != nil {
		return nil, fmt.Errorf("controlplane: close tap request: %w", err)
	}

	out := make(chan *TapSample)
	go func() {
		defer close(out)
		for {
			sample := new(TapSample)
			if err := stream.RecvMsg(sample); err != nil {
				return
			}
			select {
			case out <- sample:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
