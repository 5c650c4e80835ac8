package controlplane

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"google.golang.org/grpc"

	"github.com/vectorflow/vector/pkg/component"
	"github.com/vectorflow/vector/pkg/config"
	"github.com/vectorflow/vector/pkg/events"
	"github.com/vectorflow/vector/pkg/log"
	"github.com/vectorflow/vector/pkg/reload"
	"github.com/vectorflow/vector/pkg/runtime"
)

// Server hosts the control socket's four operations (spec §6) against a single
// *reload.Reloader: Reload re-runs reload.Apply, Shutdown drains the live topology
// with the requested per-component deadline and then cancels the runtime's context,
// Status walks the live topology's nodes, and Tap subscribes to the shared tap
// broker every producer publishes samples to.
type Server struct {
	reloader *reload.Reloader
	runtime  *runtime.Runtime
	tap      *events.Broker
	grpc     *grpc.Server
}

// New returns a Server bound to reloader, whose Shutdown RPC cancels rt and whose
// Tap RPC subscribes to tap. rt and tap may be nil, in which case their respective
// RPCs return an error.
func New(reloader *reload.Reloader, rt *runtime.Runtime, tap *events.Broker) *Server {
	s := &Server{reloader: reloader, runtime: rt, tap: tap}
	s.grpc = grpc.NewServer(grpc.ForceServerCodec(jsonCodec{}))
	s.grpc.RegisterService(&serviceDesc, s)
	return s
}

// ListenAndServe opens a UNIX domain socket at socketPath (removing any stale file
// left behind by a previous process) and blocks serving RPCs until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, socketPath string) error {
	_ = os.Remove(socketPath)
	lis, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("controlplane: listen %s: %w", socketPath, err)
	}
	go func() {
		<-ctx.Done()
		s.grpc.GracefulStop()
	}()
	log.WithComponent("controlplane").Info().Str("socket", socketPath).Msg("control socket listening")
	if err := s.grpc.Serve(lis); err != nil {
		return fmt.Errorf("controlplane: serve: %w", err)
	}
	return nil
}

func (s *Server) reload(_ context.Context, req *ReloadRequest) (*ReloadResponse, error) {
	doc, err := config.Load(req.ConfigPath)
	if err != nil {
		return &ReloadResponse{Error: err.Error()}, nil
	}
	plan, err := s.reloader.Apply(doc)
	resp := &ReloadResponse{
		Generation: plan.Generation,
		Added:      plan.Added,
		Changed:    plan.Changed,
		Removed:    plan.Removed,
		Unchanged:  plan.Unchanged,
		Applied:    err == nil,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp, nil
}

func (s *Server) shutdown(_ context.Context, req *ShutdownRequest) (*ShutdownResponse, error) {
	if s.runtime == nil {
		return nil, fmt.Errorf("controlplane: shutdown: no runtime attached")
	}
	deadline := time.Duration(req.DeadlineMillis) * time.Millisecond
	go func() {
		if topo := s.reloader.Current(); topo != nil {
			topo.Shutdown(deadline)
		}
		s.runtime.Cancel()
	}()
	return &ShutdownResponse{Accepted: true}, nil
}

func (s *Server) status(_ context.Context, _ *StatusRequest) (*StatusResponse, error) {
	topo := s.reloader.Current()
	if topo == nil {
		return &StatusResponse{}, nil
	}
	resp := &StatusResponse{}
	for _, n := range topo.Nodes() {
		resp.Components = append(resp.Components, ComponentStatus{
			Key:      n.Key,
			Kind:     n.Descriptor.Kind.String(),
			State:    n.State().String(),
			Healthy:  n.State() != component.StateFailed,
			Optional: n.Descriptor.Optional,
		})
	}
	return resp, nil
}

func (s *Server) tap(req *TapRequest, stream grpc.ServerStream) error {
	if s.tap == nil {
		return fmt.Errorf("controlplane: tap: no tap broker attached")
	}
	sub := s.tap.Subscribe()
	defer s.tap.Unsubscribe(sub)

	for {
		select {
		case <-stream.Context().Done():
			return stream.Context().Err()
		case sample, ok := <-sub:
			if !ok {
				return nil
			}
			if req.Component != "" && sample.Component != req.Component {
				continue
			}
			out := &TapSample{
				ID:        sample.ID.String(),
				Component: sample.Component,
				Variant:   sample.Variant.String(),
				Timestamp: sample.Timestamp,
				Preview:   sample.Preview,
			}
			if err := stream.SendMsg(out); err != nil {
				return err
			}
		}
	}
}

var _ handler = (*Server)(nil)
