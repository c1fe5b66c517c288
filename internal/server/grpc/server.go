// Package grpc runs the gRPC health endpoint of the server. The overall
// status follows the process lifetime; the ServiceName status follows the
// store probes.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/otpauth/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name that reflects store reachability.
const ServiceName = "otpauth.Auth"

const defaultProbeInterval = 15 * time.Second

type GRPCServer struct {
	address       string
	logger        logging.Logger
	health        *health.Server
	probes        []Probe
	probeInterval time.Duration
}

func NewGRPCServer(a string, l logging.Logger, probes ...Probe) *GRPCServer {
	return &GRPCServer{
		address:       a,
		logger:        l.With("module", "grpc_server"),
		health:        health.NewServer(),
		probes:        probes,
		probeInterval: defaultProbeInterval,
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))

	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	go s.watchProbes(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		// NOT_SERVING first so health watchers see the shutdown
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
