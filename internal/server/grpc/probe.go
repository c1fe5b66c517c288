package grpc

import (
	"context"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Probe checks one backing store, e.g. (*sql.DB).PingContext.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// runProbes sets ServiceName to SERVING only if every probe passes.
func (s *GRPCServer) runProbes(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	for _, p := range s.probes {
		pctx, cancel := context.WithTimeout(ctx, s.probeInterval)
		err := p.Check(pctx)
		cancel()
		if err != nil {
			s.logger.Warn(ctx, "store probe failed", "store", p.Name, "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	if ctx.Err() != nil {
		return
	}
	s.health.SetServingStatus(ServiceName, status)
}

func (s *GRPCServer) watchProbes(ctx context.Context) {
	if len(s.probes) == 0 {
		return
	}

	s.runProbes(ctx)

	ticker := time.NewTicker(s.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runProbes(ctx)
		}
	}
}
