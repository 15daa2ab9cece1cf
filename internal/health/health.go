// Package health reports whether the backing store is reachable, over gRPC and HTTP.
package health

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	applog "go-ombor/internal/log"
)

// ServiceName is the name clients pass to the gRPC health check.
const ServiceName = "ombor.Inventory"

// Pinger is anything that can prove its backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Checker struct {
	store   Pinger
	timeout time.Duration
	server  *grpchealth.Server
}

func NewChecker(store Pinger) *Checker {
	return &Checker{store: store, timeout: 2 * time.Second, server: grpchealth.NewServer()}
}

// Probe pings the store once and records the result.
func (c *Checker) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	err := c.store.Ping(ctx)
	status := healthpb.HealthCheckResponse_SERVING
	if err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		applog.Warn(nil, "store_unreachable", map[string]any{"err": err.Error()})
	}
	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(ServiceName, status)
	return err
}

// Watch probes every interval until ctx is done.
func (c *Checker) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	c.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
			c.Probe(ctx)
		}
	}
}

// NewGRPCServer returns a server exposing the standard health service.
func (c *Checker) NewGRPCServer() *grpc.Server {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, c.server)
	return srv
}

// Serve runs srv on addr until it is stopped.
func Serve(srv *grpc.Server, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	applog.Info(nil, "grpc_listen", map[string]any{"addr": addr})
	return srv.Serve(lis)
}
