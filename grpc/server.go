package grpc

import (
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported next to the overall ("") status.
const ServiceName = "mian-bot"

// DefaultGracePeriod bounds how long Stop waits for in-flight RPCs. Health
// Watch streams never end on their own.
const DefaultGracePeriod = 2 * time.Second

// StatusServer exposes the bot's gateway readiness over the standard gRPC health protocol.
type StatusServer struct {
	address     string
	gracePeriod time.Duration
	server      *grpc.Server
	health      *health.Server
	listener    net.Listener
	log         *logrus.Entry
}

// NewStatusServer creates a server for address. It reports NOT_SERVING until SetServing(true).
func NewStatusServer(address string) *StatusServer {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	server := grpc.NewServer()
	healthpb.RegisterHealthServer(server, hs)

	return &StatusServer{
		address:     address,
		gracePeriod: DefaultGracePeriod,
		server:      server,
		health:      hs,
		log:         logrus.WithField("module", "grpc"),
	}
}

// Start listens on the configured address and serves in the background.
func (s *StatusServer) Start() error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	s.listener = lis

	go func() {
		if err := s.server.Serve(lis); err != nil {
			s.log.WithError(err).Error("Status server stopped")
		}
	}()

	s.log.WithField("address", lis.Addr().String()).Info("Status server listening")
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *StatusServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// SetServing updates the reported status.
func (s *StatusServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Stop marks every service NOT_SERVING and stops the server. RPCs still open
// after the grace period, such as Watch streams, are cancelled.
func (s *StatusServer) Stop() {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(s.gracePeriod):
		s.log.WithField("grace_period", s.gracePeriod.String()).Warn("Status server did not drain, closing open streams")
		s.server.Stop()
		<-stopped
	}
	s.log.Info("Status server stopped")
}
