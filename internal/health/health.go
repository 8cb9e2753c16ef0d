// Package health exposes the standard gRPC health service so orchestrators
// can tell when published statistics are available.
package health

import (
	"fmt"
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the service reported alongside the overall "" status.
const ServiceName = "graphspectra.Statistics"

// Server serves grpc.health.v1.Health.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
}

// NewServer creates a health server reporting NOT_SERVING until MarkServing.
func NewServer() *Server {
	s := &Server{grpcServer: grpc.NewServer(), health: health.NewServer()}
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.MarkNotServing()
	return s
}

// MarkServing reports that statistics are published.
func (s *Server) MarkServing() {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
}

// MarkNotServing reports that no statistics can be served.
func (s *Server) MarkNotServing() {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
}

// Listen starts serving on addr in the background.
func (s *Server) Listen(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	go s.Serve(lis)
	return nil
}

// Serve serves on lis until Stop.
func (s *Server) Serve(lis net.Listener) {
	log.Printf("Health server listening on %s", lis.Addr())
	if err := s.grpcServer.Serve(lis); err != nil {
		log.Printf("Health server stopped: %v", err)
	}
}

// Stop marks the service not serving and stops the gRPC server.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
