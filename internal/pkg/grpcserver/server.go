package grpcserver

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server hosts the worker's gRPC health endpoint so orchestrators can probe
// readiness independently of the HTTP task surface.
type Server struct {
	addr   string
	lis    net.Listener
	health *health.Server
	Server *grpc.Server
}

func New(addr string) *Server {
	s := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)
	return &Server{
		addr:   addr,
		health: hs,
		Server: s, // add creds/interceptors here later
	}
}

// SetServing flips the health status; shutdown sets NOT_SERVING before the
// deregistration round starts.
func (s *Server) SetServing(ok bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.lis = lis
	return s.Server.Serve(lis)
}

func (s *Server) Stop() {
	s.Server.GracefulStop()
	if s.lis != nil {
		_ = s.lis.Close()
	}
}
