package server

import "google.golang.org/grpc"

// Registrar attaches one gRPC service to a server. NewGRPCServer calls every
// registrar before the health and reflection services are added.
type Registrar interface {
	Register(s grpc.ServiceRegistrar)
}
