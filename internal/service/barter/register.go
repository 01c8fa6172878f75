package barter

import (
	"google.golang.org/grpc"

	pb "github.com/rafipicu1/bartertalco-sub000/internal/api/barter"
	"github.com/rafipicu1/bartertalco-sub000/internal/app"
)

// Registrar ties the Barter service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Barter service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Barter service implementation to the gRPC server
func (r *Registrar) Register(s grpc.ServiceRegistrar) {
	pb.RegisterBarterServiceServer(s, NewBarterService(r.appCtx))
}
