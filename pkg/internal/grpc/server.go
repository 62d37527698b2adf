package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"git.solsynth.dev/hypernet/forum/pkg/internal/database"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const ServiceName = "hypernet.forum"

type App struct {
	srv    *grpc.Server
	health *health.Server
}

func NewGrpc() *App {
	server := &App{
		srv:    grpc.NewServer(),
		health: health.NewServer(),
	}

	healthpb.RegisterHealthServer(server.srv, server.health)
	reflection.Register(server.srv)

	return server
}

// RefreshHealth marks the service as not serving while the database is unreachable.
func (v *App) RefreshHealth(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := pingDatabase(ctx); err != nil {
		log.Warn().Err(err).Msg("Database is unreachable, reporting not serving...")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	v.health.SetServingStatus("", status)
	v.health.SetServingStatus(ServiceName, status)
	return status
}

func pingDatabase(ctx context.Context) error {
	if database.C == nil {
		return fmt.Errorf("database is not connected")
	}
	raw, err := database.C.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return raw.PingContext(ctx)
}

func (v *App) Listen() error {
	listener, err := net.Listen("tcp", viper.GetString("grpc_bind"))
	if err != nil {
		return err
	}

	v.RefreshHealth(context.Background())
	return v.srv.Serve(listener)
}

func (v *App) Stop() {
	v.health.Shutdown()
	v.srv.GracefulStop()
}
