// Package server реализует gRPC-сервер со стандартным сервисом grpc.health.v1.
//
// Статус сервиса обновляется фоновой проверкой хранилища, поэтому
// балансировщики и оркестраторы видят NOT_SERVING, пока база недоступна.
package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
)

// ServiceName: имя сервиса, под которым публикуется статус.
const ServiceName = "subscription.tracker"

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer обслуживает grpc.health.v1 и следит за хранилищем.
type HealthServer struct {
	grpcServer *grpc.Server
	health     *health.Server
	storage    Pinger
	interval   time.Duration
	log        *slog.Logger
}

// NewHealthServer создает gRPC-сервер с зарегистрированным health-сервисом.
func NewHealthServer(storage Pinger, interval time.Duration, logger *slog.Logger) *HealthServer {
	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	return &HealthServer{
		grpcServer: grpcServer,
		health:     hs,
		storage:    storage,
		interval:   interval,
		log:        logger,
	}
}

// Serve принимает соединения на lis, пока ctx не отменён, затем корректно останавливается.
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	s.check(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("gRPC health service listening on", slog.String("address", lis.Addr().String()))
		errCh <- s.grpcServer.Serve(lis)
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			s.grpcServer.GracefulStop()
			return nil
		case err := <-errCh:
			return err
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *HealthServer) check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.storage.Ping(ctx); err != nil {
		s.log.Warn("storage ping failed", sl.Err(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
