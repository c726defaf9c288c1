package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vova4o/passkeeper/internal/server/flags"
	"github.com/vova4o/passkeeper/internal/server/handlers"
	"github.com/vova4o/passkeeper/internal/server/metrics"
	"github.com/vova4o/passkeeper/internal/server/service"
	"github.com/vova4o/passkeeper/internal/server/storage"
	"github.com/vova4o/passkeeper/package/jwtauth"
	"github.com/vova4o/passkeeper/package/logger"
	"github.com/vova4o/passkeeper/package/passrpc"
	"github.com/vova4o/passkeeper/package/passwordhash"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

func main() {
	settings := flags.NewSettings()
	if err := settings.LoadConfig(os.Args[1:]); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Start logger
	logger := logger.NewLogger(settings.GetLogLevel())

	logger.Info("Welcome to the pass server!")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stor, err := storage.NewStorage(ctx, settings.GetDriver(), settings.GetDSN(), logger.Named("storage"))
	if err != nil {
		log.Printf("failed to create storage: %v", err)
		return
	}
	defer stor.Close()

	passphraseHash, err := passwordhash.HashPassphrase(settings.PairPassphrase)
	if err != nil {
		log.Printf("failed to hash pairing passphrase: %v", err)
		return
	}

	m := metrics.New()
	jwtService := jwtauth.NewJWTService(settings.GetSecret(), settings.GetIssuer())
	serv := service.NewService(stor, m, logger.Named("service"))

	passService := handlers.NewHandlersService(jwtService, serv, passphraseHash, settings.GetAccessTokenDuration(), logger.Named("handlers"))

	opts := []grpc.ServerOption{
		grpc.ForceServerCodec(passrpc.Codec{}),
		grpc.UnaryInterceptor(passService.AuthFuncOverride),
	}
	if settings.TLSEnabled() {
		creds, err := credentials.NewServerTLSFromFile(settings.TLSCert, settings.TLSKey)
		if err != nil {
			log.Printf("failed to load TLS credentials: %v", err)
			return
		}
		opts = append(opts, grpc.Creds(creds))
	}

	s := grpc.NewServer(opts...)
	passrpc.RegisterPassServiceServer(s, passService)

	lis, err := net.Listen("tcp", settings.GetAddress())
	if err != nil {
		log.Printf("failed to listen: %v", err)
		return
	}

	// HTTP сервер для метрик Prometheus
	var metricsServer *http.Server
	if addr := settings.GetMetricsAddress(); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		go func() {
			logger.Info("Metrics server is running on " + addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed: " + err.Error())
			}
		}()
	}

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutting down server...")
		if metricsServer != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}
		s.GracefulStop()
		cancel()
		logger.Info("Server shut down gracefully")
	}()

	logger.Info("gRPC server is running on " + settings.GetAddress())
	if err := s.Serve(lis); err != nil {
		log.Printf("failed to serve: %v", err)
		return
	}
}
