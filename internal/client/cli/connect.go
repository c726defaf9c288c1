package cli

import (
	"github.com/vova4o/passkeeper/internal/client/handlers"
	"github.com/vova4o/passkeeper/internal/client/storage"
	"github.com/vova4o/passkeeper/package/logger"

	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

type grpcBackend struct {
	*handlers.GRPCClient
	sessions *storage.Storage
}

func (b *grpcBackend) Close() {
	b.GRPCClient.Close()
	b.sessions.Close()
}

// GRPCConnector talks to the pass server and keeps the session in the local
// SQLite database
func GRPCConnector(opts *RootOptions, log *logger.Logger) (Backend, error) {
	sessions, err := storage.NewStorage(opts.DB, log.Named("storage"))
	if err != nil {
		return nil, err
	}

	creds := insecure.NewCredentials()
	if opts.CACert != "" {
		creds, err = credentials.NewClientTLSFromFile(opts.CACert, "")
		if err != nil {
			sessions.Close()
			return nil, err
		}
	}

	client, err := handlers.NewGRPCClient(opts.Server, creds, sessions, log.Named("grpc"))
	if err != nil {
		sessions.Close()
		return nil, err
	}

	return &grpcBackend{GRPCClient: client, sessions: sessions}, nil
}
