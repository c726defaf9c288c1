package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vova4o/passkeeper/internal/client/storage"
	"github.com/vova4o/passkeeper/internal/models"
	"github.com/vova4o/passkeeper/package/logger"
	"github.com/vova4o/passkeeper/package/passrpc"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ErrUnauthenticated the server rejected the pairing passphrase or the token
var ErrUnauthenticated = errors.New("unauthenticated")

// GRPCClient struct for client
type GRPCClient struct {
	log      *logger.Logger
	conn     *grpc.ClientConn
	client   passrpc.PassServiceClient
	server   string
	sessions SessionStorer
	token    string
}

// SessionStorer keeps the access token between runs
type SessionStorer interface {
	SaveSession(ctx context.Context, server, token string, expiresAt time.Time) error
	GetSession(ctx context.Context, server string) (storage.Session, error)
	DeleteSession(ctx context.Context, server string) error
}

// NewGRPCClient function for creating new client
func NewGRPCClient(address string, creds credentials.TransportCredentials, sessions SessionStorer, log *logger.Logger) (*GRPCClient, error) {
	conn, err := grpc.NewClient(address,
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(passrpc.Codec{})),
	)
	if err != nil {
		return nil, err
	}

	c := NewWithClient(passrpc.NewPassServiceClient(conn), address, sessions, log)
	c.conn = conn
	return c, nil
}

// NewWithClient wraps an existing service client, server names the session
func NewWithClient(client passrpc.PassServiceClient, server string, sessions SessionStorer, log *logger.Logger) *GRPCClient {
	return &GRPCClient{
		client:   client,
		server:   server,
		sessions: sessions,
		log:      log,
	}
}

// Close function for closing connection
func (c *GRPCClient) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// Pair exchanges the passphrase for a token and remembers it
func (c *GRPCClient) Pair(ctx context.Context, device, passphrase string) error {
	c.log.Debug("Pair called!")

	res, err := c.client.Pair(ctx, &passrpc.PairRequest{Device: device, Passphrase: passphrase})
	if err != nil {
		c.log.Error("Error pairing device: " + err.Error())
		return fromStatus(err)
	}

	if res.Token == "" {
		c.log.Error("Empty token")
		return fmt.Errorf("%w: server returned an empty token", ErrUnauthenticated)
	}

	var expiresAt time.Time
	if res.ExpiresAt > 0 {
		expiresAt = time.Unix(res.ExpiresAt, 0)
	}
	if err := c.sessions.SaveSession(ctx, c.server, res.Token, expiresAt); err != nil {
		c.log.Error("Error saving session: " + err.Error())
		return err
	}

	c.token = res.Token
	return nil
}

// Unpair forgets the access token of this server
func (c *GRPCClient) Unpair(ctx context.Context) error {
	if err := c.sessions.DeleteSession(ctx, c.server); err != nil {
		c.log.Error("Error deleting session: " + err.Error())
		return err
	}
	c.token = ""
	return nil
}

// authContext attaches the access token to the outgoing metadata
func (c *GRPCClient) authContext(ctx context.Context) (context.Context, error) {
	if c.token == "" {
		session, err := c.sessions.GetSession(ctx, c.server)
		if err != nil {
			return nil, err
		}
		c.token = session.Token
	}

	md := metadata.New(map[string]string{"authorization": c.token})
	return metadata.NewOutgoingContext(ctx, md), nil
}

// Create stores a new pass on the server
func (c *GRPCClient) Create(ctx context.Context, title, code string, isCode39 bool) (models.Pass, error) {
	ctx, err := c.authContext(ctx)
	if err != nil {
		return models.Pass{}, err
	}

	res, err := c.client.CreatePass(ctx, &passrpc.CreatePassRequest{Title: title, Code: code, IsCode39: isCode39})
	if err != nil {
		c.log.Error("Error creating pass: " + err.Error())
		return models.Pass{}, fromStatus(err)
	}
	return fromWire(res.Pass), nil
}

// Update sends the supplied fields of patch
func (c *GRPCClient) Update(ctx context.Context, id string, patch models.PassPatch) (models.Pass, error) {
	ctx, err := c.authContext(ctx)
	if err != nil {
		return models.Pass{}, err
	}

	req := &passrpc.UpdatePassRequest{
		ID:       id,
		Title:    patch.Title,
		Code:     patch.Code,
		IsCode39: patch.IsCode39,
	}
	res, err := c.client.UpdatePass(ctx, req)
	if err != nil {
		c.log.Error("Error updating pass: " + err.Error())
		return models.Pass{}, fromStatus(err)
	}
	return fromWire(res.Pass), nil
}

// Delete removes a pass on the server
func (c *GRPCClient) Delete(ctx context.Context, id string) error {
	ctx, err := c.authContext(ctx)
	if err != nil {
		return err
	}

	if _, err := c.client.DeletePass(ctx, &passrpc.DeletePassRequest{ID: id}); err != nil {
		c.log.Error("Error deleting pass: " + err.Error())
		return fromStatus(err)
	}
	return nil
}

// SetExclusiveFlag pins the pass to dest or unpins it
func (c *GRPCClient) SetExclusiveFlag(ctx context.Context, id string, dest models.Destination, value bool) error {
	ctx, err := c.authContext(ctx)
	if err != nil {
		return err
	}

	req := &passrpc.SetDestinationRequest{ID: id, Destination: dest.String(), Value: value}
	if _, err := c.client.SetDestination(ctx, req); err != nil {
		c.log.Error("Error setting destination: " + err.Error())
		return fromStatus(err)
	}
	return nil
}

// Get returns one pass
func (c *GRPCClient) Get(ctx context.Context, id string) (models.Pass, error) {
	ctx, err := c.authContext(ctx)
	if err != nil {
		return models.Pass{}, err
	}

	res, err := c.client.GetPass(ctx, &passrpc.GetPassRequest{ID: id})
	if err != nil {
		return models.Pass{}, fromStatus(err)
	}
	return fromWire(res.Pass), nil
}

// List returns every pass
func (c *GRPCClient) List(ctx context.Context) ([]models.Pass, error) {
	ctx, err := c.authContext(ctx)
	if err != nil {
		return nil, err
	}

	res, err := c.client.ListPasses(ctx, &passrpc.ListPassesRequest{})
	if err != nil {
		c.log.Error("Error listing passes: " + err.Error())
		return nil, fromStatus(err)
	}

	passes := make([]models.Pass, 0, len(res.Passes))
	for _, p := range res.Passes {
		passes = append(passes, fromWire(p))
	}
	return passes, nil
}

// Active returns the pass shown on dest
func (c *GRPCClient) Active(ctx context.Context, dest models.Destination) (models.Pass, error) {
	ctx, err := c.authContext(ctx)
	if err != nil {
		return models.Pass{}, err
	}

	res, err := c.client.ActivePass(ctx, &passrpc.ActivePassRequest{Destination: dest.String()})
	if err != nil {
		return models.Pass{}, fromStatus(err)
	}
	return fromWire(res.Pass), nil
}

// Render downloads the PNG of a pass
func (c *GRPCClient) Render(ctx context.Context, id string, size int, forceQR bool) ([]byte, error) {
	ctx, err := c.authContext(ctx)
	if err != nil {
		return nil, err
	}

	res, err := c.client.RenderPass(ctx, &passrpc.RenderPassRequest{ID: id, Size: int32(size), ForceQR: forceQR})
	if err != nil {
		return nil, fromStatus(err)
	}
	return res.PNG, nil
}

// fromStatus maps gRPC status codes back onto the model errors
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", models.ErrStoreFailure, err)
	}

	switch st.Code() {
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", models.ErrValidationFailed, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", models.ErrNotFound, st.Message())
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthenticated, st.Message())
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	default:
		return fmt.Errorf("%w: %s", models.ErrStoreFailure, st.Message())
	}
}

func fromWire(p *passrpc.Pass) models.Pass {
	if p == nil {
		return models.Pass{}
	}
	return models.Pass{
		ID:         p.ID,
		Title:      p.Title,
		Code:       p.Code,
		IsCode39:   p.IsCode39,
		IsOnWatch:  p.IsOnWatch,
		IsOnWidget: p.IsOnWidget,
		IsOnSiri:   p.IsOnSiri,
		CreatedAt:  time.Unix(p.CreatedAt, 0).UTC(),
		UpdatedAt:  time.Unix(p.UpdatedAt, 0).UTC(),
	}
}
