package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vova4o/passkeeper/internal/models"
	"github.com/vova4o/passkeeper/package/jwtauth"
	"github.com/vova4o/passkeeper/package/logger"
	"github.com/vova4o/passkeeper/package/passrpc"
	"github.com/vova4o/passkeeper/package/passwordhash"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey string

// DeviceKey holds the paired device name in the request context
const DeviceKey contextKey = "device"

// HandleServiceServer struct
type HandleServiceServer struct {
	passrpc.UnimplementedPassServiceServer
	jwtService     JWTServicer
	serv           Servicer
	passphraseHash string
	tokenDuration  time.Duration
	logger         *logger.Logger
}

// Servicer interface
type Servicer interface {
	Create(ctx context.Context, title, code string, isCode39 bool) (models.Pass, error)
	Update(ctx context.Context, id string, patch models.PassPatch) (models.Pass, error)
	Delete(ctx context.Context, id string) error
	SetExclusiveFlag(ctx context.Context, id string, dest models.Destination, value bool) error
	Get(ctx context.Context, id string) (models.Pass, error)
	List(ctx context.Context) ([]models.Pass, error)
	Active(ctx context.Context, dest models.Destination) (models.Pass, error)
	Render(ctx context.Context, id string, size int, forceQR bool) ([]byte, error)
}

// JWTServicer interface for JWT service methods
type JWTServicer interface {
	CreateAccessToken(device string, duration time.Duration) (string, time.Time, error)
	DeviceFromToken(tokenString string) (string, error)
}

// NewHandlersService function. passphraseHash is the bcrypt hash devices
// must match to pair.
func NewHandlersService(jwtService JWTServicer, serv Servicer, passphraseHash string, tokenDuration time.Duration, log *logger.Logger) *HandleServiceServer {
	return &HandleServiceServer{
		jwtService:     jwtService,
		serv:           serv,
		passphraseHash: passphraseHash,
		tokenDuration:  tokenDuration,
		logger:         log,
	}
}

// AuthFuncOverride checks the access token of every call except Pair
func (s *HandleServiceServer) AuthFuncOverride(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if info.FullMethod == passrpc.MethodPair {
		return handler(ctx, req)
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		s.logger.Error("Missing metadata")
		return nil, status.Errorf(codes.Unauthenticated, "missing metadata")
	}

	token := md["authorization"]
	if len(token) == 0 || token[0] == "" {
		s.logger.Error("Missing token")
		return nil, status.Errorf(codes.Unauthenticated, "missing token")
	}

	device, err := s.jwtService.DeviceFromToken(token[0])
	if err != nil {
		s.logger.Error("Failed to parse token: " + err.Error())
		if errors.Is(err, jwtauth.ErrTokenExpired) {
			return nil, status.Errorf(codes.Unauthenticated, "token expired")
		}
		return nil, status.Errorf(codes.Unauthenticated, "invalid token")
	}

	s.logger.Debug("Call " + info.FullMethod + " from " + device)

	ctx = context.WithValue(ctx, DeviceKey, device)
	return handler(ctx, req)
}

// Pair exchanges the pairing passphrase for an access token
func (s *HandleServiceServer) Pair(ctx context.Context, req *passrpc.PairRequest) (*passrpc.PairResponse, error) {
	s.logger.Info("Pair handle called!")

	device := strings.TrimSpace(req.Device)
	if device == "" {
		return nil, status.Errorf(codes.InvalidArgument, "device name is empty")
	}

	if err := passwordhash.CheckPassphrase(req.Passphrase, s.passphraseHash); err != nil {
		s.logger.Warning("Rejected pairing for " + device + ": " + err.Error())
		return nil, status.Errorf(codes.Unauthenticated, "invalid passphrase")
	}

	token, expiresAt, err := s.jwtService.CreateAccessToken(device, s.tokenDuration)
	if err != nil {
		s.logger.Error("Failed to create access token: " + err.Error())
		return nil, status.Errorf(codes.Internal, "failed to create token")
	}

	s.logger.Info("Device " + device + " paired successfully")
	return &passrpc.PairResponse{Token: token, ExpiresAt: expiresAt.Unix()}, nil
}

// ListPasses method
func (s *HandleServiceServer) ListPasses(ctx context.Context, _ *passrpc.ListPassesRequest) (*passrpc.ListPassesResponse, error) {
	passes, err := s.serv.List(ctx)
	if err != nil {
		return nil, s.statusError("list passes", err)
	}

	resp := &passrpc.ListPassesResponse{Passes: make([]*passrpc.Pass, 0, len(passes))}
	for _, pass := range passes {
		resp.Passes = append(resp.Passes, toWire(pass))
	}
	return resp, nil
}

// GetPass method
func (s *HandleServiceServer) GetPass(ctx context.Context, req *passrpc.GetPassRequest) (*passrpc.PassResponse, error) {
	pass, err := s.serv.Get(ctx, req.ID)
	if err != nil {
		return nil, s.statusError("get pass", err)
	}
	return &passrpc.PassResponse{Pass: toWire(pass)}, nil
}

// CreatePass method
func (s *HandleServiceServer) CreatePass(ctx context.Context, req *passrpc.CreatePassRequest) (*passrpc.PassResponse, error) {
	pass, err := s.serv.Create(ctx, req.Title, req.Code, req.IsCode39)
	if err != nil {
		return nil, s.statusError("create pass", err)
	}
	s.logger.Info("Pass " + pass.ID + " created successfully")
	return &passrpc.PassResponse{Pass: toWire(pass)}, nil
}

// UpdatePass method
func (s *HandleServiceServer) UpdatePass(ctx context.Context, req *passrpc.UpdatePassRequest) (*passrpc.PassResponse, error) {
	patch := models.PassPatch{
		Title:    req.Title,
		Code:     req.Code,
		IsCode39: req.IsCode39,
	}

	pass, err := s.serv.Update(ctx, req.ID, patch)
	if err != nil {
		return nil, s.statusError("update pass", err)
	}
	s.logger.Info("Pass " + pass.ID + " updated successfully")
	return &passrpc.PassResponse{Pass: toWire(pass)}, nil
}

// DeletePass method
func (s *HandleServiceServer) DeletePass(ctx context.Context, req *passrpc.DeletePassRequest) (*passrpc.Empty, error) {
	if err := s.serv.Delete(ctx, req.ID); err != nil {
		return nil, s.statusError("delete pass", err)
	}
	s.logger.Info("Pass " + req.ID + " deleted successfully")
	return &passrpc.Empty{}, nil
}

// SetDestination pins the pass to a destination or unpins it
func (s *HandleServiceServer) SetDestination(ctx context.Context, req *passrpc.SetDestinationRequest) (*passrpc.Empty, error) {
	dest, err := models.ParseDestination(req.Destination)
	if err != nil {
		return nil, s.statusError("set destination", err)
	}

	if err := s.serv.SetExclusiveFlag(ctx, req.ID, dest, req.Value); err != nil {
		return nil, s.statusError("set destination", err)
	}
	return &passrpc.Empty{}, nil
}

// ActivePass returns the pass currently shown on a destination
func (s *HandleServiceServer) ActivePass(ctx context.Context, req *passrpc.ActivePassRequest) (*passrpc.PassResponse, error) {
	dest, err := models.ParseDestination(req.Destination)
	if err != nil {
		return nil, s.statusError("get active pass", err)
	}

	pass, err := s.serv.Active(ctx, dest)
	if err != nil {
		return nil, s.statusError("get active pass", err)
	}
	return &passrpc.PassResponse{Pass: toWire(pass)}, nil
}

// RenderPass returns the barcode PNG
func (s *HandleServiceServer) RenderPass(ctx context.Context, req *passrpc.RenderPassRequest) (*passrpc.RenderPassResponse, error) {
	data, err := s.serv.Render(ctx, req.ID, int(req.Size), req.ForceQR)
	if err != nil {
		return nil, s.statusError("render pass", err)
	}
	return &passrpc.RenderPassResponse{PNG: data}, nil
}

// statusError maps service errors onto gRPC status codes
func (s *HandleServiceServer) statusError(action string, err error) error {
	switch {
	case errors.Is(err, models.ErrValidationFailed):
		s.logger.Warning("Failed to " + action + ": " + err.Error())
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, models.ErrNotFound):
		s.logger.Debug("Failed to " + action + ": " + err.Error())
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.logger.Error("Failed to " + action + ": " + err.Error())
		return status.Error(codes.Internal, "failed to "+action)
	}
}

func toWire(pass models.Pass) *passrpc.Pass {
	return &passrpc.Pass{
		ID:         pass.ID,
		Title:      pass.Title,
		Code:       pass.Code,
		IsCode39:   pass.IsCode39,
		IsOnWatch:  pass.IsOnWatch,
		IsOnWidget: pass.IsOnWidget,
		IsOnSiri:   pass.IsOnSiri,
		CreatedAt:  pass.CreatedAt.Unix(),
		UpdatedAt:  pass.UpdatedAt.Unix(),
	}
}
