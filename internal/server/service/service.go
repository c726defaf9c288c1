package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vova4o/passkeeper/internal/models"
	"github.com/vova4o/passkeeper/internal/server/metrics"
	"github.com/vova4o/passkeeper/package/barcode"
	"github.com/vova4o/passkeeper/package/logger"
)

// Render sizes in pixels
const (
	// DefaultRenderSize is used when a render request does not specify a size
	DefaultRenderSize = 300
	// MaxRenderSize caps the image side; encoding cost grows with its square
	MaxRenderSize = 2048
)

// Service is the pass record store: it validates requests and hands them to storage
type Service struct {
	stor    Storager
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// Storager that is interface to work with storage layer
type Storager interface {
	CreatePass(ctx context.Context, pass models.Pass) (models.Pass, error)
	UpdatePass(ctx context.Context, id string, mutate func(*models.Pass) error) (models.Pass, error)
	DeletePass(ctx context.Context, id string) error
	SetExclusiveFlag(ctx context.Context, id string, dest models.Destination, value bool) error
	GetPass(ctx context.Context, id string) (models.Pass, error)
	ListPasses(ctx context.Context) ([]models.Pass, error)
	ActivePass(ctx context.Context, dest models.Destination) (models.Pass, error)
}

// NewService создает новый экземпляр сервиса; metrics may be nil
func NewService(stor Storager, m *metrics.Metrics, logger *logger.Logger) *Service {
	return &Service{
		stor:    stor,
		metrics: m,
		logger:  logger,
	}
}

func (s *Service) observe(operation string, start time.Time, err *error) {
	s.metrics.Observe(operation, start, *err)
}

// Validate checks that a pass can be persisted: title and code are non-empty
// and a Code39 pass carries only Code39 characters.
func Validate(pass models.Pass) error {
	if pass.Title == "" {
		return fmt.Errorf("%w: title is empty", models.ErrValidationFailed)
	}
	if pass.Code == "" {
		return fmt.Errorf("%w: code is empty", models.ErrValidationFailed)
	}
	if pass.IsCode39 && !barcode.IsEncodable(barcode.Code39, pass.Code) {
		return fmt.Errorf("%w: code %q can not be encoded as Code39", models.ErrValidationFailed, pass.Code)
	}
	return nil
}

// Create trims and validates the candidate, then stores it with every destination off
func (s *Service) Create(ctx context.Context, title, code string, isCode39 bool) (pass models.Pass, err error) {
	defer s.observe("create", time.Now(), &err)

	candidate := models.Pass{
		Title:    strings.TrimSpace(title),
		Code:     strings.TrimSpace(code),
		IsCode39: isCode39,
	}
	if err = Validate(candidate); err != nil {
		s.logger.Warning("Rejected new pass: " + err.Error())
		return models.Pass{}, err
	}

	pass, err = s.stor.CreatePass(ctx, candidate)
	if err != nil {
		s.logger.Error("Failed to create pass: " + err.Error())
		return models.Pass{}, err
	}

	return pass, nil
}

// Update applies the patch to the stored pass and validates the merged result
// before it is committed. Destination flags are left as they are.
func (s *Service) Update(ctx context.Context, id string, patch models.PassPatch) (pass models.Pass, err error) {
	defer s.observe("update", time.Now(), &err)

	// Пустой патч ничего не меняет и не двигает updated_at
	if patch.Empty() {
		return s.stor.GetPass(ctx, id)
	}

	pass, err = s.stor.UpdatePass(ctx, id, func(p *models.Pass) error {
		patch.Apply(p)
		return Validate(*p)
	})
	if err != nil {
		s.logger.Error("Failed to update pass " + id + ": " + err.Error())
		return models.Pass{}, err
	}

	return pass, nil
}

// Delete removes the pass for good
func (s *Service) Delete(ctx context.Context, id string) (err error) {
	defer s.observe("delete", time.Now(), &err)

	if err = s.stor.DeletePass(ctx, id); err != nil {
		s.logger.Error("Failed to delete pass " + id + ": " + err.Error())
		return err
	}
	return nil
}

// SetExclusiveFlag makes the pass the only holder of dest (value true) or
// removes it from dest (value false)
func (s *Service) SetExclusiveFlag(ctx context.Context, id string, dest models.Destination, value bool) (err error) {
	defer s.observe("set_destination", time.Now(), &err)

	if !dest.Valid() {
		err = fmt.Errorf("%w: unknown destination", models.ErrValidationFailed)
		return err
	}

	if err = s.stor.SetExclusiveFlag(ctx, id, dest, value); err != nil {
		s.logger.Error("Failed to set " + dest.String() + " for pass " + id + ": " + err.Error())
		return err
	}
	return nil
}

// Get возвращает пропуск по ID
func (s *Service) Get(ctx context.Context, id string) (pass models.Pass, err error) {
	defer s.observe("get", time.Now(), &err)
	return s.stor.GetPass(ctx, id)
}

// List returns a snapshot of all passes
func (s *Service) List(ctx context.Context) (passes []models.Pass, err error) {
	defer s.observe("list", time.Now(), &err)
	return s.stor.ListPasses(ctx)
}

// Active returns the pass currently shown on dest
func (s *Service) Active(ctx context.Context, dest models.Destination) (pass models.Pass, err error) {
	defer s.observe("active", time.Now(), &err)

	if !dest.Valid() {
		err = fmt.Errorf("%w: unknown destination", models.ErrValidationFailed)
		return models.Pass{}, err
	}
	return s.stor.ActivePass(ctx, dest)
}

// Render returns a PNG of the pass code. forceQR renders QR regardless of the
// stored format, the way the watch face shows passes.
func (s *Service) Render(ctx context.Context, id string, size int, forceQR bool) (data []byte, err error) {
	defer s.observe("render", time.Now(), &err)

	if size > MaxRenderSize {
		err = fmt.Errorf("%w: render size %d exceeds %d", models.ErrValidationFailed, size, MaxRenderSize)
		return nil, err
	}
	if size <= 0 {
		size = DefaultRenderSize
	}

	pass, err := s.stor.GetPass(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	format := pass.Format()
	if forceQR {
		format = barcode.QR
	}

	width, height := size, size
	if format == barcode.Code39 {
		height = size / 3
	}

	data, err = barcode.EncodePNG(format, pass.Code, width, height)
	if errors.Is(err, barcode.ErrNoImage) {
		err = fmt.Errorf("%w: pass %s can not be rendered as %s at %dx%d", models.ErrValidationFailed, id, format, width, height)
		return nil, err
	}
	if err != nil {
		s.logger.Error("Failed to encode image: " + err.Error())
		return nil, err
	}
	return data, nil
}
