package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vova4o/passkeeper/package/barcode"
)

// Ошибки хранилища и сессии редактирования
var (
	// ErrValidationFailed empty title/code or a code the selected format can not carry
	ErrValidationFailed = errors.New("validation failed")
	// ErrNotFound the referenced pass does not exist
	ErrNotFound = errors.New("pass not found")
	// ErrStoreFailure the durability layer failed
	ErrStoreFailure = errors.New("store failure")
	// ErrNotReady submit was requested while the candidate is incomplete
	ErrNotReady = errors.New("candidate not ready")
)

// Pass модель пропуска
type Pass struct {
	ID         string    `json:"id" yaml:"id"`
	Title      string    `json:"title" yaml:"title"`
	Code       string    `json:"code" yaml:"code"`
	IsCode39   bool      `json:"is_code39" yaml:"is_code39"`
	IsOnWatch  bool      `json:"is_on_watch" yaml:"is_on_watch"`
	IsOnWidget bool      `json:"is_on_widget" yaml:"is_on_widget"`
	IsOnSiri   bool      `json:"is_on_siri" yaml:"is_on_siri"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`
}

// Format returns the symbology used to render the pass code
func (p Pass) Format() barcode.Format {
	if p.IsCode39 {
		return barcode.Code39
	}
	return barcode.QR
}

// On reports whether the pass is the active one for the destination
func (p Pass) On(d Destination) bool {
	switch d {
	case Watch:
		return p.IsOnWatch
	case Widget:
		return p.IsOnWidget
	case Siri:
		return p.IsOnSiri
	default:
		return false
	}
}

// PassPatch is a partial update; nil fields are left untouched
type PassPatch struct {
	Title    *string `json:"title,omitempty"`
	Code     *string `json:"code,omitempty"`
	IsCode39 *bool   `json:"is_code39,omitempty"`
}

// Empty reports whether the patch supplies no field at all
func (p PassPatch) Empty() bool {
	return p.Title == nil && p.Code == nil && p.IsCode39 == nil
}

// Apply merges the patch into pass, trimming supplied strings
func (p PassPatch) Apply(pass *Pass) {
	if p.Title != nil {
		pass.Title = strings.TrimSpace(*p.Title)
	}
	if p.Code != nil {
		pass.Code = strings.TrimSpace(*p.Code)
	}
	if p.IsCode39 != nil {
		pass.IsCode39 = *p.IsCode39
	}
}

// Destination is an exclusivity group: at most one pass may be on it
type Destination int

// Destinations a pass can be pinned to
const (
	Watch Destination = iota
	Widget
	Siri
)

// Destinations lists every exclusivity group
func Destinations() []Destination {
	return []Destination{Watch, Widget, Siri}
}

// String returns the destination name used by the API and the CLI
func (d Destination) String() string {
	switch d {
	case Watch:
		return "watch"
	case Widget:
		return "widget"
	case Siri:
		return "siri"
	default:
		return "unknown"
	}
}

// ParseDestination converts a name back to a Destination
func ParseDestination(name string) (Destination, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "watch":
		return Watch, nil
	case "widget":
		return Widget, nil
	case "siri":
		return Siri, nil
	default:
		return 0, fmt.Errorf("%w: unknown destination %q", ErrValidationFailed, name)
	}
}

// Valid reports whether d is one of the known destinations
func (d Destination) Valid() bool {
	return d >= Watch && d <= Siri
}
