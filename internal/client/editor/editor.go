// Package editor holds the edit session of a candidate pass: the title and
// code being typed, the selected barcode format and whether the candidate
// can be saved.
package editor

import (
	"context"
	"errors"
	"strings"

	"github.com/vova4o/passkeeper/internal/models"
	"github.com/vova4o/passkeeper/package/barcode"
)

var (
	// ErrNotEditing delete was requested for a pass that was never stored
	ErrNotEditing = errors.New("editor is not editing a stored pass")
	// ErrSessionClosed the session already saved or deleted its pass
	ErrSessionClosed = errors.New("edit session is closed")
)

// Store is the part of the pass store an edit session writes through
type Store interface {
	Create(ctx context.Context, title, code string, isCode39 bool) (models.Pass, error)
	Update(ctx context.Context, id string, patch models.PassPatch) (models.Pass, error)
	Delete(ctx context.Context, id string) error
}

// Editor is a single edit session. It is not safe for concurrent use.
type Editor struct {
	store    Store
	editing  *models.Pass
	title    string
	code     string
	format   barcode.Format
	eligible bool
	closed   bool
}

// New starts a session for a pass that does not exist yet
func New(store Store) *Editor {
	return &Editor{
		store:  store,
		format: barcode.QR,
	}
}

// Edit starts a session seeded from a stored pass. A Code39 selection the
// stored code can not satisfy falls back to QR.
func Edit(store Store, pass models.Pass) *Editor {
	e := &Editor{
		store:   store,
		editing: &pass,
		title:   pass.Title,
		code:    pass.Code,
		format:  pass.Format(),
	}
	e.refreshEligibility()
	return e
}

func (e *Editor) refreshEligibility() {
	e.eligible = barcode.IsEncodable(barcode.Code39, strings.TrimSpace(e.code))
	if !e.eligible && e.format == barcode.Code39 {
		e.format = barcode.QR
	}
}

// SetTitle stores the raw title
func (e *Editor) SetTitle(title string) {
	e.title = title
}

// SetCode stores the raw code and re-checks Code39 eligibility
func (e *Editor) SetCode(code string) {
	e.code = code
	e.refreshEligibility()
}

// SelectFormat switches the format. Code39 is ignored while the code is not
// eligible. It reports whether the selection was applied.
func (e *Editor) SelectFormat(f barcode.Format) bool {
	switch f {
	case barcode.QR:
		e.format = barcode.QR
		return true
	case barcode.Code39:
		if !e.eligible {
			return false
		}
		e.format = barcode.Code39
		return true
	default:
		return false
	}
}

// CanSubmit reports whether both trimmed fields are non-empty
func (e *Editor) CanSubmit() bool {
	return strings.TrimSpace(e.title) != "" && strings.TrimSpace(e.code) != ""
}

// Submit creates or updates the pass with the trimmed values. Destination
// flags are never touched. The session closes on success.
func (e *Editor) Submit(ctx context.Context) (models.Pass, error) {
	if e.closed {
		return models.Pass{}, ErrSessionClosed
	}
	if !e.CanSubmit() {
		return models.Pass{}, models.ErrNotReady
	}

	title := strings.TrimSpace(e.title)
	code := strings.TrimSpace(e.code)
	isCode39 := e.format == barcode.Code39

	var (
		pass models.Pass
		err  error
	)
	if e.editing == nil {
		pass, err = e.store.Create(ctx, title, code, isCode39)
	} else {
		pass, err = e.store.Update(ctx, e.editing.ID, models.PassPatch{
			Title:    &title,
			Code:     &code,
			IsCode39: &isCode39,
		})
	}
	if err != nil {
		return models.Pass{}, err
	}

	e.closed = true
	return pass, nil
}

// RequestDelete deletes the pass being edited. The session closes on success.
func (e *Editor) RequestDelete(ctx context.Context) error {
	if e.closed {
		return ErrSessionClosed
	}
	if e.editing == nil {
		return ErrNotEditing
	}

	if err := e.store.Delete(ctx, e.editing.ID); err != nil {
		return err
	}
	e.closed = true
	return nil
}

// Title returns the raw title
func (e *Editor) Title() string { return e.title }

// Code returns the raw code
func (e *Editor) Code() string { return e.code }

// Format returns the selected format
func (e *Editor) Format() barcode.Format { return e.format }

// Code39Eligible reports whether the current code can be Code39
func (e *Editor) Code39Eligible() bool { return e.eligible }

// IsEditing reports whether the session edits a stored pass
func (e *Editor) IsEditing() bool { return e.editing != nil }

// SubmitLabel is the caption of the submit action
func (e *Editor) SubmitLabel() string {
	if e.IsEditing() {
		return "Update"
	}
	return "Save"
}

// Heading is the title of the edit screen
func (e *Editor) Heading() string {
	if e.IsEditing() {
		return "Update Pass"
	}
	return "New Pass"
}
