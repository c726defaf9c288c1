// Package barcode answers which symbology can carry a pass code and renders
// pass codes into scannable images.
package barcode

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"strings"

	bc "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/qr"
)

// Format is a barcode symbology
type Format int

// Supported formats
const (
	QR Format = iota
	Code39
)

// ErrNoImage is returned by EncodePNG when the code cannot be rendered
var ErrNoImage = errors.New("no image")

// String returns the human readable format name
func (f Format) String() string {
	if f == Code39 {
		return "Code39"
	}
	return "QR"
}

// ParseFormat accepts "qr" and "code39" in any case
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "qr":
		return QR, true
	case "code39":
		return Code39, true
	default:
		return QR, false
	}
}

// code39Alphabet is the character set Code39 can carry without full ASCII mode:
// uppercase letters, digits, space and - . $ / + %
func inCode39Alphabet(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	}
	switch r {
	case ' ', '-', '.', '$', '/', '+', '%':
		return true
	}
	return false
}

// IsEncodable reports whether text can be encoded in the given format.
// QR accepts any non-empty text; Code39 accepts only its restricted alphabet.
func IsEncodable(format Format, text string) bool {
	if text == "" {
		return false
	}
	if format != Code39 {
		return true
	}
	for _, r := range text {
		if !inCode39Alphabet(r) {
			return false
		}
	}
	return true
}

// Render produces a scannable image of code scaled to width x height.
// It returns nil when code is not encodable in format or the requested size
// is too small for the symbol.
func Render(format Format, code string, width, height int) image.Image {
	if !IsEncodable(format, code) {
		return nil
	}

	var (
		symbol bc.Barcode
		err    error
	)
	switch format {
	case Code39:
		symbol, err = code39.Encode(code, false, false)
	default:
		symbol, err = qr.Encode(code, qr.M, qr.Auto)
	}
	if err != nil {
		return nil
	}

	if width <= 0 || height <= 0 {
		return symbol
	}
	scaled, err := bc.Scale(symbol, width, height)
	if err != nil {
		return nil
	}
	return scaled
}

// EncodePNG renders code and encodes the result as PNG
func EncodePNG(format Format, code string, width, height int) ([]byte, error) {
	img := Render(format, code, width, height)
	if img == nil {
		return nil, ErrNoImage
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
