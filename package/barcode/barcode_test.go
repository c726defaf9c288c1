package barcode

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEncodable(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		text   string
		want   bool
	}{
		{"qr empty", QR, "", false},
		{"qr anything", QR, "héllo wörld", true},
		{"code39 empty", Code39, "", false},
		{"code39 uppercase and digits", Code39, "ABC123", true},
		{"code39 symbols", Code39, "A-B. $/+%", true},
		{"code39 lowercase", Code39, "abc", false},
		{"code39 accented", Code39, "héllo", false},
		{"code39 asterisk", Code39, "A*B", false},
		{"code39 hyphenated", Code39, "ABC-1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEncodable(tt.format, tt.text))
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, ok := ParseFormat("code39")
	assert.True(t, ok)
	assert.Equal(t, Code39, f)

	f, ok = ParseFormat("QR")
	assert.True(t, ok)
	assert.Equal(t, QR, f)

	f, ok = ParseFormat(" cOdE39 ")
	assert.True(t, ok)
	assert.Equal(t, Code39, f)

	_, ok = ParseFormat("ean13")
	assert.False(t, ok)

	assert.Equal(t, "Code39", Code39.String())
	assert.Equal(t, "QR", QR.String())
}

func TestRender(t *testing.T) {
	img := Render(QR, "gym membership 42", 200, 200)
	require.NotNil(t, img)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())

	img = Render(Code39, "ABC-1", 400, 100)
	require.NotNil(t, img)
	assert.Equal(t, 400, img.Bounds().Dx())

	assert.Nil(t, Render(Code39, "lower", 400, 100))
	assert.Nil(t, Render(QR, "", 100, 100))
}

func TestEncodePNG(t *testing.T) {
	data, err := EncodePNG(QR, "hello", 128, 128)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())

	_, err = EncodePNG(Code39, "héllo", 128, 128)
	assert.ErrorIs(t, err, ErrNoImage)
}
