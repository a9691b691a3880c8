package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "harbor/internal/domain/errors"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 40, B: 40, A: 128})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestProcess_DownscalesLandscape(t *testing.T) {
	p := NewProcessor(100, 80)

	out, err := p.Process(bytes.NewReader(pngBytes(t, 400, 200)))
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", out.ContentType)
	assert.Equal(t, 100, out.Width)
	assert.Equal(t, 50, out.Height)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestProcess_KeepsSmallImage(t *testing.T) {
	p := NewProcessor(100, 80)

	out, err := p.Process(bytes.NewReader(pngBytes(t, 30, 60)))
	require.NoError(t, err)
	assert.Equal(t, 30, out.Width)
	assert.Equal(t, 60, out.Height)
}

func TestProcess_RejectsNonImage(t *testing.T) {
	p := NewProcessor(100, 80)

	_, err := p.Process(strings.NewReader("definitely not an image"))
	assert.ErrorIs(t, err, domainerrors.ErrInvalidImage)
}

func TestDownscale_Portrait(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 1000))

	got := downscale(img, 100)
	assert.Equal(t, 1, got.Bounds().Dx())
	assert.Equal(t, 100, got.Bounds().Dy())
}
