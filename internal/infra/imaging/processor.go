// Package imaging normalizes uploaded photos before they reach blob storage.
package imaging

import (
	"bytes"
	"image"
	"image/color"
	stddraw "image/draw"
	"image/jpeg"
	_ "image/png" // png decoder
	"io"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // webp decoder

	"harbor/config"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/service"
	"harbor/internal/errors"
)

const outputContentType = "image/jpeg"

// maxInputBytes bounds what is read from the client before decoding.
const maxInputBytes = 20 << 20

//nolint:gochecknoglobals
var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

type processor struct {
	maxDimension int
	quality      int
}

// NewProcessor creates an ImageProcessor that downscales to maxDimension
// and re-encodes as JPEG at the given quality.
func NewProcessor(maxDimension, quality int) service.ImageProcessor {
	return &processor{maxDimension: maxDimension, quality: quality}
}

// NewProcessorFromConfig is the fx constructor.
func NewProcessorFromConfig(cfg *config.Config) service.ImageProcessor {
	return NewProcessor(cfg.Images.MaxDimension, cfg.Images.JPEGQuality)
}

func (p *processor) Process(r io.Reader) (*service.ProcessedImage, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "read image")
	}
	if len(data) > maxInputBytes {
		return nil, errors.Wrap(domainerrors.ErrInvalidImage, "image too large")
	}

	// content is sniffed, client headers are ignored
	detected := http.DetectContentType(data)
	if _, ok := allowedContentTypes[detected]; !ok {
		return nil, errors.Wrapf(domainerrors.ErrInvalidImage, "unsupported format %s", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(domainerrors.ErrInvalidImage, "decode: %v", err)
	}

	img = flatten(downscale(img, p.maxDimension))

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, errors.Wrap(err, "encode jpeg")
	}

	bounds := img.Bounds()

	return &service.ProcessedImage{
		Data:        buf.Bytes(),
		ContentType: outputContentType,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}

// downscale keeps the aspect ratio and returns img unchanged when it already fits.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, h*maxDim/w)
	} else {
		newW = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return dst
}

// flatten composites transparent pixels onto white, JPEG has no alpha.
func flatten(img image.Image) image.Image {
	if _, ok := img.(*image.YCbCr); ok {
		return img
	}

	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	stddraw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, stddraw.Src)
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)

	return dst
}
