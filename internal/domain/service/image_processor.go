package service

import "io"

// ProcessedImage is an image normalized for upload.
type ProcessedImage struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// ImageProcessor validates and normalizes uploaded images.
type ImageProcessor interface {
	Process(r io.Reader) (*ProcessedImage, error)
}
