package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when content is empty or only whitespace.
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrEncodingFailure is returned when the QR code could not be produced.
	ErrEncodingFailure = errors.New("failed to encode QR code")
)

const (
	// DefaultSize is the image size in pixels when none is configured.
	DefaultSize = 256

	dataURLPrefix = "data:image/png;base64,"
)

// RecoveryLevel is the amount of error correction in the symbol.
type RecoveryLevel = skipqrcode.RecoveryLevel

const (
	Low     = skipqrcode.Low
	Medium  = skipqrcode.Medium
	High    = skipqrcode.High
	Highest = skipqrcode.Highest
)

// Renderer encodes text into PNG QR codes.
type Renderer struct {
	size  int
	level RecoveryLevel
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSize sets the image size in pixels. Non-positive sizes are ignored.
func WithSize(size int) Option {
	return func(r *Renderer) {
		if size > 0 {
			r.size = size
		}
	}
}

// WithRecoveryLevel sets the error correction level.
func WithRecoveryLevel(level RecoveryLevel) Option {
	return func(r *Renderer) {
		r.level = level
	}
}

// NewRenderer returns a Renderer with DefaultSize and Medium recovery.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{size: DefaultSize, level: Medium}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Size returns the configured image size.
func (r *Renderer) Size() int {
	return r.size
}

// Render returns content encoded as a PNG image.
func (r *Renderer) Render(content string) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	png, err := skipqrcode.Encode(content, r.level, r.size)
	if err != nil {
		return nil, errors.Join(ErrEncodingFailure, err)
	}
	return png, nil
}

// RenderDataURL returns content encoded as a base64 PNG data URI:
//
//	<img src="{{.QRCode}}">
func (r *Renderer) RenderDataURL(content string) (string, error) {
	png, err := r.Render(content)
	if err != nil {
		return "", err
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}
