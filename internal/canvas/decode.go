package canvas

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultWidth and DefaultHeight match the drawing surface of the web client
	DefaultWidth  = 700
	DefaultHeight = 300
)

var (
	// ErrMalformedImage indicates bytes that no registered decoder accepts
	ErrMalformedImage = errors.New("malformed canvas image")

	// ErrMalformedDataURL indicates a data URL that is not a base64 image payload
	ErrMalformedDataURL = errors.New("malformed canvas data URL")

	// ErrCanvasTooLarge indicates a canvas whose declared size exceeds the decoder limits
	ErrCanvasTooLarge = errors.New("canvas too large")
)

// Decoder decodes encoded canvases within fixed limits. The declared size is
// read from the image header and checked before any pixels are allocated.
// Zero fields mean unbounded.
type Decoder struct {
	MaxWidth  int
	MaxHeight int
	MaxBytes  int64
}

// Decode decodes an encoded raster. An empty payload means no drawing was
// captured and yields a nil image with no error.
func (d Decoder) Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", nil
	}
	if d.MaxBytes > 0 && int64(len(data)) > d.MaxBytes {
		return nil, "", fmt.Errorf("%w: payload exceeds %d bytes", ErrCanvasTooLarge, d.MaxBytes)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedImage, err)
	}
	if (d.MaxWidth > 0 && cfg.Width > d.MaxWidth) || (d.MaxHeight > 0 && cfg.Height > d.MaxHeight) {
		return nil, "", fmt.Errorf("%w: canvas %dx%d exceeds the %dx%d limit",
			ErrCanvasTooLarge, cfg.Width, cfg.Height, d.MaxWidth, d.MaxHeight)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedImage, err)
	}
	return img, format, nil
}

// DecodeReader reads r fully and decodes it, reading at most MaxBytes.
func (d Decoder) DecodeReader(r io.Reader) (image.Image, string, error) {
	if d.MaxBytes > 0 {
		r = io.LimitReader(r, d.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read canvas: %w", err)
	}
	return d.Decode(data)
}

// DecodeDataURL decodes a "data:image/<type>;base64,<payload>" URL as exported
// by HTML canvases. An empty string yields a nil image.
func (d Decoder) DecodeDataURL(dataURL string) (image.Image, string, error) {
	dataURL = strings.TrimSpace(dataURL)
	if dataURL == "" {
		return nil, "", nil
	}

	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, "", ErrMalformedDataURL
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedDataURL, err)
	}
	return d.Decode(data)
}

// Decode decodes data with no size limits
func Decode(data []byte) (image.Image, string, error) {
	return Decoder{}.Decode(data)
}

// DecodeReader decodes at most limit bytes read from r
func DecodeReader(r io.Reader, limit int64) (image.Image, string, error) {
	return Decoder{MaxBytes: limit}.DecodeReader(r)
}

// DecodeDataURL decodes a canvas data URL with no size limits
func DecodeDataURL(dataURL string) (image.Image, string, error) {
	return Decoder{}.DecodeDataURL(dataURL)
}

// Blank returns an opaque white canvas of the given size
func Blank(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return img
}
