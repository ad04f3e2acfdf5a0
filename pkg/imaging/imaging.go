// Package imaging decodes uploaded images and prepares the previews and
// payloads sent to the vision model.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/papercomputeco/geminiweb/pkg/llm"
)

const (
	// PreviewWidth and PreviewHeight are the fixed canvas of the caption preview.
	PreviewWidth  = 800
	PreviewHeight = 500

	// MaxPixels bounds the canvas an upload may declare.
	MaxPixels = 40_000_000

	jpegQuality = 90
)

// AllowedExtensions lists the upload extensions accepted at the boundary.
var AllowedExtensions = []string{".jpg", ".jpeg", ".png"}

// ErrEmpty is wrapped in a DecodeError when no bytes were uploaded.
var ErrEmpty = errors.New("empty image")

// Decode validates the file extension and sniffed content type of data and
// decodes it. The returned format is "jpeg" or "png". Every failure is a
// *llm.DecodeError.
func Decode(filename string, data []byte) (image.Image, string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowed(ext) {
		return nil, "", &llm.DecodeError{
			Format: strings.TrimPrefix(ext, "."),
			Err:    fmt.Errorf("unsupported file type %q, expected one of %s", ext, strings.Join(AllowedExtensions, ", ")),
		}
	}

	if len(data) == 0 {
		return nil, "", &llm.DecodeError{Err: ErrEmpty}
	}

	var (
		format       string
		decode       func(io.Reader) (image.Image, error)
		decodeConfig func(io.Reader) (image.Config, error)
	)
	switch contentType := http.DetectContentType(data); contentType {
	case "image/jpeg":
		format, decode, decodeConfig = "jpeg", jpeg.Decode, jpeg.DecodeConfig
	case "image/png":
		format, decode, decodeConfig = "png", png.Decode, png.DecodeConfig
	default:
		return nil, "", &llm.DecodeError{Err: fmt.Errorf("unsupported content type %s", contentType)}
	}

	cfg, err := decodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", &llm.DecodeError{Format: format, Err: err}
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > MaxPixels {
		return nil, "", &llm.DecodeError{
			Format: format,
			Err:    fmt.Errorf("image is %dx%d, larger than %d pixels", cfg.Width, cfg.Height, MaxPixels),
		}
	}

	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &llm.DecodeError{Format: format, Err: err}
	}

	return img, format, nil
}

func allowed(ext string) bool {
	for _, a := range AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// Resize scales img onto a w x h canvas, ignoring the aspect ratio.
func Resize(img image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// EncodeJPEG encodes img as a JPEG.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL returns img as an inline JPEG data URL suitable for an <img> src.
func DataURL(img image.Image) (string, error) {
	data, err := EncodeJPEG(img)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
}
