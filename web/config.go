package web

import (
	"github.com/papercomputeco/geminiweb/pkg/gemini"
	"github.com/papercomputeco/geminiweb/pkg/imaging"
)

// Config is the web server configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string

	// BodyLimit is the maximum request body size in bytes, bounding uploads.
	BodyLimit int

	// CaptionPrompt is sent with every image to caption.
	CaptionPrompt string

	// PreviewWidth and PreviewHeight size the caption preview.
	PreviewWidth  int
	PreviewHeight int

	// SecureCookies marks the session cookie Secure (HTTPS deployments).
	SecureCookies bool
}

const defaultBodyLimit = 10 * 1024 * 1024

func (c Config) withDefaults() Config {
	if c.BodyLimit <= 0 {
		c.BodyLimit = defaultBodyLimit
	}
	if c.CaptionPrompt == "" {
		c.CaptionPrompt = gemini.DefaultCaptionPrompt
	}
	if c.PreviewWidth <= 0 || c.PreviewHeight <= 0 {
		c.PreviewWidth, c.PreviewHeight = imaging.PreviewWidth, imaging.PreviewHeight
	}
	return c
}
