package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/papercomputeco/geminiweb/pkg/llm"
)

//go:embed templates/*.html
var templateFS embed.FS

var viewFiles = map[llm.Mode]string{
	llm.ModeChatBot:         "templates/chat.html",
	llm.ModeImageCaptioning: "templates/caption.html",
	llm.ModeEmbedText:       "templates/embed.html",
	llm.ModeAskAnything:     "templates/ask.html",
}

func parseViews() (map[llm.Mode]*template.Template, error) {
	views := make(map[llm.Mode]*template.Template, len(viewFiles))
	for _, mode := range llm.Modes() {
		file, ok := viewFiles[mode]
		if !ok {
			return nil, fmt.Errorf("no view for mode %s", mode)
		}
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", file)
		if err != nil {
			return nil, fmt.Errorf("parse view %s: %w", file, err)
		}
		views[mode] = tmpl
	}
	return views, nil
}

// page is the data every view renders.
type page struct {
	AppTitle string
	Mode     llm.Mode
	Modes    []llm.Mode
	Error    string

	// ChatBot
	Turns []turnView

	// Image Captioning
	Prompt     string
	PreviewURL template.URL
	Caption    string

	// Embed text and Ask me anything
	Input     string
	Embedding *llm.EmbeddingResult
	Answer    template.HTML
}

type turnView struct {
	Role llm.Role
	HTML template.HTML
}

func newPage(mode llm.Mode) *page {
	return &page{
		AppTitle: "Gemini AI",
		Mode:     mode,
		Modes:    llm.Modes(),
	}
}

// fail records err on the page and returns the status it maps to.
func (p *page) fail(err error) int {
	p.Error = err.Error()
	return statusFor(err)
}

func statusFor(err error) int {
	var (
		remoteErr *llm.RemoteServiceError
		decodeErr *llm.DecodeError
		stateErr  *llm.InvalidStateError
		inputErr  *inputError
	)
	switch {
	case errors.As(err, &remoteErr):
		return fiber.StatusBadGateway
	case errors.As(err, &decodeErr):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &stateErr):
		return fiber.StatusConflict
	case errors.As(err, &inputErr):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// inputError is a form value that failed validation.
type inputError struct {
	Field string
	Err   error
}

func (e *inputError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *inputError) Unwrap() error {
	return e.Err
}

func (s *Server) render(c *fiber.Ctx, status int, p *page) error {
	var buf bytes.Buffer
	if err := s.views[p.Mode].ExecuteTemplate(&buf, "layout", p); err != nil {
		return fmt.Errorf("render %s view: %w", p.Mode, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	if status == 0 {
		status = http.StatusOK
	}
	return c.Status(status).Send(buf.Bytes())
}

// markdown renders model output, which is markdown, to sanitized HTML.
type markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func newMarkdown() *markdown {
	return &markdown{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
	}
}

func (m *markdown) render(src string) template.HTML {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(m.policy.SanitizeBytes(buf.Bytes()))
}
