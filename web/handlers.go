package web

import (
	"errors"
	"html/template"
	"image"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/geminiweb/pkg/imaging"
	"github.com/papercomputeco/geminiweb/pkg/llm"
	"github.com/papercomputeco/geminiweb/pkg/logger"
	"github.com/papercomputeco/geminiweb/pkg/session"
)

// handleIndex sends the user to the mode they last selected.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	return c.Redirect("/"+selectedMode(c).Slug(), fiber.StatusSeeOther)
}

// handleChat renders the chat history, starting the session on first visit.
func (s *Server) handleChat(c *fiber.Ctx) error {
	p := newPage(llm.ModeChatBot)

	sess, err := s.store.GetOrCreate(c.UserContext(), sessionID(c))
	if err != nil {
		s.logger.Error("failed to initialize chat session", zap.Error(err))
		return s.render(c, p.fail(err), p)
	}

	p.Turns = s.turnViews(sess.Turns())
	return s.render(c, fiber.StatusOK, p)
}

// handleChatSubmit sends one user message and renders the updated history.
// A failed exchange commits nothing and shows the error instead.
func (s *Server) handleChatSubmit(c *fiber.Ctx) error {
	p := newPage(llm.ModeChatBot)
	message := strings.TrimSpace(c.FormValue("message"))

	sess, err := s.store.GetOrCreate(c.UserContext(), sessionID(c))
	if err != nil {
		s.logger.Error("failed to initialize chat session", zap.Error(err))
		return s.render(c, p.fail(err), p)
	}

	if err := s.validate.Var(message, "required"); err != nil {
		p.Turns = s.turnViews(sess.Turns())
		return s.render(c, p.fail(&inputError{Field: "message", Err: errors.New("message is empty")}), p)
	}

	s.logger.Debug("received chat message",
		zap.String("session", sess.ID()),
		zap.String("content_preview", logger.Truncate(message, 100)),
	)

	_, sendErr := s.store.Send(c.UserContext(), sess, message)
	p.Turns = s.turnViews(sess.Turns())
	if sendErr != nil {
		s.logger.Error("failed to send chat message", zap.String("session", sess.ID()), zap.Error(sendErr))
		p.Input = message
		return s.render(c, p.fail(sendErr), p)
	}

	return s.render(c, fiber.StatusOK, p)
}

// HistoryResponse contains the chat history of the caller's session.
type HistoryResponse struct {
	// Turns in chronological order (oldest first)
	Turns []llm.Turn `json:"turns"`
	// HeadHash identifies the whole history
	HeadHash string `json:"head_hash"`
	// Depth is the number of turns in the history
	Depth int `json:"depth"`
}

// handleChatHistory returns the chat history as JSON, using the history head
// hash as ETag.
func (s *Server) handleChatHistory(c *fiber.Ctx) error {
	sess, ok := s.store.Get(sessionID(c))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "no chat session"})
	}

	history := newHistoryResponse(sess)
	etag := `"` + history.HeadHash + `"`
	if history.HeadHash != "" {
		if c.Get(fiber.HeaderIfNoneMatch) == etag {
			return c.SendStatus(fiber.StatusNotModified)
		}
		c.Set(fiber.HeaderETag, etag)
	}

	return c.JSON(history)
}

func newHistoryResponse(sess *session.ChatSession) HistoryResponse {
	turns := sess.Turns()
	return HistoryResponse{
		Turns:    turns,
		HeadHash: sess.HeadHash(),
		Depth:    len(turns),
	}
}

func (s *Server) turnViews(turns []llm.Turn) []turnView {
	out := make([]turnView, len(turns))
	for i, t := range turns {
		out[i] = turnView{Role: t.Role, HTML: s.markdown.render(t.Text)}
	}
	return out
}

func (s *Server) handleCaption(c *fiber.Ctx) error {
	p := newPage(llm.ModeImageCaptioning)
	p.Prompt = s.config.CaptionPrompt
	return s.render(c, fiber.StatusOK, p)
}

// handleCaptionSubmit decodes the uploaded image, shows a fixed-size preview
// and asks the vision model for a caption. Nothing is sent to the model when
// the upload cannot be decoded.
func (s *Server) handleCaptionSubmit(c *fiber.Ctx) error {
	p := newPage(llm.ModeImageCaptioning)
	p.Prompt = s.config.CaptionPrompt

	img, err := s.decodeUpload(c)
	if err != nil {
		s.logger.Warn("rejected image upload", zap.Error(err))
		return s.render(c, p.fail(err), p)
	}

	preview, err := imaging.DataURL(imaging.Resize(img, s.config.PreviewWidth, s.config.PreviewHeight))
	if err != nil {
		return s.render(c, p.fail(err), p)
	}
	p.PreviewURL = template.URL(preview)

	caption, err := s.model.CaptionImage(c.UserContext(), s.config.CaptionPrompt, img)
	if err != nil {
		s.logger.Error("failed to caption image", zap.Error(err))
		return s.render(c, p.fail(err), p)
	}

	p.Caption = caption
	return s.render(c, fiber.StatusOK, p)
}

func (s *Server) decodeUpload(c *fiber.Ctx) (image.Image, error) {
	header, err := c.FormFile("image")
	if err != nil {
		return nil, &llm.DecodeError{Err: errors.New("no image uploaded")}
	}

	f, err := header.Open()
	if err != nil {
		return nil, &llm.DecodeError{Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &llm.DecodeError{Err: err}
	}

	img, format, err := imaging.Decode(header.Filename, data)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("decoded image upload",
		zap.String("filename", header.Filename),
		zap.String("format", format),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
	)
	return img, nil
}

func (s *Server) handleEmbed(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, newPage(llm.ModeEmbedText))
}

// handleEmbedSubmit embeds the text as given; empty input is left for the
// service to accept or reject.
func (s *Server) handleEmbedSubmit(c *fiber.Ctx) error {
	p := newPage(llm.ModeEmbedText)
	p.Input = c.FormValue("text")

	result, err := s.model.EmbedText(c.UserContext(), p.Input)
	if err != nil {
		s.logger.Error("failed to embed text", zap.Error(err))
		return s.render(c, p.fail(err), p)
	}

	p.Embedding = &result
	return s.render(c, fiber.StatusOK, p)
}

func (s *Server) handleAsk(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, newPage(llm.ModeAskAnything))
}

func (s *Server) handleAskSubmit(c *fiber.Ctx) error {
	p := newPage(llm.ModeAskAnything)
	p.Input = c.FormValue("text")

	answer, err := s.model.AnswerQuestion(c.UserContext(), p.Input)
	if err != nil {
		s.logger.Error("failed to answer question", zap.Error(err))
		return s.render(c, p.fail(err), p)
	}

	p.Answer = s.markdown.render(answer)
	return s.render(c, fiber.StatusOK, p)
}
