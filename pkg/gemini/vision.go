package gemini

import (
	"context"
	"encoding/base64"
	"image"

	"github.com/papercomputeco/geminiweb/pkg/imaging"
	"github.com/papercomputeco/geminiweb/pkg/llm"
)

// DefaultCaptionPrompt is the instruction sent with every captioned image.
const DefaultCaptionPrompt = "write a short caption for this image"

// CaptionImage sends prompt and the decoded img to the vision model and
// returns the generated caption.
func (c *Client) CaptionImage(ctx context.Context, prompt string, img image.Image) (string, error) {
	if img == nil {
		return "", &llm.DecodeError{Err: imaging.ErrEmpty}
	}

	data, err := imaging.EncodeJPEG(img)
	if err != nil {
		return "", &llm.DecodeError{Format: "jpeg", Err: err}
	}

	contents := []*content{{
		Role: roleUser,
		Parts: []*part{
			{Text: prompt},
			{InlineData: &inlineData{
				MimeType: "image/jpeg",
				Data:     base64.StdEncoding.EncodeToString(data),
			}},
		},
	}}

	return c.generate(ctx, OpCaptionImage, c.config.VisionModel, contents)
}
