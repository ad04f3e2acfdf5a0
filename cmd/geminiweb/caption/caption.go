package captioncmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/geminiweb/cmd/geminiweb/cliconfig"
	"github.com/papercomputeco/geminiweb/pkg/gemini"
	"github.com/papercomputeco/geminiweb/pkg/imaging"
)

const captionLongDesc string = `Caption a local jpg, jpeg or png image.

The image is decoded locally first; nothing is sent to the model when
it cannot be decoded.

Examples:
  geminiweb caption ./holiday.jpg
  geminiweb caption --prompt "describe the colors" ./logo.png`

const captionShortDesc string = "Caption an image"

type captionCommander struct {
	flags  cliconfig.Flags
	prompt string
}

func NewCaptionCmd() *cobra.Command {
	cmder := &captionCommander{}

	cmd := &cobra.Command{
		Use:   "caption <image-file>",
		Short: captionShortDesc,
		Long:  captionLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	cmder.flags.Register(cmd)
	cmd.Flags().StringVarP(&cmder.prompt, "prompt", "p", gemini.DefaultCaptionPrompt, "Instruction sent with the image")

	return cmd
}

func (c *captionCommander) run(ctx context.Context, cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read image %s: %w", path, err)
	}

	img, _, err := imaging.Decode(path, data)
	if err != nil {
		return err
	}

	client, logger, err := c.flags.NewClient(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	caption, err := client.CaptionImage(ctx, c.prompt, img)
	if err != nil {
		return fmt.Errorf("could not caption image: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), caption)
	return nil
}
