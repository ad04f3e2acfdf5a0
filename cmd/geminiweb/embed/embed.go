package embedcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/geminiweb/cmd/geminiweb/cliconfig"
)

const embedLongDesc string = `Print the embedding of a text.

The vector is printed as a JSON array, or as a JSON object with the
model name when --json is given.

Examples:
  geminiweb embed "the quick brown fox"
  geminiweb embed --json hello world`

const embedShortDesc string = "Embed a text"

type embedCommander struct {
	flags   cliconfig.Flags
	jsonOut bool
}

func NewEmbedCmd() *cobra.Command {
	cmder := &embedCommander{}

	cmd := &cobra.Command{
		Use:   "embed <text>",
		Short: embedShortDesc,
		Long:  embedLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, strings.Join(args, " "))
		},
	}

	cmder.flags.Register(cmd)
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print model and values as a JSON object")

	return cmd
}

func (c *embedCommander) run(ctx context.Context, cmd *cobra.Command, text string) error {
	client, logger, err := c.flags.NewClient(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	result, err := client.EmbedText(ctx, text)
	if err != nil {
		return fmt.Errorf("could not embed text: %w", err)
	}

	var out any = result.Values
	if c.jsonOut {
		out = result
	}

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("could not marshal embedding: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
