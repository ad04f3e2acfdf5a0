package askcmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/geminiweb/cmd/geminiweb/cliconfig"
)

const askLongDesc string = `Ask the text model a single question.

The question is sent without any history; every call is independent.

Examples:
  geminiweb ask "What is the capital of France?"
  geminiweb ask Explain goroutines in one paragraph`

const askShortDesc string = "Ask a one-off question"

type askCommander struct {
	flags cliconfig.Flags
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, strings.Join(args, " "))
		},
	}

	cmder.flags.Register(cmd)

	return cmd
}

func (c *askCommander) run(ctx context.Context, cmd *cobra.Command, question string) error {
	client, logger, err := c.flags.NewClient(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	answer, err := client.AnswerQuestion(ctx, question)
	if err != nil {
		return fmt.Errorf("could not get an answer: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}
