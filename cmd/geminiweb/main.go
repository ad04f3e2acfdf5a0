package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/geminiweb/cmd/geminiweb/ask"
	captioncmder "github.com/papercomputeco/geminiweb/cmd/geminiweb/caption"
	embedcmder "github.com/papercomputeco/geminiweb/cmd/geminiweb/embed"
	servecmder "github.com/papercomputeco/geminiweb/cmd/geminiweb/serve"
)

const rootLongDesc string = `geminiweb is a browser front end for Google's Gemini models.

It serves four views: a multi-turn chat, image captioning, text
embeddings and single-shot questions. The same model calls are
available from the terminal.

Configuration is read from the environment and an optional .env file
(GEMINI_API_KEY, GEMINI_BASE_URL, LISTEN_ADDR, ...).`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "geminiweb",
		Short:         "Gemini AI web front end",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(embedcmder.NewEmbedCmd())
	cmd.AddCommand(captioncmder.NewCaptionCmd())

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
