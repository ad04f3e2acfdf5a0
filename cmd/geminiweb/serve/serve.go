package servecmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/geminiweb/cmd/geminiweb/cliconfig"
	"github.com/papercomputeco/geminiweb/pkg/gemini"
	"github.com/papercomputeco/geminiweb/pkg/session"
	"github.com/papercomputeco/geminiweb/web"
)

const serveLongDesc string = `Start the Gemini AI web server.

The server keeps one chat conversation per browser session in memory;
conversations are lost when the server stops.

Examples:
  geminiweb serve
  geminiweb serve --listen :3000 --debug`

const serveShortDesc string = "Start the web server"

type serveCommander struct {
	flags         cliconfig.Flags
	listenAddr    string
	secureCookies bool
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmder.flags.Register(cmd)
	cmd.Flags().StringVarP(&cmder.listenAddr, "listen", "l", "", "Address to listen on (default $LISTEN_ADDR or :8080)")
	cmd.Flags().BoolVar(&cmder.secureCookies, "secure-cookies", false, "Mark session cookies Secure (serve behind HTTPS)")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, logger, err := c.flags.Load(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cmd.Flags().Changed("listen") {
		cfg.App.ListenAddr = c.listenAddr
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	logger.Info("geminiweb starting",
		zap.String("listen", cfg.App.ListenAddr),
		zap.String("chat_model", cfg.Gemini.ChatModel),
		zap.Bool("debug", cfg.App.Debug),
	)

	client := gemini.New(cfg.GeminiClientConfig(), logger)
	store := session.NewStore(client, cfg.SessionStoreConfig(), logger)

	srv, err := web.New(web.Config{
		ListenAddr:    cfg.App.ListenAddr,
		BodyLimit:     cfg.App.BodyLimitMB * 1024 * 1024,
		SecureCookies: c.secureCookies,
	}, client, store, logger)
	if err != nil {
		return fmt.Errorf("could not create web server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down web server")
		return srv.Close()
	}
}
