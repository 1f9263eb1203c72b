package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/weldsafe/internal/adapters/driving/gateway"
	"github.com/custodia-labs/weldsafe/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat gateway",
	Long: `Starts the HTTP gateway used by chat transports.

Endpoints:
  POST /v1/answer    {"question": "..."}
  POST /v1/messages  chat update (text, button, contact)
  POST /v1/voice     multipart audio plus user fields
  GET  /v1/index     manifest of the served index
  GET  /healthz      200, or 503 after an index consistency alert

The served index is reloaded whenever 'weldsafe index build' replaces it.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := runtimeApp()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	answers, err := rt.Answers(ctx)
	if err != nil {
		return withHint("start answer engine", err)
	}
	conversation, err := rt.Conversation(ctx)
	if err != nil {
		return withHint("start conversation router", err)
	}

	server, err := gateway.New(&gateway.Ports{
		Answers:      answers,
		Conversation: conversation,
		Health:       rt,
	}, gateway.Options{})
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = rt.Config().Server.Addr
	}

	go watchIndex(ctx, rt)

	cmd.Printf("weldsafe gateway listening on %s\n", addr)
	return server.Run(ctx, addr)
}

// watchIndex keeps the served index current until ctx ends.
func watchIndex(ctx context.Context, rt Runtime) {
	if err := rt.Watch(ctx); err != nil {
		logger.Warn("Index hot reload disabled: %v", err)
	}
}
