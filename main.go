package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"assistant-chat/backend"
	"assistant-chat/chat"
	"assistant-chat/config"
	"assistant-chat/keys"
	"assistant-chat/logger"
	"assistant-chat/mockapi"
	"assistant-chat/server"
	"assistant-chat/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type flags struct {
	envFile string
	debug   bool
	api     string
	listen  string
	hostKey string
	addr    string
	topic   string
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:           "assistant-chat",
		Short:         "Terminal client for the assistant chat service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocal(cmd.Context(), f)
		},
	}
	root.PersistentFlags().StringVar(&f.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().BoolVar(&f.debug, "debug", false, "log at debug level")
	root.PersistentFlags().StringVar(&f.api, "api", "", "backend base URL (overrides CHAT_API_BASE)")
	root.Flags().StringVar(&f.topic, "topic", "", "topic selected when the chat opens")

	run := &cobra.Command{
		Use:   "run",
		Short: "Open the chat UI in this terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocal(cmd.Context(), f)
		},
	}
	run.Flags().StringVar(&f.topic, "topic", "", "topic selected when the chat opens")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat UI to SSH clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), f)
		},
	}
	serve.Flags().StringVar(&f.listen, "listen", "", "SSH listen address (overrides CHAT_SSH_LISTEN)")
	serve.Flags().StringVar(&f.hostKey, "host-key", "", "host key path (overrides CHAT_HOST_KEY)")

	mock := &cobra.Command{
		Use:   "mock-backend",
		Short: "Run an in-memory stand-in for the chat service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMockBackend(cmd.Context(), f)
		},
	}
	mock.Flags().StringVar(&f.addr, "addr", "", "HTTP listen address (overrides CHAT_MOCK_ADDR)")

	root.AddCommand(run, serve, mock)
	return root
}

// loadConfig reads .env and the environment, then applies flag overrides
func loadConfig(f *flags) (*config.Config, error) {
	if err := config.LoadDotenv(f.envFile); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, continuing with the environment only\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if f.api != "" {
		cfg.APIBase = f.api
	}
	if f.listen != "" {
		cfg.SSHListen = f.listen
	}
	if f.hostKey != "" {
		cfg.HostKeyPath = f.hostKey
	}
	if f.addr != "" {
		cfg.MockAddr = f.addr
	}
	if f.debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func newBackend(cfg *config.Config) (*backend.Client, error) {
	return backend.NewClient(cfg.APIBase, backend.WithTimeout(cfg.HTTPTimeout))
}

func runLocal(ctx context.Context, f *flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	topic, err := session.ParseTopic(f.topic)
	if err != nil {
		return err
	}

	closer, err := logger.SetupFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	client, err := newBackend(cfg)
	if err != nil {
		return err
	}

	log.Info().Str("api", client.BaseURL()).Msg("starting chat UI")
	return chat.Run(ctx, client, chat.Options{AltScreen: true, Topic: topic})
}

func runServe(ctx context.Context, f *flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	if err := logger.SetupConsole(cfg.LogLevel); err != nil {
		return err
	}

	client, err := newBackend(cfg)
	if err != nil {
		return err
	}

	hostKey, err := keys.LoadOrGenerateHostKey(cfg.HostKeyPath)
	if err != nil {
		return fmt.Errorf("host key: %w", err)
	}

	srv, err := server.NewSSHServer(cfg.SSHListen, hostKey, client)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.SSHListen, err)
	}

	log.Info().Str("api", client.BaseURL()).Msg("serving chat UI over SSH")
	return srv.Start(ctx)
}

func runMockBackend(ctx context.Context, f *flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	if err := logger.SetupConsole(cfg.LogLevel); err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.MockAddr,
		Handler:           mockapi.NewRouter(mockapi.New(mockapi.NewStore())),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.MockAddr).Msg("stub backend listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("stub backend stopped")
	return nil
}
