package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpiface "github.com/virtexvirtuoso/Virtuoso-sub006/internal/interfaces/http"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/quality/tracker"
)

func runMonitor(cmd *cobra.Command, args []string) error {
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")
	logDir, _ := cmd.Flags().GetString("log-dir")

	qt, err := tracker.New(tracker.DefaultConfig(logDir))
	if err != nil {
		return err
	}
	defer qt.Close()

	config := httpiface.DefaultServerConfig()
	config.Host = host
	config.Port = port

	server, err := httpiface.NewServer(config, qt)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	}
}
