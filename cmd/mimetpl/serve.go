package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/inbucket/mimetpl/pkg/config"
	"github.com/inbucket/mimetpl/pkg/server"
	"github.com/rs/zerolog/log"
)

type serveCmd struct {
	pidfile string
}

func (*serveCmd) Name() string {
	return "serve"
}

func (*serveCmd) Synopsis() string {
	return "serve the REST API"
}

func (*serveCmd) Usage() string {
	return `serve [flags]:
	serve POST /api/v1/interpret until SIGINT or SIGTERM
`
}

func (s *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.pidfile, "pidfile", "", "Write our PID into the specified file.")
}

func (s *serveCmd) Execute(
	_ context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	conf := rootConfig(args)
	startupLog := log.With().Str("phase", "startup").Logger()

	// Setup signal handler.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	startupLog.Info().Str("version", config.Version).Str("buildDate", config.BuildDate).
		Msg("mimetpl starting")

	// Write pidfile if requested.
	if s.pidfile != "" {
		pidf, err := os.Create(s.pidfile)
		if err != nil {
			startupLog.Error().Err(err).Str("path", s.pidfile).Msg("Failed to create pidfile")
			return subcommands.ExitFailure
		}
		fmt.Fprintf(pidf, "%v\n", os.Getpid())
		if err := pidf.Close(); err != nil {
			startupLog.Error().Err(err).Str("path", s.pidfile).Msg("Failed to close pidfile")
			return subcommands.ExitFailure
		}
	}
	defer removePIDFile(s.pidfile)

	// Configure and start services.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	shutdownChan := make(chan bool)
	svcs, err := server.Prod(rootCtx, shutdownChan, conf)
	if err != nil {
		rootCancel()
		startupLog.Error().Err(err).Msg("Fatal error during startup")
		return subcommands.ExitFailure
	}

	// Loop forever waiting for signals or shutdown channel.
	status := subcommands.ExitSuccess
signalLoop:
	for {
		select {
		case sig := <-sigChan:
			log.Info().Str("phase", "shutdown").Str("signal", sig.String()).
				Msg("Received signal, shutting down")
			break signalLoop
		case <-shutdownChan:
			status = subcommands.ExitFailure
			break signalLoop
		}
	}
	rootCancel()

	// Wait for active requests to finish.
	select {
	case <-svcs.WebServer.Done():
	case <-time.After(15 * time.Second):
		log.Error().Str("phase", "shutdown").Msg("Clean shutdown took too long, forcing exit")
		status = subcommands.ExitFailure
	}
	return status
}

// removePIDFile removes the PID file if created.
func removePIDFile(pidfile string) {
	if pidfile != "" {
		if err := os.Remove(pidfile); err != nil {
			log.Error().Str("phase", "shutdown").Err(err).Str("path", pidfile).
				Msg("Failed to remove pidfile")
		}
	}
}
