package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-oidc-portal/cloudconnections"
	"github.com/jrsteele09/go-oidc-portal/directory"
	"github.com/jrsteele09/go-oidc-portal/internal/config"
	"github.com/jrsteele09/go-oidc-portal/internal/logging"
	"github.com/jrsteele09/go-oidc-portal/provider"
	"github.com/jrsteele09/go-oidc-portal/server"
	"github.com/jrsteele09/go-oidc-portal/users"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load(config.GetEnv("CONFIG_FILE", ""))
	if err != nil {
		return err
	}
	logging.Setup(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName())

	handler, err := newHandler(c)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(server) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

func newHandler(c config.Config) (*server.Server, error) {
	oidcProvider, err := provider.New(provider.ConfigFrom(c))
	if err != nil {
		return nil, err
	}
	return server.New(c, server.Deps{
		Provider:    oidcProvider,
		Directory:   directory.NewHTTPClient(c.GetDirectoryURL(), c.GetDirectoryTimeout()),
		Connections: cloudconnections.NewInMemoryRepo(cloudconnections.DefaultConnections()),
		KnownUsers:  users.NewInMemoryKnownUsersRepo(),
	})
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
