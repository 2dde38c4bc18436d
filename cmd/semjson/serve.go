package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	semhttp "github.com/fwojciec/semjson/http"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds the wait for in-flight exports on shutdown.
const shutdownTimeout = 10 * time.Second

// Run executes the serve command. It returns when the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	handler := semhttp.NewHandler(func(fields []string) semhttp.Exporter {
		return deps.NewController(fields)
	}, deps.Logger)

	ln, err := net.Listen("tcp", c.Addr)
	if err != nil {
		return err
	}
	return serve(deps, ln, handler)
}

func serve(deps *Dependencies, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return deps.Ctx },
	}

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.Go(func() error {
		deps.Logger.Info("serving exports", "addr", ln.Addr().String())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
