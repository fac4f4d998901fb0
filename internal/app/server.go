package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
)

// Start serves HTTP and gRPC in the background. The returned channel fires
// once on SIGINT, SIGTERM or SIGHUP.
func (a *App) Start() <-chan struct{} {
	terminate := make(chan struct{})

	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			fatal("http server stopped unexpectedly", err)
		}
	}()

	go func() {
		addr := a.config.GetString("server.address.grpc")
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			fatal("failed to listen grpc server on "+addr, err)
		}

		slog.Info("grpc server listening", "address", addr)
		if err := a.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			fatal("grpc server stopped unexpectedly", err)
		}
	}()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

		received := <-sig
		slog.Info("shutdown signal received", "signal", received.String())
		close(terminate)
	}()

	return terminate
}

// Stop stops accepting work, waits for background tasks, then closes
// resources newest first so modules drain before config and telemetry go.
func (a *App) Stop(ctx context.Context) {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to shut down http server", "error", err)
	}
	a.health.Shutdown()
	a.grpcServer.GracefulStop()

	a.cancel()

	slog.InfoContext(ctx, "waiting for background tasks")
	if err := a.tasks.Wait(); err != nil {
		slog.ErrorContext(ctx, "background tasks failed", "error", err)
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resource", "name", c.name, "error", err)
		}
	}
	a.closers = nil

	slog.InfoContext(ctx, "application stopped")
}
