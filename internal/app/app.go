// Package app assembles the service: configuration, shared libraries, the
// HTTP and gRPC servers and the feature modules, plus their shutdown order.
package app

import (
	"context"
	"net/http"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"

	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgconfig"
	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkglog"
	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgrouter"
	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgroutine"
	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgtelemetry"
	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkguid"
)

type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	config pkgconfig.Config

	uuid      pkguid.StringID
	snowflake pkguid.NumberID
	tasks     *pkgroutine.Manager
	metrics   *pkgtelemetry.Metrics

	router     *pkgrouter.Router
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *grpchealth.Server

	// closed last-in first-out by Stop
	closers []namedCloser
}

type namedCloser struct {
	name string
	fn   func(context.Context) error
}

func New() *App {
	pkglog.InitLogging()

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{ctx: ctx, cancel: cancel}

	app.initConfig()
	app.initLibraries()
	app.initHTTPServer()
	app.initGRPCServer()
	app.initModules()

	return app
}

func (a *App) addCloser(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, namedCloser{name: name, fn: fn})
}
