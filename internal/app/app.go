package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/AliXAbdullah03/nge-brain/internal/config"
	"github.com/AliXAbdullah03/nge-brain/internal/storage/postgres"
	"github.com/AliXAbdullah03/nge-brain/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewBackOffice,
		newHTTPServer,
		newAutoBatcher,
		func(s *postgres.Storage) HealthChecker { return s },
		func(f *BackOffice) AdminBootstrapper { return f },
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:              p.Config.RunAddress,
		Handler:           p.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

type workerParams struct {
	fx.In

	Facade *BackOffice
	Config *config.Config
	Logger *slog.Logger
}

func newAutoBatcher(p workerParams) *worker.AutoBatcher {
	return worker.NewAutoBatcher(
		p.Facade,
		p.Config.AutoBatchInterval,
		p.Config.AutoBatchSize,
		p.Config.WorkerPoolSize,
		p.Logger,
	)
}

// AdminBootstrapper creates the initial Super Admin account.
type AdminBootstrapper interface {
	EnsureAdmin(ctx context.Context, login, password string) (bool, error)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.AutoBatcher
	Config     *config.Config
	Admin      AdminBootstrapper `optional:"true"`
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if p.Admin != nil && p.Config.AdminLogin != "" {
				created, err := p.Admin.EnsureAdmin(ctx, p.Config.AdminLogin, p.Config.AdminPassword)
				if err != nil {
					return err
				}
				if created {
					p.Logger.Info("super admin account created", slog.String("login", p.Config.AdminLogin))
				}
			}

			p.Logger.Info("starting nge-brain", slog.String("addr", p.Server.Addr))
			p.Worker.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Worker.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("nge-brain stopped")
			return nil
		},
	})
}
