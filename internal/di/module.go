package di

import (
	"go.uber.org/fx"

	"github.com/AliXAbdullah03/nge-brain/internal/adapter/events"
	"github.com/AliXAbdullah03/nge-brain/internal/adapter/webhook"
	"github.com/AliXAbdullah03/nge-brain/internal/app"
	"github.com/AliXAbdullah03/nge-brain/internal/audit"
	"github.com/AliXAbdullah03/nge-brain/internal/config"
	"github.com/AliXAbdullah03/nge-brain/internal/logger"
	"github.com/AliXAbdullah03/nge-brain/internal/pkg/auth"
	"github.com/AliXAbdullah03/nge-brain/internal/server/http/handlers"
	"github.com/AliXAbdullah03/nge-brain/internal/server/http/router"
	"github.com/AliXAbdullah03/nge-brain/internal/storage/postgres"
	"github.com/AliXAbdullah03/nge-brain/internal/telemetry"
	"github.com/AliXAbdullah03/nge-brain/internal/usecase"
)

// Module assembles the application graph. opts are appended last so tests can replace providers.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		telemetry.Module,
		auth.Module,
		postgres.Module,
		events.Module,
		webhook.Module,
		audit.Module,
		usecase.Module,
		fx.Provide(func(f *app.BackOffice) handlers.BackOffice { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
