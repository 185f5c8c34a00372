package webhook

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/AliXAbdullah03/nge-brain/internal/config"
)

// Module exposes the status webhook notifier to fx graph.
var Module = fx.Provide(newNotifier)

type notifierParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newNotifier(p notifierParams) (Notifier, error) {
	if p.Config.StatusWebhookURL == "" {
		return NopNotifier{}, nil
	}
	return NewHTTPClient(p.Config.StatusWebhookURL, p.Logger)
}
