package audit

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/AliXAbdullah03/nge-brain/internal/adapter/events"
	"github.com/AliXAbdullah03/nge-brain/internal/adapter/webhook"
	"github.com/AliXAbdullah03/nge-brain/internal/usecase"
)

// Module exposes the audit fan-out as the status engine sink.
var Module = fx.Provide(
	fx.Annotate(newSink, fx.As(new(usecase.AuditSink))),
)

type sinkParams struct {
	fx.In

	Logger    *slog.Logger
	Publisher events.Publisher
	Notifier  webhook.Notifier
}

func newSink(p sinkParams) Multi {
	sinks := Multi{NewLogSink(p.Logger)}
	if _, disabled := p.Publisher.(events.NopPublisher); !disabled {
		sinks = append(sinks, NewPublisherSink(p.Publisher))
	}
	if _, disabled := p.Notifier.(webhook.NopNotifier); !disabled {
		sinks = append(sinks, NewWebhookSink(p.Notifier))
	}
	return sinks
}
