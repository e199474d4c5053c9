package providers

import (
	"github.com/trash2cash/platform/internal/config"
	"github.com/trash2cash/platform/internal/providers/slack"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	fx.Provide(NewSlackFromConfig),
)

func NewSlackFromConfig(cfg config.Config) slack.Provider {
	if cfg.Alerting.SlackWebhookURL == "" {
		return &slack.NoOpProvider{}
	}
	return slack.NewWebhook(slack.WebhookConfig{
		URL:     cfg.Alerting.SlackWebhookURL,
		Timeout: cfg.Alerting.Timeout,
	})
}
