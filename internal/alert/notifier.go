package alert

import (
	"context"
	"fmt"

	"github.com/trash2cash/platform/internal/config"
	"github.com/trash2cash/platform/internal/providers/slack"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	Cfg   config.Config
	Slack slack.Provider
}

// Notifier posts operational alerts about the bin fleet. Delivery failures
// are logged and swallowed; alerting never fails the caller.
type Notifier struct {
	log     *zap.Logger
	slack   slack.Provider
	channel string
	enabled bool
}

func New(p Params) *Notifier {
	return &Notifier{
		log:     p.Log.Named("alert.notifier"),
		slack:   p.Slack,
		channel: p.Cfg.Alerting.SlackChannel,
		enabled: p.Cfg.Alerting.SlackWebhookURL != "",
	}
}

func (n *Notifier) BinFull(ctx context.Context, serial string, location string, fillLevel int) {
	msg := fmt.Sprintf(":wastebasket: bin %s is full (%d%%)", serial, fillLevel)
	if location != "" {
		msg = fmt.Sprintf("%s at %s", msg, location)
	}
	n.post(ctx, msg)
}

func (n *Notifier) BinsOffline(ctx context.Context, count int64, offlineAfter string) {
	n.post(ctx, fmt.Sprintf(":warning: %d bin(s) marked offline, no check-in for %s", count, offlineAfter))
}

func (n *Notifier) post(ctx context.Context, message string) {
	if n == nil || !n.enabled {
		return
	}
	if err := n.slack.PostMessage(ctx, n.channel, message); err != nil {
		n.log.Warn("slack alert delivery failed", zap.Error(err))
	}
}
