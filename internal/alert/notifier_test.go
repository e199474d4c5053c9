package alert

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trash2cash/platform/internal/config"
	"go.uber.org/zap"
)

type capturingProvider struct {
	channels []string
	messages []string
	err      error
}

func (p *capturingProvider) PostMessage(ctx context.Context, channel string, message string) error {
	p.channels = append(p.channels, channel)
	p.messages = append(p.messages, message)
	return p.err
}

func newTestNotifier(provider *capturingProvider, webhookURL string) *Notifier {
	cfg := config.Config{}
	cfg.Alerting.SlackWebhookURL = webhookURL
	cfg.Alerting.SlackChannel = "#ops-bins"
	return New(Params{Log: zap.NewNop(), Cfg: cfg, Slack: provider})
}

func TestBinFullPostsToConfiguredChannel(t *testing.T) {
	provider := &capturingProvider{}
	n := newTestNotifier(provider, "https://hooks.slack.example/T1/B1")

	n.BinFull(context.Background(), "BIN-001", "F-7 Markaz", 95)

	require.Len(t, provider.messages, 1)
	require.Equal(t, "#ops-bins", provider.channels[0])
	require.Contains(t, provider.messages[0], "BIN-001")
	require.Contains(t, provider.messages[0], "95%")
	require.Contains(t, provider.messages[0], "F-7 Markaz")
}

func TestBinsOfflineMessage(t *testing.T) {
	provider := &capturingProvider{}
	n := newTestNotifier(provider, "https://hooks.slack.example/T1/B1")

	n.BinsOffline(context.Background(), 3, "10m0s")

	require.Len(t, provider.messages, 1)
	require.Contains(t, provider.messages[0], "3 bin(s)")
	require.Contains(t, provider.messages[0], "10m0s")
}

func TestDisabledNotifierPostsNothing(t *testing.T) {
	provider := &capturingProvider{}
	n := newTestNotifier(provider, "")

	n.BinFull(context.Background(), "BIN-001", "", 95)
	n.BinsOffline(context.Background(), 2, "10m0s")

	require.Empty(t, provider.messages)
}

func TestNilNotifierIsSafe(t *testing.T) {
	var n *Notifier
	n.BinFull(context.Background(), "BIN-001", "", 95)
	n.BinsOffline(context.Background(), 1, "10m0s")
}

func TestDeliveryFailureIsSwallowed(t *testing.T) {
	provider := &capturingProvider{err: context.DeadlineExceeded}
	n := newTestNotifier(provider, "https://hooks.slack.example/T1/B1")

	n.BinFull(context.Background(), "BIN-002", "", 91)

	require.Len(t, provider.messages, 1)
	require.True(t, strings.Contains(provider.messages[0], "BIN-002"))
}
