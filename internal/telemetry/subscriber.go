package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	bindomain "github.com/trash2cash/platform/internal/bin/domain"
	"github.com/trash2cash/platform/internal/config"
	obsmetrics "github.com/trash2cash/platform/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// checkinPayload is the heartbeat a bin publishes on bins/{serial}/status.
type checkinPayload struct {
	Status       string    `json:"status"`
	FillLevel    int       `json:"fill_level"`
	BatteryLevel *int      `json:"battery_level"`
	At           time.Time `json:"at"`
}

// Subscriber feeds MQTT bin heartbeats into the bin service.
type Subscriber struct {
	cfg     config.MQTTConfig
	log     *zap.Logger
	bins    bindomain.Service
	metrics *obsmetrics.Metrics
	client  mqtt.Client
}

type Params struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	Bins    bindomain.Service
	Metrics *obsmetrics.Metrics `optional:"true"`
}

// New returns nil when telemetry ingest is disabled.
func New(p Params) *Subscriber {
	if !p.Cfg.MQTT.Enabled {
		return nil
	}

	return &Subscriber{
		cfg:     p.Cfg.MQTT,
		log:     p.Log.Named("telemetry.subscriber"),
		bins:    p.Bins,
		metrics: p.Metrics,
	}
}

func Register(lc fx.Lifecycle, sub *Subscriber) {
	if sub == nil {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return sub.start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			sub.stop()
			return nil
		},
	})
}

func (s *Subscriber) start(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(s.cfg.BrokerURL).
		SetClientID(s.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOrderMatters(false)

	opts.OnConnect = func(client mqtt.Client) {
		token := client.Subscribe(s.cfg.Topic, s.cfg.QoS, s.handleMessage)
		token.Wait()
		if err := token.Error(); err != nil {
			s.log.Error("telemetry subscribe failed", zap.String("topic", s.cfg.Topic), zap.Error(err))
			return
		}
		s.log.Info("telemetry subscribed", zap.String("topic", s.cfg.Topic))
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		s.log.Warn("telemetry connection lost", zap.Error(err))
	}

	s.client = mqtt.NewClient(opts)

	token := s.client.Connect()
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		// Connect retry keeps going in the background.
		return nil
	}
}

func (s *Subscriber) stop() {
	if s.client == nil {
		return
	}
	if token := s.client.Unsubscribe(s.cfg.Topic); token != nil {
		token.WaitTimeout(time.Second)
	}
	s.client.Disconnect(250)
}

func (s *Subscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	serial, err := serialFromTopic(msg.Topic())
	if err != nil {
		s.log.Warn("telemetry topic rejected", zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}

	var payload checkinPayload
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		s.log.Warn("telemetry payload rejected", zap.String("serial", serial), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = s.bins.Checkin(ctx, bindomain.CheckinRequest{
		Serial:       serial,
		Status:       payload.Status,
		FillLevel:    payload.FillLevel,
		BatteryLevel: payload.BatteryLevel,
		At:           payload.At,
	})
	if err != nil {
		s.log.Warn("bin checkin failed", zap.String("serial", serial), zap.Error(err))
		return
	}

	s.metrics.RecordBinCheckin(ctx, payload.Status)
	s.log.Debug("bin checkin",
		zap.String("serial", serial),
		zap.String("status", payload.Status),
		zap.Int("fill_level", payload.FillLevel),
	)
}

// serialFromTopic extracts the bin serial from bins/{serial}/status.
func serialFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "bins" || parts[2] != "status" {
		return "", fmt.Errorf("unexpected topic shape: %s", topic)
	}
	serial := strings.TrimSpace(parts[1])
	if serial == "" || serial == "+" || serial == "#" {
		return "", fmt.Errorf("unexpected topic shape: %s", topic)
	}
	return serial, nil
}
