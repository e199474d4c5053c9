package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	bindomain "github.com/trash2cash/platform/internal/bin/domain"
	"github.com/trash2cash/platform/internal/config"
	"go.uber.org/zap"
)

type binServiceMock struct {
	mock.Mock
}

func (m *binServiceMock) Register(ctx context.Context, req bindomain.RegisterBinRequest) (bindomain.Bin, error) {
	return bindomain.Bin{}, nil
}
func (m *binServiceMock) GetByID(ctx context.Context, req bindomain.GetBinRequest) (bindomain.Bin, error) {
	return bindomain.Bin{}, nil
}
func (m *binServiceMock) GetBySerial(ctx context.Context, serial string) (bindomain.Bin, error) {
	return bindomain.Bin{}, nil
}
func (m *binServiceMock) List(ctx context.Context, req bindomain.ListBinsRequest) ([]bindomain.Bin, error) {
	return nil, nil
}
func (m *binServiceMock) SetStatus(ctx context.Context, req bindomain.SetStatusRequest) (bindomain.Bin, error) {
	return bindomain.Bin{}, nil
}
func (m *binServiceMock) Checkin(ctx context.Context, req bindomain.CheckinRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 1 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

func newTestSubscriber(bins bindomain.Service) *Subscriber {
	return &Subscriber{
		cfg:  config.MQTTConfig{Topic: "bins/+/status"},
		log:  zap.NewNop(),
		bins: bins,
	}
}

func TestSerialFromTopic(t *testing.T) {
	tests := []struct {
		topic   string
		serial  string
		wantErr bool
	}{
		{topic: "bins/BIN-001/status", serial: "BIN-001"},
		{topic: "bins/abc123/status", serial: "abc123"},
		{topic: "bins/status", wantErr: true},
		{topic: "bins//status", wantErr: true},
		{topic: "bins/+/status", wantErr: true},
		{topic: "devices/BIN-001/status", wantErr: true},
		{topic: "bins/BIN-001/telemetry", wantErr: true},
	}

	for _, tc := range tests {
		serial, err := serialFromTopic(tc.topic)
		if tc.wantErr {
			assert.Error(t, err, tc.topic)
			continue
		}
		assert.NoError(t, err, tc.topic)
		assert.Equal(t, tc.serial, serial)
	}
}

func TestHandleMessage_ForwardsCheckin(t *testing.T) {
	bins := &binServiceMock{}
	sub := newTestSubscriber(bins)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	battery := 88

	bins.On("Checkin", mock.Anything, bindomain.CheckinRequest{
		Serial:       "BIN-001",
		Status:       "active",
		FillLevel:    62,
		BatteryLevel: &battery,
		At:           at,
	}).Return(nil).Once()

	sub.handleMessage(nil, &fakeMessage{
		topic:   "bins/BIN-001/status",
		payload: []byte(`{"status":"active","fill_level":62,"battery_level":88,"at":"2025-06-01T12:00:00Z"}`),
	})

	bins.AssertExpectations(t)
}

func TestHandleMessage_DropsGarbage(t *testing.T) {
	bins := &binServiceMock{}
	sub := newTestSubscriber(bins)

	sub.handleMessage(nil, &fakeMessage{
		topic:   "bins/BIN-001/status",
		payload: []byte("not json"),
	})
	sub.handleMessage(nil, &fakeMessage{
		topic:   "weird/topic",
		payload: []byte(`{"status":"active"}`),
	})

	bins.AssertNotCalled(t, "Checkin", mock.Anything, mock.Anything)
}
