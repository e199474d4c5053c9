package camera

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trash2cash/platform/internal/clock"
	"github.com/trash2cash/platform/internal/config"
	"go.uber.org/zap"
)

func encodeQRFrame(t *testing.T, payload string) []byte {
	t.Helper()

	matrix, err := qrcode.NewQRCodeWriter().Encode(payload, gozxing.BarcodeFormat_QR_CODE, 256, 256, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, matrix))
	return buf.Bytes()
}

func newTestRegistry(ttl time.Duration, max int, fake *clock.FakeClock) *Registry {
	return NewRegistry(Params{
		Cfg: config.Config{
			Camera: config.CameraConfig{SessionTTL: ttl, MaxSessions: max},
		},
		Log:   zap.NewNop(),
		Clock: fake,
	})
}

func TestDecodeQR_RoundTrip(t *testing.T) {
	payload := "USER:1|CNIC:12345-1234567-1|USERNAME:ali"
	frame := encodeQRFrame(t, payload)

	got, err := DecodeQR(frame)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDecodeQR_RejectsBadInput(t *testing.T) {
	_, err := DecodeQR(nil)
	assert.ErrorIs(t, err, ErrBadImage)

	_, err = DecodeQR([]byte("not an image"))
	assert.ErrorIs(t, err, ErrBadImage)
}

func TestSession_SubmitFrameDecodesOnce(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	registry := newTestRegistry(time.Minute, 4, fake)

	session, err := registry.Open()
	require.NoError(t, err)

	_, done := session.SubmitFrame([]byte("garbage frame"))
	assert.False(t, done)

	payload := "12345-1234567-1"
	decoded, done := session.SubmitFrame(encodeQRFrame(t, payload))
	assert.True(t, done)
	assert.Equal(t, payload, decoded)

	// A later unreadable frame does not clear the decode result.
	decoded, done = session.SubmitFrame([]byte("garbage frame"))
	assert.True(t, done)
	assert.Equal(t, payload, decoded)

	got, ok := session.Decoded()
	assert.True(t, ok)
	assert.Equal(t, payload, got)
}

func TestRegistry_ExpiresSessions(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	registry := newTestRegistry(time.Minute, 4, fake)

	session, err := registry.Open()
	require.NoError(t, err)

	fake.Advance(2 * time.Minute)

	_, err = registry.Get(session.ID)
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = registry.Get(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistry_BoundsLiveSessions(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	registry := newTestRegistry(time.Minute, 2, fake)

	first, err := registry.Open()
	require.NoError(t, err)
	_, err = registry.Open()
	require.NoError(t, err)

	_, err = registry.Open()
	assert.ErrorIs(t, err, ErrTooManySessions)

	registry.Close(first.ID)
	_, err = registry.Open()
	assert.NoError(t, err)

	// Expired sessions free their slot on the next open.
	fake.Advance(2 * time.Minute)
	_, err = registry.Open()
	assert.NoError(t, err)
}
