package hardware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/trash2cash/platform/internal/config"
	"go.uber.org/zap"
)

var (
	ErrDeviceUnreachable = errors.New("device_unreachable")
	ErrCaptureFailed     = errors.New("capture_failed")
)

// DeviceClient talks to the bin controller board over its local HTTP API.
type DeviceClient struct {
	base string
	http *http.Client
	log  *zap.Logger
}

func NewDeviceClient(cfg config.Config, log *zap.Logger) *DeviceClient {
	timeout := cfg.Hardware.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &DeviceClient{
		base: cfg.Hardware.DeviceBaseURL,
		http: &http.Client{Timeout: timeout},
		log:  log.Named("hardware.device"),
	}
}

func (c *DeviceClient) OpenLid(ctx context.Context, serial string) error {
	return c.post(ctx, fmt.Sprintf("%s/bins/%s/lid/open", c.base, serial))
}

func (c *DeviceClient) CloseLid(ctx context.Context, serial string) error {
	return c.post(ctx, fmt.Sprintf("%s/bins/%s/lid/close", c.base, serial))
}

func (c *DeviceClient) OpenCompartment(ctx context.Context, serial, compartment string) error {
	return c.post(ctx, fmt.Sprintf("%s/bins/%s/compartments/%s/open", c.base, serial, compartment))
}

// Capture asks the bin camera for one frame of whatever was just dropped in.
func (c *DeviceClient) Capture(ctx context.Context, serial string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/bins/%s/camera/capture", c.base, serial), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrCaptureFailed, resp.StatusCode)
	}

	frame, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	if len(frame) == 0 {
		return nil, ErrCaptureFailed
	}
	return frame, nil
}

func (c *DeviceClient) post(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnreachable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrDeviceUnreachable, resp.StatusCode)
	}
	return nil
}
