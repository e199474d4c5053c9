package hardware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	accountdomain "github.com/trash2cash/platform/internal/account/domain"
	binrepository "github.com/trash2cash/platform/internal/bin/repository"
	binservice "github.com/trash2cash/platform/internal/bin/service"
	"github.com/trash2cash/platform/internal/classifier"
	"github.com/trash2cash/platform/internal/clock"
	"github.com/trash2cash/platform/internal/config"
	bindomain "github.com/trash2cash/platform/internal/bin/domain"
	disposaldomain "github.com/trash2cash/platform/internal/disposal/domain"
	disposalrepository "github.com/trash2cash/platform/internal/disposal/repository"
	disposalservice "github.com/trash2cash/platform/internal/disposal/service"
	"github.com/trash2cash/platform/internal/points"
	profiledomain "github.com/trash2cash/platform/internal/profile/domain"
	profilerepository "github.com/trash2cash/platform/internal/profile/repository"
	profileservice "github.com/trash2cash/platform/internal/profile/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeDevice records the device API calls a disposal cycle makes.
type fakeDevice struct {
	mu          sync.Mutex
	calls       []string
	failCapture bool
}

func (d *fakeDevice) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		defer d.mu.Unlock()

		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/camera/capture"):
			d.calls = append(d.calls, "capture")
			if d.failCapture {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte("frame-bytes"))
		case strings.HasSuffix(path, "/lid/open"):
			d.calls = append(d.calls, "lid/open")
		case strings.HasSuffix(path, "/lid/close"):
			d.calls = append(d.calls, "lid/close")
		case strings.Contains(path, "/compartments/"):
			parts := strings.Split(path, "/")
			d.calls = append(d.calls, "compartment/"+parts[len(parts)-2])
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func (d *fakeDevice) recorded() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

type fakeClassifier struct {
	result classifier.Result
	err    error
}

func (c *fakeClassifier) Classify(context.Context, []byte) (classifier.Result, error) {
	return c.result, c.err
}

type fixture struct {
	controller *Controller
	device     *fakeDevice
	db         *gorm.DB
	node       *snowflake.Node
	user       accountdomain.User
	bin        bindomain.Bin
}

func newFixture(t *testing.T, cls classifier.Classifier, mutate func(*config.Config)) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&bindomain.Bin{},
		&disposaldomain.DetectionEvent{},
		&disposaldomain.DisposalRecord{},
		&profiledomain.UserProfile{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	device := &fakeDevice{}
	server := httptest.NewServer(device.handler())
	t.Cleanup(server.Close)

	cfg := config.Config{
		Points: config.PointsConfig{
			Rates: map[string]int64{
				"plastic":   20,
				"paper":     15,
				"metal":     25,
				"cardboard": 15,
				"trash":     5,
			},
			DefaultRate: 10,
			MinAward:    5,
		},
		Hardware: config.HardwareConfig{
			DeviceBaseURL:            server.URL,
			RequestTimeout:           time.Second,
			FallbackOnCaptureFailure: true,
			FallbackCategory:         "plastic",
			FallbackConfidence:       85.0,
		},
	}
	if mutate != nil {
		mutate(&cfg)
	}

	log := zap.NewNop()
	fakeClock := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	bins := binservice.New(binservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  binrepository.Provide(),
	})
	profiles := profileservice.New(profileservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  profilerepository.Provide(),
	})
	disposals := disposalservice.New(disposalservice.Params{
		DB:       db,
		Log:      log,
		GenID:    node,
		Clock:    fakeClock,
		Calc:     points.NewCalculator(cfg.Points),
		Repo:     disposalrepository.Provide(),
		Profiles: profilerepository.Provide(),
	})

	controller := NewController(Params{
		Cfg:        cfg,
		Log:        log,
		Device:     NewDeviceClient(cfg, log),
		Classifier: cls,
		Bins:       bins,
		Profiles:   profiles,
		Disposals:  disposals,
	})

	// The shared-cache DB persists across tests in this package, so serials
	// must not collide.
	bin, err := bins.Register(context.Background(), bindomain.RegisterBinRequest{
		Serial:   "BIN-" + node.Generate().String(),
		Location: "F-8 Markaz",
	})
	require.NoError(t, err)

	user := accountdomain.User{
		ID:       node.Generate(),
		Username: "ali",
		CNIC:     "12345-1234567-1",
	}

	return &fixture{
		controller: controller,
		device:     device,
		db:         db,
		node:       node,
		user:       user,
		bin:        bin,
	}
}

func TestTrigger_FullCycle(t *testing.T) {
	f := newFixture(t, &fakeClassifier{
		result: classifier.Result{Category: "metal", Confidence: 92.5, WeightKg: 2.4},
	}, nil)

	receipt, err := f.controller.Trigger(context.Background(), TriggerRequest{
		BinSerial: f.bin.Serial,
		User:      f.user,
	})
	require.NoError(t, err)

	assert.Equal(t, "metal", receipt.Record.Category)
	assert.Equal(t, int64(27), receipt.PointsEarned)
	assert.Equal(t, int64(27), receipt.TotalPoints)

	assert.Equal(t, []string{
		"lid/open",
		"capture",
		"compartment/plastic",
		"lid/close",
	}, f.device.recorded())

	var profile profiledomain.UserProfile
	require.NoError(t, f.db.Take(&profile, "user_id = ?", f.user.ID).Error)
	assert.Equal(t, int64(27), profile.TotalPoints)
	assert.Equal(t, int64(1), profile.TotalDisposals)
}

func TestTrigger_CardboardRoutesToPaper(t *testing.T) {
	f := newFixture(t, &fakeClassifier{
		result: classifier.Result{Category: "cardboard", Confidence: 88.0},
	}, nil)

	receipt, err := f.controller.Trigger(context.Background(), TriggerRequest{
		BinSerial: f.bin.Serial,
		User:      f.user,
	})
	require.NoError(t, err)

	assert.Equal(t, "cardboard", receipt.Record.Category)
	assert.Contains(t, f.device.recorded(), "compartment/paper")
}

func TestTrigger_CaptureFailureFallsBack(t *testing.T) {
	f := newFixture(t, &fakeClassifier{
		result: classifier.Result{Category: "metal", Confidence: 92.5},
	}, nil)
	f.device.failCapture = true

	receipt, err := f.controller.Trigger(context.Background(), TriggerRequest{
		BinSerial: f.bin.Serial,
		User:      f.user,
	})
	require.NoError(t, err)

	assert.Equal(t, "plastic", receipt.Record.Category)
	assert.Equal(t, int64(20), receipt.PointsEarned)

	var event disposaldomain.DetectionEvent
	require.NoError(t, f.db.Take(&event, "id = ?", receipt.Record.DetectionEventID).Error)
	assert.InDelta(t, 85.0, event.Confidence, 0.001)
}

func TestTrigger_CaptureFailureWithoutFallback(t *testing.T) {
	f := newFixture(t, &fakeClassifier{}, func(cfg *config.Config) {
		cfg.Hardware.FallbackOnCaptureFailure = false
	})
	f.device.failCapture = true

	_, err := f.controller.Trigger(context.Background(), TriggerRequest{
		BinSerial: f.bin.Serial,
		User:      f.user,
	})
	assert.ErrorIs(t, err, ErrCaptureFailed)

	var count int64
	require.NoError(t, f.db.Model(&disposaldomain.DisposalRecord{}).Where("user_id = ?", f.user.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// The lid still closes after a failed cycle.
	assert.Contains(t, f.device.recorded(), "lid/close")
}

func TestTrigger_LowConfidenceStillRoutes(t *testing.T) {
	f := newFixture(t, &fakeClassifier{
		result: classifier.Result{Category: "paper", Confidence: 41.0},
		err:    classifier.ErrLowConfidence,
	}, nil)

	receipt, err := f.controller.Trigger(context.Background(), TriggerRequest{
		BinSerial: f.bin.Serial,
		User:      f.user,
	})
	require.NoError(t, err)
	assert.Equal(t, "paper", receipt.Record.Category)
}

func TestTrigger_BusyBin(t *testing.T) {
	f := newFixture(t, &fakeClassifier{
		result: classifier.Result{Category: "plastic", Confidence: 90.0},
	}, nil)

	require.True(t, f.controller.tryAcquire(f.bin.Serial))
	defer f.controller.release(f.bin.Serial)

	_, err := f.controller.Trigger(context.Background(), TriggerRequest{
		BinSerial: f.bin.Serial,
		User:      f.user,
	})
	assert.ErrorIs(t, err, ErrBinBusy)
}

func TestTrigger_InactiveBin(t *testing.T) {
	f := newFixture(t, &fakeClassifier{
		result: classifier.Result{Category: "plastic", Confidence: 90.0},
	}, nil)

	_, err := f.controller.bins.SetStatus(context.Background(), bindomain.SetStatusRequest{
		ID:     f.bin.ID.String(),
		Status: bindomain.StatusMaintenance,
	})
	require.NoError(t, err)

	_, err = f.controller.Trigger(context.Background(), TriggerRequest{
		BinSerial: f.bin.Serial,
		User:      f.user,
	})
	assert.ErrorIs(t, err, ErrBinUnavailable)
}
