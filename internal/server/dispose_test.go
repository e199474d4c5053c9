package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	disposaldomain "github.com/trash2cash/platform/internal/disposal/domain"
)

type fakeDisposalService struct {
	disposeCalls int
	processCalls int
	lastRequest  disposaldomain.CreateDetectionRequest
	lastEventID  snowflake.ID
	receipt      disposaldomain.Receipt
	err          error
}

func (f *fakeDisposalService) CreateDetection(ctx context.Context, req disposaldomain.CreateDetectionRequest) (disposaldomain.DetectionEvent, error) {
	_ = ctx
	_ = req
	return disposaldomain.DetectionEvent{}, nil
}

func (f *fakeDisposalService) ProcessDetection(ctx context.Context, detectionID snowflake.ID) (disposaldomain.Receipt, error) {
	f.processCalls++
	f.lastEventID = detectionID
	_ = ctx
	return f.receipt, f.err
}

func (f *fakeDisposalService) Dispose(ctx context.Context, req disposaldomain.CreateDetectionRequest) (disposaldomain.Receipt, error) {
	f.disposeCalls++
	f.lastRequest = req
	_ = ctx
	return f.receipt, f.err
}

func (f *fakeDisposalService) ListByUser(ctx context.Context, req disposaldomain.ListDisposalsRequest) (disposaldomain.ListDisposalsResponse, error) {
	_ = ctx
	_ = req
	return disposaldomain.ListDisposalsResponse{}, nil
}

func newDisposeRouter(svc disposaldomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	srv := &Server{disposals: svc}
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/api/dispose", srv.Dispose)
	return router
}

func TestDisposeHandlerSettlesDetection(t *testing.T) {
	svc := &fakeDisposalService{
		receipt: disposaldomain.Receipt{PointsEarned: 27, TotalPoints: 127, Level: 2},
	}
	router := newDisposeRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/dispose", bytes.NewBufferString(`{"user_id":"123","bin_id":"456","category":"metal","confidence":92,"weight_kg":2.5}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.disposeCalls != 1 {
		t.Fatalf("expected one dispose call, got %d", svc.disposeCalls)
	}
	if svc.lastRequest.UserID != snowflake.ID(123) || svc.lastRequest.BinID != snowflake.ID(456) {
		t.Fatalf("unexpected ids: user=%d bin=%d", svc.lastRequest.UserID, svc.lastRequest.BinID)
	}
	if svc.lastRequest.Category != "metal" {
		t.Fatalf("unexpected category %q", svc.lastRequest.Category)
	}

	var body struct {
		Data disposaldomain.Receipt `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Data.PointsEarned != 27 || body.Data.TotalPoints != 127 {
		t.Fatalf("unexpected receipt: %+v", body.Data)
	}
}

func TestDisposeHandlerSettlesByEventID(t *testing.T) {
	svc := &fakeDisposalService{
		receipt: disposaldomain.Receipt{PointsEarned: 12, TotalPoints: 12, Level: 1},
	}
	router := newDisposeRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/dispose", bytes.NewBufferString(`{"detection_event_id":"789"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.processCalls != 1 || svc.disposeCalls != 0 {
		t.Fatalf("expected the detection branch, got process=%d dispose=%d", svc.processCalls, svc.disposeCalls)
	}
	if svc.lastEventID != snowflake.ID(789) {
		t.Fatalf("unexpected event id %d", svc.lastEventID)
	}
}

func TestDisposeHandlerRejectsMissingUser(t *testing.T) {
	svc := &fakeDisposalService{}
	router := newDisposeRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/dispose", bytes.NewBufferString(`{"category":"plastic"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.disposeCalls != 0 {
		t.Fatal("expected dispose not to be called")
	}
}

func TestDisposeHandlerMapsAlreadyProcessed(t *testing.T) {
	svc := &fakeDisposalService{err: disposaldomain.ErrAlreadyProcessed}
	router := newDisposeRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/dispose", bytes.NewBufferString(`{"detection_event_id":"789"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", resp.Code, resp.Body.String())
	}
}
