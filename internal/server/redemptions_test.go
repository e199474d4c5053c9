package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	redemptiondomain "github.com/trash2cash/platform/internal/redemption/domain"
)

type fakeRedemptionService struct {
	submitCalls  int
	approveCalls int
	lastSubmit   redemptiondomain.SubmitRequest
	lastID       string
	lastNote     string
	redemption   redemptiondomain.Redemption
	err          error
}

func (f *fakeRedemptionService) Submit(ctx context.Context, req redemptiondomain.SubmitRequest) (redemptiondomain.Redemption, error) {
	f.submitCalls++
	f.lastSubmit = req
	_ = ctx
	return f.redemption, f.err
}

func (f *fakeRedemptionService) GetByID(ctx context.Context, req redemptiondomain.GetRedemptionRequest) (redemptiondomain.Redemption, error) {
	_ = ctx
	_ = req
	return f.redemption, f.err
}

func (f *fakeRedemptionService) List(ctx context.Context, req redemptiondomain.ListRedemptionsRequest) (redemptiondomain.ListRedemptionsResponse, error) {
	_ = ctx
	_ = req
	return redemptiondomain.ListRedemptionsResponse{}, nil
}

func (f *fakeRedemptionService) Approve(ctx context.Context, id, note string) (redemptiondomain.Redemption, error) {
	f.approveCalls++
	f.lastID = id
	f.lastNote = note
	_ = ctx
	return f.redemption, f.err
}

func (f *fakeRedemptionService) Reject(ctx context.Context, id, note string) (redemptiondomain.Redemption, error) {
	f.lastID = id
	f.lastNote = note
	_ = ctx
	return f.redemption, f.err
}

func (f *fakeRedemptionService) Complete(ctx context.Context, id, note string) (redemptiondomain.Redemption, error) {
	f.lastID = id
	f.lastNote = note
	_ = ctx
	return f.redemption, f.err
}

func newRedemptionRouter(svc redemptiondomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	srv := &Server{redemptions: svc}
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/api/redemptions", srv.SubmitRedemption)
	router.POST("/admin/redemptions/:id/approve", srv.ApproveRedemption)
	return router
}

func TestSubmitRedemptionHandler(t *testing.T) {
	svc := &fakeRedemptionService{
		redemption: redemptiondomain.Redemption{Status: redemptiondomain.StatusPending, Points: 100},
	}
	router := newRedemptionRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/redemptions", bytes.NewBufferString(`{"user_id":"123","category":"electricity","points":100,"bill_provider":"IESCO","bill_reference":"0001"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.submitCalls != 1 {
		t.Fatalf("expected one submit call, got %d", svc.submitCalls)
	}
	if svc.lastSubmit.Category != "electricity" || svc.lastSubmit.BillProvider != "IESCO" {
		t.Fatalf("unexpected submit request: %+v", svc.lastSubmit)
	}

	var body struct {
		Data redemptiondomain.Redemption `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Data.Status != redemptiondomain.StatusPending {
		t.Fatalf("unexpected status %q", body.Data.Status)
	}
}

func TestSubmitRedemptionHandlerMapsBelowMinimum(t *testing.T) {
	svc := &fakeRedemptionService{err: redemptiondomain.ErrBelowMinimum}
	router := newRedemptionRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/redemptions", bytes.NewBufferString(`{"user_id":"123","points":10}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", resp.Code, resp.Body.String())
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Error.Errors) != 1 || body.Error.Errors[0].Code != "below_minimum_points" {
		t.Fatalf("unexpected error payload: %+v", body.Error)
	}
}

func TestApproveRedemptionHandlerForwardsNote(t *testing.T) {
	svc := &fakeRedemptionService{
		redemption: redemptiondomain.Redemption{Status: redemptiondomain.StatusApproved},
	}
	router := newRedemptionRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/admin/redemptions/42/approve", bytes.NewBufferString(`{"note":"verified against ledger"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.approveCalls != 1 {
		t.Fatalf("expected one approve call, got %d", svc.approveCalls)
	}
	if svc.lastID != "42" || svc.lastNote != "verified against ledger" {
		t.Fatalf("unexpected transition args: id=%q note=%q", svc.lastID, svc.lastNote)
	}
}

func TestApproveRedemptionHandlerEmptyBody(t *testing.T) {
	svc := &fakeRedemptionService{
		redemption: redemptiondomain.Redemption{Status: redemptiondomain.StatusApproved},
	}
	router := newRedemptionRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/admin/redemptions/42/approve", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastNote != "" {
		t.Fatalf("expected empty note, got %q", svc.lastNote)
	}
}

func TestApproveRedemptionHandlerMapsInvalidTransition(t *testing.T) {
	svc := &fakeRedemptionService{err: redemptiondomain.ErrInvalidTransition}
	router := newRedemptionRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/admin/redemptions/42/approve", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", resp.Code, resp.Body.String())
	}
}
