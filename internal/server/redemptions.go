package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	redemptiondomain "github.com/trash2cash/platform/internal/redemption/domain"
)

type SubmitRedemptionRequest struct {
	UserID        string `json:"user_id"`
	Category      string `json:"category"`
	Points        int64  `json:"points"`
	BillProvider  string `json:"bill_provider"`
	BillReference string `json:"bill_reference"`
	CharityName   string `json:"charity_name"`
}

type redemptionDecisionRequest struct {
	Note string `json:"note"`
}

func (s *Server) SubmitRedemption(c *gin.Context) {
	var req SubmitRedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	redemption, err := s.redemptions.Submit(ctx, redemptiondomain.SubmitRequest{
		UserID:        strings.TrimSpace(req.UserID),
		Category:      strings.TrimSpace(req.Category),
		Points:        req.Points,
		BillProvider:  strings.TrimSpace(req.BillProvider),
		BillReference: strings.TrimSpace(req.BillReference),
		CharityName:   strings.TrimSpace(req.CharityName),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordRedemption(ctx, redemption.Status)
	c.JSON(http.StatusOK, gin.H{"data": redemption})
}

func (s *Server) ListRedemptions(c *gin.Context) {
	pageToken, pageSize, err := parsePageParams(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.redemptions.List(c.Request.Context(), redemptiondomain.ListRedemptionsRequest{
		UserID:    strings.TrimSpace(c.Query("user_id")),
		Status:    strings.TrimSpace(c.Query("status")),
		PageToken: pageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRedemption(c *gin.Context) {
	redemption, err := s.redemptions.GetByID(c.Request.Context(), redemptiondomain.GetRedemptionRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": redemption})
}

func (s *Server) ApproveRedemption(c *gin.Context) {
	s.decideRedemption(c, "redemption.approved", s.redemptions.Approve)
}

func (s *Server) RejectRedemption(c *gin.Context) {
	s.decideRedemption(c, "redemption.rejected", s.redemptions.Reject)
}

func (s *Server) CompleteRedemption(c *gin.Context) {
	s.decideRedemption(c, "redemption.completed", s.redemptions.Complete)
}

// decideRedemption runs an admin transition. The note body is optional.
func (s *Server) decideRedemption(c *gin.Context, action string, transition func(ctx context.Context, id, note string) (redemptiondomain.Redemption, error)) {
	var req redemptionDecisionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	ctx := c.Request.Context()
	note := strings.TrimSpace(req.Note)
	redemption, err := transition(ctx, c.Param("id"), note)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordRedemption(ctx, redemption.Status)
	s.recordAdminAction(c, action, "redemption", redemption.ID.String(), map[string]any{
		"status": redemption.Status,
		"points": redemption.Points,
		"note":   note,
	})
	c.JSON(http.StatusOK, gin.H{"data": redemption})
}
