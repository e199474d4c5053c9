package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	issuedomain "github.com/trash2cash/platform/internal/issue/domain"
)

type SubmitIssueRequest struct {
	UserID      string `json:"user_id"`
	BinID       string `json:"bin_id"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (s *Server) SubmitIssue(c *gin.Context) {
	var req SubmitIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	report, err := s.issues.Submit(c.Request.Context(), issuedomain.SubmitReportRequest{
		UserID:      strings.TrimSpace(req.UserID),
		BinID:       strings.TrimSpace(req.BinID),
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

func (s *Server) ListIssues(c *gin.Context) {
	pageToken, pageSize, err := parsePageParams(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.issues.List(c.Request.Context(), issuedomain.ListReportsRequest{
		UserID:    strings.TrimSpace(c.Query("user_id")),
		BinID:     strings.TrimSpace(c.Query("bin_id")),
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

func (s *Server) GetIssue(c *gin.Context) {
	report, err := s.issues.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

func (s *Server) SetIssueStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	report, err := s.issues.SetStatus(c.Request.Context(), issuedomain.SetReportStatusRequest{
		ID:     c.Param("id"),
		Status: strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAdminAction(c, "issue.status_changed", "issue", report.ID.String(), map[string]any{
		"status": report.Status,
	})
	c.JSON(http.StatusOK, gin.H{"data": report})
}
