package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/trash2cash/platform/internal/audit/domain"
)

// recordAdminAction writes an audit entry for an admin mutation. Audit
// failures never fail the request; the service logs them.
func (s *Server) recordAdminAction(c *gin.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.audits == nil {
		return
	}
	_ = s.audits.Record(c.Request.Context(), auditdomain.RecordRequest{
		ActorType:  auditdomain.ActorTypeAdmin,
		ActorID:    strings.TrimSpace(c.GetHeader("X-Admin-Id")),
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   metadata,
	})
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	pageToken, pageSize, err := parsePageParams(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.audits.List(c.Request.Context(), auditdomain.ListAuditLogsRequest{
		Action:     strings.TrimSpace(c.Query("action")),
		TargetType: strings.TrimSpace(c.Query("target_type")),
		TargetID:   strings.TrimSpace(c.Query("target_id")),
		ActorType:  strings.TrimSpace(c.Query("actor_type")),
		PageToken:  pageToken,
		PageSize:   pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
