package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	notificationdomain "github.com/trash2cash/platform/internal/notification/domain"
)

func (s *Server) ListNotifications(c *gin.Context) {
	pageToken, pageSize, err := parsePageParams(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	unreadOnly, err := parseOptionalBool(c.Query("unread_only"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.notifications.ListByUser(c.Request.Context(), notificationdomain.ListNotificationsRequest{
		UserID:     strings.TrimSpace(c.Query("user_id")),
		UnreadOnly: unreadOnly != nil && *unreadOnly,
		PageToken:  pageToken,
		PageSize:   pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkNotificationRead(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		userID = strings.TrimSpace(req.UserID)
	}

	if err := s.notifications.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) MarkAllNotificationsRead(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		userID = strings.TrimSpace(req.UserID)
	}

	updated, err := s.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"updated": updated}})
}
