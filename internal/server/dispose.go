package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	disposaldomain "github.com/trash2cash/platform/internal/disposal/domain"
)

type DisposeRequest struct {
	// DetectionEventID settles a previously recorded detection. When empty,
	// the remaining fields describe a new detection settled in one shot.
	DetectionEventID string  `json:"detection_event_id"`
	UserID           string  `json:"user_id"`
	BinID            string  `json:"bin_id"`
	Category         string  `json:"category"`
	Confidence       float64 `json:"confidence"`
	WeightKg         float64 `json:"weight_kg"`
	ImageRef         string  `json:"image_ref"`
}

func (s *Server) Dispose(c *gin.Context) {
	var req DisposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()

	if eventID := strings.TrimSpace(req.DetectionEventID); eventID != "" {
		id, err := snowflake.ParseString(eventID)
		if err != nil || id == 0 {
			AbortWithError(c, disposaldomain.ErrInvalidID)
			return
		}
		receipt, err := s.disposals.ProcessDetection(ctx, id)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": receipt})
		return
	}

	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil || userID == 0 {
		AbortWithError(c, disposaldomain.ErrInvalidUser)
		return
	}

	var binID snowflake.ID
	if trimmed := strings.TrimSpace(req.BinID); trimmed != "" {
		binID, err = snowflake.ParseString(trimmed)
		if err != nil {
			AbortWithError(c, disposaldomain.ErrInvalidID)
			return
		}
	}

	if allowed, err := s.limiter.AllowUser(ctx, userID.String()); err != nil {
		AbortWithError(c, err)
		return
	} else if !allowed {
		AbortWithError(c, ErrRateLimited)
		return
	}

	receipt, err := s.disposals.Dispose(ctx, disposaldomain.CreateDetectionRequest{
		UserID:     userID,
		BinID:      binID,
		Category:   strings.TrimSpace(req.Category),
		Confidence: req.Confidence,
		WeightKg:   req.WeightKg,
		ImageRef:   strings.TrimSpace(req.ImageRef),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": receipt})
}

func (s *Server) ListDisposals(c *gin.Context) {
	pageToken, pageSize, err := parsePageParams(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.disposals.ListByUser(c.Request.Context(), disposaldomain.ListDisposalsRequest{
		UserID:    strings.TrimSpace(c.Query("user_id")),
		PageToken: pageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
