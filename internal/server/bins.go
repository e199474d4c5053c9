package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	bindomain "github.com/trash2cash/platform/internal/bin/domain"
)

type RegisterBinRequest struct {
	Serial   string                 `json:"serial"`
	Location string                 `json:"location"`
	Metadata map[string]interface{} `json:"metadata"`
}

type BinCheckinRequest struct {
	Status       string     `json:"status"`
	FillLevel    int        `json:"fill_level"`
	BatteryLevel *int       `json:"battery_level"`
	At           *time.Time `json:"at"`
}

func (s *Server) ListBins(c *gin.Context) {
	bins, err := s.bins.List(c.Request.Context(), bindomain.ListBinsRequest{
		Status: strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"bins": bins}})
}

func (s *Server) RegisterBin(c *gin.Context) {
	var req RegisterBinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	bin, err := s.bins.Register(c.Request.Context(), bindomain.RegisterBinRequest{
		Serial:   strings.TrimSpace(req.Serial),
		Location: strings.TrimSpace(req.Location),
		Metadata: req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": bin})
}

func (s *Server) GetBin(c *gin.Context) {
	bin, err := s.bins.GetBySerial(c.Request.Context(), c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": bin})
}

// BinCheckin ingests a telemetry heartbeat posted by the bin firmware.
func (s *Server) BinCheckin(c *gin.Context) {
	var req BinCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	at := time.Now().UTC()
	if req.At != nil {
		at = req.At.UTC()
	}

	ctx := c.Request.Context()
	err := s.bins.Checkin(ctx, bindomain.CheckinRequest{
		Serial:       c.Param("code"),
		Status:       strings.TrimSpace(req.Status),
		FillLevel:    req.FillLevel,
		BatteryLevel: req.BatteryLevel,
		At:           at,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordBinCheckin(ctx, strings.TrimSpace(req.Status))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) SetBinStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	bin, err := s.bins.SetStatus(c.Request.Context(), bindomain.SetStatusRequest{
		ID:     c.Param("id"),
		Status: strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAdminAction(c, "bin.status_changed", "bin", bin.ID.String(), map[string]any{
		"serial": bin.Serial,
		"status": bin.Status,
	})
	c.JSON(http.StatusOK, gin.H{"data": bin})
}
