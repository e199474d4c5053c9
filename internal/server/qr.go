package server

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/trash2cash/platform/internal/account/domain"
	"github.com/trash2cash/platform/internal/camera"
	"github.com/trash2cash/platform/internal/hardware"
	"github.com/trash2cash/platform/internal/identity"
	profiledomain "github.com/trash2cash/platform/internal/profile/domain"
)

type ScanQRRequest struct {
	// Payload is a decoded QR token. When empty, FrameB64 is decoded instead.
	Payload  string `json:"payload"`
	FrameB64 string `json:"frame_b64"`
}

type StartDisposalRequest struct {
	Payload   string `json:"payload"`
	BinSerial string `json:"bin_serial"`
}

// resolveScan turns a scan request into an authenticated user.
func (s *Server) resolveScan(c *gin.Context, req ScanQRRequest) (accountdomain.User, bool) {
	payload := strings.TrimSpace(req.Payload)
	if payload == "" {
		raw := strings.TrimSpace(req.FrameB64)
		if raw == "" {
			AbortWithError(c, invalidRequestError())
			return accountdomain.User{}, false
		}
		frame, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return accountdomain.User{}, false
		}
		payload, err = camera.DecodeQR(frame)
		if err != nil {
			AbortWithError(c, identity.ErrMalformedToken)
			return accountdomain.User{}, false
		}
	}

	user, err := s.resolver.Resolve(c.Request.Context(), payload)
	if err != nil {
		AbortWithError(c, err)
		return accountdomain.User{}, false
	}
	return user, true
}

func (s *Server) ScanQR(c *gin.Context) {
	var req ScanQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, ok := s.resolveScan(c, req)
	if !ok {
		return
	}

	profile, err := s.profiles.EnsureForUser(c.Request.Context(), user)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": accountView{User: user, Profile: profile}})
}

func (s *Server) ValidateQR(c *gin.Context) {
	var req ScanQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, ok := s.resolveScan(c, req)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"valid":    true,
		"user_id":  user.ID.String(),
		"username": user.Username,
	}})
}

func (s *Server) StartDisposal(c *gin.Context) {
	var req StartDisposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, ok := s.resolveScan(c, ScanQRRequest{Payload: req.Payload})
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if allowed, err := s.limiter.AllowUser(ctx, user.ID.String()); err != nil {
		AbortWithError(c, err)
		return
	} else if !allowed {
		AbortWithError(c, ErrRateLimited)
		return
	}

	receipt, err := s.controller.Trigger(ctx, hardware.TriggerRequest{
		BinSerial: strings.TrimSpace(req.BinSerial),
		User:      user,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": receipt})
}

// QRStatus reports whether a scan session has decoded a token yet. Kiosks
// poll this while streaming frames.
func (s *Server) QRStatus(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Query("session_id"))
	if sessionID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	session, err := s.cameras.Get(sessionID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payload, decoded := session.Decoded()
	resp := gin.H{
		"session_id": session.ID,
		"decoded":    decoded,
		"expires_at": session.ExpiresAt,
	}
	if decoded {
		resp["payload"] = payload
		if user, err := s.resolver.Resolve(c.Request.Context(), payload); err == nil {
			if profile, err := s.profiles.GetByUser(c.Request.Context(), profiledomain.GetProfileRequest{UserID: user.ID.String()}); err == nil {
				resp["user"] = accountView{User: user, Profile: profile}
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
