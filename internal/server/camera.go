package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Camera frames top out well under a megabyte; anything bigger is garbage.
const maxFrameBytes = 4 << 20

func (s *Server) StartCameraSession(c *gin.Context) {
	session, err := s.cameras.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": session})
}

func (s *Server) StopCameraSession(c *gin.Context) {
	s.cameras.Close(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SubmitCameraFrame ingests one raw image frame into a scan session.
func (s *Server) SubmitCameraFrame(c *gin.Context) {
	session, err := s.cameras.Get(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	frame, err := io.ReadAll(io.LimitReader(c.Request.Body, maxFrameBytes))
	if err != nil || len(frame) == 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	payload, decoded := session.SubmitFrame(frame)
	resp := gin.H{"decoded": decoded}
	if decoded {
		resp["payload"] = payload
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCameraFrame(c *gin.Context) {
	session, err := s.cameras.Get(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	frame, ok := session.LatestFrame()
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.Data(http.StatusOK, "image/jpeg", frame)
}

func (s *Server) GetCameraQR(c *gin.Context) {
	session, err := s.cameras.Get(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payload, decoded := session.Decoded()
	resp := gin.H{"decoded": decoded}
	if decoded {
		resp["payload"] = payload
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ClearCameraQR drops the decoded token so the session scans fresh.
func (s *Server) ClearCameraQR(c *gin.Context) {
	session, err := s.cameras.Get(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	session.ClearDecoded()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
