package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListBillProviders(c *gin.Context) {
	providers, err := s.references.ListBillProviders(c.Request.Context(), c.Query("kind"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"providers": providers}})
}

func (s *Server) ListCharities(c *gin.Context) {
	charities, err := s.references.ListCharities(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"charities": charities}})
}
