package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/trash2cash/platform/internal/account/domain"
	profiledomain "github.com/trash2cash/platform/internal/profile/domain"
)

type RegisterRequest struct {
	Username string `json:"username"`
	CNIC     string `json:"cnic"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	// Identifier is a username or a CNIC card number.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type accountView struct {
	User    accountdomain.User        `json:"user"`
	Profile profiledomain.UserProfile `json:"profile"`
}

func (s *Server) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	user, err := s.accounts.Signup(ctx, accountdomain.SignupRequest{
		Username: strings.TrimSpace(req.Username),
		CNIC:     strings.TrimSpace(req.CNIC),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	profile, err := s.profiles.EnsureForUser(ctx, user)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": accountView{User: user, Profile: profile}})
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	identifier := strings.TrimSpace(req.Identifier)

	var (
		user accountdomain.User
		err  error
	)
	if accountdomain.ValidCNIC(identifier) {
		user, err = s.accounts.AuthenticateCNIC(ctx, identifier, req.Password)
	} else {
		user, err = s.accounts.Login(ctx, accountdomain.LoginRequest{
			Username: identifier,
			Password: req.Password,
		})
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// The profile carries the QR payload the app renders after login.
	profile, err := s.profiles.EnsureForUser(ctx, user)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": accountView{User: user, Profile: profile}})
}

func (s *Server) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := s.accounts.GetByID(ctx, accountdomain.GetUserRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	profile, err := s.profiles.GetByUser(ctx, profiledomain.GetProfileRequest{UserID: user.ID.String()})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": accountView{User: user, Profile: profile}})
}

func (s *Server) RegenerateQR(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := s.accounts.GetByID(ctx, accountdomain.GetUserRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	profile, err := s.profiles.RegenerateQR(ctx, user)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": accountView{User: user, Profile: profile}})
}
