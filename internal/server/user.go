package server

import (
	"net/http"
	"strings"

	userdomain "github.com/ecotrail/ecotrail/internal/user/domain"
	"github.com/gin-gonic/gin"
)

type registerUserRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type registeredUserResponse struct {
	userdomain.User
	APIToken string `json:"api_token"`
}

func (s *Server) RegisterUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.userSvc.Register(c.Request.Context(), userdomain.RegisterRequest{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		AvatarURL: strings.TrimSpace(req.AvatarURL),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// The token is only disclosed at registration time.
	c.JSON(http.StatusOK, gin.H{"data": registeredUserResponse{
		User:     resp,
		APIToken: resp.APIToken,
	}})
}

func (s *Server) Me(c *gin.Context) {
	resp, err := s.userSvc.Me(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProfile(c *gin.Context) {
	var req struct {
		Name      *string `json:"name"`
		AvatarURL *string `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.userSvc.UpdateProfile(c.Request.Context(), userdomain.UpdateProfileRequest{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
