package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vincentino1/account-service/internal/common"
	"github.com/vincentino1/account-service/internal/server/models"
	"github.com/vincentino1/account-service/internal/server/services"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{OK: true, Service: common.ServiceName})
}

func (s *Server) createAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}

	account, err := s.accounts.Register(c.Request.Context(), services.NewAccount{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newProfileResponse(account))
}

func (s *Server) getAccount(c *gin.Context) {
	account, err := s.accounts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(account))
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}

	token, err := s.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
	})
}

func (s *Server) logout(c *gin.Context) {
	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}

	if err := s.sessions.Logout(c.Request.Context(), req.Token); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getMe(c *gin.Context) {
	account, err := s.accounts.Get(c.Request.Context(), sessionFrom(c).AccountID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(account))
}

func (s *Server) updateMe(c *gin.Context) {
	var req updateProfileRequest
	if err := bindStrict(c, &req); err != nil {
		invalidPayload(c, err)
		return
	}

	account, err := s.accounts.UpdateProfile(c.Request.Context(), sessionFrom(c).AccountID, models.ProfilePatch{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(account))
}

func (s *Server) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := bindStrict(c, &req); err != nil {
		invalidPayload(c, err)
		return
	}

	err := s.passwords.RotatePassword(c.Request.Context(), sessionFrom(c).AccountID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
