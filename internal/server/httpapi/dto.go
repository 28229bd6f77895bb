package httpapi

import (
	"time"

	"github.com/vincentino1/account-service/internal/server/models"
)

type errorBody struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
}

type createAccountRequest struct {
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=8,maxbytes=72"`
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,min=7,max=30"`
	DateOfBirth *string `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
}

type updateProfileRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,min=7,max=30"`
	DateOfBirth *string `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,maxbytes=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type logoutRequest struct {
	Token string `json:"token" binding:"required"`
}

// profileResponse is the public view of an account. The password hash is
// never part of it.
type profileResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        *string   `json:"name"`
	PhoneNumber *string   `json:"phoneNumber"`
	DateOfBirth *string   `json:"dateOfBirth"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newProfileResponse(a *models.Account) profileResponse {
	return profileResponse{
		ID:          a.ID,
		Email:       a.Email,
		Name:        a.Name,
		PhoneNumber: a.PhoneNumber,
		DateOfBirth: a.DateOfBirth,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
