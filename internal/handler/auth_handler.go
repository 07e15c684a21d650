package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-tracker-api/internal/models"
	appErrors "github.com/noah-isme/bus-tracker-api/pkg/errors"
	"github.com/noah-isme/bus-tracker-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
}

// AuthHandler exposes the driver login endpoint.
type AuthHandler struct {
	service authService
}

// NewAuthHandler builds a new handler.
func NewAuthHandler(service authService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login godoc
// @Summary Authenticate the driver with id and PIN
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Me godoc
// @Summary Current driver claims
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"driver_id": claims.DriverID,
		"name":      claims.Name,
	}, nil)
}
