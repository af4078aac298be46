package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// AuthHandler opens customer sessions.
type AuthHandler struct {
	facade AuthFacade
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade AuthFacade) *AuthHandler {
	return &AuthHandler{facade: facade}
}

type sessionOpener func(ctx context.Context, login, password string) (string, error)

// Register handles POST /api/user/register.
func (h *AuthHandler) Register(c *gin.Context) {
	h.openSession(c, h.facade.Register, http.StatusBadRequest)
}

// Login handles POST /api/user/login.
func (h *AuthHandler) Login(c *gin.Context) {
	h.openSession(c, h.facade.Authenticate, http.StatusUnauthorized)
}

// openSession answers rejected credentials with rejectedStatus and maps the
// remaining failures through statusFor.
func (h *AuthHandler) openSession(c *gin.Context, open sessionOpener, rejectedStatus int) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	token, err := open(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidCredentials) {
			c.Status(rejectedStatus)
			return
		}
		abortWithError(c, err)
		return
	}

	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusOK, dto.SessionResponse{Token: token})
}

// Profile handles GET /api/user/profile.
func (h *AuthHandler) Profile(c *gin.Context) {
	usr, err := h.facade.Profile(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProfileResponse{ID: usr.ID, Login: usr.Login, CreatedAt: usr.CreatedAt})
}
