package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/voltflow/crm/pkg/api/errors"
	"github.com/voltflow/crm/pkg/api/middleware"
	"github.com/voltflow/crm/pkg/auth"
	"github.com/voltflow/crm/pkg/domain"
	"github.com/voltflow/crm/pkg/metrics"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/store"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	store         *store.Store
	blacklist     *auth.TokenBlacklist
	metrics       *metrics.Metrics
	jwtSecret     string
	jwtExpiration int
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(st *store.Store, blacklist *auth.TokenBlacklist, m *metrics.Metrics, jwtSecret string, jwtExpiration int) *AuthHandler {
	return &AuthHandler{
		store:         st,
		blacklist:     blacklist,
		metrics:       m,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Login godoc
// @Summary Login user
// @Description Authenticate with email and password, returns a JWT carrying the profile role
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bind(c, &req); err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.store.Profiles().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if domain.IsNotFound(err) {
			h.metrics.RecordLoginAttempt(false)
			return invalidCredentials(c)
		}
		return errors.DatabaseError(c, err)
	}

	if !auth.CheckPassword(profile.PasswordHash, req.Password) {
		h.metrics.RecordLoginAttempt(false)
		return invalidCredentials(c)
	}

	token, err := auth.GenerateJWT(profile.ID, profile.Email, string(profile.NormalizedRole()), h.jwtSecret, h.jwtExpiration)
	if err != nil {
		return errors.InternalError(c, err)
	}
	h.metrics.RecordLoginAttempt(true)

	return c.JSON(http.StatusOK, models.AuthResponse{
		Token: token,
		User: &models.UserInfo{
			ID:       profile.ID,
			Email:    profile.Email,
			FullName: profile.FullName,
			Role:     profile.NormalizedRole(),
		},
	})
}

func invalidCredentials(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   "invalid_credentials",
		Message: "Invalid email or password",
	})
}

// Logout godoc
// @Summary Logout user
// @Description Revokes the caller's token until it would have expired.
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SuccessResponse
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, _ := c.Get("token").(string)
	claims, err := auth.ValidateJWT(token, h.jwtSecret)
	if err != nil {
		return errors.UnauthorizedError(c)
	}

	if h.blacklist != nil {
		ctx, cancel := requestContext(c)
		defer cancel()
		if err := h.blacklist.Add(ctx, token, claims.RemainingTTL()); err != nil {
			return errors.InternalError(c, err)
		}
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "Logged out successfully"})
}

// Me godoc
// @Summary Current user
// @Description Resolved profile of the caller.
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserInfo
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user := middleware.UserFromContext(c)
	if user == nil {
		return errors.UnauthorizedError(c)
	}
	return c.JSON(http.StatusOK, user)
}
