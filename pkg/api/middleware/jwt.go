package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/voltflow/crm/pkg/auth"
	"github.com/voltflow/crm/pkg/models"
)

// ProfileGetter loads the profile a token belongs to
type ProfileGetter interface {
	Get(ctx context.Context, id int) (*models.UserProfile, error)
}

// AuthConfig configures JWT authentication
type AuthConfig struct {
	Secret    string
	Blacklist *auth.TokenBlacklist
	// Profiles is optional; without it the role comes from the token
	Profiles       ProfileGetter
	ResolveTimeout time.Duration
}

// JWTMiddleware creates a JWT authentication middleware
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return JWTMiddlewareWithConfig(AuthConfig{Secret: secret})
}

// JWTMiddlewareWithConfig validates the bearer token, checks the blacklist
// and resolves the caller's profile. The profile lookup races
// cfg.ResolveTimeout; a lookup that does not answer in time is treated as
// logged out.
func JWTMiddlewareWithConfig(cfg AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:    "missing_token",
					Message:  "Authorization header is required",
					Redirect: auth.LoginPath,
				})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:    "invalid_token_format",
					Message:  "Authorization header must be 'Bearer {token}'",
					Redirect: auth.LoginPath,
				})
			}
			token := parts[1]

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			claims, err := auth.ValidateJWTWithBlacklist(ctx, token, cfg.Secret, cfg.Blacklist)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:    "invalid_token",
					Message:  err.Error(),
					Redirect: auth.LoginPath,
				})
			}

			res := auth.Resolve(ctx, cfg.ResolveTimeout, profileLoader(claims, cfg.Profiles))
			if res.State != auth.Authenticated {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:    "user_not_found",
					Message:  "User account not found",
					Redirect: auth.LoginPath,
				})
			}

			// Store token in context for logout
			c.Set("token", token)
			c.Set("user", res.User)
			c.Set("user_id", res.User.ID)
			c.Set("user_email", res.User.Email)
			c.Set("user_role", res.User.Role)

			return next(c)
		}
	}
}

func profileLoader(claims *auth.Claims, profiles ProfileGetter) auth.ProfileLoader {
	return func(ctx context.Context) (*models.UserInfo, error) {
		if profiles == nil {
			return &models.UserInfo{ID: claims.UserID, Email: claims.Email, Role: claims.NormalizedRole()}, nil
		}
		p, err := profiles.Get(ctx, claims.UserID)
		if err != nil {
			return nil, err
		}
		return &models.UserInfo{ID: p.ID, Email: p.Email, FullName: p.FullName, Role: p.NormalizedRole()}, nil
	}
}

// UserFromContext returns the authenticated user, nil when absent
func UserFromContext(c echo.Context) *models.UserInfo {
	u, _ := c.Get("user").(*models.UserInfo)
	return u
}

// RequireRole lets a request through only when the guard allows the
// caller's role. Callers without a role are sent to login.
func RequireRole(guard auth.Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := auth.Resolution{State: auth.Anonymous}
			if u := UserFromContext(c); u != nil {
				res = auth.Resolution{State: auth.Authenticated, User: u}
			}

			switch guard.Decide(res) {
			case auth.Allow:
				return next(c)
			case auth.RedirectUnauthorized:
				return c.JSON(http.StatusForbidden, models.ErrorResponse{
					Error:    "forbidden",
					Message:  "You do not have permission to access this resource.",
					Redirect: auth.UnauthorizedPath,
				})
			default:
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:    "unauthorized",
					Message:  "Authentication required",
					Redirect: auth.LoginPath,
				})
			}
		}
	}
}
