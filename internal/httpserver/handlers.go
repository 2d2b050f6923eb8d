package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/tinytelemetry/orbit/internal/auth"
	"github.com/tinytelemetry/orbit/internal/model"
)

type loginRequest struct {
	Username string `json:"username" binding:"required,max=256"`
	Password string `json:"password" binding:"required,max=1024"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ProfileResponse is the body of GET /api/profile.
type ProfileResponse struct {
	User auth.Claims `json:"user"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Message: msg, RequestID: GetRequestID(c)})
}

// POST /api/login
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			// Missing fields are a failed login, not a malformed request.
			abortWithError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		abortWithError(c, http.StatusBadRequest, "Malformed request body")
		return
	}

	if err := s.creds.Check(req.Username, req.Password); err != nil {
		s.log.Info().Str("request_id", GetRequestID(c)).Msg("login rejected")
		abortWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, claims, err := s.tokens.Issue(req.Username)
	if err != nil {
		s.log.Error().Err(err).Msg("issuing token")
		abortWithError(c, http.StatusInternalServerError, "Could not issue token")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(model.AuthCookieName, token, int(s.cookieTTL().Seconds()), "/", "", s.cfg.Production, true)
	c.JSON(http.StatusOK, LoginResponse{Token: token, ExpiresAt: claims.ExpiresAt.Time})
}

// GET /api/profile
func (s *Server) handleProfile(c *gin.Context) {
	token, present := bearerToken(c)
	if !present {
		abortWithError(c, http.StatusUnauthorized, "No token provided")
		return
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Invalid token")
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{User: claims})
}

// POST /api/logout
func (s *Server) handleLogout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(model.AuthCookieName, "", -1, "/", "", s.cfg.Production, true)
	c.Status(http.StatusNoContent)
}

// GET /api/health
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

// bearerToken returns the token from the Authorization header, or from the
// auth cookie when no header is sent. present is false when the request
// carries neither; a header with another scheme yields an empty token.
func bearerToken(c *gin.Context) (token string, present bool) {
	if h := strings.TrimSpace(c.GetHeader("Authorization")); h != "" {
		scheme, rest, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return "", true
		}
		return strings.TrimSpace(rest), true
	}
	if cookie, err := c.Cookie(model.AuthCookieName); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}
