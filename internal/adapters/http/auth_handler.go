package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pomodorify/core/internal/infrastructure/logger"
	"github.com/pomodorify/core/internal/ports"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService  ports.AuthService
	cookieTTL    time.Duration
	cookieSecure bool
	logger       *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService ports.AuthService, cookieTTL time.Duration, cookieSecure bool, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieTTL:    cookieTTL,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// Signup handles account creation
func (h *AuthHandler) Signup(c echo.Context) error {
	var req ports.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Signup(c.Request().Context(), req)
	if err != nil {
		return domainError(err)
	}

	setTokenCookie(c, response.Token, h.cookieTTL, h.cookieSecure)

	return c.JSON(http.StatusCreated, response)
}

// Login handles user login
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		return domainError(err)
	}

	setTokenCookie(c, response.Token, h.cookieTTL, h.cookieSecure)

	return c.JSON(http.StatusOK, response)
}

// Logout clears the session cookie. It succeeds whether or not a session
// exists.
func (h *AuthHandler) Logout(c echo.Context) error {
	clearTokenCookie(c, h.cookieSecure)

	return c.JSON(http.StatusOK, ports.MessageResponse{
		Success: true,
		Message: "Logged out successfully",
	})
}

// VerifyEmail redeems the emailed verification code
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req ports.VerifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.VerifyEmail(c.Request().Context(), req.Code)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Email verified successfully",
		"user":    user,
	})
}

// ForgotPassword requests a password reset email. The response never
// reveals whether the address exists.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ports.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{
		Success: true,
		Message: "If that account exists, a reset email is on its way",
	})
}

// ResetPassword redeems a reset token from the emailed link
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing reset token")
	}

	var req ports.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ResetPassword(c.Request().Context(), token, req.Password); err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{
		Success: true,
		Message: "Password reset successfully",
	})
}

// CheckAuth returns the account behind the current session
func (h *AuthHandler) CheckAuth(c echo.Context) error {
	userID := getUserIDFromContext(c)

	user, err := h.authService.CheckAuth(c.Request().Context(), userID)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}
