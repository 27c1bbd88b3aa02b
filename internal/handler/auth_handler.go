package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"authsvc/internal/errors"
	"authsvc/internal/service"
)

// sessionCookie is the cookie carrying the opaque session token.
const sessionCookie = "session_id"

// AuthHandler handles registration, session, and password-reset endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// ForgotPasswordRequest represents a reset-token request.
type ForgotPasswordRequest struct {
	Email string `form:"email" validate:"required,email"`
}

// ResetPasswordRequest represents a password update via reset token.
type ResetPasswordRequest struct {
	Email       string `form:"email" validate:"required,email"`
	ResetToken  string `form:"reset_token" validate:"required"`
	NewPassword string `form:"new_password" validate:"required"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if err == service.ErrAlreadyRegistered {
			return echo.NewHTTPError(http.StatusConflict, errors.ErrorResponse{
				Error: "email already registered",
				Code:  "EMAIL_ALREADY_REGISTERED",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to register user",
			Code:  "REGISTRATION_FAILED",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"email":   user.Email,
		"message": "user created",
	})
}

// Login godoc
// @Summary Login and receive a session cookie
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /sessions [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ok, err := h.authService.ValidLogin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to login",
			Code:  "LOGIN_FAILED",
		})
	}
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "invalid email or password",
			Code:  "INVALID_CREDENTIALS",
		})
	}

	token, err := h.authService.CreateSession(c.Request().Context(), req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to login",
			Code:  "LOGIN_FAILED",
		})
	}
	if token == "" {
		// user disappeared between the credential check and session creation
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "invalid email or password",
			Code:  "INVALID_CREDENTIALS",
		})
	}

	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})

	return c.JSON(http.StatusOK, map[string]string{
		"email":   req.Email,
		"message": "logged in",
	})
}

// Logout godoc
// @Summary Destroy the current session
// @Tags auth
// @Produce json
// @Success 302
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /sessions [delete]
func (h *AuthHandler) Logout(c echo.Context) error {
	token := sessionToken(c)
	user, err := h.authService.UserFromSessionToken(c.Request().Context(), token)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to logout",
			Code:  "LOGOUT_FAILED",
		})
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
			Error: "forbidden",
			Code:  "FORBIDDEN",
		})
	}

	if err := h.authService.DestroySession(c.Request().Context(), user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to logout",
			Code:  "LOGOUT_FAILED",
		})
	}

	c.SetCookie(&http.Cookie{
		Name:   sessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	return c.Redirect(http.StatusFound, "/")
}

// Profile godoc
// @Summary Get the profile of the current session's user
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	token := sessionToken(c)
	user, err := h.authService.UserFromSessionToken(c.Request().Context(), token)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to load profile",
			Code:  "PROFILE_FAILED",
		})
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
			Error: "forbidden",
			Code:  "FORBIDDEN",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"email": user.Email,
	})
}

// ForgotPassword godoc
// @Summary Request a password-reset token
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param email formData string true "Email"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /reset_password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.authService.ResetPasswordToken(c.Request().Context(), req.Email)
	if err != nil {
		// 403 for unknown emails, opaque to the client to avoid enumeration
		if err == service.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
				Error: "forbidden",
				Code:  "FORBIDDEN",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to issue reset token",
			Code:  "RESET_TOKEN_FAILED",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"email":       req.Email,
		"reset_token": token,
	})
}

// ResetPassword godoc
// @Summary Update the password using a reset token
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param email formData string true "Email"
// @Param reset_token formData string true "Reset token"
// @Param new_password formData string true "New password"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /reset_password [put]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.UpdatePassword(c.Request().Context(), req.ResetToken, req.NewPassword); err != nil {
		if err == service.ErrInvalidResetToken {
			return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
				Error: "forbidden",
				Code:  "FORBIDDEN",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to update password",
			Code:  "PASSWORD_UPDATE_FAILED",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"email":   req.Email,
		"message": "Password updated",
	})
}

// sessionToken reads the session cookie, returning "" when absent.
func sessionToken(c echo.Context) string {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
