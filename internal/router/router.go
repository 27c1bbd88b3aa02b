package router

import (
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"authsvc/internal/handler"
	"authsvc/internal/redact"
)

// Register wires routes and middleware.
func Register(e *echo.Echo, authHandler *handler.AuthHandler) {
	// Access logs go through the redacting writer so emails, passwords, and
	// session cookies never land raw in log output.
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Output: redact.NewWriter(os.Stdout),
	}))
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Bienvenue"})
	})

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.POST("/users", authHandler.Register)
	e.POST("/sessions", authHandler.Login)
	e.DELETE("/sessions", authHandler.Logout)
	e.GET("/profile", authHandler.Profile)
	e.POST("/reset_password", authHandler.ForgotPassword)
	e.PUT("/reset_password", authHandler.ResetPassword)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
