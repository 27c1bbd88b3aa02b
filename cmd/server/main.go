package main

import (
	"log"
	"net/http"

	"authsvc/docs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"authsvc/internal/auth"
	"authsvc/internal/cache"
	"authsvc/internal/config"
	"authsvc/internal/db"
	"authsvc/internal/handler"
	"authsvc/internal/model"
	"authsvc/internal/repository"
	"authsvc/internal/router"
	"authsvc/internal/service"
)

// @title User Authentication Service API
// @version 1.0
// @description User authentication service with cookie sessions and password-reset tokens.
// @host localhost:8080
// @BasePath /
// @schemes http
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}
	cfg := config.Load()
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	userRepo := repository.NewUserRepository(gormDB)
	hasher := auth.NewBcryptHasher()
	tokens := auth.NewUUIDGenerator()

	authService := service.NewAuthService(userRepo, hasher, tokens, cacheClient)
	authHandler := handler.NewAuthHandler(authService)

	router.Register(e, authHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
