package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/Aliladla/hackathon2phase3/api"
	"github.com/Aliladla/hackathon2phase3/storage"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("missing DATABASE_URL")
	}
	store, err := storage.OpenPostgres(dsn)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	secret := os.Getenv("JWT_SECRET")
	expirationDays := 7
	if v := os.Getenv("JWT_EXPIRATION_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Fatalf("invalid JWT_EXPIRATION_DAYS: %q", v)
		}
		expirationDays = n
	}
	auth, err := api.NewAuth(secret, time.Duration(expirationDays)*24*time.Hour)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	e := echo.New()
	allowOrigins := []string{"*"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		allowOrigins = strings.Split(v, ",")
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	logger := log.New()
	api.Register(e, store, store, auth, logger)

	listenAddr := ":8000"
	if v := os.Getenv("PORT"); v != "" {
		listenAddr = ":" + v
	}
	e.Logger.Fatal(e.Start(listenAddr))
}
