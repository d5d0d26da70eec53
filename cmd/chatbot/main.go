package main

import (
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/Aliladla/hackathon2phase3/chat/agent"
	"github.com/Aliladla/hackathon2phase3/chat/server"
	"github.com/Aliladla/hackathon2phase3/chat/session"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("missing OPENAI_API_KEY")
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	backendURL := os.Getenv("BACKEND_API_URL")
	if backendURL == "" {
		log.Fatal("missing BACKEND_API_URL")
	}
	timeout := 30 * time.Second
	if v := os.Getenv("BACKEND_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("invalid BACKEND_API_TIMEOUT: %q", v)
		}
		timeout = d
	}

	var store session.Store
	if redisURL := os.Getenv("SESSION_REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("invalid SESSION_REDIS_URL: %v", err)
		}
		store = session.NewRedisStore(redis.NewClient(opts))
	} else {
		store = session.NewMemoryStore()
	}

	logger := log.New()
	oc := openai.NewClient(option.WithAPIKey(apiKey))
	runner := &agent.Runner{
		Completions: &oc.Chat.Completions,
		Model:       model,
		BackendURL:  backendURL,
		Timeout:     timeout,
		Logger:      logger,
	}

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	server.Register(e, store, runner, server.Info{BackendURL: backendURL, Model: model}, logger)

	listenAddr := ":8001"
	if v := os.Getenv("CHATBOT_PORT"); v != "" {
		listenAddr = ":" + v
	}
	e.Logger.Fatal(e.Start(listenAddr))
}
