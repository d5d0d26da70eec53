// Package server exposes the chatbot over HTTP. Bearer tokens are
// passed through to the backend untouched; the backend is the authority
// on whether they are valid.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/Aliladla/hackathon2phase3/chat/session"
)

// TurnRunner processes one user message against a session.
type TurnRunner interface {
	Run(ctx context.Context, sess *session.Context, token, message string) string
}

// Info is the static service metadata reported by the health endpoint.
type Info struct {
	BackendURL string
	Model      string
}

// Register wires up all chatbot routes on the given Echo instance.
func Register(e *echo.Echo, store session.Store, runner TurnRunner, info Info, logger *log.Logger) {
	e.Use(turnMetrics(logger))

	e.GET("/health", health(info))

	e.POST("/chat", chat(store, runner))
	e.POST("/sessions", createSession(store))
	e.GET("/sessions/:id/context", sessionContext(store))
	e.DELETE("/sessions/:id", deleteSession(store))
	e.POST("/sessions/cleanup", cleanupSessions(store))
}

func health(info Info) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":      "healthy",
			"backend_url": info.BackendURL,
			"model":       info.Model,
		})
	}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response  string    `json:"response"`
	SessionID uuid.UUID `json:"session_id"`
}

// bearerToken pulls the raw token out of an Authorization header. Only
// the format is checked here.
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func chat(store session.Store, runner TurnRunner) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return authError(c, "Invalid authorization header format. Expected 'Bearer <token>'")
		}

		var req chatRequest
		if err := c.Bind(&req); err != nil {
			return validationError(c, "invalid body")
		}
		if strings.TrimSpace(req.Message) == "" {
			return validationError(c, "message is required")
		}

		var sess *session.Context
		if req.SessionID != "" {
			sessionID, err := uuid.Parse(req.SessionID)
			if err != nil {
				return validationError(c, "session_id must be a valid UUID")
			}
			sess, err = store.Get(sessionID)
			if err != nil {
				if err == session.ErrNotFound {
					return sessionNotFound(c)
				}
				c.Logger().Error(err)
				return serverError(c)
			}
		} else {
			var err error
			sess, err = store.Create("")
			if err != nil {
				c.Logger().Error(err)
				return serverError(c)
			}
		}

		reply := runner.Run(c.Request().Context(), sess, token, req.Message)

		if err := store.Update(sess); err != nil {
			c.Logger().Error(err)
			return serverError(c)
		}
		return c.JSON(http.StatusOK, chatResponse{Response: reply, SessionID: sess.SessionID})
	}
}

func createSession(store session.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := store.Create("")
		if err != nil {
			c.Logger().Error(err)
			return serverError(c)
		}
		return c.JSON(http.StatusCreated, map[string]any{
			"session_id": sess.SessionID,
			"message":    "Session created successfully",
		})
	}
}

func sessionID(c echo.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	return id, err == nil
}

func sessionContext(store session.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := sessionID(c)
		if !ok {
			return sessionNotFound(c)
		}
		sess, err := store.Get(id)
		if err != nil {
			if err == session.ErrNotFound {
				return sessionNotFound(c)
			}
			c.Logger().Error(err)
			return serverError(c)
		}
		return c.JSON(http.StatusOK, map[string]any{
			"session_id":     sess.SessionID,
			"message_count":  len(sess.Messages),
			"last_task_id":   sess.LastTaskID,
			"last_operation": sess.LastOperation,
			"created_at":     sess.CreatedAt,
			"updated_at":     sess.UpdatedAt,
			"expires_at":     sess.ExpiresAt,
		})
	}
}

// deleteSession is idempotent; deleting an unknown session succeeds.
func deleteSession(store session.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := sessionID(c)
		if !ok {
			return sessionNotFound(c)
		}
		if err := store.Delete(id); err != nil {
			c.Logger().Error(err)
			return serverError(c)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func cleanupSessions(store session.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		purged, err := store.CleanupExpired()
		if err != nil {
			c.Logger().Error(err)
			return serverError(c)
		}
		return c.JSON(http.StatusOK, map[string]int{"purged_count": purged})
	}
}

// turnMetrics logs one line per request with its duration.
func turnMetrics(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if logger == nil {
				return next(c)
			}
			start := time.Now()
			err := next(c)
			logger.WithFields(log.Fields{
				"method":   c.Request().Method,
				"route":    c.Path(),
				"status":   c.Response().Status,
				"total_ms": time.Since(start).Milliseconds(),
			}).Info("chat.request.metrics")
			return err
		}
	}
}
