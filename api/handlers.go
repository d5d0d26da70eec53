package api

import (
	"context"
	"net/http"
	"net/mail"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/Aliladla/hackathon2phase3/domain"
	"github.com/Aliladla/hackathon2phase3/storage"
)

const minPasswordLen = 8

// TaskStorage is the slice of the persistence layer the handlers need.
type TaskStorage interface {
	Create(ctx context.Context, userID uuid.UUID, title, description string) (domain.Task, error)
	Get(ctx context.Context, userID uuid.UUID, id int64) (domain.Task, error)
	List(ctx context.Context, userID uuid.UUID, filter storage.TaskFilter) ([]domain.Task, error)
	Count(ctx context.Context, userID uuid.UUID, completed *bool) (int64, error)
	Update(ctx context.Context, userID uuid.UUID, id int64, patch storage.TaskPatch) (domain.Task, error)
	Toggle(ctx context.Context, userID uuid.UUID, id int64) (domain.Task, error)
	Delete(ctx context.Context, userID uuid.UUID, id int64) error
}

// UserStorage persists accounts for the auth endpoints.
type UserStorage interface {
	CreateUser(ctx context.Context, email, passwordHash string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
}

// Authenticator issues and validates bearer tokens.
type Authenticator interface {
	Issue(userID uuid.UUID, email string) (string, time.Time, error)
	UserIDFromAuthHeader(h string) (uuid.UUID, error)
}

// Register wires up all backend routes on the given Echo instance.
func Register(e *echo.Echo, tasks TaskStorage, users UserStorage, auth Authenticator, logger *log.Logger) {
	e.Use(requestMetrics(logger))

	e.GET("/health", health)

	e.POST("/api/auth/signup", signup(users, auth))
	e.POST("/api/auth/signin", signin(users, auth))
	e.POST("/api/auth/signout", signout)

	e.GET("/api/tasks", listTasks(tasks, auth))
	e.POST("/api/tasks", createTask(tasks, auth))
	e.GET("/api/tasks/:id", getTask(tasks, auth))
	e.PUT("/api/tasks/:id", putTask(tasks, auth))
	e.PATCH("/api/tasks/:id", patchTask(tasks, auth))
	e.PATCH("/api/tasks/:id/complete", toggleTask(tasks, auth))
	e.DELETE("/api/tasks/:id", deleteTask(tasks, auth))
}

func health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponse struct {
	User      userResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func signup(users UserStorage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		var req signupRequest
		if err := c.Bind(&req); err != nil {
			return validationError(c, "invalid body")
		}
		if !validEmail(req.Email) {
			return validationError(c, "Invalid email address")
		}
		if len(req.Password) < minPasswordLen {
			return validationError(c, "Password must be at least 8 characters")
		}

		hash, err := HashPassword(req.Password)
		if err != nil {
			c.Logger().Error(err)
			return serverError(c)
		}
		user, err := users.CreateUser(ctx, req.Email, hash)
		if err != nil {
			if err == domain.ErrEmailTaken {
				return conflictError(c, "Email already registered")
			}
			c.Logger().Error(err)
			return serverError(c)
		}
		token, expiresAt, err := auth.Issue(user.ID, user.Email)
		if err != nil {
			c.Logger().Error(err)
			return serverError(c)
		}
		return c.JSON(http.StatusCreated, authResponse{
			User:      userResponse{ID: user.ID, Email: user.Email, CreatedAt: user.CreatedAt},
			Token:     token,
			ExpiresAt: expiresAt,
		})
	}
}

func signin(users UserStorage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		var req signinRequest
		if err := c.Bind(&req); err != nil {
			return validationError(c, "invalid body")
		}
		if !validEmail(req.Email) || req.Password == "" {
			return validationError(c, "Email and password are required")
		}

		user, err := users.GetUserByEmail(ctx, req.Email)
		if err != nil {
			if err == domain.ErrUserNotFound {
				// Same message as a wrong password so the response does
				// not reveal whether the email exists.
				return authError(c, domain.ErrInvalidCredentials.Error())
			}
			c.Logger().Error(err)
			return serverError(c)
		}
		if !VerifyPassword(req.Password, user.PasswordHash) {
			return authError(c, domain.ErrInvalidCredentials.Error())
		}
		token, expiresAt, err := auth.Issue(user.ID, user.Email)
		if err != nil {
			c.Logger().Error(err)
			return serverError(c)
		}
		return c.JSON(http.StatusOK, authResponse{
			User:      userResponse{ID: user.ID, Email: user.Email, CreatedAt: user.CreatedAt},
			Token:     token,
			ExpiresAt: expiresAt,
		})
	}
}

// signout is a client-side operation; the token stays valid until it
// expires. Kept so clients have an endpoint to call.
func signout(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Signed out successfully"})
}

type taskListResponse struct {
	Tasks  []domain.Task `json:"tasks"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

func listTasks(tasks TaskStorage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return authError(c, err.Error())
		}

		filter := storage.TaskFilter{Limit: storage.DefaultListLimit}
		if v := c.QueryParam("completed"); v != "" {
			completed, parseErr := strconv.ParseBool(v)
			if parseErr != nil {
				return validationError(c, "completed must be true or false")
			}
			filter.Completed = &completed
		}
		if v := c.QueryParam("limit"); v != "" {
			limit, parseErr := strconv.Atoi(v)
			if parseErr != nil || limit < 1 || limit > storage.MaxListLimit {
				return validationError(c, "limit must be between 1 and 1000")
			}
			filter.Limit = limit
		}
		if v := c.QueryParam("offset"); v != "" {
			offset, parseErr := strconv.Atoi(v)
			if parseErr != nil || offset < 0 {
				return validationError(c, "offset must be zero or greater")
			}
			filter.Offset = offset
		}

		list, err := tasks.List(ctx, userID, filter)
		if err != nil {
			c.Logger().Error(err)
			return serverError(c)
		}
		total, err := tasks.Count(ctx, userID, filter.Completed)
		if err != nil {
			c.Logger().Error(err)
			return serverError(c)
		}
		return c.JSON(http.StatusOK, taskListResponse{
			Tasks:  list,
			Total:  total,
			Limit:  filter.Limit,
			Offset: filter.Offset,
		})
	}
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func createTask(tasks TaskStorage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return authError(c, err.Error())
		}
		var req createTaskRequest
		if err := c.Bind(&req); err != nil {
			return validationError(c, "invalid body")
		}
		task, err := tasks.Create(ctx, userID, req.Title, req.Description)
		if err != nil {
			if domain.IsInvalidData(err) {
				return validationError(c, err.Error())
			}
			c.Logger().Error(err)
			return serverError(c)
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func taskID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func getTask(tasks TaskStorage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return authError(c, err.Error())
		}
		id, ok := taskID(c)
		if !ok {
			return notFoundError(c)
		}
		task, err := tasks.Get(ctx, userID, id)
		if err != nil {
			if domain.IsNotFound(err) {
				return notFoundError(c)
			}
			c.Logger().Error(err)
			return serverError(c)
		}
		return c.JSON(http.StatusOK, task)
	}
}

type putTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

func putTask(tasks TaskStorage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return authError(c, err.Error())
		}
		id, ok := taskID(c)
		if !ok {
			return notFoundError(c)
		}
		var req putTaskRequest
		if err := c.Bind(&req); err != nil {
			return validationError(c, "invalid body")
		}
		patch := storage.TaskPatch{
			Title:       &req.Title,
			Description: &req.Description,
			Completed:   &req.Completed,
		}
		return applyPatch(c, ctx, tasks, userID, id, patch)
	}
}

type patchTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func patchTask(tasks TaskStorage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return authError(c, err.Error())
		}
		id, ok := taskID(c)
		if !ok {
			return notFoundError(c)
		}
		var req patchTaskRequest
		if err := c.Bind(&req); err != nil {
			return validationError(c, "invalid body")
		}
		patch := storage.TaskPatch{
			Title:       req.Title,
			Description: req.Description,
			Completed:   req.Completed,
		}
		return applyPatch(c, ctx, tasks, userID, id, patch)
	}
}

func applyPatch(c echo.Context, ctx context.Context, tasks TaskStorage, userID uuid.UUID, id int64, patch storage.TaskPatch) error {
	task, err := tasks.Update(ctx, userID, id, patch)
	if err != nil {
		if domain.IsNotFound(err) {
			return notFoundError(c)
		}
		if domain.IsInvalidData(err) {
			return validationError(c, err.Error())
		}
		c.Logger().Error(err)
		return serverError(c)
	}
	return c.JSON(http.StatusOK, task)
}

func toggleTask(tasks TaskStorage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return authError(c, err.Error())
		}
		id, ok := taskID(c)
		if !ok {
			return notFoundError(c)
		}
		task, err := tasks.Toggle(ctx, userID, id)
		if err != nil {
			if domain.IsNotFound(err) {
				return notFoundError(c)
			}
			c.Logger().Error(err)
			return serverError(c)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTask(tasks TaskStorage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return authError(c, err.Error())
		}
		id, ok := taskID(c)
		if !ok {
			return notFoundError(c)
		}
		if err := tasks.Delete(ctx, userID, id); err != nil {
			if domain.IsNotFound(err) {
				return notFoundError(c)
			}
			c.Logger().Error(err)
			return serverError(c)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
