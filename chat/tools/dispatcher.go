package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Aliladla/hackathon2phase3/chat/client"
	"github.com/Aliladla/hackathon2phase3/domain"
)

// Result is the outcome of a single tool invocation. It is serialized
// verbatim into the tool message fed back to the model.
type Result struct {
	ToolName      string         `json:"tool_name"`
	Success       bool           `json:"success"`
	Result        map[string]any `json:"result"`
	Error         string         `json:"error,omitempty"`
	ExecutionTime float64        `json:"execution_time"`
}

// TaskID extracts the task id from a successful result payload, or 0
// when the payload carries none.
func (r Result) TaskID() int64 {
	if r.Result == nil {
		return 0
	}
	id, ok := r.Result["id"].(float64)
	if !ok {
		return 0
	}
	return int64(id)
}

// OperationForTool maps a tool name to the operation label recorded in
// the conversation context.
func OperationForTool(name string) string {
	switch name {
	case "create_task":
		return "create"
	case "get_task":
		return "view"
	case "update_task":
		return "update"
	case "delete_task":
		return "delete"
	case "toggle_complete":
		return "complete"
	default:
		return ""
	}
}

// Executor dispatches tool calls against the backend API for one
// authenticated user. Failures come back as unsuccessful results, never
// as errors, so the model can relay them conversationally.
type Executor struct {
	api    *client.Client
	logger *logrus.Logger
}

// NewExecutor wires an executor to a backend client.
func NewExecutor(api *client.Client, logger *logrus.Logger) *Executor {
	return &Executor{api: api, logger: logger}
}

// Execute runs one tool call and reports the outcome.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) Result {
	start := time.Now()
	payload, err := e.dispatch(ctx, name, args)
	elapsed := time.Since(start)

	res := Result{
		ToolName:      name,
		Success:       err == nil,
		Result:        payload,
		ExecutionTime: elapsed.Seconds(),
	}
	if err != nil {
		res.Error = conversationalError(err)
	}
	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"tool":     name,
			"success":  res.Success,
			"total_ms": elapsed.Milliseconds(),
		}).Info("chat.tool.metrics")
	}
	return res
}

func (e *Executor) dispatch(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	switch name {
	case "create_task":
		return e.createTask(ctx, args)
	case "list_tasks":
		return e.listTasks(ctx, args)
	case "get_task":
		return e.getTask(ctx, args)
	case "update_task":
		return e.updateTask(ctx, args)
	case "delete_task":
		return e.deleteTask(ctx, args)
	case "toggle_complete":
		return e.toggleComplete(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func (e *Executor) createTask(ctx context.Context, args map[string]any) (map[string]any, error) {
	title, err := stringArg(args, "title", true)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateTitle(title); err != nil {
		return nil, err
	}
	description, err := stringArg(args, "description", false)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateDescription(description); err != nil {
		return nil, err
	}
	return e.api.Post(ctx, "/api/tasks", map[string]any{
		"title":       title,
		"description": description,
	})
}

func (e *Executor) listTasks(ctx context.Context, args map[string]any) (map[string]any, error) {
	params := url.Values{}
	if raw, ok := args["completed"]; ok {
		completed, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("completed must be a boolean")
		}
		params.Set("completed", strconv.FormatBool(completed))
	}
	limit := int64(100)
	if raw, ok := args["limit"]; ok {
		n, err := intArg(raw, "limit")
		if err != nil {
			return nil, err
		}
		if n < 1 || n > 1000 {
			return nil, fmt.Errorf("limit must be between 1 and 1000")
		}
		limit = n
	}
	params.Set("limit", strconv.FormatInt(limit, 10))
	if raw, ok := args["offset"]; ok {
		n, err := intArg(raw, "offset")
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("offset must not be negative")
		}
		params.Set("offset", strconv.FormatInt(n, 10))
	}
	return e.api.Get(ctx, "/api/tasks", params)
}

func (e *Executor) getTask(ctx context.Context, args map[string]any) (map[string]any, error) {
	id, err := taskIDArg(args)
	if err != nil {
		return nil, err
	}
	return e.api.Get(ctx, "/api/tasks/"+strconv.FormatInt(id, 10), nil)
}

func (e *Executor) updateTask(ctx context.Context, args map[string]any) (map[string]any, error) {
	id, err := taskIDArg(args)
	if err != nil {
		return nil, err
	}
	body := map[string]any{}
	if raw, ok := args["title"]; ok {
		title, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("title must be a string")
		}
		if err := domain.ValidateTitle(title); err != nil {
			return nil, err
		}
		body["title"] = title
	}
	if raw, ok := args["description"]; ok {
		description, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("description must be a string")
		}
		if err := domain.ValidateDescription(description); err != nil {
			return nil, err
		}
		body["description"] = description
	}
	if raw, ok := args["completed"]; ok {
		completed, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("completed must be a boolean")
		}
		body["completed"] = completed
	}
	return e.api.Patch(ctx, "/api/tasks/"+strconv.FormatInt(id, 10), body)
}

func (e *Executor) deleteTask(ctx context.Context, args map[string]any) (map[string]any, error) {
	id, err := taskIDArg(args)
	if err != nil {
		return nil, err
	}
	if err := e.api.Delete(ctx, "/api/tasks/"+strconv.FormatInt(id, 10)); err != nil {
		return nil, err
	}
	return map[string]any{
		"success": true,
		"message": fmt.Sprintf("Task %d deleted", id),
	}, nil
}

func (e *Executor) toggleComplete(ctx context.Context, args map[string]any) (map[string]any, error) {
	id, err := taskIDArg(args)
	if err != nil {
		return nil, err
	}
	return e.api.Patch(ctx, "/api/tasks/"+strconv.FormatInt(id, 10)+"/complete", nil)
}

// conversationalError turns transport failures into sentences the model
// can repeat to the user as-is.
func conversationalError(err error) string {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return "Your session has expired. Please sign in again."
	case errors.Is(err, client.ErrNotFound):
		return "Task not found. It may have been deleted."
	}
	var se *client.StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	var invalid domain.InvalidTaskDataError
	if errors.As(err, &invalid) {
		return invalid.Message
	}
	return fmt.Sprintf("Unexpected error: %v", err)
}

func stringArg(args map[string]any, key string, required bool) (string, error) {
	raw, ok := args[key]
	if !ok {
		if required {
			return "", fmt.Errorf("%s is required", key)
		}
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return s, nil
}

// intArg accepts the float64 JSON decoding produces, rejecting
// fractional values.
func intArg(raw any, key string) (int64, error) {
	f, ok := raw.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return int64(f), nil
}

func taskIDArg(args map[string]any) (int64, error) {
	raw, ok := args["task_id"]
	if !ok {
		return 0, fmt.Errorf("task_id is required")
	}
	id, err := intArg(raw, "task_id")
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("task_id must be positive")
	}
	return id, nil
}
