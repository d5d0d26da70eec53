// Package session holds short-lived conversation state for the chatbot.
// A context lives for 30 minutes of inactivity and keeps only the last
// ten messages; older turns are dropped, not archived.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxMessages bounds the history kept per session and therefore the
	// prompt sent to the model.
	MaxMessages = 10
	// TTL is the sliding inactivity window. It refreshes on every
	// appended message, not from creation.
	TTL = 30 * time.Minute
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found or expired")

// ToolCallRecord captures a model-issued tool invocation attached to a
// message.
type ToolCallRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolResultRecord captures the outcome of a tool invocation attached to
// a message.
type ToolResultRecord struct {
	ToolName   string  `json:"tool_name"`
	Success    bool    `json:"success"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// Message is a single conversation turn. Immutable once appended.
type Message struct {
	ID          uuid.UUID          `json:"id"`
	Role        string             `json:"role"`
	Content     string             `json:"content"`
	Timestamp   time.Time          `json:"timestamp"`
	ToolCalls   []ToolCallRecord   `json:"tool_calls,omitempty"`
	ToolResults []ToolResultRecord `json:"tool_results,omitempty"`
}

// Context is the per-session conversation state.
type Context struct {
	SessionID     uuid.UUID `json:"session_id"`
	UserID        string    `json:"user_id,omitempty"`
	Messages      []Message `json:"messages"`
	LastTaskID    int64     `json:"last_task_id,omitempty"`
	LastOperation string    `json:"last_operation,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// NewContext returns a fresh empty context for the given owner.
func NewContext(userID string) *Context {
	now := time.Now().UTC()
	return &Context{
		SessionID: uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(TTL),
	}
}

// AddMessage appends a message, truncates the history to the last ten
// entries and refreshes the expiry window.
func (c *Context) AddMessage(role, content string, toolCalls []ToolCallRecord, toolResults []ToolResultRecord) {
	now := time.Now().UTC()
	c.Messages = append(c.Messages, Message{
		ID:          uuid.New(),
		Role:        role,
		Content:     content,
		Timestamp:   now,
		ToolCalls:   toolCalls,
		ToolResults: toolResults,
	})
	if len(c.Messages) > MaxMessages {
		c.Messages = c.Messages[len(c.Messages)-MaxMessages:]
	}
	c.UpdatedAt = now
	c.ExpiresAt = now.Add(TTL)
}

// UpdateTaskContext records the task id and operation kind of the most
// recent successful tool call so later turns can resolve "that task".
func (c *Context) UpdateTaskContext(taskID int64, operation string) {
	if taskID > 0 {
		c.LastTaskID = taskID
	}
	if operation != "" {
		c.LastOperation = operation
	}
	c.UpdatedAt = time.Now().UTC()
}

// ClearLastTask forgets the referenced task, e.g. after a delete.
func (c *Context) ClearLastTask() {
	c.LastTaskID = 0
}

// Expired reports whether the context is past its expiry time.
func (c *Context) Expired() bool {
	return time.Now().UTC().After(c.ExpiresAt)
}

// Summary renders the task context for the system prompt.
func (c *Context) Summary() string {
	var parts []string
	if c.LastTaskID > 0 {
		parts = append(parts, fmt.Sprintf("Last mentioned task ID: %d", c.LastTaskID))
	}
	if c.LastOperation != "" {
		parts = append(parts, fmt.Sprintf("Last operation: %s", c.LastOperation))
	}
	if len(parts) == 0 {
		return "No previous context"
	}
	return strings.Join(parts, "\n")
}

// Clone returns a deep copy so callers can mutate a context without
// racing the store.
func (c *Context) Clone() *Context {
	cp := *c
	cp.Messages = make([]Message, len(c.Messages))
	copy(cp.Messages, c.Messages)
	return &cp
}

// Store keeps conversation contexts. Reads of expired sessions behave as
// absent and purge the entry; correctness never depends on
// CleanupExpired being called.
type Store interface {
	Create(userID string) (*Context, error)
	Get(sessionID uuid.UUID) (*Context, error)
	Update(c *Context) error
	Delete(sessionID uuid.UUID) error
	CleanupExpired() (int, error)
}
