package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Aliladla/hackathon2phase3/chat/session"
)

// stubRunner echoes the message back and records what it saw.
type stubRunner struct {
	lastToken   string
	lastMessage string
}

func (s *stubRunner) Run(ctx context.Context, sess *session.Context, token, message string) string {
	s.lastToken = token
	s.lastMessage = message
	sess.AddMessage(session.RoleUser, message, nil, nil)
	reply := "echo: " + message
	sess.AddMessage(session.RoleAssistant, reply, nil, nil)
	return reply
}

func newTestServer(t *testing.T) (*echo.Echo, session.Store, *stubRunner) {
	t.Helper()
	store := session.NewMemoryStore()
	runner := &stubRunner{}
	e := echo.New()
	Register(e, store, runner, Info{BackendURL: "http://backend:8000", Model: "gpt-4o-mini"}, nil)
	return e, store, runner
}

func doJSON(e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = strings.NewReader(string(payload))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestChatCreatesSessionWhenNoneGiven(t *testing.T) {
	e, store, runner := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/chat", "jwt-token", map[string]string{"message": "hello"})
	if rec.Code != http.StatusOK {
		t.Fatalf("chat: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Response  string    `json:"response"`
		SessionID uuid.UUID `json:"session_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Response != "echo: hello" {
		t.Fatalf("response: %q", resp.Response)
	}
	if runner.lastToken != "jwt-token" {
		t.Fatalf("token not passed through: %q", runner.lastToken)
	}

	sess, err := store.Get(resp.SessionID)
	if err != nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if len(sess.Messages) != 2 {
		t.Fatalf("turn not saved: %d messages", len(sess.Messages))
	}
}

func TestChatContinuesExistingSession(t *testing.T) {
	e, store, _ := newTestServer(t)
	sess, _ := store.Create("")

	rec := doJSON(e, http.MethodPost, "/chat", "jwt-token", map[string]string{
		"message":    "first",
		"session_id": sess.SessionID.String(),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("chat: %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(e, http.MethodPost, "/chat", "jwt-token", map[string]string{
		"message":    "second",
		"session_id": sess.SessionID.String(),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("chat: %d %s", rec.Code, rec.Body.String())
	}

	got, err := store.Get(sess.SessionID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Messages) != 4 {
		t.Fatalf("expected both turns persisted, got %d messages", len(got.Messages))
	}
}

func TestChatRejectsBadBearer(t *testing.T) {
	e, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Token abc")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d %s", rec.Code, rec.Body.String())
	}

	if rec := doJSON(e, http.MethodPost, "/chat", "", map[string]string{"message": "hi"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: expected 401, got %d", rec.Code)
	}
}

func TestChatValidation(t *testing.T) {
	e, _, _ := newTestServer(t)

	if rec := doJSON(e, http.MethodPost, "/chat", "jwt", map[string]string{"message": "   "}); rec.Code != http.StatusBadRequest {
		t.Fatalf("blank message: expected 400, got %d", rec.Code)
	}
	if rec := doJSON(e, http.MethodPost, "/chat", "jwt", map[string]string{"message": "hi", "session_id": "not-a-uuid"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad session id: expected 400, got %d", rec.Code)
	}
}

func TestChatUnknownSessionIs404(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/chat", "jwt", map[string]string{
		"message":    "hi",
		"session_id": uuid.NewString(),
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestSessionLifecycle(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/sessions", "", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: %d %s", rec.Code, rec.Body.String())
	}
	var created struct {
		SessionID uuid.UUID `json:"session_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doJSON(e, http.MethodGet, fmt.Sprintf("/sessions/%s/context", created.SessionID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("context: %d %s", rec.Code, rec.Body.String())
	}
	var ctx struct {
		MessageCount int `json:"message_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &ctx); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ctx.MessageCount != 0 {
		t.Fatalf("fresh session message count: %d", ctx.MessageCount)
	}

	rec = doJSON(e, http.MethodDelete, fmt.Sprintf("/sessions/%s", created.SessionID), "", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(e, http.MethodGet, fmt.Sprintf("/sessions/%s/context", created.SessionID), "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("context after delete: %d", rec.Code)
	}
}

func TestCleanupReportsPurgedCount(t *testing.T) {
	e, store, _ := newTestServer(t)
	stale, _ := store.Create("")
	expired := stale.Clone()
	expired.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	if err := store.Update(expired); err != nil {
		t.Fatalf("update: %v", err)
	}

	rec := doJSON(e, http.MethodPost, "/sessions/cleanup", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cleanup: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		PurgedCount int `json:"purged_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.PurgedCount != 1 {
		t.Fatalf("purged count: %d", resp.PurgedCount)
	}
}

func TestHealth(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "healthy" || resp["backend_url"] == "" || resp["model"] == "" {
		t.Fatalf("health body: %#v", resp)
	}
}
