package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/bytedance/sonic"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-token", 5*time.Second)
}

func TestGetSendsAuthAndQuery(t *testing.T) {
	var gotAuth, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tasks":[],"total":0}`))
	})

	params := url.Values{}
	params.Set("completed", "true")
	out, err := c.Get(context.Background(), "/api/tasks", params)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("authorization header: %q", gotAuth)
	}
	if gotQuery != "completed=true" {
		t.Fatalf("query: %q", gotQuery)
	}
	if out["total"] != float64(0) {
		t.Fatalf("unexpected body: %#v", out)
	}
}

func TestPostSendsJSONBody(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type: %q", ct)
		}
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1,"title":"Buy milk"}`))
	})

	out, err := c.Post(context.Background(), "/api/tasks", map[string]any{"title": "Buy milk"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if gotBody["title"] != "Buy milk" {
		t.Fatalf("request body: %#v", gotBody)
	}
	if out["id"] != float64(1) {
		t.Fatalf("response body: %#v", out)
	}
}

func TestDeleteNoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method: %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	if err := c.Delete(context.Background(), "/api/tasks/1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestErrorTranslation(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"error":"unauthorized","message":"Invalid or expired token"}`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrUnauthorized) {
					t.Fatalf("expected ErrUnauthorized, got %v", err)
				}
			},
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `{"error":"not_found","message":"Task not found"}`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNotFound) {
					t.Fatalf("expected ErrNotFound, got %v", err)
				}
			},
		},
		{
			name:   "validation error carries message",
			status: http.StatusBadRequest,
			body:   `{"error":"validation_error","message":"Title cannot be empty"}`,
			check: func(t *testing.T, err error) {
				var se *StatusError
				if !errors.As(err, &se) {
					t.Fatalf("expected StatusError, got %v", err)
				}
				if se.Code != http.StatusBadRequest || se.Message != "Title cannot be empty" {
					t.Fatalf("unexpected status error: %#v", se)
				}
			},
		},
		{
			name:   "opaque body falls back to raw text",
			status: http.StatusInternalServerError,
			body:   "boom",
			check: func(t *testing.T, err error) {
				var se *StatusError
				if !errors.As(err, &se) {
					t.Fatalf("expected StatusError, got %v", err)
				}
				if se.Message != "boom" {
					t.Fatalf("unexpected message: %q", se.Message)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Get(context.Background(), "/api/tasks/1", nil)
			if err == nil {
				t.Fatal("expected an error")
			}
			tt.check(t, err)
		})
	}
}

func TestNetworkErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c := New(srv.URL, "test-token", time.Second)
	if _, err := c.Get(context.Background(), "/health", nil); err == nil {
		t.Fatal("expected a transport error against a closed server")
	}
}
