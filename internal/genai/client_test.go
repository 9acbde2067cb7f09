package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestGenerate(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/models/gemini-1.5-flash:generateContent" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q, want %q", got, "test-key")
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		gotPrompt = req.Contents[0].Parts[0].Text
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"  You've got this. "}]}}]}`)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("test-key", "gemini-1.5-flash", srv.URL)
	got, err := c.Generate(context.Background(), "hello buddy")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "You've got this." {
		t.Errorf("Generate = %q, want %q", got, "You've got this.")
	}
	if gotPrompt != "hello buddy" {
		t.Errorf("prompt = %q, want %q", gotPrompt, "hello buddy")
	}
}

func TestGenerateNoAPIKey(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("", "gemini-1.5-flash", srv.URL)
	if _, err := c.Generate(context.Background(), "hi"); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("error = %v, want ErrNoAPIKey", err)
	}
	if calls.Load() != 0 {
		t.Errorf("server called %d times, want 0", calls.Load())
	}
}

func TestGenerateQuotaErrorNoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("k", "gemini-1.5-flash", srv.URL)
	_, err := c.Generate(context.Background(), "hi")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || apiErr.Status != "RESOURCE_EXHAUSTED" {
		t.Errorf("APIError = %+v", apiErr)
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want exactly 1", calls.Load())
	}
}

func TestGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("k", "gemini-1.5-flash", srv.URL)
	if _, err := c.Generate(context.Background(), "hi"); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("error = %v, want ErrEmptyResponse", err)
	}
}

func TestWithModel(t *testing.T) {
	c := NewClient("k", "a")
	d := c.WithModel("b")
	if c.Model() != "a" || d.Model() != "b" {
		t.Errorf("models = %q, %q; want a, b", c.Model(), d.Model())
	}
}
