package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateRoundTrip(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"hello from model"}}]}`))
	}))
	defer srv.Close()

	c := New("test-model", "sk-test", srv.URL)
	out, err := c.Generate(context.Background(), map[string]string{
		"system": "be terse",
		"role":   "you are a planner",
		"goal":   "build a thing",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "hello from model" {
		t.Errorf("out = %q", out)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Fatalf("messages = %+v", gotReq.Messages)
	}
	if !strings.Contains(gotReq.Messages[0].Content, "you are a planner") {
		t.Errorf("system message = %q", gotReq.Messages[0].Content)
	}
	if !strings.Contains(gotReq.Messages[1].Content, "## goal\nbuild a thing") {
		t.Errorf("user message = %q", gotReq.Messages[1].Content)
	}
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	c := New("m", "k", srv.URL)
	_, err := c.Generate(context.Background(), map[string]string{"goal": "x"})
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateNoKey(t *testing.T) {
	c := New("m", "", "http://unused")
	if _, err := c.Generate(context.Background(), nil); err == nil {
		t.Fatal("expected error without API key")
	}
}
