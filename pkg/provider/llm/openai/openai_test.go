package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	oai "github.com/openai/openai-go"

	"github.com/careervani/careervani/pkg/provider/llm"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	if _, err := New("", "gpt-4o-mini"); err == nil {
		t.Error("expected error for empty apiKey")
	}
	if _, err := New("sk-test", ""); err == nil {
		t.Error("expected error for empty model")
	}
}

func TestToParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role    string
		wantErr bool
		check   func(oai.ChatCompletionMessageParamUnion) bool
	}{
		{llm.RoleSystem, false, func(u oai.ChatCompletionMessageParamUnion) bool { return u.OfSystem != nil }},
		{llm.RoleUser, false, func(u oai.ChatCompletionMessageParamUnion) bool { return u.OfUser != nil }},
		{llm.RoleAssistant, false, func(u oai.ChatCompletionMessageParamUnion) bool { return u.OfAssistant != nil }},
		{"tool", true, nil},
	}
	for _, tc := range tests {
		u, err := toParam(llm.Message{Role: tc.role, Content: "x"})
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tc.role, err, tc.wantErr)
			continue
		}
		if tc.check != nil && !tc.check(u) {
			t.Errorf("%s: wrong union member set", tc.role)
		}
	}
}

func TestJSONModeSupported(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"gpt-4o-mini":   true,
		"gpt-4.1":       true,
		"gpt-4-turbo":   true,
		"gpt-4":         false,
		"gpt-4-0613":    false,
		"o1-mini":       false,
		"o3-mini":       true,
		"gpt-3.5-turbo": true,
		"local-model":   true,
	}
	for model, want := range tests {
		if got := jsonModeSupported(model); got != want {
			t.Errorf("jsonModeSupported(%q) = %v, want %v", model, got, want)
		}
	}
}

func TestBuildParams(t *testing.T) {
	t.Parallel()

	p, err := New("sk-test", "gpt-4o-mini")
	if err != nil {
		t.Fatal(err)
	}
	params, err := p.buildParams(llm.CompletionRequest{
		System:      "Translate to English.",
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "Namaste"}},
		Temperature: 0.2,
		MaxTokens:   64,
	})
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if len(params.Messages) != 2 {
		t.Fatalf("got %d messages, want system + user", len(params.Messages))
	}
	if params.Messages[0].OfSystem == nil {
		t.Error("first message must be the system prompt")
	}
	if string(params.Model) != "gpt-4o-mini" {
		t.Errorf("Model = %q", params.Model)
	}
	if params.ResponseFormat.OfJSONObject != nil {
		t.Error("text requests must not set a response format")
	}

	if _, err := p.buildParams(llm.CompletionRequest{}); err == nil {
		t.Error("expected error for request without messages")
	}
}

func TestBuildParams_JSONFormat(t *testing.T) {
	t.Parallel()

	req := llm.Prompt("Return JSON.", "I has a car.")
	req.Format = llm.FormatJSON

	modern, _ := New("sk-test", "gpt-4o-mini")
	params, err := modern.buildParams(req)
	if err != nil {
		t.Fatal(err)
	}
	if params.ResponseFormat.OfJSONObject == nil {
		t.Error("gpt-4o-mini: json_object response format not set")
	}

	legacy, _ := New("sk-test", "gpt-4")
	params, err = legacy.buildParams(req)
	if err != nil {
		t.Fatal(err)
	}
	if params.ResponseFormat.OfJSONObject != nil {
		t.Error("gpt-4: json_object must not be sent to a model without JSON mode")
	}
}

func TestComplete_AgainstMockServer(t *testing.T) {
	t.Parallel()

	gotModel := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel <- body.Model
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini-2024-07-18",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "Hello"}}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 1, "total_tokens": 6}
		}`))
	}))
	defer srv.Close()

	p, err := New("sk-test", "gpt-4o-mini", WithBaseURL(srv.URL+"/"), WithMaxRetries(0))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := p.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "Namaste"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "Hello" {
		t.Errorf("Content = %q, want Hello", resp.Content)
	}
	if resp.Usage.TotalTokens != 6 {
		t.Errorf("TotalTokens = %d, want 6", resp.Usage.TotalTokens)
	}
	if resp.Model != "gpt-4o-mini-2024-07-18" || resp.Truncated {
		t.Errorf("Model = %q, Truncated = %v", resp.Model, resp.Truncated)
	}
	if m := <-gotModel; m != "gpt-4o-mini" {
		t.Errorf("server saw model %q", m)
	}
}

func TestComplete_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, _ := New("sk-test", "gpt-4o-mini", WithBaseURL(srv.URL+"/"), WithMaxRetries(0))
	if _, err := p.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	}); err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}
