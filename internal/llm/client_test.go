package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *HTTPClient) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewHTTPClient(server.URL, "test-key", "main-model", "fast-model", "embed-model", nil)
	return server, client
}

func TestCompleteReturnsTextAndUsage(t *testing.T) {
	var gotReq chatRequest
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing auth header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}],"usage":{"prompt_tokens":12,"completion_tokens":3}}`))
	})

	completion, err := client.Complete(context.Background(), TaskScreeningAssessment, "prompt")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if completion.Text != "hello" {
		t.Fatalf("unexpected text %q", completion.Text)
	}
	if completion.InputTokens != 12 || completion.OutputTokens != 3 {
		t.Fatalf("unexpected usage: %+v", completion)
	}
	if gotReq.Model != "main-model" || gotReq.MaxTokens != 4096 {
		t.Fatalf("unexpected request profile: %+v", gotReq)
	}
}

func TestCompleteFastModelForClassification(t *testing.T) {
	var gotReq chatRequest
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`{"choices":[{"message":{"content":"saas"}}]}`))
	})

	if _, err := client.Complete(context.Background(), TaskClassification, "classify"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotReq.Model != "fast-model" || gotReq.MaxTokens != 256 {
		t.Fatalf("expected fast profile, got %+v", gotReq)
	}
}

func TestCompleteNoTextResponse(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":""}}]}`))
	})

	if _, err := client.Complete(context.Background(), TaskChat, "prompt"); !errors.Is(err, ErrNoTextResponse) {
		t.Fatalf("expected ErrNoTextResponse, got %v", err)
	}
}

func TestCompleteHTTPError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom"}}`))
	})

	if _, err := client.Complete(context.Background(), TaskChat, "prompt"); err == nil {
		t.Fatalf("expected error on http 500")
	}
}

func TestCompleteAPIErrorPayload(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"model overloaded"}}`))
	})

	_, err := client.Complete(context.Background(), TaskChat, "prompt")
	if err == nil {
		t.Fatalf("expected error from api payload")
	}
}

func TestCreateEmbedding(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req embeddingRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "embed-model" {
			t.Errorf("unexpected model %q", req.Model)
		}
		w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	})

	embedding, err := client.CreateEmbedding(context.Background(), "question")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(embedding) != 3 {
		t.Fatalf("unexpected embedding: %v", embedding)
	}
}

func TestModelAndTokenProfiles(t *testing.T) {
	client := NewHTTPClient("http://localhost", "", "main", "fast", "embed", nil)

	if got := client.ModelFor(TaskFullAssessment); got != "main" {
		t.Fatalf("expected main model for full assessment, got %q", got)
	}
	if got := client.ModelFor(TaskClassification); got != "fast" {
		t.Fatalf("expected fast model for classification, got %q", got)
	}
	if got := MaxTokensFor(TaskFullAssessment); got != 8192 {
		t.Fatalf("expected 8192 for full assessment, got %d", got)
	}
	if got := MaxTokensFor(TaskType("unknown")); got != 2048 {
		t.Fatalf("expected default 2048, got %d", got)
	}
}

func TestFastModelDefaultsToMain(t *testing.T) {
	client := NewHTTPClient("http://localhost", "", "main", "", "embed", nil)
	if got := client.ModelFor(TaskClassification); got != "main" {
		t.Fatalf("expected fallback to main model, got %q", got)
	}
}
