package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// assistantServer fakes the small slice of the Assistants v2 API the client
// touches: thread creation, messages, runs.
func assistantServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()

	var paths []string
	mux := http.NewServeMux()

	mux.HandleFunc("POST /threads", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"id": "thread_abc"})
	})
	mux.HandleFunc("POST /threads/thread_abc/messages", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		var body struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding message body: %v", err)
		}
		if body.Role != "user" {
			t.Errorf("expected user role, got %q", body.Role)
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "msg_1"})
	})
	mux.HandleFunc("POST /threads/thread_abc/runs", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		var body struct {
			AssistantID string `json:"assistant_id"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.AssistantID != "asst_123" {
			t.Errorf("expected assistant id forwarded, got %q", body.AssistantID)
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "run_xyz", "status": "queued"})
	})
	mux.HandleFunc("GET /threads/thread_abc/runs/run_xyz", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"id": "run_xyz", "status": "completed"})
	})
	mux.HandleFunc("GET /threads/thread_abc/messages", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"data": [{"content": [{"text": {"value": "the reply"}}]}]}`))
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("OpenAI-Beta") != "assistants=v2" {
			t.Errorf("missing assistants beta header on %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing auth header on %s %s", r.Method, r.URL.Path)
		}
		mux.ServeHTTP(w, r)
	}))

	return server, &paths
}

func TestAssistantClient_FullExchange(t *testing.T) {
	server, paths := assistantServer(t)
	defer server.Close()

	client := NewAssistantClientWithURL("sk-test", "asst_123", server.URL)
	ctx := context.Background()

	threadID, err := client.CreateConversation(ctx)
	if err != nil {
		t.Fatalf("creating conversation: %v", err)
	}
	if threadID != "thread_abc" {
		t.Fatalf("unexpected thread id %q", threadID)
	}

	if err := client.PostMessage(ctx, threadID, "hello there"); err != nil {
		t.Fatalf("posting message: %v", err)
	}

	runID, err := client.StartRun(ctx, threadID)
	if err != nil {
		t.Fatalf("starting run: %v", err)
	}
	if runID != "run_xyz" {
		t.Fatalf("unexpected run id %q", runID)
	}

	done, err := client.RunCompleted(ctx, threadID, runID)
	if err != nil {
		t.Fatalf("checking run: %v", err)
	}
	if !done {
		t.Fatal("expected completed run")
	}

	reply, err := client.LatestReply(ctx, threadID)
	if err != nil {
		t.Fatalf("fetching reply: %v", err)
	}
	if reply != "the reply" {
		t.Errorf("unexpected reply %q", reply)
	}

	if len(*paths) != 5 {
		t.Errorf("expected 5 API calls, got %d: %v", len(*paths), *paths)
	}
}

func TestAssistantClient_RunStillQueued(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "run_xyz", "status": "in_progress"})
	}))
	defer server.Close()

	client := NewAssistantClientWithURL("sk-test", "asst_123", server.URL)

	done, err := client.RunCompleted(context.Background(), "thread_abc", "run_xyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done {
		t.Error("in_progress run must not report completed")
	}
}

func TestAssistantClient_EmptyThread(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client := NewAssistantClientWithURL("sk-test", "asst_123", server.URL)

	if _, err := client.LatestReply(context.Background(), "thread_abc"); err == nil {
		t.Fatal("expected error for thread without messages")
	}
}
