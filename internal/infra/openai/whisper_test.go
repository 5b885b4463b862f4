package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"gpt-buddy/internal/domain"
)

func TestWhisperClient_Transcribe(t *testing.T) {
	var gotModel, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing multipart form: %v", err)
		}
		gotModel = r.FormValue("model")
		gotAuth = r.Header.Get("Authorization")

		file, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing audio file part: %v", err)
		}
		file.Close()

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "  turn on the lights  "}`))
	}))
	defer server.Close()

	client := NewWhisperClientWithURL("sk-test", "", server.URL)

	text, err := client.Transcribe(context.Background(), []byte("fake-wav"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "turn on the lights" {
		t.Errorf("expected trimmed transcript, got %q", text)
	}
	if gotModel != "whisper-1" {
		t.Errorf("expected whisper-1, got %q", gotModel)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
}

func TestWhisperClient_EmptyTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"text": "   "}`))
	}))
	defer server.Close()

	client := NewWhisperClientWithURL("sk-test", "", server.URL)

	_, err := client.Transcribe(context.Background(), []byte("fake-wav"))
	if !errors.Is(err, domain.ErrUnintelligible) {
		t.Fatalf("expected ErrUnintelligible, got: %v", err)
	}
}

func TestWhisperClient_ServerError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewWhisperClientWithURL("sk-test", "", server.URL)

	_, err := client.Transcribe(context.Background(), []byte("fake-wav"))
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got: %v", err)
	}
	if calls < 2 {
		t.Errorf("expected retries against a failing server, got %d calls", calls)
	}
}

func TestWhisperClient_LanguageHint(t *testing.T) {
	var gotLanguage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing multipart form: %v", err)
		}
		gotLanguage = r.FormValue("language")
		w.Write([]byte(`{"text": "hola"}`))
	}))
	defer server.Close()

	client := NewWhisperClientWithURL("sk-test", "es", server.URL)

	if _, err := client.Transcribe(context.Background(), []byte("fake-wav")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLanguage != "es" {
		t.Errorf("expected language hint forwarded, got %q", gotLanguage)
	}
}
