package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// withServer points the client at a test server for the duration of a test
func withServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	originalURL := apiBaseURL
	apiBaseURL = server.URL + "/bot"
	t.Cleanup(func() { apiBaseURL = originalURL })

	return &Client{
		botToken:   "test-token",
		chatID:     "@bcskireport",
		httpClient: &http.Client{},
	}
}

func okResponse(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":     true,
		"result": map[string]interface{}{"message_id": 123},
	})
}

// TestSendPhoto_Success tests a multipart photo upload
func TestSendPhoto_Success(t *testing.T) {
	client := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if r.URL.Path != "/bottest-token/sendPhoto" {
			t.Errorf("path = %s, want /bottest-token/sendPhoto", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error: %v", err)
			return
		}
		if got := r.FormValue("chat_id"); got != "@bcskireport" {
			t.Errorf("chat_id = %q", got)
		}
		if got := r.FormValue("caption"); got != "Grooming Report - Jan 31st" {
			t.Errorf("caption = %q", got)
		}

		file, header, err := r.FormFile("photo")
		if err != nil {
			t.Errorf("FormFile(photo) error: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "png-bytes" {
			t.Errorf("photo = %q", data)
		}
		if !strings.HasSuffix(header.Filename, ".png") {
			t.Errorf("filename = %q, want .png", header.Filename)
		}

		okResponse(w)
	})

	if err := client.SendPhoto(context.Background(), []byte("png-bytes"), "Grooming Report - Jan 31st"); err != nil {
		t.Errorf("SendPhoto() unexpected error: %v", err)
	}
}

// TestSendPhoto_APIError tests an API-level rejection with HTTP 400
func TestSendPhoto_APIError(t *testing.T) {
	client := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":          false,
			"description": "Bad Request: chat not found",
		})
	})

	err := client.SendPhoto(context.Background(), []byte("png"), "caption")
	if err == nil {
		t.Fatal("SendPhoto() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "chat not found") || !strings.Contains(err.Error(), "status 400") {
		t.Errorf("SendPhoto() error = %v", err)
	}
}

// TestSendMessage_Success tests successful message sending
func TestSendMessage_Success(t *testing.T) {
	client := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type application/json, got %s", r.Header.Get("Content-Type"))
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding payload: %v", err)
			return
		}
		if payload["text"] != "Grooming map unavailable" {
			t.Errorf("text = %v", payload["text"])
		}
		okResponse(w)
	})

	if err := client.SendMessage(context.Background(), "Grooming map unavailable"); err != nil {
		t.Errorf("SendMessage() unexpected error: %v", err)
	}
}

// TestSendMessage_APIError tests API error handling
func TestSendMessage_APIError(t *testing.T) {
	client := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":          false,
			"description": "Bad Request: chat not found",
		})
	})

	err := client.SendMessage(context.Background(), "Test message")
	if err == nil {
		t.Error("SendMessage() expected error for API failure, got nil")
	}
	if err != nil && !strings.Contains(err.Error(), "Bad Request") {
		t.Errorf("SendMessage() error = %v, want error containing 'Bad Request'", err)
	}
}

// TestSendMessage_HTTPError tests HTTP error handling
func TestSendMessage_HTTPError(t *testing.T) {
	client := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	})

	err := client.SendMessage(context.Background(), "Test message")
	if err == nil {
		t.Error("SendMessage() expected error for HTTP error, got nil")
	}
	if err != nil && !strings.Contains(err.Error(), "status 500") {
		t.Errorf("SendMessage() error = %v, want error containing 'status 500'", err)
	}
}

// TestSendMessage_InvalidJSON tests a 200 response that is not JSON
func TestSendMessage_InvalidJSON(t *testing.T) {
	client := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	if err := client.SendMessage(context.Background(), "Test"); err == nil {
		t.Error("SendMessage() expected parse error, got nil")
	}
}

// TestTransportError_RedactsToken tests that connection failures do not leak the bot token
func TestTransportError_RedactsToken(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	closedURL := server.URL
	server.Close()

	originalURL := apiBaseURL
	apiBaseURL = closedURL + "/bot"
	t.Cleanup(func() { apiBaseURL = originalURL })

	client, err := NewClient("123456:SECRET-TOKEN", "@bcskireport")
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	sends := map[string]func() error{
		"sendPhoto": func() error {
			return client.SendPhoto(context.Background(), []byte("png"), "caption")
		},
		"sendMessage": func() error {
			return client.SendMessage(context.Background(), "alert")
		},
	}
	for name, send := range sends {
		t.Run(name, func(t *testing.T) {
			err := send()
			if err == nil {
				t.Fatal("expected connection error, got nil")
			}
			if strings.Contains(err.Error(), "SECRET-TOKEN") {
				t.Errorf("error leaks bot token: %v", err)
			}
			if !strings.Contains(err.Error(), "<redacted>") {
				t.Errorf("error = %v, want redacted URL", err)
			}
		})
	}
}
