package transport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyittinehtaung/pth-client/internal/transport"
)

func newBackend(t *testing.T, wire func(r chi.Router)) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	wire(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestChatForwardsRequestFields(t *testing.T) {
	var got map[string]any
	srv := newBackend(t, func(r chi.Router) {
		r.Post("/api/chat", func(w http.ResponseWriter, req *http.Request) {
			require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
			json.NewEncoder(w).Encode(map[string]any{
				"reply":    "stay safe",
				"language": "en",
				"reasoning": map[string]any{
					"intent": "otp_phishing",
				},
			})
		})
	})

	c := transport.NewClient(transport.Options{
		BaseURL:         srv.URL,
		LangHint:        "en",
		AllowAIFallback: true,
	})
	c.SetSessionID("sess-42")

	reply, err := c.Chat(context.Background(), "someone asked for my OTP")
	require.NoError(t, err)

	assert.Equal(t, "someone asked for my OTP", got["message"])
	assert.Equal(t, "en", got["lang_hint"])
	assert.Equal(t, true, got["allow_ai_fallback"])
	assert.Equal(t, "sess-42", got["session_id"])

	assert.Equal(t, "stay safe", reply.Reply)
	assert.Equal(t, "otp_phishing", reply.Intent, "intent must decode from the nested reasoning shape")
	assert.Equal(t, "en", reply.Language)
}

func TestChatFlatIntentShape(t *testing.T) {
	srv := newBackend(t, func(r chi.Router) {
		r.Post("/api/chat", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"reply":"hi","intent":"greeting","language":"my"}`))
		})
	})

	c := transport.NewClient(transport.Options{BaseURL: srv.URL})
	reply, err := c.Chat(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "greeting", reply.Intent)
	assert.Equal(t, "my", reply.Language)
}

func TestChatExtractsErrorDetail(t *testing.T) {
	srv := newBackend(t, func(r chi.Router) {
		r.Post("/api/chat", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"detail":"message must not be empty"}`))
		})
	})

	c := transport.NewClient(transport.Options{BaseURL: srv.URL})
	_, err := c.Chat(context.Background(), "")
	var te *transport.Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusUnprocessableEntity, te.Status)
	assert.Equal(t, "message must not be empty", te.Detail)
}

func TestChatStreamDeliversFragmentsInOrder(t *testing.T) {
	srv := newBackend(t, func(r chi.Router) {
		r.Post("/api/chat/stream", func(w http.ResponseWriter, _ *http.Request) {
			fl, ok := w.(http.Flusher)
			require.True(t, ok)
			for _, chunk := range []string{"Never ", "share ", "your OTP."} {
				w.Write([]byte(chunk))
				fl.Flush()
				time.Sleep(10 * time.Millisecond)
			}
		})
	})

	c := transport.NewClient(transport.Options{BaseURL: srv.URL})
	var got string
	err := c.ChatStream(context.Background(), "hi", func(f string) { got += f })
	require.NoError(t, err)
	assert.Equal(t, "Never share your OTP.", got)
}

func TestChatStreamUnderstandsSSE(t *testing.T) {
	srv := newBackend(t, func(r chi.Router) {
		r.Post("/api/chat/stream", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			fl := w.(http.Flusher)
			for _, data := range []string{"one", "two"} {
				w.Write([]byte("data: " + data + "\n\n"))
				fl.Flush()
			}
		})
	})

	c := transport.NewClient(transport.Options{BaseURL: srv.URL})
	var frags []string
	err := c.ChatStream(context.Background(), "hi", func(f string) { frags = append(frags, f) })
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, frags)
}

func TestChatStreamIdleTimeout(t *testing.T) {
	srv := newBackend(t, func(r chi.Router) {
		r.Post("/api/chat/stream", func(w http.ResponseWriter, req *http.Request) {
			fl := w.(http.Flusher)
			w.Write([]byte("partial"))
			fl.Flush()
			// stall until the client gives up and closes the request
			select {
			case <-req.Context().Done():
			case <-time.After(5 * time.Second):
			}
		})
	})

	c := transport.NewClient(transport.Options{
		BaseURL:     srv.URL,
		IdleTimeout: 50 * time.Millisecond,
	})
	var got string
	err := c.ChatStream(context.Background(), "hi", func(f string) { got += f })
	assert.ErrorIs(t, err, transport.ErrTimedOut)
	assert.Equal(t, "partial", got)
}

func TestChatStreamCancellation(t *testing.T) {
	srv := newBackend(t, func(r chi.Router) {
		r.Post("/api/chat/stream", func(w http.ResponseWriter, req *http.Request) {
			fl := w.(http.Flusher)
			w.Write([]byte("first"))
			fl.Flush()
			select {
			case <-req.Context().Done():
			case <-time.After(5 * time.Second):
			}
		})
	})

	c := transport.NewClient(transport.Options{BaseURL: srv.URL})
	ctx, cancel := context.WithCancel(context.Background())
	err := c.ChatStream(ctx, "hi", func(string) { cancel() })
	assert.ErrorIs(t, err, transport.ErrCancelled)
}

func TestAnalyze(t *testing.T) {
	srv := newBackend(t, func(r chi.Router) {
		r.Post("/api/analyze", func(w http.ResponseWriter, req *http.Request) {
			var payload map[string]any
			require.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
			assert.Equal(t, "click here to verify", payload["text"])
			json.NewEncoder(w).Encode(transport.RiskReport{
				RiskLevel: "high",
				Score:     87,
				Findings: []transport.RiskFinding{
					{Rule: "url-mismatch", Detail: "domain spoof"},
				},
			})
		})
	})

	c := transport.NewClient(transport.Options{BaseURL: srv.URL})
	report, err := c.Analyze(context.Background(), "click here to verify", []string{"http://b4nk.example"})
	require.NoError(t, err)
	assert.Equal(t, "high", report.RiskLevel)
	assert.Equal(t, 87, report.Score)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "url-mismatch", report.Findings[0].Rule)
}

func TestUploadSendsMultipartFile(t *testing.T) {
	srv := newBackend(t, func(r chi.Router) {
		r.Post("/api/upload", func(w http.ResponseWriter, req *http.Request) {
			f, header, err := req.FormFile("file")
			require.NoError(t, err)
			defer f.Close()
			assert.Equal(t, "shot.png", header.Filename)
			json.NewEncoder(w).Encode(transport.RiskReport{RiskLevel: "low", Score: 3})
		})
	})

	c := transport.NewClient(transport.Options{BaseURL: srv.URL})
	report, err := c.Upload(context.Background(), "shot.png", bytes.NewReader([]byte("png-bytes")))
	require.NoError(t, err)
	assert.Equal(t, "low", report.RiskLevel)
}

func TestHealthAcceptsBothShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		ok   bool
	}{
		{"healthz shape", `{"status":"healthy"}`, true},
		{"root shape", `{"ok":true}`, true},
		{"degraded", `{"status":"degraded"}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newBackend(t, func(r chi.Router) {
				r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
					w.Write([]byte(tc.body))
				})
			})
			c := transport.NewClient(transport.Options{BaseURL: srv.URL})
			err := c.Health(context.Background())
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestChatUnreachableBackend(t *testing.T) {
	c := transport.NewClient(transport.Options{BaseURL: "http://127.0.0.1:1"})
	_, err := c.Chat(context.Background(), "hi")
	var te *transport.Error
	if !errors.As(err, &te) && !errors.Is(err, transport.ErrTimedOut) {
		t.Fatalf("expected transport failure, got %v", err)
	}
}
