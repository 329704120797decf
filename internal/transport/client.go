// Package transport abstracts the assistant backend HTTP surface: unary and
// streamed chat, text/link analysis, screenshot upload and health probing.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pyittinehtaung/pth-client/pkg/httpx"
)

// Terminal outcomes distinct from a plain transport failure.
var (
	ErrTimedOut  = errors.New("request timed out")
	ErrCancelled = errors.New("request cancelled")
)

// Error is a non-2xx or network-level failure, with detail extracted
// best-effort from a structured error body.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
	}
	return "backend request failed: " + e.Detail
}

const (
	defaultTimeout     = 30 * time.Second
	defaultIdleTimeout = 30 * time.Second
	defaultAPIPrefix   = "/api"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the backend origin, e.g. "http://localhost:8000".
	BaseURL string

	// APIPrefix is prepended to API paths; defaults to "/api".
	// The health endpoint is always probed at the origin root.
	APIPrefix string

	// Timeout bounds unary requests; defaults to 30s.
	Timeout time.Duration

	// IdleTimeout bounds the wait between streamed fragments; defaults to 30s.
	IdleTimeout time.Duration

	// LangHint is forwarded as lang_hint when set ("en" or "my").
	LangHint string

	// AllowAIFallback lets the backend fall back to its model when rules
	// fail to match.
	AllowAIFallback bool

	// SessionID is forwarded so the backend can keep follow-up context.
	SessionID string

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client talks to the assistant backend.
type Client struct {
	baseURL       string
	prefix        string
	http          *http.Client
	timeout       time.Duration
	idleTimeout   time.Duration
	langHint      string
	allowFallback bool
	sessionID     string
}

// NewClient builds a backend client from options.
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		prefix:        opts.APIPrefix,
		http:          opts.HTTPClient,
		timeout:       opts.Timeout,
		idleTimeout:   opts.IdleTimeout,
		langHint:      opts.LangHint,
		allowFallback: opts.AllowAIFallback,
		sessionID:     opts.SessionID,
	}
	if c.prefix == "" {
		c.prefix = defaultAPIPrefix
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.idleTimeout <= 0 {
		c.idleTimeout = defaultIdleTimeout
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c
}

// SetSessionID updates the session id forwarded on chat requests.
func (c *Client) SetSessionID(id string) { c.sessionID = id }

// ChatReply is the settled result of a unary chat request.
type ChatReply struct {
	Reply    string
	Intent   string
	Language string
}

type chatRequest struct {
	Message         string `json:"message"`
	LangHint        string `json:"lang_hint,omitempty"`
	AllowAIFallback bool   `json:"allow_ai_fallback"`
	SessionID       string `json:"session_id,omitempty"`
}

// chatResponse accepts both the flat shape and the nested reasoning shape.
type chatResponse struct {
	Reply     string `json:"reply"`
	Intent    string `json:"intent"`
	Language  string `json:"language"`
	Reasoning struct {
		Intent string `json:"intent"`
	} `json:"reasoning"`
}

// Chat sends one message and awaits the full reply.
func (c *Client) Chat(ctx context.Context, message string) (ChatReply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.postJSON(ctx, c.apiURL("/chat"), c.chatRequest(message))
	if err != nil {
		return ChatReply{}, classify(ctx, err)
	}
	defer res.Body.Close()

	if err := checkStatus(res); err != nil {
		return ChatReply{}, err
	}

	var payload chatResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return ChatReply{}, &Error{Detail: "malformed chat response: " + err.Error()}
	}

	intent := payload.Intent
	if intent == "" {
		intent = payload.Reasoning.Intent
	}
	return ChatReply{Reply: payload.Reply, Intent: intent, Language: payload.Language}, nil
}

// RiskFinding is one triggered detection rule.
type RiskFinding struct {
	Rule   string `json:"rule"`
	Detail string `json:"detail,omitempty"`
}

// RiskReport is the result of analyzing text, links or an uploaded screenshot.
type RiskReport struct {
	RiskLevel string        `json:"risk_level"`
	Score     int           `json:"score"`
	Findings  []RiskFinding `json:"findings"`
	Language  string        `json:"language,omitempty"`
}

type analyzeRequest struct {
	Text     string   `json:"text,omitempty"`
	URLs     []string `json:"urls,omitempty"`
	LangHint string   `json:"lang_hint,omitempty"`
}

// Analyze submits text and/or urls for scam analysis.
func (c *Client) Analyze(ctx context.Context, text string, urls []string) (RiskReport, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := analyzeRequest{Text: text, URLs: urls, LangHint: c.langHint}
	res, err := c.postJSON(ctx, c.apiURL("/analyze"), req)
	if err != nil {
		return RiskReport{}, classify(ctx, err)
	}
	defer res.Body.Close()

	if err := checkStatus(res); err != nil {
		return RiskReport{}, err
	}

	var report RiskReport
	if err := json.NewDecoder(res.Body).Decode(&report); err != nil {
		return RiskReport{}, &Error{Detail: "malformed analyze response: " + err.Error()}
	}
	return report, nil
}

// Health probes the backend. Accepts both the /healthz shape
// {"status":"healthy"} and the root shape {"ok":true}.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return classify(ctx, err)
	}
	defer res.Body.Close()

	if err := checkStatus(res); err != nil {
		return err
	}

	var payload struct {
		Status string `json:"status"`
		OK     *bool  `json:"ok"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return &Error{Detail: "malformed health response: " + err.Error()}
	}
	if payload.OK != nil && !*payload.OK {
		return &Error{Detail: "backend reports not ok"}
	}
	if payload.Status != "" && payload.Status != "healthy" && payload.Status != "ok" {
		return &Error{Detail: "backend reports status " + payload.Status}
	}
	return nil
}

func (c *Client) chatRequest(message string) chatRequest {
	return chatRequest{
		Message:         message,
		LangHint:        c.langHint,
		AllowAIFallback: c.allowFallback,
		SessionID:       c.sessionID,
	}
}

func (c *Client) apiURL(path string) string {
	return c.baseURL + c.prefix + path
}

func (c *Client) postJSON(ctx context.Context, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

// checkStatus converts a non-2xx response into an *Error with extracted detail.
func checkStatus(res *http.Response) error {
	if res.StatusCode/100 == 2 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 64*1024))
	return &Error{Status: res.StatusCode, Detail: httpx.ErrorDetail(raw)}
}

// classify maps low-level request errors to the outcome taxonomy: user
// cancellation, deadline expiry, or plain transport failure.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) {
		return ErrCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimedOut
	}
	switch ctx.Err() {
	case context.Canceled:
		return ErrCancelled
	case context.DeadlineExceeded:
		return ErrTimedOut
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimedOut
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
	}
	return &Error{Detail: err.Error()}
}
