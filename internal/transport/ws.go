package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsDialTimeout  = 10 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsDialRetries  = 3
)

// WSStreamer is the streaming transport variant for backends that expose the
// chat stream over a websocket instead of a chunked HTTP body. Each text
// message from the server is one fragment; a normal close ends the reply.
type WSStreamer struct {
	url         string
	idleTimeout time.Duration
	langHint    string
	allowAI     bool
}

// NewWSStreamer creates a websocket streamer for the given ws:// or wss:// URL.
func NewWSStreamer(url string, idleTimeout time.Duration, langHint string, allowAIFallback bool) *WSStreamer {
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleTimeout
	}
	return &WSStreamer{url: url, idleTimeout: idleTimeout, langHint: langHint, allowAI: allowAIFallback}
}

// ChatStream implements the streaming half of the transport contract.
func (s *WSStreamer) ChatStream(ctx context.Context, message string, onFragment func(fragment string)) error {
	conn, err := s.dial(ctx)
	if err != nil {
		return classify(ctx, err)
	}
	defer conn.Close()

	// unblock reads when the caller cancels
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	req := chatRequest{Message: message, LangHint: s.langHint, AllowAIFallback: s.allowAI}
	if err := conn.WriteJSON(req); err != nil {
		return classify(ctx, err)
	}

	for {
		conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ErrCancelled
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return ErrTimedOut
			}
			return &Error{Detail: err.Error()}
		}
		if msgType == websocket.TextMessage && len(data) > 0 {
			onFragment(string(data))
		}
	}
}

// dial connects with bounded retries, backing off between attempts.
func (s *WSStreamer) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := &websocket.Dialer{HandshakeTimeout: wsDialTimeout}

	var lastErr error
	for i := 0; i < wsDialRetries; i++ {
		conn, _, err := dialer.DialContext(ctx, s.url, nil)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(i+1) * time.Second):
		}
	}
	return nil, fmt.Errorf("websocket dial failed after %d attempts: %w", wsDialRetries, lastErr)
}
