package transport

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pyittinehtaung/pth-client/pkg/httpx"
)

// ChatStream sends one message and delivers the reply incrementally.
// Fragments are passed to onFragment in arrival order. The stream ends on
// backend close (nil), user cancellation (ErrCancelled), idle expiry between
// fragments (ErrTimedOut) or a transport failure (*Error).
func (c *Client) ChatStream(ctx context.Context, message string, onFragment func(fragment string)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	res, err := c.postJSON(ctx, c.apiURL("/chat/stream"), c.chatRequest(message))
	if err != nil {
		return classify(ctx, err)
	}
	defer res.Body.Close()

	if err := checkStatus(res); err != nil {
		return err
	}

	frags := make(chan string)
	errc := make(chan error, 1)
	go func() {
		errc <- c.readFragments(ctx, res, frags)
		close(frags)
	}()

	timer := time.NewTimer(c.idleTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			res.Body.Close() // unblock the reader
			<-errc
			if ctx.Err() == context.Canceled {
				return ErrCancelled
			}
			return ErrTimedOut
		case <-timer.C:
			cancel()
			res.Body.Close()
			<-errc
			return ErrTimedOut
		case f, ok := <-frags:
			if !ok {
				if err := <-errc; err != nil && ctx.Err() == nil {
					return classify(ctx, err)
				}
				return nil
			}
			onFragment(f)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(c.idleTimeout)
		}
	}
}

// readFragments pushes reply fragments onto out until the body is drained.
// Both raw chunked text (the backend default) and SSE framing are understood.
func (c *Client) readFragments(ctx context.Context, res *http.Response, out chan<- string) error {
	emit := func(f string) bool {
		if f == "" {
			return true
		}
		select {
		case out <- f:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if strings.HasPrefix(res.Header.Get("Content-Type"), "text/event-stream") {
		return httpx.ScanSSE(res.Body, func(data string) { emit(data) })
	}
	return scanChunks(res.Body, emit)
}

// scanChunks reads the body in chunks, holding back trailing bytes of an
// incomplete UTF-8 rune so every emitted fragment is valid text.
func scanChunks(r io.Reader, emit func(string) bool) error {
	buf := make([]byte, 4096)
	var pending []byte

	for {
		n, err := r.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			cut := completePrefix(pending)
			if cut > 0 {
				if !emit(string(pending[:cut])) {
					return nil
				}
				pending = append(pending[:0], pending[cut:]...)
			}
		}
		if err == io.EOF {
			if len(pending) > 0 {
				emit(string(pending))
			}
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// completePrefix returns the length of the longest prefix of b that ends on
// a UTF-8 rune boundary.
func completePrefix(b []byte) int {
	end := len(b)
	for end > 0 && end > len(b)-utf8.UTFMax {
		if r, _ := utf8.DecodeLastRune(b[:end]); r != utf8.RuneError {
			return end
		}
		end--
	}
	return end
}
