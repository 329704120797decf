package send

import (
	"sync"
	"time"
)

// duplicateWindow suppresses exact-duplicate resubmission (double click, key
// repeat). It is a heuristic: duplicates outside the window are accepted.
const duplicateWindow = 2 * time.Second

// Guard is the concurrency gate in front of the pipeline. One guard covers
// the whole client: only one session is ever sending as driven by one UI.
type Guard struct {
	mu       sync.Mutex
	inFlight bool
	lastText string
	lastAt   time.Time
	window   time.Duration
	now      func() time.Time
}

// NewGuard creates a guard; window <= 0 selects the default.
func NewGuard(window time.Duration) *Guard {
	if window <= 0 {
		window = duplicateWindow
	}
	return &Guard{window: window, now: time.Now}
}

// TryAcquire accepts the send unless one is already in flight or text is an
// exact duplicate of the previous accepted send within the window.
func (g *Guard) TryAcquire(text string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if g.inFlight {
		return false
	}
	if text == g.lastText && now.Sub(g.lastAt) < g.window {
		return false
	}

	g.inFlight = true
	g.lastText = text
	g.lastAt = now
	return true
}

// Release ends the in-flight send. Called exactly once per successful
// TryAcquire, on every exit path.
func (g *Guard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inFlight = false
}

// Forget clears the duplicate-suppression record. Called when a send fails,
// so retrying the same text is accepted immediately.
func (g *Guard) Forget() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastText = ""
	g.lastAt = time.Time{}
}
