// Package upload injects a screenshot-analysis report into the conversation
// through the session store's message-append contract.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pyittinehtaung/pth-client/internal/model/chat"
	"github.com/pyittinehtaung/pth-client/internal/render"
	"github.com/pyittinehtaung/pth-client/internal/service/session"
	"github.com/pyittinehtaung/pth-client/internal/transport"
)

// Analyzer is the slice of the backend client the flow needs.
type Analyzer interface {
	Upload(ctx context.Context, filename string, r io.Reader) (transport.RiskReport, error)
}

// Flow runs uploads against the active session.
type Flow struct {
	sessions *session.Store
	backend  Analyzer
}

// New wires an upload flow.
func New(sessions *session.Store, backend Analyzer) *Flow {
	return &Flow{sessions: sessions, backend: backend}
}

// Run appends a user message naming the file (never its content), submits it
// for analysis and appends the report, or the error detail, as a single
// assistant message. The user message is never left without a follow-up.
func (f *Flow) Run(ctx context.Context, path string, r io.Reader) error {
	sid := f.sessions.ActiveID()
	name := filepath.Base(path)

	if err := f.sessions.AppendMessage(ctx, sid, chat.Message{
		Role: chat.RoleUser,
		Text: "Uploaded file: " + name,
	}); err != nil {
		return err
	}

	var text string
	report, err := f.backend.Upload(ctx, name, r)
	if err != nil {
		text = "Could not analyze " + name + ": " + errorDetail(err)
	} else {
		text = FormatReport(report)
	}

	return f.sessions.AppendMessage(ctx, sid, chat.Message{
		Role: chat.RoleAssistant,
		Text: render.Render(text),
	})
}

// FormatReport renders a risk report deterministically: a risk/score line,
// then one numbered line per finding.
func FormatReport(r transport.RiskReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Risk level: %s (score %d)", r.RiskLevel, r.Score)
	for i, f := range r.Findings {
		b.WriteString("\n")
		if f.Detail != "" {
			fmt.Fprintf(&b, "%d. %s — %s", i+1, f.Rule, f.Detail)
		} else {
			fmt.Fprintf(&b, "%d. %s", i+1, f.Rule)
		}
	}
	return b.String()
}

func errorDetail(err error) string {
	var te *transport.Error
	if errors.As(err, &te) && te.Detail != "" {
		return te.Detail
	}
	return err.Error()
}
