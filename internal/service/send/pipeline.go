// Package send orchestrates one user send: guard, message appends, transport
// invocation, fragment application and finalization.
package send

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/pyittinehtaung/pth-client/internal/annotate"
	"github.com/pyittinehtaung/pth-client/internal/model/chat"
	"github.com/pyittinehtaung/pth-client/internal/render"
	"github.com/pyittinehtaung/pth-client/internal/service/session"
	"github.com/pyittinehtaung/pth-client/internal/transport"
)

// Rejections happen before any state change and are not user-visible errors.
var (
	ErrEmptyMessage = errors.New("empty message")
	ErrSendRejected = errors.New("send rejected by guard")
)

// Terminal texts replacing the reserved assistant placeholder on failure.
// The placeholder is never left empty.
const (
	timedOutText  = "The request timed out. Please try again."
	cancelledText = "Request cancelled."
	failedPrefix  = "Sorry, something went wrong: "
)

// Converser is the slice of the backend client the pipeline drives.
type Converser interface {
	Chat(ctx context.Context, message string) (transport.ChatReply, error)
	ChatStream(ctx context.Context, message string, onFragment func(fragment string)) error
}

// Options tunes a pipeline.
type Options struct {
	// Streaming selects the streamed transport variant.
	Streaming bool

	// LangHint biases note-language selection when the backend does not
	// report a language.
	LangHint string
}

// Pipeline turns user input into a settled assistant reply on the active
// session, under the guard.
type Pipeline struct {
	sessions  *session.Store
	guard     *Guard
	backend   Converser
	streaming bool
	langHint  string
}

// New wires a pipeline over the session store, guard and backend client.
func New(sessions *session.Store, guard *Guard, backend Converser, opts Options) *Pipeline {
	return &Pipeline{
		sessions:  sessions,
		guard:     guard,
		backend:   backend,
		streaming: opts.Streaming,
		langHint:  opts.LangHint,
	}
}

// Send runs one send against the currently active session. Transport
// failures are converted into a visible assistant message and not returned;
// the only errors are the pre-mutation rejections and a vanished session.
func (p *Pipeline) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if !p.guard.TryAcquire(text) {
		return ErrSendRejected
	}
	defer p.guard.Release()

	// The session id is captured once here. Every later mutation targets
	// this id, so fragments can never land on a session the user switched
	// to mid-stream.
	sid := p.sessions.ActiveID()

	if err := p.sessions.AppendMessage(ctx, sid, chat.Message{Role: chat.RoleUser, Text: text}); err != nil {
		return err
	}
	// Reserve the trailing assistant slot that streaming updates target.
	if err := p.sessions.AppendMessage(ctx, sid, chat.Message{Role: chat.RoleAssistant}); err != nil {
		return err
	}

	if p.streaming {
		p.sendStreaming(ctx, sid, text)
	} else {
		p.sendUnary(ctx, sid, text)
	}
	return nil
}

func (p *Pipeline) sendUnary(ctx context.Context, sid, text string) {
	reply, err := p.backend.Chat(ctx, text)
	if err != nil {
		p.fail(ctx, sid, err)
		return
	}

	lang := reply.Language
	if lang == "" {
		lang = annotate.DetectLanguage(reply.Reply, p.langHint)
	}
	p.finalize(ctx, sid, annotate.Annotate(reply.Reply, reply.Intent, lang))
}

func (p *Pipeline) sendStreaming(ctx context.Context, sid, text string) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var buf strings.Builder
	err := p.backend.ChatStream(ctx, text, func(fragment string) {
		buf.WriteString(fragment)
		if applyErr := p.sessions.MutateLastAssistantMessage(ctx, sid, buf.String()); applyErr != nil {
			// The target session is gone; stop pulling fragments.
			log.Printf("[send] dropping fragment for session %s: %v", sid, applyErr)
			cancel()
		}
	})
	if err != nil {
		p.fail(ctx, sid, err)
		return
	}

	// A stream carries no intent signal; any note in the text was appended
	// by the backend and must survive as received.
	p.finalize(ctx, sid, buf.String())
}

// finalize writes the fully annotated, sanitized terminal text.
func (p *Pipeline) finalize(ctx context.Context, sid, text string) {
	if err := p.sessions.MutateLastAssistantMessage(ctx, sid, render.Render(text)); err != nil {
		log.Printf("[send] dropping final reply for session %s: %v", sid, err)
	}
}

// fail replaces the reserved placeholder with a human-readable terminal
// message so no empty assistant message survives a failed send. The
// duplicate record is cleared so the user can retry the same text at once.
func (p *Pipeline) fail(ctx context.Context, sid string, err error) {
	p.guard.Forget()

	var text string
	switch {
	case errors.Is(err, transport.ErrTimedOut):
		text = timedOutText
	case errors.Is(err, transport.ErrCancelled), errors.Is(err, context.Canceled):
		text = cancelledText
	default:
		var te *transport.Error
		if errors.As(err, &te) {
			text = failedPrefix + te.Detail
		} else {
			text = failedPrefix + err.Error()
		}
	}

	if applyErr := p.sessions.MutateLastAssistantMessage(context.WithoutCancel(ctx), sid, render.Render(text)); applyErr != nil {
		log.Printf("[send] dropping terminal message for session %s: %v", sid, applyErr)
	}
}
