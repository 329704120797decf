package chat

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultTitle marks a session whose title has not yet been derived
	// from its first user message.
	DefaultTitle = "New chat"

	// titleLimit bounds derived titles, in runes.
	titleLimit = 40
)

// Greeting seeds every new session so the message sequence is never empty.
const Greeting = "Hello! Ask me anything about banking and cybersecurity safety. " +
	"မင်္ဂလာပါ! ဘဏ်လုပ်ငန်းနှင့် ဆိုက်ဘာလုံခြုံရေးဆိုင်ရာ မေးခွန်းများ မေးနိုင်ပါသည်။"

// Session is one independent conversation thread.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
}

// TitleFrom derives a session title from the first user message. The result
// is bounded and never empty; blank input falls back to the default title.
func TitleFrom(text string) string {
	t := strings.Join(strings.Fields(text), " ")
	if t == "" {
		return DefaultTitle
	}
	if utf8.RuneCountInString(t) <= titleLimit {
		return t
	}
	runes := []rune(t)
	return strings.TrimSpace(string(runes[:titleLimit])) + "…"
}
