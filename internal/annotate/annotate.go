// Package annotate post-processes settled assistant text: it strips any
// previously appended disclaimer note and re-appends one when the backend
// classified the conversation under a sensitive intent.
package annotate

import "strings"

// Structural note markers. Stripping keys on these, not on the translated
// prose, so reworded notes from older backend versions are still recognized.
const (
	markerEN = "**Note:**"
	markerMY = "**မှတ်ချက်:**"
)

const (
	noteEN = markerEN + " I'm an educational assistant, not your bank. " +
		"Never share OTP/PIN. For account matters, contact your bank directly."
	noteMY = markerMY + " ပစ်တိုင်းထောင်သည် ပညာပေးအတွက်သာ ဖြစ်ပြီး သင့်ဘဏ်မဟုတ်ပါ။ " +
		"OTP/PIN မမျှဝေပါနှင့်။ အကောင့်ဆိုင်ရာအတွက် တရားဝင် App/Website သို့မဟုတ် Hotline ကိုသာ သုံးပါ။"
)

// sensitiveIntents are backend intent classifications that require the
// disclaimer: credential and fraud-adjacent topics.
var sensitiveIntents = map[string]struct{}{
	"wire_fraud":             {},
	"personal_account_scope": {},
	"otp_phishing":           {},
	"card_fraud":             {},
	"account_takeover":       {},
	"credential_sharing":     {},
}

// Sensitive reports whether intent requires the disclaimer note.
func Sensitive(intent string) bool {
	_, ok := sensitiveIntents[intent]
	return ok
}

// Annotate strips any existing note block and, for sensitive intents,
// appends the localized disclaimer. It is total and idempotent:
// Annotate(Annotate(t, i, l), i, l) == Annotate(t, i, l) for all inputs.
func Annotate(text, intent, language string) string {
	out := Strip(text)
	if !Sensitive(intent) {
		return out
	}

	note := noteEN
	if language == "my" {
		note = noteMY
	}
	if out == "" {
		return note
	}
	return out + "\n\n" + note
}

// Strip removes trailing note paragraphs in either supported language.
func Strip(text string) string {
	for {
		t := strings.TrimRight(text, " \t\r\n")
		para := t
		cut := -1
		if i := strings.LastIndex(t, "\n\n"); i >= 0 {
			para = t[i+2:]
			cut = i
		}
		para = strings.TrimLeft(para, " \t")
		if !strings.HasPrefix(para, markerEN) && !strings.HasPrefix(para, markerMY) {
			return t
		}
		if cut < 0 {
			return ""
		}
		text = t[:cut]
	}
}
