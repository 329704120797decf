package annotate

import (
	"strings"
	"testing"
)

func TestAnnotateAppendsEnglishNote(t *testing.T) {
	got := Annotate("Wire transfers are irreversible.", "wire_fraud", "en")
	if !strings.HasPrefix(got, "Wire transfers are irreversible.\n\n**Note:**") {
		t.Fatalf("note not appended: %q", got)
	}
}

func TestAnnotateAppendsBurmeseNote(t *testing.T) {
	got := Annotate("reply", "otp_phishing", "my")
	if !strings.Contains(got, markerMY) {
		t.Fatalf("expected Burmese note, got %q", got)
	}
	if strings.Contains(got, markerEN+" I'm") {
		t.Fatalf("English note leaked into Burmese reply: %q", got)
	}
}

func TestAnnotateUnknownLanguageDefaultsEnglish(t *testing.T) {
	got := Annotate("reply", "card_fraud", "fr")
	if !strings.Contains(got, noteEN) {
		t.Fatalf("expected English fallback, got %q", got)
	}
}

func TestAnnotateNonSensitiveLeavesTextAlone(t *testing.T) {
	if got := Annotate("hello", "greeting", "en"); got != "hello" {
		t.Fatalf("non-sensitive text changed: %q", got)
	}
}

func TestAnnotateIsIdempotent(t *testing.T) {
	cases := []struct {
		text, intent, lang string
	}{
		{"Wire transfers are irreversible.", "wire_fraud", "en"},
		{"reply", "otp_phishing", "my"},
		{"hello", "greeting", "en"},
		{"", "account_takeover", "en"},
	}
	for _, tc := range cases {
		once := Annotate(tc.text, tc.intent, tc.lang)
		twice := Annotate(once, tc.intent, tc.lang)
		if once != twice {
			t.Fatalf("not idempotent for %+v:\n once: %q\ntwice: %q", tc, once, twice)
		}
	}
}

func TestStripRemovesStackedNotes(t *testing.T) {
	text := "body\n\n" + noteEN + "\n\n" + noteMY
	if got := Strip(text); got != "body" {
		t.Fatalf("stacked notes not stripped: %q", got)
	}
}

func TestStripRecognizesRewordedNote(t *testing.T) {
	text := "body\n\n**Note:** some older phrasing of the disclaimer"
	if got := Strip(text); got != "body" {
		t.Fatalf("marker-keyed strip failed: %q", got)
	}
}

func TestStripNoteOnlyText(t *testing.T) {
	if got := Strip(noteEN); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestStripLeavesInlineMarkerAlone(t *testing.T) {
	text := "the **Note:** marker mid-paragraph stays"
	if got := Strip(text); got != text {
		t.Fatalf("inline marker stripped: %q", got)
	}
}

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		text, hint, want string
	}{
		{"hello there", "", "en"},
		{"မင်္ဂလာပါ", "", "my"},
		{"ok", "my", "my"},
		{"", "", "en"},
	}
	for _, tc := range cases {
		if got := DetectLanguage(tc.text, tc.hint); got != tc.want {
			t.Fatalf("DetectLanguage(%q, %q) = %q, want %q", tc.text, tc.hint, got, tc.want)
		}
	}
}
