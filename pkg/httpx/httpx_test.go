package httpx

import (
	"strings"
	"testing"
)

func TestErrorDetail(t *testing.T) {
	cases := []struct {
		name, body, want string
	}{
		{"fastapi string detail", `{"detail":"message must not be empty"}`, "message must not be empty"},
		{"error field", `{"error":"boom"}`, "boom"},
		{"structured detail kept verbatim", `{"detail":[{"loc":["body"]}]}`, `[{"loc":["body"]}]`},
		{"plain text body", "  internal server error \n", "internal server error"},
		{"empty body", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ErrorDetail([]byte(tc.body)); got != tc.want {
				t.Fatalf("ErrorDetail(%q) = %q, want %q", tc.body, got, tc.want)
			}
		})
	}
}

func TestScanSSE(t *testing.T) {
	input := "event: message\ndata: hello\n\ndata: line one\ndata: line two\n\n: comment\ndata: tail"
	var frames []string
	if err := ScanSSE(strings.NewReader(input), func(data string) {
		frames = append(frames, data)
	}); err != nil {
		t.Fatalf("ScanSSE err: %v", err)
	}

	want := []string{"hello", "line one\nline two", "tail"}
	if len(frames) != len(want) {
		t.Fatalf("frames = %q, want %q", frames, want)
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Fatalf("frame %d = %q, want %q", i, frames[i], want[i])
		}
	}
}
