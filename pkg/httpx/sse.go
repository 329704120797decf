package httpx

import (
	"bufio"
	"io"
	"strings"
)

// ScanSSE reads Server-Sent Events frames and calls emit with each frame's
// data payload (multiple data lines are joined with newlines). Event names
// and comments are ignored; the payload is passed through verbatim.
func ScanSSE(r io.Reader, emit func(data string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data []string
	flush := func() {
		if len(data) > 0 {
			emit(strings.Join(data, "\n"))
			data = data[:0]
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	flush()
	return scanner.Err()
}
