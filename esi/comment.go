package esi

import (
	"strings"

	"github.com/esi-edge/esi/streaming"
)

const (
	commentOpen  = "<!--esi"
	commentClose = "-->"
)

// newCommentPreProcessor returns a streaming.PreProcessFunc implementing
// §4.4: the opener and closer markers are stripped from the buffer in
// place, while the text between them (and outside them) passes through
// unchanged; a trailing partial marker is carved off into buf.Postponed
// so it can be completed on the next chunk.
func newCommentPreProcessor() streaming.PreProcessFunc {
	inComment := false

	return func(buf *streaming.Buffer) {
		var out strings.Builder
		s := buf.Text
		i := 0

		for i < len(s) {
			marker := commentOpen
			if inComment {
				marker = commentClose
			}

			idx := strings.Index(s[i:], marker)
			if idx < 0 {
				tail := partialMarkerSuffix(s[i:], marker)
				out.WriteString(s[i : len(s)-tail])
				if tail > 0 {
					buf.Postponed = s[len(s)-tail:]
				}
				i = len(s)
				break
			}

			out.WriteString(s[i : i+idx])
			i += idx + len(marker)
			inComment = !inComment
		}

		buf.Text = out.String()
	}
}

// partialMarkerSuffix returns the length of the longest suffix of s that
// equals a proper (shorter than marker) prefix of marker — the tail that
// might complete into marker once more bytes arrive.
func partialMarkerSuffix(s, marker string) int {
	max := len(marker) - 1
	if max > len(s) {
		max = len(s)
	}
	for k := max; k > 0; k-- {
		if strings.HasSuffix(s, marker[:k]) {
			return k
		}
	}
	return 0
}
