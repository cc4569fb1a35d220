package moderation

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// maskRune replaces each character of a redacted span.
const maskRune = '*'

// Redact replaces every matched span of text with an equal-length run of
// the mask character. Spans are byte ranges into text; overlapping or
// adjacent spans are coalesced first. Only profanity matches produce spans,
// so spam or harassment triggers flag without rewriting the message.
func Redact(text string, spans [][2]int) string {
	if len(spans) == 0 {
		return text
	}

	merged := mergeSpans(spans, len(text))
	var b strings.Builder
	b.Grow(len(text))

	pos := 0
	for _, span := range merged {
		b.WriteString(text[pos:span[0]])
		n := utf8.RuneCountInString(text[span[0]:span[1]])
		for i := 0; i < n; i++ {
			b.WriteRune(maskRune)
		}
		pos = span[1]
	}
	b.WriteString(text[pos:])
	return b.String()
}

// mergeSpans sorts spans, clamps them to [0, limit], and coalesces
// overlaps so each byte is masked at most once.
func mergeSpans(spans [][2]int, limit int) [][2]int {
	clamped := make([][2]int, 0, len(spans))
	for _, s := range spans {
		start, end := s[0], s[1]
		if start < 0 {
			start = 0
		}
		if end > limit {
			end = limit
		}
		if start >= end {
			continue
		}
		clamped = append(clamped, [2]int{start, end})
	}
	sort.Slice(clamped, func(i, j int) bool { return clamped[i][0] < clamped[j][0] })

	out := clamped[:0]
	for _, s := range clamped {
		if n := len(out); n > 0 && s[0] <= out[n-1][1] {
			if s[1] > out[n-1][1] {
				out[n-1][1] = s[1]
			}
			continue
		}
		out = append(out, s)
	}
	return out
}
