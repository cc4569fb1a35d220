package moderation

import (
	"regexp"
	"strings"

	"github.com/tanglechat/moderation/internal/rules"
)

// harassmentKeywords are matched as whole words (or word sequences),
// case-insensitively. Each keyword that appears adds 0.4 confidence.
var harassmentKeywords = []string{
	"hate",
	"kill",
	"die",
	"threat",
	"hurt",
	"violence",
	"stalk",
	"follow",
	"watch",
	"find you",
}

// Confidence thresholds for a confirmed harassment violation.
const (
	harassmentThreshold       = 0.4
	harassmentThresholdStrict = 0.3
)

var harassmentPatterns = compileKeywords(harassmentKeywords)

func compileKeywords(keywords []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		words := strings.Fields(kw)
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		out = append(out, regexp.MustCompile(`(?i)\b`+strings.Join(words, `\s+`)+`\b`))
	}
	return out
}

// detectHarassment scores keyword hits plus excessive punctuation. A
// violation needs at least one keyword hit AND confidence above the
// threshold, so a single keyword with nothing else stays below the line.
// Harassment has no "low" tier: any confirmed hit is at least medium.
func detectHarassment(text string, strict bool) Finding {
	f := neutral(DetectorHarassment)

	hits := 0
	for _, re := range harassmentPatterns {
		if re.MatchString(text) {
			hits++
		}
	}

	// Score in integer tenths (0.4 per keyword, 0.2 for punctuation) and
	// divide once, so the tier comparisons below see exact values instead
	// of accumulated float error.
	score := 4 * hits
	if strings.Count(text, "!") > 3 || strings.Count(text, "?") > 5 {
		score += 2
	}
	if score > 10 {
		score = 10
	}
	confidence := float64(score) / 10

	threshold := harassmentThreshold
	if strict {
		threshold = harassmentThresholdStrict
	}
	if hits == 0 || confidence <= threshold {
		return f
	}

	f.Violation = true
	f.Confidence = confidence
	f.RuleIDs = []string{rules.BuiltinHarassmentID}
	switch {
	case confidence > 0.8:
		f.Severity = rules.SeverityCritical
	case confidence > 0.6:
		f.Severity = rules.SeverityHigh
	default:
		f.Severity = rules.SeverityMedium
	}
	return f
}
