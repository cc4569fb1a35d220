package moderation

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/tanglechat/moderation/internal/reputation"
	"github.com/tanglechat/moderation/internal/rules"
)

// urlPattern matches http/https URLs, www. URLs, and bare domains with a
// path. The bare-domain variant requires a trailing "/" to avoid false
// positives on version strings like "v2.0" or decimals like "3.14".
var urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+|\S+\.(com|net|org|io|co|xyz|info|biz|ru|cn|tk|ml|ga|cf)/\S*)`)

// Message length bounds outside which the spam detector adds suspicion.
const (
	spamMinChars = 3
	spamMaxChars = 2000
)

// Confidence thresholds for a confirmed spam violation.
const (
	spamThreshold       = 0.5
	spamThresholdStrict = 0.35
)

// structuralCheck pairs a spam heuristic with its name for reporting.
type structuralCheck struct {
	name  string
	match func(string) bool
}

// structuralChecks is the list of structural spam heuristics. Each match
// increments the violation counter and adds 0.25 confidence.
var structuralChecks = []structuralCheck{
	{name: "char_flood", match: hasCharFlood},
	{name: "caps_run", match: hasCapsRun},
	{name: "url_flood", match: hasURLFlood},
	{name: "digit_run", match: hasDigitRun},
}

// hasCharFlood reports 5 or more consecutive identical characters. Go's
// regexp package (RE2) has no backreferences, so this is a linear scan.
func hasCharFlood(text string) bool {
	const threshold = 5

	count := 1
	prev := rune(-1)
	for _, r := range text {
		if r == prev {
			count++
			if count >= threshold {
				return true
			}
		} else {
			count = 1
			prev = r
		}
	}
	return false
}

// hasCapsRun reports 5 or more consecutive uppercase letters.
func hasCapsRun(text string) bool {
	const threshold = 5

	count := 0
	for _, r := range text {
		if unicode.IsUpper(r) {
			count++
			if count >= threshold {
				return true
			}
		} else {
			count = 0
		}
	}
	return false
}

// hasURLFlood reports 3 or more URLs in a single message.
func hasURLFlood(text string) bool {
	return len(urlPattern.FindAllStringIndex(text, 3)) >= 3
}

// hasDigitRun reports 10 or more consecutive digits (phone-number-like).
func hasDigitRun(text string) bool {
	const threshold = 10

	count := 0
	for _, r := range text {
		if unicode.IsDigit(r) {
			count++
			if count >= threshold {
				return true
			}
		} else {
			count = 0
		}
	}
	return false
}

// detectSpam applies the structural heuristics plus two softer signals:
// out-of-bounds message length and a low sender trust score. A violation
// requires at least one structural match AND combined confidence above the
// threshold, so length or trust alone never flags a message.
func detectSpam(text string, sender reputation.Status, strict bool) Finding {
	f := neutral(DetectorSpam)

	structural := 0
	confidence := 0.0
	for _, c := range structuralChecks {
		if c.match(text) {
			structural++
			confidence += 0.25
		}
	}

	if n := utf8.RuneCountInString(text); n < spamMinChars || n > spamMaxChars {
		confidence += 0.2
	}

	// A sender with degraded trust gets a suspicion bump scaling up to
	// +0.3 as the score approaches zero.
	if sender.TrustScore < 50 {
		confidence += 0.3 * float64(50-sender.TrustScore) / 50
	}

	if confidence > 1.0 {
		confidence = 1.0
	}

	threshold := spamThreshold
	if strict {
		threshold = spamThresholdStrict
	}
	if structural == 0 || confidence <= threshold {
		return f
	}

	f.Violation = true
	f.Confidence = confidence
	f.RuleIDs = []string{rules.BuiltinSpamID}
	switch {
	case confidence > 0.8:
		f.Severity = rules.SeverityHigh
	case confidence > 0.6:
		f.Severity = rules.SeverityMedium
	default:
		f.Severity = rules.SeverityLow
	}
	return f
}
