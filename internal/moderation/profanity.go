package moderation

import (
	"regexp"
	"strings"

	"github.com/tanglechat/moderation/internal/rules"
)

// profanityTerms is the fixed blocklist screened by the profanity detector.
// Terms are matched as whole words, case-insensitively, with common
// leetspeak substitutions (b1tch, sh!t, ...) folded in at pattern build
// time so the matched spans still point into the original text.
var profanityTerms = []string{
	"fuck",
	"shit",
	"bitch",
	"asshole",
	"bastard",
	"dick",
	"cunt",
	"whore",
	"slut",
	"douche",
	"stupid",
	"idiot",
	"moron",
	"dumbass",
	"loser",
	"jerk",
}

// leetClasses maps letters to character classes covering their common
// leetspeak substitutes.
var leetClasses = map[rune]string{
	'a': "[a@4]",
	'e': "[e3]",
	'i': "[i1!]",
	'o': "[o0]",
	's': "[s$5]",
	't': "[t7]",
	'l': "[l1]",
	'b': "[b8]",
}

// profanityPatterns holds one compiled pattern per blocklist term.
var profanityPatterns = compileProfanity(profanityTerms)

func compileProfanity(terms []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(terms))
	for _, term := range terms {
		var b strings.Builder
		b.WriteString(`(?i)\b`)
		for _, r := range term {
			if class, ok := leetClasses[r]; ok {
				b.WriteString(class)
			} else {
				b.WriteString(regexp.QuoteMeta(string(r)))
			}
		}
		b.WriteString(`\b`)
		out = append(out, regexp.MustCompile(b.String()))
	}
	return out
}

// detectProfanity counts blocklist matches in text. Severity scales with
// the match count and confidence accumulates 0.3 per match, capped at 1.0.
// Matched spans are recorded for redaction by the content filter.
func detectProfanity(text string) Finding {
	f := neutral(DetectorProfanity)

	count := 0
	for _, re := range profanityPatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			count++
			f.Spans = append(f.Spans, [2]int{loc[0], loc[1]})
		}
	}
	if count == 0 {
		return f
	}

	f.Violation = true
	f.RuleIDs = []string{rules.BuiltinProfanityID}
	switch {
	case count > 3:
		f.Severity = rules.SeverityHigh
	case count > 1:
		f.Severity = rules.SeverityMedium
	default:
		f.Severity = rules.SeverityLow
	}
	f.Confidence = 0.3 * float64(count)
	if f.Confidence > 1.0 {
		f.Confidence = 1.0
	}
	return f
}
