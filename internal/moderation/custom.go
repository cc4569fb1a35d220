package moderation

import (
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/tanglechat/moderation/internal/rules"
)

// matchTimeout bounds a single custom-rule regex evaluation. Patterns are
// validated and length-capped at add time, but an operator-supplied rule is
// still untrusted input on the hot path; a rule that overruns the deadline
// is treated as "did not match" and logged, never propagated.
const matchTimeout = 50 * time.Millisecond

// detectCustom evaluates the enabled custom rules from the catalog. A rule
// matches if its pattern matches the text or any of its keywords is a
// case-insensitive substring. Each match adds 0.5 confidence and folds its
// rule severity in via max-merge.
func detectCustom(text string, catalog *rules.Catalog) Finding {
	f := neutral(DetectorCustom)

	lower := strings.ToLower(text)
	for _, rule := range catalog.EnabledCustom() {
		if !ruleMatches(rule, text, lower) {
			continue
		}
		f.Violation = true
		f.Confidence += 0.5
		f.Severity = f.Severity.Max(rule.Severity)
		f.RuleIDs = append(f.RuleIDs, rule.ID)
	}

	if !f.Violation {
		return neutral(DetectorCustom)
	}
	if f.Confidence > 1.0 {
		f.Confidence = 1.0
	}
	return f
}

func ruleMatches(rule *rules.Rule, text, lower string) bool {
	if re := rule.Regexp(); re != nil {
		matched, ok := matchWithTimeout(re, text)
		if !ok {
			log.Printf("[detect] custom rule %s (%s): match timed out, skipping", rule.ID, rule.Name)
		} else if matched {
			return true
		}
	}
	for _, kw := range rule.Keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// matchWithTimeout runs re against text under matchTimeout. The second
// return value is false when the deadline elapsed before the match
// finished; the orphaned goroutine completes and exits on its own.
func matchWithTimeout(re *regexp.Regexp, text string) (matched bool, ok bool) {
	done := make(chan bool, 1)
	go func() {
		done <- re.MatchString(text)
	}()

	timer := time.NewTimer(matchTimeout)
	defer timer.Stop()

	select {
	case m := <-done:
		return m, true
	case <-timer.C:
		return false, false
	}
}
