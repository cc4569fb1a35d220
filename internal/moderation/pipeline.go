// Package moderation runs chat messages through the layered detection
// pipeline (profanity, spam, harassment, custom rules), merges the partial
// findings into a single verdict, and redacts matched spans when the
// decided action is "filter".
package moderation

import (
	"log"

	"github.com/tanglechat/moderation/internal/config"
	"github.com/tanglechat/moderation/internal/reputation"
	"github.com/tanglechat/moderation/internal/rules"
)

// Pipeline evaluates messages against the enabled detectors.
type Pipeline struct {
	catalog *rules.Catalog
}

// NewPipeline creates a pipeline reading custom rules from catalog.
func NewPipeline(catalog *rules.Catalog) *Pipeline {
	return &Pipeline{catalog: catalog}
}

// Evaluate runs every enabled detector over text and returns their partial
// findings. Disabled detectors are skipped entirely, not merely ignored in
// the results. A detector that panics degrades to a neutral finding: the
// pipeline is a total function on well-formed input, and a missed
// detection is preferred over blocking the send path.
func (p *Pipeline) Evaluate(text string, sender reputation.Status, cfg config.Config) []Finding {
	findings := make([]Finding, 0, 4)

	if cfg.EnableProfanityFilter {
		findings = append(findings, run(DetectorProfanity, func() Finding {
			return detectProfanity(text)
		}))
	}
	if cfg.EnableSpamDetection {
		findings = append(findings, run(DetectorSpam, func() Finding {
			return detectSpam(text, sender, cfg.StrictMode)
		}))
	}
	if cfg.EnableHarassmentDetection {
		findings = append(findings, run(DetectorHarassment, func() Finding {
			return detectHarassment(text, cfg.StrictMode)
		}))
	}
	if cfg.CustomRulesEnabled {
		findings = append(findings, run(DetectorCustom, func() Finding {
			return detectCustom(text, p.catalog)
		}))
	}

	return findings
}

// run executes one detector, converting a panic into a neutral finding.
func run(detector string, fn func() Finding) (f Finding) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[detect] detector %s panicked: %v (treating as no violation)", detector, r)
			f = neutral(detector)
		}
	}()
	return fn()
}
