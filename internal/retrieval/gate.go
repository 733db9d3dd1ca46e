package retrieval

import (
	"github.com/beneflow/beneflow/internal/knowledge"
	"github.com/beneflow/beneflow/internal/tenant"
)

// Decision is the confidence gate's verdict for one query.
type Decision int

const (
	// Escalate routes the query to a human: no grounding context exists,
	// or generation confidence fell below the tenant's threshold.
	Escalate Decision = iota

	// AutoAnswer responds immediately: candidates exist and generation
	// confidence cleared the threshold.
	AutoAnswer

	// AutoAnswerLowConfidence responds immediately but flags that only the
	// retrieval threshold vouches for the answer, because no generation
	// confidence was supplied.
	AutoAnswerLowConfidence
)

// String returns the decision name for logs and API payloads.
func (d Decision) String() string {
	switch d {
	case Escalate:
		return "escalate"
	case AutoAnswer:
		return "auto_answer"
	case AutoAnswerLowConfidence:
		return "auto_answer_low_confidence"
	default:
		return "unknown"
	}
}

// ShouldEscalate reports whether the decision routes to a human.
func (d Decision) ShouldEscalate() bool { return d == Escalate }

// Decide applies the two-signal gate policy. Retrieval similarity measures
// closeness of the match, not whether the match answers the question;
// generation confidence is an independent second signal and both are
// required whenever the second is available.
//
//   - empty candidates: Escalate, no grounding context exists
//   - confidence supplied and below cfg.EscalationThreshold: Escalate
//   - confidence supplied at or above the threshold: AutoAnswer
//   - confidence absent: AutoAnswerLowConfidence, retrieval-threshold-only
func Decide(candidates []knowledge.Candidate, generationConfidence *float64, cfg tenant.RetrievalConfig) Decision {
	if len(candidates) == 0 {
		return Escalate
	}
	if generationConfidence == nil {
		return AutoAnswerLowConfidence
	}
	if *generationConfidence < cfg.EscalationThreshold {
		return Escalate
	}
	return AutoAnswer
}
