package retrieval

import (
	"testing"

	"github.com/beneflow/beneflow/internal/knowledge"
	"github.com/beneflow/beneflow/internal/tenant"
)

func confidence(v float64) *float64 { return &v }

func TestDecide(t *testing.T) {
	cfg := tenant.DefaultRetrievalConfig() // escalation threshold 0.5
	someCandidates := []knowledge.Candidate{{Similarity: 0.9, Rank: 1}}

	tests := []struct {
		name       string
		candidates []knowledge.Candidate
		confidence *float64
		want       Decision
	}{
		{
			name:       "no candidates escalates",
			candidates: nil,
			confidence: confidence(0.99),
			want:       Escalate,
		},
		{
			name:       "no candidates and no confidence escalates",
			candidates: []knowledge.Candidate{},
			confidence: nil,
			want:       Escalate,
		},
		{
			name:       "low generation confidence escalates despite strong retrieval",
			candidates: someCandidates,
			confidence: confidence(0.3),
			want:       Escalate,
		},
		{
			name:       "confidence at threshold auto-answers",
			candidates: someCandidates,
			confidence: confidence(0.5),
			want:       AutoAnswer,
		},
		{
			name:       "high confidence auto-answers",
			candidates: someCandidates,
			confidence: confidence(0.95),
			want:       AutoAnswer,
		},
		{
			name:       "absent confidence falls back to retrieval-only gate",
			candidates: someCandidates,
			confidence: nil,
			want:       AutoAnswerLowConfidence,
		},
		{
			name:       "confidence just below threshold escalates",
			candidates: someCandidates,
			confidence: confidence(0.4999),
			want:       Escalate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.candidates, tt.confidence, cfg)
			if got != tt.want {
				t.Errorf("Decide() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecisionShouldEscalate(t *testing.T) {
	if !Escalate.ShouldEscalate() {
		t.Error("Escalate.ShouldEscalate() = false, want true")
	}
	if AutoAnswer.ShouldEscalate() {
		t.Error("AutoAnswer.ShouldEscalate() = true, want false")
	}
	if AutoAnswerLowConfidence.ShouldEscalate() {
		t.Error("AutoAnswerLowConfidence.ShouldEscalate() = true, want false")
	}
}

func TestDecisionString(t *testing.T) {
	tests := []struct {
		decision Decision
		want     string
	}{
		{Escalate, "escalate"},
		{AutoAnswer, "auto_answer"},
		{AutoAnswerLowConfidence, "auto_answer_low_confidence"},
		{Decision(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.decision.String(); got != tt.want {
			t.Errorf("Decision(%d).String() = %q, want %q", tt.decision, got, tt.want)
		}
	}
}
