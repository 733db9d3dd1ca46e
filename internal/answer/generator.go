package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/beneflow/beneflow/internal/knowledge"
)

// Generator produces the candidate answer text and, optionally, a confidence
// score in [0, 1]. The pipeline only consumes the score; generation
// mechanics stay behind this interface.
type Generator interface {
	Generate(ctx context.Context, query string, candidates []knowledge.Candidate) (answer string, confidence *float64, err error)
}

const answerSystemPrompt = `You are an employee benefits assistant.
Answer the question using only the reference entries provided.
If the references do not answer the question, say so plainly.
Keep the answer short and concrete.`

// GenkitGenerator generates grounded answers with a Genkit model. It returns
// no confidence score; the model API does not expose one, so the gate falls
// back to its retrieval-threshold-only policy.
type GenkitGenerator struct {
	genkit    *genkit.Genkit
	modelName string
}

// NewGenkitGenerator creates a GenkitGenerator for the named model.
func NewGenkitGenerator(g *genkit.Genkit, modelName string) *GenkitGenerator {
	return &GenkitGenerator{
		genkit:    g,
		modelName: modelName,
	}
}

// Generate builds a grounded prompt from the retrieval candidates and asks
// the model for an answer.
func (g *GenkitGenerator) Generate(ctx context.Context, query string, candidates []knowledge.Candidate) (string, *float64, error) {
	var b strings.Builder
	b.WriteString("Reference entries:\n")
	for _, c := range candidates {
		b.WriteString(fmt.Sprintf("\n[%d] ", c.Rank))
		if c.Title != "" {
			b.WriteString(c.Title)
			b.WriteString("\n")
		}
		b.WriteString(c.Content)
		b.WriteString("\n")
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(query)

	response, err := genkit.Generate(ctx, g.genkit,
		ai.WithModelName(g.modelName),
		ai.WithSystem(answerSystemPrompt),
		ai.WithPrompt(b.String()),
	)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	return strings.TrimSpace(response.Text()), nil, nil
}
