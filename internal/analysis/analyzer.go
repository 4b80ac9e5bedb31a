package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stratten/Collaborative-LLM-Refinement/internal/generation"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/registry"
)

// Generator is the slice of the generation service the analyzer needs
type Generator interface {
	Generate(ctx context.Context, modelID, prompt string, opts *generation.Options) (string, error)
	AvailableModels() []registry.ModelDescriptor
}

// ClarificationQuestion is a question posed back to the user before
// refinement starts. Never mutated after creation.
type ClarificationQuestion struct {
	ID       string `json:"id"`
	Question string `json:"question"`
}

// Scores are the four prompt-quality axes, each in [0,1]
type Scores struct {
	Clarity      float64 `json:"clarity"`
	Completeness float64 `json:"completeness"`
	Specificity  float64 `json:"specificity"`
	Overall      float64 `json:"overall"`
}

// Result is the outcome of analyzing a prompt: either clarification questions
// or a refined prompt, never both.
type Result struct {
	NeedsClarification bool
	Questions          []ClarificationQuestion
	RefinedPrompt      string
	Scores             Scores
}

// Analyzer scores prompts and decides whether clarification is required
type Analyzer struct {
	gen Generator
}

// NewAnalyzer creates a prompt analyzer backed by the given generator
func NewAnalyzer(gen Generator) *Analyzer {
	return &Analyzer{gen: gen}
}

const analysisPromptTemplate = `Evaluate the following prompt for use with a large language model.
Score each axis between 0.0 and 1.0 and answer using exactly this format:

CLARITY_SCORE: <0.0-1.0>
COMPLETENESS_SCORE: <0.0-1.0>
SPECIFICITY_SCORE: <0.0-1.0>
OVERALL_SCORE: <0.0-1.0>
NEEDS_CLARIFICATION: <YES or NO>
MISSING_ELEMENTS: <comma-separated list, or NONE>
SUGGESTED_IMPROVEMENTS: <short free text, or NONE>

Prompt to evaluate:
%s`

const questionsPromptTemplate = `The following prompt needs clarification before it can be refined.
Write between 2 and 4 clarification questions for the author. Answer using
exactly this format, one question per line:

QUESTION_1: <question>
QUESTION_2: <question>
QUESTION_3: <question>
QUESTION_4: <question>

Prompt:
%s`

const directRefinePromptTemplate = `Lightly polish the following prompt so a large language model can act on it.
Preserve the author's intent and scope. Return only the polished prompt, with
no commentary. If the prompt is already good, return it unchanged.

Prompt:
%s`

// analysisModel returns the model used for analysis calls: the first
// available model in catalog order. Deliberately simple.
func (a *Analyzer) analysisModel() (string, error) {
	models := a.gen.AvailableModels()
	if len(models) == 0 {
		return "", fmt.Errorf("no models available for analysis")
	}
	return models[0].ID, nil
}

// Analyze scores the prompt and either returns clarification questions or a
// directly refined prompt. Malformed model output never fails the flow: it
// degrades to the conservative default of requiring clarification.
func (a *Analyzer) Analyze(ctx context.Context, prompt string) (*Result, error) {
	modelID, err := a.analysisModel()
	if err != nil {
		return nil, err
	}

	raw, err := a.gen.Generate(ctx, modelID, fmt.Sprintf(analysisPromptTemplate, prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("prompt analysis call failed: %w", err)
	}

	parsed := parseAnalysis(raw)
	logrus.WithFields(logrus.Fields{
		"model":               modelID,
		"overall_score":       parsed.Scores.Overall,
		"needs_clarification": parsed.NeedsClarification,
	}).Debug("Prompt analysis parsed")

	if parsed.NeedsClarification {
		questions, err := a.generateQuestions(ctx, modelID, prompt)
		if err != nil {
			return nil, err
		}
		return &Result{
			NeedsClarification: true,
			Questions:          questions,
			Scores:             parsed.Scores,
		}, nil
	}

	refined, err := a.gen.Generate(ctx, modelID, fmt.Sprintf(directRefinePromptTemplate, prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("direct refinement call failed: %w", err)
	}
	refined = strings.TrimSpace(refined)
	if refined == "" {
		refined = prompt
	}

	return &Result{
		NeedsClarification: false,
		RefinedPrompt:      refined,
		Scores:             parsed.Scores,
	}, nil
}

// generateQuestions asks the analysis model for clarification questions and
// parses them tolerantly. It always yields at least one question.
func (a *Analyzer) generateQuestions(ctx context.Context, modelID, prompt string) ([]ClarificationQuestion, error) {
	raw, err := a.gen.Generate(ctx, modelID, fmt.Sprintf(questionsPromptTemplate, prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("question generation call failed: %w", err)
	}
	return parseQuestions(raw), nil
}

const clarifiedRefinePromptHeader = `Synthesize one comprehensive, well-structured prompt from the original
prompt and the clarification answers below. Preserve the author's original
intent. Return only the refined prompt, with no commentary.

Original prompt:
%s

Clarifications:
`

// RefineWithClarifications builds a single refinement prompt embedding every
// question/answer pair and asks the analysis model to synthesize the refined
// prompt. Missing answers render as empty strings.
func (a *Analyzer) RefineWithClarifications(ctx context.Context, originalPrompt string, questions []ClarificationQuestion, answers map[string]string) (string, error) {
	modelID, err := a.analysisModel()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, clarifiedRefinePromptHeader, originalPrompt)
	for _, q := range questions {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n", q.Question, answers[q.ID])
	}

	refined, err := a.gen.Generate(ctx, modelID, b.String(), nil)
	if err != nil {
		return "", fmt.Errorf("clarified refinement call failed: %w", err)
	}

	refined = strings.TrimSpace(refined)
	if refined == "" {
		return "", fmt.Errorf("clarified refinement produced no text")
	}
	return refined, nil
}
