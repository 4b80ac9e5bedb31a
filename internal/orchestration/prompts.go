package orchestration

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// critiqueDigestLimit caps how much of each prior critique is carried into
// later critique prompts.
const critiqueDigestLimit = 200

// iterationFocus returns the instruction theme for an iteration: structural
// and content concerns for the first half of the run, refinement and polish
// for the second half.
func iterationFocus(iteration, totalIterations int) string {
	if iteration*2 <= totalIterations {
		return "Focus on structural and content concerns: organization, coverage, correctness, and missing material."
	}
	return "Focus on refinement and polish: wording, tone, precision, and flow."
}

// critiqueDigest concatenates the first ~200 characters of every prior
// critique in history order. Truncation backs up to a rune boundary so the
// digest never carries a split multibyte character.
func critiqueDigest(history []IterationStep) string {
	var parts []string
	for _, step := range history {
		if step.Phase != StepCritique {
			continue
		}
		text := step.OutputText
		if len(text) > critiqueDigestLimit {
			cut := critiqueDigestLimit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			text = text[:cut]
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n---\n")
}

// BuildCritiquePrompt constructs the critique instruction for one iteration.
// Output is byte-identical for identical inputs; there is no randomness and
// no timestamping in prompt text.
func BuildCritiquePrompt(originalPrompt, currentResponse string, iteration, totalIterations int, history []IterationStep) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are critiquing a response in a collaborative refinement process (iteration %d of %d).\n\n", iteration, totalIterations)
	b.WriteString(iterationFocus(iteration, totalIterations))
	b.WriteString("\n\nOriginal request:\n")
	b.WriteString(originalPrompt)
	b.WriteString("\n\nCurrent response:\n")
	b.WriteString(currentResponse)

	if digest := critiqueDigest(history); digest != "" {
		b.WriteString("\n\nEarlier critiques (summarized):\n")
		b.WriteString(digest)
	}

	b.WriteString("\n\nProvide a focused critique of the current response. Identify specific weaknesses and concrete opportunities to improve it. Do not rewrite the response.")
	return b.String()
}

// BuildImprovementPrompt constructs the improvement instruction for one
// iteration. Deterministic for identical inputs.
func BuildImprovementPrompt(originalPrompt, currentResponse, critique string, iteration, totalIterations int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are improving a response in a collaborative refinement process (iteration %d of %d).\n\n", iteration, totalIterations)
	b.WriteString(iterationFocus(iteration, totalIterations))
	b.WriteString("\n\nOriginal request:\n")
	b.WriteString(originalPrompt)
	b.WriteString("\n\nCurrent response:\n")
	b.WriteString(currentResponse)
	b.WriteString("\n\nCritique to address:\n")
	b.WriteString(critique)
	b.WriteString("\n\nProduce the full improved response. Address every point in the critique that genuinely improves the result, and keep everything that already works. Return only the improved response.")
	return b.String()
}

// BuildFinalReviewPrompt constructs the final polish instruction, summarizing
// the whole run for the reviewing model.
func BuildFinalReviewPrompt(session *Session) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are performing the final review of a collaborative refinement process that ran %d improvement iterations across %d steps.\n\n",
		session.CompletedIterations, len(session.History))

	b.WriteString("Model usage during this run:\n")
	for _, step := range session.History {
		fmt.Fprintf(&b, "- step %d: %s (%s)\n", step.Iteration, step.Model, step.Phase)
	}

	b.WriteString("\nOriginal request:\n")
	b.WriteString(session.OriginalPrompt)
	b.WriteString("\n\nCurrent response after all iterations:\n")
	b.WriteString(session.currentResponse)
	b.WriteString("\n\nPerform one final polish pass. Fix any remaining inconsistencies introduced during iteration, verify the response fully addresses the original request, and return only the final response.")
	return b.String()
}
