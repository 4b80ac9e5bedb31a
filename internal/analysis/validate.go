package analysis

import (
	"fmt"
	"strings"
)

// minAnswerLength is the shortest clarification answer accepted after trimming
const minAnswerLength = 3

// ValidateAnswers checks every clarification answer and returns all
// violations, not just the first. An empty result means the answer set is
// valid.
func ValidateAnswers(questions []ClarificationQuestion, answers map[string]string) []string {
	var violations []string
	for _, q := range questions {
		answer, ok := answers[q.ID]
		trimmed := strings.TrimSpace(answer)
		if !ok || trimmed == "" {
			violations = append(violations, fmt.Sprintf("answer for question %s is required", q.ID))
			continue
		}
		if len(trimmed) < minAnswerLength {
			violations = append(violations, fmt.Sprintf("answer for question %s is too short (minimum %d characters)", q.ID, minAnswerLength))
		}
	}
	return violations
}
