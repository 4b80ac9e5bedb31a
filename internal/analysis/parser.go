package analysis

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// parsedAnalysis is the best-effort extraction of a structured analysis
// response.
type parsedAnalysis struct {
	Scores                Scores
	NeedsClarification    bool
	MissingElements       string
	SuggestedImprovements string
}

// defaultScore is used for any axis the model failed to report
const defaultScore = 0.5

// maxQuestions caps how many clarification questions are surfaced
const maxQuestions = 4

var (
	clarityRe      = regexp.MustCompile(`(?mi)^\s*CLARITY_SCORE:\s*([0-9]*\.?[0-9]+)`)
	completenessRe = regexp.MustCompile(`(?mi)^\s*COMPLETENESS_SCORE:\s*([0-9]*\.?[0-9]+)`)
	specificityRe  = regexp.MustCompile(`(?mi)^\s*SPECIFICITY_SCORE:\s*([0-9]*\.?[0-9]+)`)
	overallRe      = regexp.MustCompile(`(?mi)^\s*OVERALL_SCORE:\s*([0-9]*\.?[0-9]+)`)
	needsClarRe    = regexp.MustCompile(`(?mi)^\s*NEEDS_CLARIFICATION:\s*(YES|NO|TRUE|FALSE)`)
	missingRe      = regexp.MustCompile(`(?mi)^\s*MISSING_ELEMENTS:\s*(.+)$`)
	improvementsRe = regexp.MustCompile(`(?mi)^\s*SUGGESTED_IMPROVEMENTS:\s*(.+)$`)
	questionRe     = regexp.MustCompile(`(?mi)^\s*QUESTION_\d+:\s*(.+)$`)
)

// parseAnalysis extracts scores and the clarification flag from a structured
// analysis response. It never fails: a missing or malformed field falls back
// to the conservative default of score 0.5 and clarification required.
func parseAnalysis(raw string) parsedAnalysis {
	out := parsedAnalysis{
		Scores: Scores{
			Clarity:      defaultScore,
			Completeness: defaultScore,
			Specificity:  defaultScore,
			Overall:      defaultScore,
		},
		NeedsClarification: true,
	}

	out.Scores.Clarity = extractScore(clarityRe, raw)
	out.Scores.Completeness = extractScore(completenessRe, raw)
	out.Scores.Specificity = extractScore(specificityRe, raw)
	out.Scores.Overall = extractScore(overallRe, raw)

	if m := needsClarRe.FindStringSubmatch(raw); m != nil {
		switch strings.ToUpper(m[1]) {
		case "NO", "FALSE":
			out.NeedsClarification = false
		default:
			out.NeedsClarification = true
		}
	}

	if m := missingRe.FindStringSubmatch(raw); m != nil {
		out.MissingElements = strings.TrimSpace(m[1])
	}
	if m := improvementsRe.FindStringSubmatch(raw); m != nil {
		out.SuggestedImprovements = strings.TrimSpace(m[1])
	}

	return out
}

func extractScore(re *regexp.Regexp, raw string) float64 {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return defaultScore
	}
	score, err := strconv.ParseFloat(m[1], 64)
	if err != nil || score < 0 || score > 1 {
		return defaultScore
	}
	return score
}

// parseQuestions extracts clarification questions from a structured response.
// Extraction order: QUESTION_n lines, then a line scan for question-like
// text, then one synthesized generic question. The result is never empty and
// never exceeds maxQuestions.
func parseQuestions(raw string) []ClarificationQuestion {
	var texts []string
	for _, m := range questionRe.FindAllStringSubmatch(raw, -1) {
		if q := strings.TrimSpace(m[1]); q != "" {
			texts = append(texts, q)
		}
		if len(texts) == maxQuestions {
			break
		}
	}

	if len(texts) == 0 {
		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.Contains(line, "?") || strings.Contains(strings.ToLower(line), "question") {
				texts = append(texts, line)
			}
			if len(texts) == maxQuestions {
				break
			}
		}
	}

	if len(texts) == 0 {
		texts = []string{"Could you provide more detail about what you want to achieve and any constraints that apply?"}
	}

	questions := make([]ClarificationQuestion, len(texts))
	for i, text := range texts {
		questions[i] = ClarificationQuestion{
			ID:       fmt.Sprintf("q%d", i+1),
			Question: text,
		}
	}
	return questions
}
