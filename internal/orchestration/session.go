package orchestration

import (
	"time"

	"github.com/stratten/Collaborative-LLM-Refinement/internal/analysis"
)

// Status tracks where a session is in its lifecycle
type Status string

const (
	StatusCreated               Status = "created"
	StatusAnalyzing             Status = "analyzing"
	StatusAwaitingClarification Status = "awaiting_clarification"
	StatusRefining              Status = "refining"
	StatusIterating             Status = "iterating"
	StatusFinalReview           Status = "final_review"
	StatusCompleted             Status = "completed"
	StatusFailed                Status = "failed"
)

// Step types recorded in the iteration history
const (
	StepInitialGeneration = "initial_generation"
	StepCritique          = "critique"
	StepImprovement       = "improvement"
	StepFinalReview       = "final_review"
)

// ModelSelection names the models and handoff strategy for a session. Set at
// creation; FinalReviewModel may be left empty and resolved later.
type ModelSelection struct {
	PrimaryModel     string `json:"primary_model"`
	RefinementModel  string `json:"refinement_model"`
	FinalReviewModel string `json:"final_review_model,omitempty"`
	HandoffStrategy  string `json:"handoff_strategy"`
}

// IterationStep is one append-only audit-trail entry. Steps are only ever
// appended by the engine during pipeline execution and never reordered.
type IterationStep struct {
	Iteration  int       `json:"iteration"`
	Model      string    `json:"model"`
	Phase      string    `json:"phase"`
	InputText  string    `json:"input_text"`
	OutputText string    `json:"output_text"`
	Timestamp  time.Time `json:"timestamp"`
}

// ModelUsage counts how often a model was invoked, per phase and in total
type ModelUsage struct {
	PerPhase map[string]int `json:"per_phase"`
	Total    int            `json:"total"`
}

// Session is one end-to-end refinement run. All mutable state for a run lives
// here; sessions never share structures.
type Session struct {
	ID                    string
	OriginalPrompt        string
	RefinedPrompt         string
	Selection             ModelSelection
	TargetIterations      int
	CurrentIteration      int
	CompletedIterations   int
	PendingClarifications []analysis.ClarificationQuestion
	History               []IterationStep
	Usage                 map[string]*ModelUsage
	Status                Status
	CreatedAt             time.Time

	currentResponse string
}

// Result is the completed outcome of a session, with the full audit trail
type Result struct {
	SessionID           string                 `json:"session_id"`
	OriginalPrompt      string                 `json:"original_prompt"`
	RefinedPrompt       string                 `json:"refined_prompt"`
	FinalOutput         string                 `json:"final_output"`
	TargetIterations    int                    `json:"target_iterations"`
	CompletedIterations int                    `json:"completed_iterations"`
	History             []IterationStep        `json:"history"`
	Usage               map[string]*ModelUsage `json:"model_usage"`
}
