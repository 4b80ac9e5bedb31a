package models

import (
	"time"
)

// ProgressEvent is one observational update emitted while a refinement
// session runs. Events are delivered in emission order, at most once each,
// and only while a sink remains registered.
type ProgressEvent struct {
	SessionID        string      `json:"session_id"`
	Timestamp        time.Time   `json:"timestamp"`
	Phase            string      `json:"phase"`
	Message          string      `json:"message"`
	CurrentIteration int         `json:"current_iteration"`
	TotalIterations  int         `json:"total_iterations"`
	Model            string      `json:"model,omitempty"`
	Completed        bool        `json:"completed,omitempty"`
	Result           interface{} `json:"result,omitempty"`
}

// Progress event phases
const (
	EventPhaseAnalyzing         = "analyzing"
	EventPhaseInitialGeneration = "initial_generation"
	EventPhaseCritique          = "critique"
	EventPhaseImprovement       = "improvement"
	EventPhaseFinalReview       = "final_review"
	EventPhaseCompleted         = "completed"
)
