package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stratten/Collaborative-LLM-Refinement/internal/analysis"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/generation"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/metrics"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/models"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/registry"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/strategy"
)

// TextGenerator is the slice of the generation service the engine depends on
type TextGenerator interface {
	Generate(ctx context.Context, modelID, prompt string, opts *generation.Options) (string, error)
	AvailableModels() []registry.ModelDescriptor
}

// ProgressSink receives progress events for a session. Progress reporting is
// best-effort and observational; sinks must not block for long.
type ProgressSink interface {
	Publish(event models.ProgressEvent)
}

// ProgressSinkFunc adapts a function to the ProgressSink interface
type ProgressSinkFunc func(event models.ProgressEvent)

// Publish calls the wrapped function
func (f ProgressSinkFunc) Publish(event models.ProgressEvent) { f(event) }

// StartOutcome is the result of Start: either pending clarification questions
// or a completed refinement result.
type StartOutcome struct {
	SessionID          string
	NeedsClarification bool
	Questions          []analysis.ClarificationQuestion
	Complete           bool
	Result             *Result
}

// Engine drives refinement sessions through the
// analyze -> clarify -> iterate -> final-review state machine. One pipeline
// runs per session; multiple sessions may run concurrently.
type Engine struct {
	store    Store
	gen      TextGenerator
	analyzer *analysis.Analyzer
	metrics  *metrics.RefinementMetrics
}

// NewEngine creates a session engine. The metrics collector may be nil.
func NewEngine(store Store, gen TextGenerator, analyzer *analysis.Analyzer, m *metrics.RefinementMetrics) *Engine {
	return &Engine{
		store:    store,
		gen:      gen,
		analyzer: analyzer,
		metrics:  m,
	}
}

// Start creates a session, analyzes the prompt, and either parks the session
// awaiting clarification answers or runs the full pipeline to completion.
func (e *Engine) Start(ctx context.Context, prompt string, selection ModelSelection, iterations int, sink ProgressSink) (*StartOutcome, error) {
	if prompt == "" {
		return nil, &ValidationError{Violations: []string{"prompt must not be empty"}}
	}
	if iterations < 1 {
		return nil, &ValidationError{Violations: []string{"iterations must be at least 1"}}
	}
	if _, ok := strategy.ForName(selection.HandoffStrategy); !ok {
		return nil, &ValidationError{Violations: []string{fmt.Sprintf("unknown handoff strategy: %s", selection.HandoffStrategy)}}
	}

	available := e.gen.AvailableModels()
	if len(available) == 0 {
		return nil, &ConfigurationError{Reason: "no models available; configure provider credentials first"}
	}
	if !modelAvailable(available, selection.PrimaryModel) {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("primary model %s is not available", selection.PrimaryModel)}
	}

	session := &Session{
		ID:               uuid.New().String(),
		OriginalPrompt:   prompt,
		Selection:        selection,
		TargetIterations: iterations,
		Usage:            make(map[string]*ModelUsage),
		Status:           StatusCreated,
		CreatedAt:        time.Now().UTC(),
	}
	e.store.Put(session)

	if e.metrics != nil {
		e.metrics.RecordSessionStarted(ctx, selection.HandoffStrategy)
	}
	logrus.WithFields(logrus.Fields{
		"session_id": session.ID,
		"strategy":   selection.HandoffStrategy,
		"iterations": iterations,
	}).Info("Refinement session started")

	session.Status = StatusAnalyzing
	e.sendProgressUpdate(sink, session, models.ProgressEvent{
		Phase:   models.EventPhaseAnalyzing,
		Message: "Analyzing prompt quality",
	})

	result, err := e.analyzer.Analyze(ctx, prompt)
	if err != nil {
		e.failSession(ctx, session)
		return nil, fmt.Errorf("session %s: %w", session.ID, err)
	}

	if result.NeedsClarification {
		session.PendingClarifications = result.Questions
		session.Status = StatusAwaitingClarification
		e.store.Put(session)
		return &StartOutcome{
			SessionID:          session.ID,
			NeedsClarification: true,
			Questions:          result.Questions,
		}, nil
	}

	session.RefinedPrompt = result.RefinedPrompt
	final, err := e.runPipeline(ctx, session, sink)
	if err != nil {
		return nil, err
	}

	return &StartOutcome{
		SessionID: session.ID,
		Complete:  true,
		Result:    final,
	}, nil
}

// SubmitClarification validates the answers, refines the prompt with them,
// and runs the pipeline for a session parked in awaiting-clarification.
// Claiming the session up front makes the submission exclusive; a concurrent
// duplicate gets NoClarificationPendingError instead of a second pipeline run.
func (e *Engine) SubmitClarification(ctx context.Context, sessionID string, answers map[string]string, sink ProgressSink) (*Result, error) {
	session, claimed := e.store.Claim(sessionID, StatusAwaitingClarification, StatusRefining)
	if session == nil {
		return nil, &SessionNotFoundError{SessionID: sessionID}
	}
	if !claimed {
		return nil, &NoClarificationPendingError{SessionID: sessionID}
	}

	if violations := analysis.ValidateAnswers(session.PendingClarifications, answers); len(violations) > 0 {
		session.Status = StatusAwaitingClarification
		e.store.Put(session)
		return nil, &ValidationError{Violations: violations}
	}

	refined, err := e.analyzer.RefineWithClarifications(ctx, session.OriginalPrompt, session.PendingClarifications, answers)
	if err != nil {
		e.failSession(ctx, session)
		return nil, fmt.Errorf("session %s: %w", session.ID, err)
	}

	session.RefinedPrompt = refined
	session.PendingClarifications = nil
	return e.runPipeline(ctx, session, sink)
}

// runPipeline executes the full generation sequence for a session: initial
// generation, N critique/improvement iterations, then the final review. Any
// generation failure aborts the run and discards the session; there is no
// retry at this layer.
func (e *Engine) runPipeline(ctx context.Context, session *Session, sink ProgressSink) (*Result, error) {
	session.Status = StatusRefining
	available := e.gen.AvailableModels()
	selector, _ := strategy.ForName(session.Selection.HandoffStrategy)

	// Initial generation
	output, err := e.generateStep(ctx, session, session.Selection.PrimaryModel, StepInitialGeneration, 0, session.RefinedPrompt)
	if err != nil {
		e.failSession(ctx, session)
		return nil, fmt.Errorf("session %s: initial generation with model %s: %w", session.ID, session.Selection.PrimaryModel, err)
	}
	session.currentResponse = output
	lastModel := session.Selection.PrimaryModel
	e.sendProgressUpdate(sink, session, models.ProgressEvent{
		Phase:   models.EventPhaseInitialGeneration,
		Message: "Initial response generated",
		Model:   session.Selection.PrimaryModel,
	})

	// Critique/improvement iterations
	session.Status = StatusIterating
	for i := 1; i <= session.TargetIterations; i++ {
		session.CurrentIteration = i

		critiqueModel := selector(available, lastModel, i, session.TargetIterations, strategy.PhaseCritique)
		critiquePrompt := BuildCritiquePrompt(session.OriginalPrompt, session.currentResponse, i, session.TargetIterations, session.History)
		critique, err := e.generateStep(ctx, session, critiqueModel, StepCritique, i, critiquePrompt)
		if err != nil {
			e.failSession(ctx, session)
			return nil, fmt.Errorf("session %s: iteration %d critique with model %s: %w", session.ID, i, critiqueModel, err)
		}
		e.sendProgressUpdate(sink, session, models.ProgressEvent{
			Phase:   models.EventPhaseCritique,
			Message: fmt.Sprintf("Critique %d of %d complete", i, session.TargetIterations),
			Model:   critiqueModel,
		})

		improvementModel := selector(available, critiqueModel, i, session.TargetIterations, strategy.PhaseImprovement)
		improvementPrompt := BuildImprovementPrompt(session.OriginalPrompt, session.currentResponse, critique, i, session.TargetIterations)
		improved, err := e.generateStep(ctx, session, improvementModel, StepImprovement, i, improvementPrompt)
		if err != nil {
			e.failSession(ctx, session)
			return nil, fmt.Errorf("session %s: iteration %d improvement with model %s: %w", session.ID, i, improvementModel, err)
		}
		session.currentResponse = improved
		lastModel = improvementModel
		session.CompletedIterations = i
		e.sendProgressUpdate(sink, session, models.ProgressEvent{
			Phase:   models.EventPhaseImprovement,
			Message: fmt.Sprintf("Improvement %d of %d complete", i, session.TargetIterations),
			Model:   improvementModel,
		})
	}

	// Final review
	session.Status = StatusFinalReview
	finalModel := e.resolveFinalReviewModel(session, available)
	e.sendProgressUpdate(sink, session, models.ProgressEvent{
		Phase:   models.EventPhaseFinalReview,
		Message: "Running final review",
		Model:   finalModel,
	})
	finalPrompt := BuildFinalReviewPrompt(session)
	finalOutput, err := e.generateStep(ctx, session, finalModel, StepFinalReview, session.TargetIterations, finalPrompt)
	if err != nil {
		e.failSession(ctx, session)
		return nil, fmt.Errorf("session %s: final review with model %s: %w", session.ID, finalModel, err)
	}
	session.currentResponse = finalOutput
	session.Status = StatusCompleted

	result := &Result{
		SessionID:           session.ID,
		OriginalPrompt:      session.OriginalPrompt,
		RefinedPrompt:       session.RefinedPrompt,
		FinalOutput:         finalOutput,
		TargetIterations:    session.TargetIterations,
		CompletedIterations: session.CompletedIterations,
		History:             session.History,
		Usage:               session.Usage,
	}

	e.store.Delete(session.ID)
	if e.metrics != nil {
		e.metrics.RecordSessionCompleted(ctx, session.Selection.HandoffStrategy, session.CompletedIterations, time.Since(session.CreatedAt))
	}
	logrus.WithFields(logrus.Fields{
		"session_id": session.ID,
		"iterations": session.CompletedIterations,
		"steps":      len(session.History),
	}).Info("Refinement session completed")

	e.sendProgressUpdate(sink, session, models.ProgressEvent{
		Phase:     models.EventPhaseCompleted,
		Message:   "Refinement complete",
		Model:     finalModel,
		Completed: true,
		Result:    result,
	})

	return result, nil
}

// generateStep runs one generation call, records the step in the history, and
// updates usage counters.
func (e *Engine) generateStep(ctx context.Context, session *Session, modelID, phase string, iteration int, prompt string) (string, error) {
	start := time.Now()
	output, err := e.gen.Generate(ctx, modelID, prompt, nil)
	if e.metrics != nil {
		e.metrics.RecordGenerationCall(ctx, modelID, phase, time.Since(start))
	}
	if err != nil {
		return "", err
	}

	session.History = append(session.History, IterationStep{
		Iteration:  iteration,
		Model:      modelID,
		Phase:      phase,
		InputText:  prompt,
		OutputText: output,
		Timestamp:  time.Now().UTC(),
	})
	e.trackModelUsage(session, modelID, phase)

	return output, nil
}

// trackModelUsage additively updates the per-model usage counters
func (e *Engine) trackModelUsage(session *Session, modelID, phase string) {
	usage, ok := session.Usage[modelID]
	if !ok {
		usage = &ModelUsage{PerPhase: make(map[string]int)}
		session.Usage[modelID] = usage
	}
	usage.PerPhase[phase]++
	usage.Total++
}

// resolveFinalReviewModel picks the model for the final review pass:
// the explicit session value, else a capability match on detailed and
// comprehensive, else the best available model by tier.
func (e *Engine) resolveFinalReviewModel(session *Session, available []registry.ModelDescriptor) string {
	if session.Selection.FinalReviewModel != "" {
		return session.Selection.FinalReviewModel
	}

	var matches []registry.ModelDescriptor
	for _, m := range available {
		if m.HasCapability(registry.CapabilityDetailed) && m.HasCapability(registry.CapabilityComprehensive) {
			matches = append(matches, m)
		}
	}
	if len(matches) > 0 {
		return registry.SortByTier(matches)[0].ID
	}
	if len(available) > 0 {
		return registry.SortByTier(available)[0].ID
	}
	return session.Selection.PrimaryModel
}

// sendProgressUpdate publishes a progress event if a sink is registered.
// Absence of a sink is not an error.
func (e *Engine) sendProgressUpdate(sink ProgressSink, session *Session, event models.ProgressEvent) {
	if sink == nil {
		return
	}
	event.SessionID = session.ID
	event.Timestamp = time.Now().UTC()
	event.CurrentIteration = session.CurrentIteration
	event.TotalIterations = session.TargetIterations
	sink.Publish(event)
}

// failSession discards a session after an unrecovered error
func (e *Engine) failSession(ctx context.Context, session *Session) {
	session.Status = StatusFailed
	e.store.Delete(session.ID)
	if e.metrics != nil {
		e.metrics.RecordSessionFailed(ctx, session.Selection.HandoffStrategy, "provider_call", time.Since(session.CreatedAt))
	}
	logrus.WithField("session_id", session.ID).Warn("Refinement session failed and was discarded")
}

func modelAvailable(available []registry.ModelDescriptor, modelID string) bool {
	for _, m := range available {
		if m.ID == modelID {
			return true
		}
	}
	return false
}
