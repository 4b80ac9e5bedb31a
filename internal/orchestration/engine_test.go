package orchestration

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratten/Collaborative-LLM-Refinement/internal/analysis"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/generation"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/models"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/registry"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/strategy"
)

type stubCall struct {
	model  string
	prompt string
}

// pipelineStub serves both the analyzer and the engine. Analysis-flow prompts
// are answered from canned replies; everything else counts as a pipeline
// generation call.
type pipelineStub struct {
	models         []registry.ModelDescriptor
	analysisReply  string
	questionsReply string
	refineReply    string
	clarifiedReply string
	failOnCall     int // 1-based pipeline call index that fails; 0 never fails
	calls          []stubCall
}

func (s *pipelineStub) Generate(ctx context.Context, modelID, prompt string, opts *generation.Options) (string, error) {
	switch {
	case strings.Contains(prompt, "Score each axis"):
		return s.analysisReply, nil
	case strings.Contains(prompt, "needs clarification before"):
		return s.questionsReply, nil
	case strings.Contains(prompt, "Lightly polish"):
		return s.refineReply, nil
	case strings.Contains(prompt, "Synthesize one comprehensive"):
		return s.clarifiedReply, nil
	}

	s.calls = append(s.calls, stubCall{model: modelID, prompt: prompt})
	if s.failOnCall > 0 && len(s.calls) == s.failOnCall {
		return "", fmt.Errorf("provider blew up")
	}
	return fmt.Sprintf("output-%d", len(s.calls)), nil
}

func (s *pipelineStub) AvailableModels() []registry.ModelDescriptor {
	return s.models
}

const goodAnalysisReply = `CLARITY_SCORE: 0.9
COMPLETENESS_SCORE: 0.9
SPECIFICITY_SCORE: 0.9
OVERALL_SCORE: 0.9
NEEDS_CLARIFICATION: NO`

const vagueAnalysisReply = `OVERALL_SCORE: 0.3
NEEDS_CLARIFICATION: YES`

func newTestEngine(stub *pipelineStub) (*Engine, *InMemoryStore) {
	store := NewInMemoryStore()
	engine := NewEngine(store, stub, analysis.NewAnalyzer(stub), nil)
	return engine, store
}

func defaultSelection() ModelSelection {
	return ModelSelection{
		PrimaryModel:    "gpt-4o",
		HandoffStrategy: strategy.CrossProviderName,
	}
}

func fullCatalog() []registry.ModelDescriptor {
	return registry.New().ListModels()
}

func TestStart_FullRun(t *testing.T) {
	stub := &pipelineStub{
		models:        fullCatalog(),
		analysisReply: goodAnalysisReply,
		refineReply:   "refined prompt",
	}
	engine, store := newTestEngine(stub)

	var events []models.ProgressEvent
	sink := ProgressSinkFunc(func(e models.ProgressEvent) { events = append(events, e) })

	outcome, err := engine.Start(context.Background(), "write a launch plan", defaultSelection(), 2, sink)
	require.NoError(t, err)

	require.True(t, outcome.Complete)
	assert.False(t, outcome.NeedsClarification)
	require.NotNil(t, outcome.Result)

	result := outcome.Result
	assert.Equal(t, "write a launch plan", result.OriginalPrompt)
	assert.Equal(t, "refined prompt", result.RefinedPrompt)
	assert.Equal(t, 2, result.TargetIterations)
	assert.Equal(t, 2, result.CompletedIterations)

	// exactly 1 initial + 2 per iteration + 1 final review generation calls
	assert.Len(t, stub.calls, 6)
	assert.Len(t, result.History, 6)

	// history phases in order
	phases := make([]string, len(result.History))
	for i, step := range result.History {
		phases[i] = step.Phase
	}
	assert.Equal(t, []string{
		StepInitialGeneration,
		StepCritique, StepImprovement,
		StepCritique, StepImprovement,
		StepFinalReview,
	}, phases)

	// the final output is the final review step's output
	assert.Equal(t, "output-6", result.FinalOutput)

	// usage totals add up to the number of generation calls
	total := 0
	for _, usage := range result.Usage {
		total += usage.Total
	}
	assert.Equal(t, 6, total)

	// session discarded on completion
	assert.Equal(t, 0, store.Len())

	// progress event sequence
	require.Len(t, events, 8)
	assert.Equal(t, models.EventPhaseAnalyzing, events[0].Phase)
	assert.Equal(t, models.EventPhaseInitialGeneration, events[1].Phase)
	assert.Equal(t, models.EventPhaseCritique, events[2].Phase)
	assert.Equal(t, models.EventPhaseImprovement, events[3].Phase)
	assert.Equal(t, models.EventPhaseFinalReview, events[6].Phase)
	assert.Equal(t, models.EventPhaseCompleted, events[7].Phase)
	assert.True(t, events[7].Completed)
	require.NotNil(t, events[7].Result)
	assert.Equal(t, result.SessionID, events[7].SessionID)
}

func TestStart_CrossProviderHandoffAlternatesFamilies(t *testing.T) {
	stub := &pipelineStub{
		models:        fullCatalog(),
		analysisReply: goodAnalysisReply,
		refineReply:   "refined prompt",
	}
	engine, _ := newTestEngine(stub)

	_, err := engine.Start(context.Background(), "prompt", defaultSelection(), 2, nil)
	require.NoError(t, err)

	sequence := make([]string, len(stub.calls))
	for i, call := range stub.calls {
		sequence[i] = call.model
	}

	// initial on the primary, every critique/improvement handoff flips the
	// provider family, final review resolves to the detailed+comprehensive
	// premium model
	assert.Equal(t, []string{
		"gpt-4o",
		"claude-sonnet-4-5", "gpt-4-turbo",
		"claude-opus-4-1", "gpt-4o-mini",
		"claude-opus-4-1",
	}, sequence)
}

func TestStart_ExplicitFinalReviewModelHonored(t *testing.T) {
	stub := &pipelineStub{
		models:        fullCatalog(),
		analysisReply: goodAnalysisReply,
		refineReply:   "refined prompt",
	}
	engine, _ := newTestEngine(stub)

	selection := defaultSelection()
	selection.FinalReviewModel = "gpt-4o-mini"

	_, err := engine.Start(context.Background(), "prompt", selection, 1, nil)
	require.NoError(t, err)

	last := stub.calls[len(stub.calls)-1]
	assert.Equal(t, "gpt-4o-mini", last.model)
}

func TestStart_ValidationFailures(t *testing.T) {
	stub := &pipelineStub{models: fullCatalog(), analysisReply: goodAnalysisReply, refineReply: "r"}
	engine, _ := newTestEngine(stub)

	tests := []struct {
		name       string
		prompt     string
		selection  ModelSelection
		iterations int
		wantConfig bool
	}{
		{"empty_prompt", "", defaultSelection(), 1, false},
		{"zero_iterations", "p", defaultSelection(), 0, false},
		{"unknown_strategy", "p", ModelSelection{PrimaryModel: "gpt-4o", HandoffStrategy: "roundRobin"}, 1, false},
		{"unavailable_primary", "p", ModelSelection{PrimaryModel: "gpt-99", HandoffStrategy: strategy.CrossProviderName}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Start(context.Background(), tt.prompt, tt.selection, tt.iterations, nil)
			require.Error(t, err)

			if tt.wantConfig {
				var configErr *ConfigurationError
				assert.ErrorAs(t, err, &configErr)
			} else {
				var validationErr *ValidationError
				assert.ErrorAs(t, err, &validationErr)
			}
			assert.Empty(t, stub.calls, "no generation calls on rejected requests")
		})
	}
}

func TestStart_NoModelsConfigured(t *testing.T) {
	stub := &pipelineStub{}
	engine, _ := newTestEngine(stub)

	_, err := engine.Start(context.Background(), "p", defaultSelection(), 1, nil)

	var configErr *ConfigurationError
	require.ErrorAs(t, err, &configErr)
	assert.Contains(t, configErr.Reason, "no models available")
}

func TestStart_ClarificationGate(t *testing.T) {
	stub := &pipelineStub{
		models:         fullCatalog(),
		analysisReply:  vagueAnalysisReply,
		questionsReply: "QUESTION_1: What audience?\nQUESTION_2: What format?",
		clarifiedReply: "refined with answers",
	}
	engine, store := newTestEngine(stub)

	outcome, err := engine.Start(context.Background(), "make it better", defaultSelection(), 2, nil)
	require.NoError(t, err)

	assert.True(t, outcome.NeedsClarification)
	assert.False(t, outcome.Complete)
	assert.Nil(t, outcome.Result)
	require.Len(t, outcome.Questions, 2)

	// pipeline must not have started
	assert.Empty(t, stub.calls)

	session, ok := store.Get(outcome.SessionID)
	require.True(t, ok)
	assert.Equal(t, StatusAwaitingClarification, session.Status)
	assert.Empty(t, session.RefinedPrompt)

	// answers resume the session and run the full pipeline
	answers := map[string]string{"q1": "developers", "q2": "markdown"}
	result, err := engine.SubmitClarification(context.Background(), outcome.SessionID, answers, nil)
	require.NoError(t, err)

	assert.Equal(t, "refined with answers", result.RefinedPrompt)
	assert.Equal(t, 2, result.CompletedIterations)
	assert.Len(t, stub.calls, 6)
	assert.Equal(t, 0, store.Len())
}

func TestSubmitClarification_UnknownSession(t *testing.T) {
	stub := &pipelineStub{models: fullCatalog()}
	engine, _ := newTestEngine(stub)

	_, err := engine.SubmitClarification(context.Background(), "nope", map[string]string{"q1": "answer"}, nil)

	var notFoundErr *SessionNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "nope", notFoundErr.SessionID)
}

func TestSubmitClarification_NotAwaiting(t *testing.T) {
	stub := &pipelineStub{models: fullCatalog()}
	engine, store := newTestEngine(stub)

	store.Put(&Session{ID: "s1", Status: StatusCreated})

	_, err := engine.SubmitClarification(context.Background(), "s1", map[string]string{"q1": "answer"}, nil)

	var noPendingErr *NoClarificationPendingError
	assert.ErrorAs(t, err, &noPendingErr)
}

// blockingClarifyStub parks inside the clarified-refinement call until
// released, so a second submission can race against an in-flight one.
type blockingClarifyStub struct {
	mu       sync.Mutex
	models   []registry.ModelDescriptor
	entered  chan struct{}
	release  chan struct{}
	once     sync.Once
	pipeline int
}

func (s *blockingClarifyStub) Generate(ctx context.Context, modelID, prompt string, opts *generation.Options) (string, error) {
	switch {
	case strings.Contains(prompt, "Score each axis"):
		return vagueAnalysisReply, nil
	case strings.Contains(prompt, "needs clarification before"):
		return "QUESTION_1: What audience?", nil
	case strings.Contains(prompt, "Synthesize one comprehensive"):
		s.once.Do(func() { close(s.entered) })
		<-s.release
		return "refined with answers", nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipeline++
	return fmt.Sprintf("output-%d", s.pipeline), nil
}

func (s *blockingClarifyStub) AvailableModels() []registry.ModelDescriptor {
	return s.models
}

func (s *blockingClarifyStub) pipelineCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipeline
}

func TestSubmitClarification_ConcurrentSubmissionsRunPipelineOnce(t *testing.T) {
	stub := &blockingClarifyStub{
		models:  fullCatalog(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	store := NewInMemoryStore()
	engine := NewEngine(store, stub, analysis.NewAnalyzer(stub), nil)

	outcome, err := engine.Start(context.Background(), "make it better", defaultSelection(), 1, nil)
	require.NoError(t, err)
	require.True(t, outcome.NeedsClarification)

	answers := map[string]string{"q1": "developers"}

	done := make(chan error, 1)
	go func() {
		_, err := engine.SubmitClarification(context.Background(), outcome.SessionID, answers, nil)
		done <- err
	}()
	<-stub.entered

	// the first submission holds the session; a duplicate is turned away
	// without touching it
	_, err = engine.SubmitClarification(context.Background(), outcome.SessionID, answers, nil)
	var noPendingErr *NoClarificationPendingError
	require.ErrorAs(t, err, &noPendingErr)

	close(stub.release)
	require.NoError(t, <-done)

	// exactly one pipeline ran: 1 initial + 2 for the iteration + 1 final
	assert.Equal(t, 4, stub.pipelineCalls())
	assert.Equal(t, 0, store.Len())
}

func TestSubmitClarification_InvalidAnswersKeepSessionParked(t *testing.T) {
	stub := &pipelineStub{
		models:         fullCatalog(),
		analysisReply:  vagueAnalysisReply,
		questionsReply: "QUESTION_1: What audience?",
	}
	engine, store := newTestEngine(stub)

	outcome, err := engine.Start(context.Background(), "make it better", defaultSelection(), 1, nil)
	require.NoError(t, err)
	require.True(t, outcome.NeedsClarification)

	_, err = engine.SubmitClarification(context.Background(), outcome.SessionID, map[string]string{"q1": "ok"}, nil)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Violations, 1)
	assert.Contains(t, validationErr.Violations[0], "too short")

	// the session is still waiting; a corrected submission succeeds
	session, ok := store.Get(outcome.SessionID)
	require.True(t, ok)
	assert.Equal(t, StatusAwaitingClarification, session.Status)
}

func TestStart_ProviderFailureAbortsAndDiscards(t *testing.T) {
	stub := &pipelineStub{
		models:        fullCatalog(),
		analysisReply: goodAnalysisReply,
		refineReply:   "refined prompt",
		failOnCall:    3, // first improvement call
	}
	engine, store := newTestEngine(stub)

	var events []models.ProgressEvent
	sink := ProgressSinkFunc(func(e models.ProgressEvent) { events = append(events, e) })

	_, err := engine.Start(context.Background(), "prompt", defaultSelection(), 3, sink)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iteration 1 improvement")
	assert.Contains(t, err.Error(), "provider blew up")

	// run stopped at the failing call: no further iterations, no final review
	assert.Len(t, stub.calls, 3)

	// session discarded on failure too
	assert.Equal(t, 0, store.Len())

	// no completion event was published
	for _, e := range events {
		assert.False(t, e.Completed)
		assert.NotEqual(t, models.EventPhaseCompleted, e.Phase)
	}
}

func TestStart_AnalysisFailureDiscardsSession(t *testing.T) {
	failing := &analysisFailingStub{models: fullCatalog()}
	store := NewInMemoryStore()
	engine := NewEngine(store, failing, analysis.NewAnalyzer(failing), nil)

	_, err := engine.Start(context.Background(), "prompt", defaultSelection(), 1, nil)
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

type analysisFailingStub struct {
	models []registry.ModelDescriptor
}

func (s *analysisFailingStub) Generate(ctx context.Context, modelID, prompt string, opts *generation.Options) (string, error) {
	return "", fmt.Errorf("analysis model offline")
}

func (s *analysisFailingStub) AvailableModels() []registry.ModelDescriptor {
	return s.models
}

func TestStart_SingleIterationMinimum(t *testing.T) {
	stub := &pipelineStub{
		models:        fullCatalog(),
		analysisReply: goodAnalysisReply,
		refineReply:   "refined prompt",
	}
	engine, _ := newTestEngine(stub)

	outcome, err := engine.Start(context.Background(), "prompt", defaultSelection(), 1, nil)
	require.NoError(t, err)

	// 1 initial + 2 for the single iteration + 1 final review
	assert.Len(t, stub.calls, 4)
	assert.Equal(t, 1, outcome.Result.CompletedIterations)
}
