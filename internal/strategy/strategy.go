package strategy

import (
	"github.com/stratten/Collaborative-LLM-Refinement/internal/registry"
)

// Phase marks which step of the pipeline a model-selection decision is for
type Phase string

const (
	PhaseInitial     Phase = "initial"
	PhaseCritique    Phase = "critique"
	PhaseImprovement Phase = "improvement"
	PhaseFinal       Phase = "final"
)

// Strategy names accepted at session start
const (
	CrossProviderName       = "crossProvider"
	CapabilityBasedName     = "capabilityBased"
	ModelSpecializationName = "modelSpecialization"
)

// Selector picks the model for the next phase given the models currently
// available and the iteration context. Handoff is a quality heuristic, not a
// correctness requirement: selectors degrade to the current model or the
// first available model instead of failing.
type Selector func(models []registry.ModelDescriptor, currentModel string, iteration, totalIterations int, phase Phase) string

// ForName resolves a strategy by its configured name. Snake_case aliases are
// accepted because older clients send them.
func ForName(name string) (Selector, bool) {
	switch name {
	case CrossProviderName, "cross_provider":
		return CrossProvider, true
	case CapabilityBasedName, "capability_based":
		return CapabilityBased, true
	case ModelSpecializationName, "model_specialization":
		return ModelSpecialization, true
	default:
		return nil, false
	}
}

// phaseCapabilities maps each phase to the capability tags it benefits from
var phaseCapabilities = map[Phase][]string{
	PhaseInitial:     {registry.CapabilityCreative, registry.CapabilityComprehensive},
	PhaseCritique:    {registry.CapabilityAnalytical, registry.CapabilityPrecise},
	PhaseImprovement: {registry.CapabilityComprehensive, registry.CapabilityCreative},
	PhaseFinal:       {registry.CapabilityDetailed, registry.CapabilityComprehensive},
}

// specializationTable is the fixed phase -> specialization -> model mapping
// used by the modelSpecialization strategy.
var specializationTable = map[Phase]struct {
	Specialization string
	ModelID        string
}{
	PhaseInitial:     {"creative_generation", "claude-opus-4-1"},
	PhaseCritique:    {"analytical_critique", "gpt-4o"},
	PhaseImprovement: {"comprehensive_improvement", "claude-opus-4-1"},
	PhaseFinal:       {"detailed_review", "claude-opus-4-1"},
}

// CrossProvider alternates provider family on every handoff. The opposite
// family's model is chosen by iteration index; with no opposite-family model
// available it keeps the current model.
func CrossProvider(models []registry.ModelDescriptor, currentModel string, iteration, totalIterations int, phase Phase) string {
	if len(models) == 0 {
		return currentModel
	}

	currentProvider, found := providerOf(models, currentModel)
	if !found {
		return models[0].ID
	}

	var opposite []registry.ModelDescriptor
	for _, m := range models {
		if m.Provider != currentProvider {
			opposite = append(opposite, m)
		}
	}
	if len(opposite) == 0 {
		return currentModel
	}

	return opposite[iteration%len(opposite)].ID
}

// CapabilityBased scores available models by overlap with the phase's
// capability needs, preferring models other than the current one. Ties break
// by catalog order.
func CapabilityBased(models []registry.ModelDescriptor, currentModel string, iteration, totalIterations int, phase Phase) string {
	if len(models) == 0 {
		return currentModel
	}

	required := phaseCapabilities[phase]

	candidates := make([]registry.ModelDescriptor, 0, len(models))
	for _, m := range models {
		if m.ID != currentModel {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		candidates = models
	}

	best := candidates[0]
	bestScore := capabilityOverlap(best, required)
	for _, m := range candidates[1:] {
		if score := capabilityOverlap(m, required); score > bestScore {
			best = m
			bestScore = score
		}
	}

	return best.ID
}

// ModelSpecialization consults the fixed specialization table and falls back
// to the current model when the phase has no mapping.
func ModelSpecialization(models []registry.ModelDescriptor, currentModel string, iteration, totalIterations int, phase Phase) string {
	entry, ok := specializationTable[phase]
	if !ok {
		return currentModel
	}
	return entry.ModelID
}

func providerOf(models []registry.ModelDescriptor, modelID string) (registry.Provider, bool) {
	for _, m := range models {
		if m.ID == modelID {
			return m.Provider, true
		}
	}
	return "", false
}

func capabilityOverlap(m registry.ModelDescriptor, required []string) int {
	score := 0
	for _, cap := range required {
		if m.HasCapability(cap) {
			score++
		}
	}
	return score
}
