package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRefinementMetrics(t *testing.T) {
	rm, err := NewRefinementMetrics()
	require.NoError(t, err)

	assert.NotNil(t, rm.sessionsStartedCounter)
	assert.NotNil(t, rm.sessionsCompletedCounter)
	assert.NotNil(t, rm.sessionsFailedCounter)
	assert.NotNil(t, rm.generationDurationHistory)
	assert.NotNil(t, rm.sessionsActiveGauge)
}

func TestRecordMethods_DoNotPanic(t *testing.T) {
	rm, err := NewRefinementMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	assert.NotPanics(t, func() {
		rm.RecordSessionStarted(ctx, "crossProvider")
		rm.RecordGenerationCall(ctx, "gpt-4o", "critique", 250*time.Millisecond)
		rm.RecordSessionCompleted(ctx, "crossProvider", 3, 12*time.Second)
		rm.RecordSessionStarted(ctx, "capabilityBased")
		rm.RecordSessionFailed(ctx, "capabilityBased", "provider_call", 2*time.Second)
	})
}
