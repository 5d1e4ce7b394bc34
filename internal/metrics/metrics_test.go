package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRegistryIdempotent(t *testing.T) {
	r1 := InitRegistry()
	r2 := InitRegistry()
	require.NotNil(t, r1)
	assert.Same(t, r1, r2)
	assert.Same(t, r1, GetRegistry())
}

func TestRecordTicketDecision(t *testing.T) {
	InitRegistry()
	// Exercising the helpers must not panic on repeated label values.
	RecordTicketDecision(true, "")
	RecordTicketDecision(false, "aggregate score below threshold")
	RecordTicketDecision(false, "hard contradiction")
}

func TestRecordEntropyStatusSetsOneFlag(t *testing.T) {
	InitRegistry()
	RecordEntropyStatus("warning", 0.41)
	RecordEntropyStatus("ok", 0.52)
}

func TestHandlerServesRegistry(t *testing.T) {
	assert.NotNil(t, Handler())
}
