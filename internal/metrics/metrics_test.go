package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterIsIdempotent(t *testing.T) {
	Register()
	Register()
}

func TestRecordOperation(t *testing.T) {
	before := testutil.ToFloat64(operations.WithLabelValues("metrics_test_op", "false"))

	RecordOperation("metrics_test_op", false, 25*time.Millisecond)
	RecordOperation("metrics_test_op", false, 50*time.Millisecond)
	RecordOperation("metrics_test_op", true, time.Millisecond)

	if got := testutil.ToFloat64(operations.WithLabelValues("metrics_test_op", "false")); got != before+2 {
		t.Errorf("failed count = %v, want %v", got, before+2)
	}
	if got := testutil.ToFloat64(operations.WithLabelValues("metrics_test_op", "true")); got < 1 {
		t.Errorf("success count = %v, want >= 1", got)
	}
}

func TestRecordSpawnFailure(t *testing.T) {
	before := testutil.ToFloat64(spawnFailures.WithLabelValues("metrics-test-bin"))
	RecordSpawnFailure("metrics-test-bin")
	if got := testutil.ToFloat64(spawnFailures.WithLabelValues("metrics-test-bin")); got != before+1 {
		t.Errorf("spawn failures = %v, want %v", got, before+1)
	}
}

func TestSetGatewayRunning(t *testing.T) {
	SetGatewayRunning(true)
	if got := testutil.ToFloat64(gatewayRunning); got != 1 {
		t.Errorf("gateway running = %v, want 1", got)
	}
	SetGatewayRunning(false)
	if got := testutil.ToFloat64(gatewayRunning); got != 0 {
		t.Errorf("gateway running = %v, want 0", got)
	}
}
