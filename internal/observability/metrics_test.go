package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("GET", "/health", 200, 12*time.Millisecond)
	RecordSessionError("bootstrap")
	SetRegistrySize(3)

	before := testutil.ToFloat64(messagesTotal.WithLabelValues(DirectionTx, "SET_PROPERTY_CMD"))
	RecordMessage(DirectionTx, "SET_PROPERTY_CMD", 24)
	after := testutil.ToFloat64(messagesTotal.WithLabelValues(DirectionTx, "SET_PROPERTY_CMD"))
	if after-before != 1 {
		t.Fatalf("expected message counter to advance by 1, got %v", after-before)
	}
	if got := testutil.ToFloat64(registrySize); got != 3 {
		t.Fatalf("unexpected registry gauge: %v", got)
	}
}
