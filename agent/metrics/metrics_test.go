package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordTurn(t *testing.T) {
	before := testutil.ToFloat64(turnsTotal.WithLabelValues("transfer_money", "completed"))
	RecordTurn("transfer_money", "completed", 0.02)
	RecordTurn("", "degraded", 0.01)

	if got := testutil.ToFloat64(turnsTotal.WithLabelValues("transfer_money", "completed")); got != before+1 {
		t.Fatalf("turns_total = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(turnsTotal.WithLabelValues("none", "degraded")); got < 1 {
		t.Fatalf("turns_total{intent=none} = %v, want >= 1", got)
	}
}

func TestRecordAuditCounters(t *testing.T) {
	dropped := testutil.ToFloat64(auditDroppedTotal)
	RecordAuditDropped()
	if got := testutil.ToFloat64(auditDroppedTotal); got != dropped+1 {
		t.Fatalf("audit dropped = %v, want %v", got, dropped+1)
	}

	failures := testutil.ToFloat64(auditFailuresTotal.WithLabelValues("redis"))
	RecordAuditFailure("redis")
	if got := testutil.ToFloat64(auditFailuresTotal.WithLabelValues("redis")); got != failures+1 {
		t.Fatalf("audit failures = %v, want %v", got, failures+1)
	}
}

func TestSetActiveSessions(t *testing.T) {
	SetActiveSessions(3)
	if got := testutil.ToFloat64(sessionsActive); got != 3 {
		t.Fatalf("sessions active = %v, want 3", got)
	}
}
