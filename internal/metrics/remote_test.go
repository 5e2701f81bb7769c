package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRemote_Outcome(t *testing.T) {
	ok := remoteCallsTotal.WithLabelValues("test", "observe", "ok")
	failed := remoteCallsTotal.WithLabelValues("test", "observe", "error")
	okBefore := testutil.ToFloat64(ok)
	failedBefore := testutil.ToFloat64(failed)

	ObserveRemote("test", "observe", time.Now(), nil)
	ObserveRemote("test", "observe", time.Now(), errors.New("boom"))
	ObserveRemote("test", "observe", time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(ok) - okBefore; got != 1 {
		t.Errorf("ok calls: got %f, want 1", got)
	}
	if got := testutil.ToFloat64(failed) - failedBefore; got != 2 {
		t.Errorf("failed calls: got %f, want 2", got)
	}
}
