package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/ritzau/looprank/pkg/looprank"
	"gonum.org/v1/gonum/mat"
)

func cycleSeries(t *testing.T) *looprank.BoxSeries {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	variables := []string{"A", "B", "C"}
	conn := mat.NewDense(3, 3, []float64{
		0, 0, 1,
		1, 0, 0,
		0, 1, 0,
	})
	series, err := looprank.RankBoxes(ctx, variables, conn, []mat.Matrix{conn, conn}, looprank.DefaultOptions())
	if err != nil {
		t.Fatalf("RankBoxes() error = %v", err)
	}
	return series
}

func TestObserveRun(t *testing.T) {
	m := New()
	m.ObserveRun("normal", "te", 250*time.Millisecond, cycleSeries(t))

	if got := testutil.ToFloat64(m.boxes.WithLabelValues("normal", "te")); got != 2 {
		t.Errorf("boxes_ranked_total = %g, want 2", got)
	}
	if got := testutil.ToFloat64(m.loops.WithLabelValues("normal", "te")); got != 1 {
		t.Errorf("feedback_loops = %g, want 1", got)
	}
	if got := testutil.CollectAndCount(m.topScore); got != 3 {
		t.Errorf("top_importance has %d series, want one per direction", got)
	}
	if got := testutil.CollectAndCount(m.duration); got != 1 {
		t.Errorf("run_duration_seconds has %d series, want 1", got)
	}
}

func TestRecordFailure(t *testing.T) {
	m := New()
	m.RecordFailure("fault", "te")
	m.RecordFailure("fault", "te")

	if got := testutil.ToFloat64(m.failures.WithLabelValues("fault", "te")); got != 2 {
		t.Errorf("failures_total = %g, want 2", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveRun("normal", "te", time.Second, cycleSeries(t))

	path := filepath.Join(t.TempDir(), "looprank.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`looprank_boxes_ranked_total{method="te",scenario="normal"} 2`,
		"looprank_run_duration_seconds_bucket",
		`direction="blended"`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Textfile missing %q:\n%s", want, data)
		}
	}
}
