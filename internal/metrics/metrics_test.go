package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	t.Parallel()

	r := New()
	r.Decision(Accepted)
	r.Decision(Accepted)
	r.Decision(Merged)
	r.Reject("required_fields")
	r.Conflicts.Add(2)

	if got := testutil.ToFloat64(r.Decisions.WithLabelValues(Accepted)); got != 2 {
		t.Fatalf("expected 2 accepted, got %v", got)
	}
	if got := testutil.ToFloat64(r.Decisions.WithLabelValues(Duplicate)); got != 0 {
		t.Fatalf("expected 0 duplicates, got %v", got)
	}
	if got := testutil.ToFloat64(r.Rejected.WithLabelValues("required_fields")); got != 1 {
		t.Fatalf("expected 1 rejection, got %v", got)
	}
	if got := testutil.ToFloat64(r.Conflicts); got != 2 {
		t.Fatalf("expected 2 conflicts, got %v", got)
	}
}

func TestRecordersAreIndependent(t *testing.T) {
	t.Parallel()

	a, b := New(), New()
	a.Decision(Duplicate)
	if got := testutil.ToFloat64(b.Decisions.WithLabelValues(Duplicate)); got != 0 {
		t.Fatalf("recorders share state: %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	r := New()
	r.Decision(Accepted)
	r.JobsStored.Set(3)

	path := filepath.Join(t.TempDir(), "textfile", "hunt.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("write: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out := string(b)
	for _, want := range []string{
		`hunt_resolutions_total{decision="accept"} 1`,
		"hunt_jobs_stored 3",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in textfile:\n%s", want, out)
		}
	}
}
