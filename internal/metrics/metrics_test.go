package metrics

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genelab/internal/simerr"
)

func TestRecorder_Counts(t *testing.T) {
	r := New()
	r.ObserveJob("pcr", StatusOK, 20*time.Millisecond)
	r.ObserveJob("pcr", StatusOK, 30*time.Millisecond)
	r.ObserveJob("gel", StatusFailed, time.Millisecond)
	r.AddWarnings([]simerr.Warning{
		simerr.Warn(simerr.LowCoverage, "a"),
		simerr.Warn(simerr.LowCoverage, "b"),
		simerr.Warn(simerr.LowQuality, "c"),
	})
	r.AddReads(150)
	r.AddReads(-3)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.jobs.WithLabelValues("pcr", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.jobs.WithLabelValues("gel", StatusFailed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.warnings.WithLabelValues(string(simerr.LowCoverage))))
	assert.Equal(t, 150.0, testutil.ToFloat64(r.reads))
	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.ObserveJob("pcr", StatusOK, time.Second)
	r.AddWarnings([]simerr.Warning{simerr.Warn(simerr.LowQuality, "x")})
	r.AddReads(5)
	r.ObserveCopies(3)
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile("/nonexistent/dir/file.prom"))
}

func TestRecorder_HandlerAndTextfile(t *testing.T) {
	r := New()
	r.ObserveJob("sequence", StatusOK, 5*time.Millisecond)
	r.ObserveCopies(9.5)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `genelab_jobs_total{kind="sequence",status="ok"} 1`)
	assert.Contains(t, string(body), "genelab_pcr_copy_estimate_log10_count 1")

	path := filepath.Join(t.TempDir(), "genelab.prom")
	require.NoError(t, r.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "genelab_job_duration_seconds_bucket")
}
