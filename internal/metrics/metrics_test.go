package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.PatchesApplied.Inc()
	m.RecordsApplied.WithLabelValues("rle").Add(3)
	m.PatchesFailed.WithLabelValues("decode").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PatchesApplied))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsApplied.WithLabelValues("rle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PatchesFailed.WithLabelValues("decode")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.BytesWritten.Add(42)
	m.OutputSize.Observe(2048)

	path := filepath.Join(t.TempDir(), "ipspatch.prom")
	require.NoError(t, m.WriteTextfile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "ipspatch_bytes_written_total 42")
	assert.Contains(t, string(b), "ipspatch_output_size_bytes_count 1")
}
