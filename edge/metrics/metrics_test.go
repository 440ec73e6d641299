// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	r := New()
	r.Observe("prewitt", "forkjoin", 3*time.Millisecond, 100, 4)
	r.Observe("prewitt", "forkjoin", 5*time.Millisecond, 100, 4)
	r.Observe("uniformity", "serial", time.Millisecond, 100, 1)

	assert.InDelta(t, 8, testutil.ToFloat64(r.leaves.WithLabelValues("prewitt", "forkjoin")), 0)
	assert.InDelta(t, 200, testutil.ToFloat64(r.rows.WithLabelValues("prewitt", "forkjoin")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.leaves.WithLabelValues("uniformity", "serial")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
}

func TestVerified(t *testing.T) {
	r := New()
	r.Verified("prewitt", "chunked-auto", true)
	r.Verified("prewitt", "chunked-auto", true)
	r.Verified("prewitt", "chunked-affinity", false)

	expected := `
# HELP edgefilter_verifications_total Comparisons against the serial output, by result.
# TYPE edgefilter_verifications_total counter
edgefilter_verifications_total{filter="prewitt",result="fail",strategy="chunked-affinity"} 1
edgefilter_verifications_total{filter="prewitt",result="pass",strategy="chunked-auto"} 2
`
	require.NoError(t, testutil.CollectAndCompare(r.verified, strings.NewReader(expected)))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.Observe("prewitt", "serial", time.Second, 1, 1)
	r.Verified("prewitt", "serial", true)
}

func TestWriteText(t *testing.T) {
	r := New()
	r.Observe("prewitt", "serial", 2*time.Millisecond, 10, 1)

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, "edgefilter_run_duration_seconds_count")
	assert.Contains(t, out, `edgefilter_leaf_invocations_total{filter="prewitt",strategy="serial"} 1`)
}
