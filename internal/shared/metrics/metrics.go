package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Upsert outcomes.
const (
	UpsertCreated  = "created"
	UpsertUpdated  = "updated"
	UpsertNotFound = "not_found"
	UpsertInvalid  = "invalid"
	UpsertFailed   = "failed"
)

var (
	upserts  = newCounterVec()
	aiCalls  = newCounterVec()
	deletes  atomic.Uint64
	dupes    atomic.Uint64
	owners   atomic.Uint64
	upsertMs = newHistogram([]float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500})
	aiMs     = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 30000})
)

// IncUpsert counts an upsert by outcome.
func IncUpsert(outcome string) { upserts.Inc(outcome) }

// IncDelete counts a delete request.
func IncDelete() { deletes.Add(1) }

// IncDuplicate counts a successful duplicate.
func IncDuplicate() { dupes.Add(1) }

// IncOwnerProvisioned counts owners created on demand.
func IncOwnerProvisioned() { owners.Add(1) }

// IncAICall counts an assistant call; kind is e.g. "generate.ok" or "analyze.unavailable".
func IncAICall(kind string) { aiCalls.Inc(kind) }

// ObserveUpsert records upsert latency.
func ObserveUpsert(d time.Duration) { upsertMs.Observe(millis(d)) }

// ObserveAI records assistant latency.
func ObserveAI(d time.Duration) { aiMs.Observe(millis(d)) }

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounterVec(&buf, "resume_upserts_total", "Resume upserts by outcome", "outcome", upserts.Snapshot())
	writeCounter(&buf, "resume_deletes_total", "Resume delete requests", deletes.Load())
	writeCounter(&buf, "resume_duplicates_total", "Resumes duplicated", dupes.Load())
	writeCounter(&buf, "owners_provisioned_total", "Owner records created on demand", owners.Load())
	writeCounterVec(&buf, "ai_calls_total", "Assistant calls by operation and result", "kind", aiCalls.Snapshot())
	writeHistogram(&buf, "resume_upsert_duration_ms", "Upsert duration in milliseconds", upsertMs.Snapshot())
	writeHistogram(&buf, "ai_call_duration_ms", "Assistant call duration in milliseconds", aiMs.Snapshot())
	return buf.String()
}

func millis(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}

type counterVec struct {
	mu     sync.Mutex
	values map[string]uint64
}

func newCounterVec() *counterVec {
	return &counterVec{values: make(map[string]uint64)}
}

func (v *counterVec) Inc(label string) {
	v.mu.Lock()
	v.values[label]++
	v.mu.Unlock()
}

func (v *counterVec) Snapshot() map[string]uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]uint64, len(v.values))
	for k, n := range v.values {
		out[k] = n
	}
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe counts value in the first bucket whose bound it does not exceed.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeCounterVec(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
