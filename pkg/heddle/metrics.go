// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package heddle

import (
	"sync"
	"time"
)

// trendBucketLimit caps the usage trend at the 24 most recent hour buckets.
const trendBucketLimit = 24

// TrendBucket counts executions within one calendar hour.
type TrendBucket struct {
	// Timestamp is the start of the hour.
	Timestamp time.Time

	// Count is the number of executions recorded in that hour.
	Count int64
}

// UsageMetrics holds running statistics for one tool.
//
// Invariant: SuccessfulExecutions + FailedExecutions == TotalExecutions, and
// SuccessRate == SuccessfulExecutions/TotalExecutions (0 when no executions).
type UsageMetrics struct {
	ToolID               string
	TotalExecutions      int64
	SuccessfulExecutions int64
	FailedExecutions     int64

	// AvgDurationMs is an incrementally maintained mean execution duration.
	AvgDurationMs float64

	// SuccessRate is SuccessfulExecutions / TotalExecutions.
	SuccessRate float64

	// Trend is an hour-bucketed usage history, most recent last, capped at
	// trendBucketLimit entries.
	Trend []TrendBucket
}

func (m *UsageMetrics) clone() *UsageMetrics {
	c := *m
	c.Trend = append([]TrendBucket(nil), m.Trend...)
	return &c
}

// MetricsStore owns per-tool usage statistics. A single mutex serializes
// updates so the incremental-average invariant holds under concurrent
// completions.
type MetricsStore struct {
	mu     sync.Mutex
	byTool map[string]*UsageMetrics

	// now is swappable in tests to drive trend bucketing.
	now func() time.Time
}

// NewMetricsStore creates an empty metrics store.
func NewMetricsStore() *MetricsStore {
	return &MetricsStore{
		byTool: make(map[string]*UsageMetrics),
		now:    time.Now,
	}
}

// Track ensures a zeroed record exists for the tool. Called at registration
// when performance tracking is on; Record also creates records lazily.
func (s *MetricsStore) Track(toolID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(toolID)
}

func (s *MetricsStore) record(toolID string) *UsageMetrics {
	m, ok := s.byTool[toolID]
	if !ok {
		m = &UsageMetrics{ToolID: toolID}
		s.byTool[toolID] = m
	}
	return m
}

// Record applies one terminal execution outcome. Each call represents one
// real execution; calling it twice for the same logical execution
// double-counts.
func (s *MetricsStore) Record(toolID string, success bool, durationMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.record(toolID)
	m.TotalExecutions++
	if success {
		m.SuccessfulExecutions++
	} else {
		m.FailedExecutions++
	}

	// Incremental weighted mean: new = old*(n-1)/n + d/n, with n the
	// post-increment count. Equivalent to recomputing the mean from scratch.
	n := float64(m.TotalExecutions)
	m.AvgDurationMs = m.AvgDurationMs*(n-1)/n + float64(durationMs)/n
	m.SuccessRate = float64(m.SuccessfulExecutions) / n

	s.bumpTrend(m)
}

// bumpTrend increments the current calendar-hour bucket, appending a new one
// when the hour rolled over and discarding the oldest beyond the cap.
func (s *MetricsStore) bumpTrend(m *UsageMetrics) {
	hour := s.now().Truncate(time.Hour)
	if n := len(m.Trend); n > 0 && sameHour(m.Trend[n-1].Timestamp, hour) {
		m.Trend[n-1].Count++
		return
	}
	m.Trend = append(m.Trend, TrendBucket{Timestamp: hour, Count: 1})
	if len(m.Trend) > trendBucketLimit {
		m.Trend = m.Trend[len(m.Trend)-trendBucketLimit:]
	}
}

func sameHour(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day() && a.Hour() == b.Hour()
}

// Get returns a snapshot of one tool's metrics.
func (s *MetricsStore) Get(toolID string) (*UsageMetrics, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byTool[toolID]
	if !ok {
		return nil, false
	}
	return m.clone(), true
}

// All returns a snapshot of every tracked tool's metrics.
func (s *MetricsStore) All() map[string]*UsageMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*UsageMetrics, len(s.byTool))
	for id, m := range s.byTool {
		out[id] = m.clone()
	}
	return out
}

// Reset zeroes all counters and clears the trend for one tool. Resetting an
// untracked tool creates its zeroed record.
func (s *MetricsStore) Reset(toolID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byTool[toolID] = &UsageMetrics{ToolID: toolID}
}

// Remove drops a tool's record entirely.
func (s *MetricsStore) Remove(toolID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byTool, toolID)
}

// clear drops every record.
func (s *MetricsStore) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byTool = make(map[string]*UsageMetrics)
}
