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
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockTracer captures spans and metrics in memory for test inspection.
// Thread-safe.
type MockTracer struct {
	mu      sync.RWMutex
	spans   []*Span
	metrics []MetricPoint
}

// MetricPoint is one captured RecordMetric call.
type MetricPoint struct {
	Name   string
	Value  float64
	Labels map[string]string
}

// NewMockTracer creates a mock tracer for testing.
func NewMockTracer() *MockTracer {
	return &MockTracer{}
}

// StartSpan creates a new span; it is captured on EndSpan.
func (m *MockTracer) StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, *Span) {
	span := &Span{
		TraceID:    uuid.New().String(),
		SpanID:     uuid.New().String(),
		Name:       name,
		StartTime:  time.Now(),
		Attributes: make(map[string]interface{}),
	}

	for _, opt := range opts {
		opt(span)
	}

	if parent := SpanFromContext(ctx); parent != nil {
		span.TraceID = parent.TraceID
		span.ParentID = parent.SpanID
	}

	return ContextWithSpan(ctx, span), span
}

// EndSpan completes a span and stores it.
func (m *MockTracer) EndSpan(span *Span) {
	if span == nil {
		return
	}
	span.EndTime = time.Now()
	span.Duration = span.EndTime.Sub(span.StartTime)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.spans = append(m.spans, span)
}

// RecordMetric captures the metric point.
func (m *MockTracer) RecordMetric(name string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = append(m.metrics, MetricPoint{Name: name, Value: value, Labels: labels})
}

// Flush is a no-op for the mock tracer.
func (m *MockTracer) Flush(ctx context.Context) error {
	return nil
}

// Spans returns a copy of all captured spans.
func (m *MockTracer) Spans() []*Span {
	m.mu.RLock()
	defer m.mu.RUnlock()
	spans := make([]*Span, len(m.spans))
	copy(spans, m.spans)
	return spans
}

// SpansByName returns all captured spans with the given name.
func (m *MockTracer) SpansByName(name string) []*Span {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Span
	for _, span := range m.spans {
		if span.Name == name {
			out = append(out, span)
		}
	}
	return out
}

// Metrics returns a copy of all captured metric points.
func (m *MockTracer) Metrics() []MetricPoint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	points := make([]MetricPoint, len(m.metrics))
	copy(points, m.metrics)
	return points
}

// MetricsByName returns all captured metric points with the given name.
func (m *MockTracer) MetricsByName(name string) []MetricPoint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []MetricPoint
	for _, p := range m.metrics {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out
}

// Reset clears all captured spans and metrics.
func (m *MockTracer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spans = nil
	m.metrics = nil
}

// Ensure MockTracer implements Tracer interface.
var _ Tracer = (*MockTracer)(nil)
