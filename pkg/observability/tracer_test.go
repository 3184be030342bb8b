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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockTracer_CapturesSpans(t *testing.T) {
	tracer := NewMockTracer()

	ctx, parent := tracer.StartSpan(context.Background(), SpanToolExecute,
		WithSpanKind("tool"), WithAttribute(AttrToolID, "sql"))
	_, child := tracer.StartSpan(ctx, SpanToolRetry)
	tracer.EndSpan(child)
	tracer.EndSpan(parent)

	spans := tracer.Spans()
	require.Len(t, spans, 2)

	// Child inherits the trace and points at the parent.
	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
	assert.NotEqual(t, parent.SpanID, child.SpanID)

	assert.Equal(t, "tool", parent.Attributes["span.kind"])
	assert.Equal(t, "sql", parent.Attributes[AttrToolID])
	assert.False(t, parent.EndTime.IsZero())
	assert.GreaterOrEqual(t, parent.Duration, child.Duration)

	require.Len(t, tracer.SpansByName(SpanToolExecute), 1)
	assert.Empty(t, tracer.SpansByName(SpanToolFallback))
}

func TestMockTracer_CapturesMetrics(t *testing.T) {
	tracer := NewMockTracer()
	tracer.RecordMetric(MetricToolExecutions, 1, map[string]string{AttrToolID: "sql"})
	tracer.RecordMetric(MetricToolDuration, 12.5, nil)

	require.Len(t, tracer.Metrics(), 2)
	points := tracer.MetricsByName(MetricToolDuration)
	require.Len(t, points, 1)
	assert.Equal(t, 12.5, points[0].Value)

	tracer.Reset()
	assert.Empty(t, tracer.Metrics())
	assert.Empty(t, tracer.Spans())
}

func TestNoOpTracer(t *testing.T) {
	tracer := NewNoOpTracer()

	ctx, span := tracer.StartSpan(context.Background(), SpanToolExecute)
	require.NotNil(t, span)
	assert.Same(t, span, SpanFromContext(ctx))

	tracer.EndSpan(span)
	assert.False(t, span.EndTime.IsZero())

	tracer.RecordMetric(MetricToolErrors, 1, nil)
	assert.NoError(t, tracer.Flush(context.Background()))
}

func TestSpan_RecordError(t *testing.T) {
	span := &Span{}
	span.RecordError(nil)
	assert.Equal(t, StatusUnset, span.Status.Code)

	span.RecordError(errors.New("backend unreachable"))
	assert.Equal(t, StatusError, span.Status.Code)
	assert.Equal(t, "backend unreachable", span.Status.Message)
	assert.Equal(t, "backend unreachable", span.Attributes[AttrErrorMessage])
}

func TestSpanFromContext_Empty(t *testing.T) {
	assert.Nil(t, SpanFromContext(context.Background()))
}
