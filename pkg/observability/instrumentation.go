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

// Span names for orchestrator operations.
const (
	SpanToolExecute  = "tool.execute"
	SpanToolFallback = "tool.fallback"
	SpanToolRetry    = "tool.retry"
	SpanToolSelect   = "tool.select"
)

// Common span attribute keys.
const (
	AttrToolID       = "tool.id"
	AttrToolName     = "tool.name"
	AttrToolArgs     = "tool.args"
	AttrErrorCode    = "error.code"
	AttrErrorMessage = "error.message"
)

// Metric names emitted by the orchestrator.
const (
	MetricToolExecutions = "heddle.tool.executions"
	MetricToolErrors     = "heddle.tool.errors"
	MetricToolDuration   = "heddle.tool.duration_ms"
	MetricToolFallbacks  = "heddle.tool.fallbacks"
	MetricToolRetries    = "heddle.tool.retries"
)
