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
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/teradata-labs/heddle/pkg/observability"
)

// Retry backoff: min(baseRetryDelay * 2^attempt, maxRetryDelay), attempt
// 0-indexed.
const (
	baseRetryDelay = 100 * time.Millisecond
	maxRetryDelay  = 2 * time.Second
)

// ExecuteOptions tune one ExecuteTool call. The zero value (or nil) means
// "use tool and manager defaults with fallbacks on".
type ExecuteOptions struct {
	// Timeout overrides both the tool's timeout and the manager default
	// when positive.
	Timeout time.Duration

	// Retries overrides the manager's default retry budget. Nil keeps the
	// default.
	Retries *int

	// DisableFallbacks skips fallback rule consultation on failure.
	DisableFallbacks bool
}

// execMode is threaded through nested executions to keep fallback chains and
// retry loops from recursing: nested calls run with both flags off.
type execMode struct {
	fallbacks bool
	retries   bool
}

// ExecuteTool runs a registered tool under a deadline, consulting fallback
// rules and the retry policy on failure.
//
// It never returns a Go error for ordinary execution failures; those are
// captured in the Result. A non-nil error means a precondition violation:
// TOOL_NOT_FOUND or TOOL_DISABLED.
func (m *Manager) ExecuteTool(ctx context.Context, toolID string, params map[string]interface{}, opts *ExecuteOptions) (*Result, error) {
	tool, ok := m.registry.Get(toolID)
	if !ok {
		return nil, errToolNotFound(toolID)
	}
	if !tool.Enabled {
		return nil, errToolDisabled(toolID)
	}

	mode := execMode{fallbacks: true, retries: true}
	if opts != nil && opts.DisableFallbacks {
		mode.fallbacks = false
	}
	return m.execute(ctx, tool, params, opts, mode), nil
}

// execute is the full execution pipeline for one tool: deadline-bounded
// attempt, fallback chain, retry loop, then finalization and metrics
// recording of whichever outcome is terminal.
func (m *Manager) execute(ctx context.Context, tool Tool, params map[string]interface{}, opts *ExecuteOptions, mode execMode) *Result {
	ctx, span := m.tracer.StartSpan(ctx, observability.SpanToolExecute, observability.WithSpanKind("tool"))
	defer m.tracer.EndSpan(span)
	span.SetAttribute(observability.AttrToolID, tool.ID)
	span.SetAttribute(observability.AttrToolName, tool.Name)

	start := time.Now()
	timeout := m.effectiveTimeout(tool, opts)
	retries := m.effectiveRetries(opts)

	res := m.attempt(ctx, tool, params, timeout)

	if !res.Success && mode.fallbacks {
		if fres := m.runFallbacks(ctx, tool, res.Error, params, opts); fres != nil {
			// Per-attempt accounting: the primary's failure is recorded even
			// though the fallback's result is what the caller sees.
			res.finalize(start, params)
			m.recordOutcome(res)
			span.AddEvent("tool.fallback.handled", map[string]interface{}{
				"fallback_tool": fres.ToolID,
			})
			span.Status = observability.Status{Code: observability.StatusOK}
			return fres
		}
	}

	if !res.Success && mode.retries && retries > 0 {
		if rres := m.runRetries(ctx, tool, params, timeout, retries); rres != nil {
			span.AddEvent("tool.retry.succeeded", nil)
			span.Status = observability.Status{Code: observability.StatusOK}
			return rres
		}
	}

	res.finalize(start, params)
	m.recordOutcome(res)
	m.annotateSpan(span, res)
	return res
}

// attempt races one execution of the tool against its deadline. No metrics
// are recorded here; only the orchestrator's finalization path writes to the
// metrics store, so a lost race branch can never mutate shared state after
// the winner returned.
func (m *Manager) attempt(ctx context.Context, tool Tool, params map[string]interface{}, timeout time.Duration) *Result {
	if err := validateParams(tool.InputSchema, params); err != nil {
		return &Result{
			ToolID: tool.ID,
			Error:  NewError(CodeInvalidParams, err.Error()).WithDetail("tool_id", tool.ID),
		}
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		data interface{}
		err  error
	}
	// Buffered so the losing branch never blocks or leaks.
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("tool panicked: %v", r)}
			}
		}()
		data, err := tool.Handler.Execute(execCtx, params)
		done <- outcome{data: data, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return failureResult(tool.ID, out.err)
		}
		return &Result{ToolID: tool.ID, Success: true, Data: out.data}
	case <-execCtx.Done():
		if ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &Result{
				ToolID: tool.ID,
				Error:  NewError(CodeExecutionError, "execution canceled: "+ctx.Err().Error()),
			}
		}
		return &Result{
			ToolID: tool.ID,
			Error: &Error{
				Code:      CodeTimeout,
				Message:   fmt.Sprintf("tool execution timed out after %s", timeout),
				Retryable: true,
			},
		}
	}
}

// failureResult captures a tool-raised error. A *Error carrying a code keeps
// that code; anything else is EXECUTION_ERROR.
func failureResult(toolID string, err error) *Result {
	execErr := &Error{Code: CodeExecutionError, Message: err.Error()}
	var he *Error
	if errors.As(err, &he) && he.Code != "" {
		execErr.Code = he.Code
		execErr.Retryable = he.Retryable
		execErr.Details = he.Details
	}
	return &Result{ToolID: toolID, Error: execErr}
}

// runFallbacks scans applicable rules in registration order and executes
// each candidate fallback (with fallbacks and retries disabled for the
// nested call) until one succeeds. The nested execution records its own
// metrics and the caller records the original failure, so a handled failure
// counts one failure for the primary and one success for the fallback.
func (m *Manager) runFallbacks(ctx context.Context, tool Tool, execErr *Error, params map[string]interface{}, opts *ExecuteOptions) *Result {
	rules := m.fallbacks.Applicable(tool.ID, execErr)
	for _, rule := range rules {
		fbTool, ok := m.registry.Get(rule.FallbackToolID)
		if !ok || !fbTool.Enabled {
			m.logger.Warn("fallback tool unavailable, trying next rule",
				zap.String("rule_id", rule.ID),
				zap.String("fallback_tool", rule.FallbackToolID),
			)
			continue
		}

		m.logger.Info("executing fallback tool",
			zap.String("rule_id", rule.ID),
			zap.String("primary_tool", tool.ID),
			zap.String("fallback_tool", fbTool.ID),
			zap.String("error_code", execErr.Code),
		)

		res := m.execute(ctx, fbTool, params, opts, execMode{})
		if res.Success {
			m.tracer.RecordMetric(observability.MetricToolFallbacks, 1, map[string]string{
				observability.AttrToolID: tool.ID,
				"fallback_tool":          fbTool.ID,
			})
			return res
		}

		m.logger.Warn("fallback tool failed, trying next rule",
			zap.String("rule_id", rule.ID),
			zap.String("fallback_tool", fbTool.ID),
			zap.String("error_code", res.Error.Code),
		)
	}
	return nil
}

// runRetries re-attempts the failed execution up to retries times, each
// preceded by exponential backoff and each a fresh deadline-bounded attempt
// with fallbacks and further retries off. Failed attempts are discarded
// (the caller records the original failure); the first success is finalized
// and recorded for the tool.
func (m *Manager) runRetries(ctx context.Context, tool Tool, params map[string]interface{}, timeout time.Duration, retries int) *Result {
	for attempt := 0; attempt < retries; attempt++ {
		delay := backoffDelay(attempt)
		m.logger.Debug("retrying tool execution",
			zap.String("tool_id", tool.ID),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", retries),
			zap.Duration("delay", delay),
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}

		attemptStart := time.Now()
		res := m.attempt(ctx, tool, params, timeout)
		if res.Success {
			m.tracer.RecordMetric(observability.MetricToolRetries, 1, map[string]string{
				observability.AttrToolID: tool.ID,
				"status":                 "success",
			})
			res.finalize(attemptStart, params)
			m.recordOutcome(res)
			return res
		}
	}

	m.logger.Warn("retry budget exhausted",
		zap.String("tool_id", tool.ID),
		zap.Int("retries", retries),
	)
	return nil
}

func backoffDelay(attempt int) time.Duration {
	d := baseRetryDelay << uint(attempt)
	if d <= 0 || d > maxRetryDelay {
		return maxRetryDelay
	}
	return d
}

// recordOutcome applies one terminal result to the metrics store when
// performance tracking is on.
func (m *Manager) recordOutcome(res *Result) {
	if !m.cfg.TrackToolPerformance {
		return
	}
	m.metrics.Record(res.ToolID, res.Success, res.DurationMs)
}

// annotateSpan stamps outcome status and emits execution metrics.
func (m *Manager) annotateSpan(span *observability.Span, res *Result) {
	span.SetAttribute("tool.execution_time_ms", res.DurationMs)
	if res.Success {
		span.Status = observability.Status{Code: observability.StatusOK}
		m.tracer.RecordMetric(observability.MetricToolExecutions, 1, map[string]string{
			observability.AttrToolID: res.ToolID,
			"status":                 "success",
		})
	} else {
		span.Status = observability.Status{
			Code:    observability.StatusError,
			Message: res.Error.Message,
		}
		span.SetAttribute(observability.AttrErrorCode, res.Error.Code)
		span.SetAttribute(observability.AttrErrorMessage, res.Error.Message)
		m.tracer.RecordMetric(observability.MetricToolErrors, 1, map[string]string{
			observability.AttrToolID: res.ToolID,
			"error_code":             res.Error.Code,
		})
	}
	m.tracer.RecordMetric(observability.MetricToolDuration, float64(res.DurationMs), map[string]string{
		observability.AttrToolID: res.ToolID,
	})
}

// effectiveTimeout resolves the deadline for one call: explicit option,
// then tool override, then manager default.
func (m *Manager) effectiveTimeout(tool Tool, opts *ExecuteOptions) time.Duration {
	if opts != nil && opts.Timeout > 0 {
		return opts.Timeout
	}
	if tool.Timeout > 0 {
		return tool.Timeout
	}
	if m.cfg.DefaultToolTimeout > 0 {
		return m.cfg.DefaultToolTimeout
	}
	return defaultExecTimeout
}

// effectiveRetries resolves the retry budget: explicit option, then manager
// default.
func (m *Manager) effectiveRetries(opts *ExecuteOptions) int {
	if opts != nil && opts.Retries != nil {
		return *opts.Retries
	}
	return m.cfg.MaxToolRetries
}
