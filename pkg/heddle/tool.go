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
// Package heddle is a resilient tool-execution orchestrator: a registry of
// invocable capabilities plus a policy engine that runs a chosen tool under a
// deadline, recovers from failure via declared fallback substitutions, retries
// with exponential backoff, and keeps live per-tool performance statistics
// used for tool selection and health assessment.
//
// Why "heddle"? On a loom, heddles select which warp threads lift on each
// pass of the shuttle. Heddle selects which tool runs, and carries it through
// deadlines, fallbacks, and retries.
//
// All state lives inside an explicitly constructed Manager; there are no
// package-level singletons, so independent instances (one per agent, one per
// test) never interfere.
package heddle

import (
	"context"
	"time"
)

// Executable is the behavior behind a registered tool. Implementations are
// supplied by the owning application at registration time and are opaque to
// the orchestrator: it only ever calls Execute and interprets the outcome.
//
// Execute should honor ctx cancellation; the orchestrator derives a deadline
// context for every attempt. A non-nil error marks the attempt as failed. If
// the error is a *Error its Code is surfaced in the result, otherwise the
// failure is reported as EXECUTION_ERROR.
type Executable interface {
	Execute(ctx context.Context, params map[string]interface{}) (interface{}, error)
}

// ExecutableFunc adapts a plain function to the Executable interface.
type ExecutableFunc func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// Execute calls f(ctx, params).
func (f ExecutableFunc) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return f(ctx, params)
}

// Tool is a registered capability. Every stored Tool is fully populated:
// registration applies defaults for all optional attributes, so consumers
// never see zero-value surprises (Version is never "", Categories is never
// nil, and so on).
type Tool struct {
	// ID uniquely identifies the tool. Immutable once registered.
	ID string

	// Name is a short human-readable name, also used by the selection
	// heuristic for task matching.
	Name string

	// Description explains what the tool does, for LLM context and for the
	// selection heuristic.
	Description string

	// Enabled gates execution and selection. Disabled tools stay registered
	// but cannot run.
	Enabled bool

	// Categories are free-form grouping tags (e.g. "database", "filesystem").
	Categories []string

	// Capabilities are fine-grained ability tags (e.g. "read", "write").
	Capabilities []string

	// Version is a semantic version string. Defaults to "1.0.0".
	Version string

	// Experimental marks tools that are not yet production-ready.
	Experimental bool

	// CostPerUse is a relative cost weight for planners. Defaults to 1.
	CostPerUse float64

	// Timeout overrides the manager-wide default execution timeout when
	// positive. Zero means "use the default".
	Timeout time.Duration

	// InputSchema, when non-nil, is validated against incoming parameters
	// before every execution.
	InputSchema *JSONSchema

	// Handler is the tool's executable behavior.
	Handler Executable
}

// clone returns a deep copy of the tool so callers can never mutate
// registry-owned state through a returned value. The Handler and InputSchema
// pointers are shared; both are treated as immutable after registration.
func (t Tool) clone() Tool {
	c := t
	c.Categories = append([]string(nil), t.Categories...)
	c.Capabilities = append([]string(nil), t.Capabilities...)
	return c
}

// hasAnyTag reports whether any of want matches any of have.
func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// ToolOption customizes a tool at registration time. Options are applied
// after defaults, so an unset option always leaves the documented default in
// place.
type ToolOption func(*Tool)

// WithDescription sets the tool description.
func WithDescription(desc string) ToolOption {
	return func(t *Tool) { t.Description = desc }
}

// WithCategories sets the tool's category tags.
func WithCategories(categories ...string) ToolOption {
	return func(t *Tool) { t.Categories = categories }
}

// WithCapabilities sets the tool's capability tags.
func WithCapabilities(capabilities ...string) ToolOption {
	return func(t *Tool) { t.Capabilities = capabilities }
}

// WithVersion sets the tool's semantic version string.
func WithVersion(version string) ToolOption {
	return func(t *Tool) { t.Version = version }
}

// WithExperimental marks the tool as experimental.
func WithExperimental() ToolOption {
	return func(t *Tool) { t.Experimental = true }
}

// WithCostPerUse sets the tool's relative cost weight.
func WithCostPerUse(cost float64) ToolOption {
	return func(t *Tool) { t.CostPerUse = cost }
}

// WithToolTimeout sets a per-tool execution timeout override.
func WithToolTimeout(d time.Duration) ToolOption {
	return func(t *Tool) { t.Timeout = d }
}

// WithInputSchema attaches a JSON Schema validated before every execution.
func WithInputSchema(schema *JSONSchema) ToolOption {
	return func(t *Tool) { t.InputSchema = schema }
}

// WithDisabled registers the tool in the disabled state.
func WithDisabled() ToolOption {
	return func(t *Tool) { t.Enabled = false }
}
