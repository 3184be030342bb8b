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
	"math/rand"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/teradata-labs/heddle/pkg/observability"
)

// defaultExecTimeout bounds executions when neither the call options, the
// tool, nor the config supply a timeout.
const defaultExecTimeout = 30 * time.Second

// Config supplies manager-wide defaults. The zero value is not useful;
// start from DefaultConfig.
type Config struct {
	// Enabled administratively enables the manager. A disabled manager
	// reports unhealthy.
	Enabled bool `mapstructure:"enabled"`

	// DefaultToolTimeout bounds executions for tools without their own
	// timeout override.
	DefaultToolTimeout time.Duration `mapstructure:"default_tool_timeout"`

	// MaxToolRetries is the default retry budget for failed executions.
	MaxToolRetries int `mapstructure:"max_tool_retries"`

	// TrackToolPerformance enables per-tool usage metrics.
	TrackToolPerformance bool `mapstructure:"track_tool_performance"`

	// UseAdaptiveToolSelection enables scored tool selection; when off,
	// FindBestTool picks a random enabled tool.
	UseAdaptiveToolSelection bool `mapstructure:"use_adaptive_tool_selection"`
}

// DefaultConfig returns the stock manager configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:                  true,
		DefaultToolTimeout:       30 * time.Second,
		MaxToolRetries:           0,
		TrackToolPerformance:     true,
		UseAdaptiveToolSelection: true,
	}
}

// Manager is the tool-execution orchestrator: it owns the registry, the
// metrics store, and the fallback rule table, and it is the only writer of
// all three. Construct with NewManager; each instance is fully independent.
type Manager struct {
	cfg       Config
	logger    *zap.Logger
	tracer    observability.Tracer
	registry  *Registry
	metrics   *MetricsStore
	fallbacks *FallbackTable

	mu          sync.RWMutex
	initialized bool

	// rnd drives non-adaptive tool selection.
	rndMu sync.Mutex
	rnd   *rand.Rand
}

// Option customizes a Manager at construction.
type Option func(*Manager)

// WithLogger sets the manager's logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithTracer sets the manager's tracer. Defaults to a no-op tracer.
func WithTracer(tracer observability.Tracer) Option {
	return func(m *Manager) { m.tracer = tracer }
}

// NewManager creates a tool-execution orchestrator with the given defaults.
func NewManager(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		cfg:       cfg,
		logger:    zap.NewNop(),
		tracer:    observability.NewNoOpTracer(),
		registry:  NewRegistry(),
		metrics:   NewMetricsStore(),
		fallbacks: NewFallbackTable(),
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize marks the manager ready. Idempotent.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized {
		return nil
	}
	m.initialized = true
	m.logger.Info("tool manager initialized",
		zap.Bool("enabled", m.cfg.Enabled),
		zap.Bool("track_performance", m.cfg.TrackToolPerformance),
		zap.Bool("adaptive_selection", m.cfg.UseAdaptiveToolSelection),
	)
	return nil
}

// Shutdown flushes the tracer and marks the manager uninitialized.
// Registered tools survive shutdown; use Reset to drop state.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.initialized = false
	m.mu.Unlock()

	var err error
	err = multierr.Append(err, m.tracer.Flush(ctx))
	m.logger.Info("tool manager shut down")
	return err
}

// Reset drops all tools, fallback rules, and metrics. Configuration and
// the initialized flag are kept.
func (m *Manager) Reset() {
	m.registry.clear()
	m.fallbacks.clear()
	m.metrics.clear()
	m.logger.Info("tool manager reset")
}

func (m *Manager) isInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// RegisterTool registers a capability under a unique ID. Defaults are
// materialized before options apply: enabled, version "1.0.0", cost 1,
// empty tag slices. The fully populated tool is returned.
func (m *Manager) RegisterTool(id, name string, handler Executable, opts ...ToolOption) (Tool, error) {
	if id == "" {
		return Tool{}, NewError(CodeToolInvalid, "tool ID must not be empty")
	}
	if handler == nil {
		return Tool{}, NewError(CodeToolInvalid, "tool handler must not be nil").WithDetail("tool_id", id)
	}

	tool := Tool{
		ID:           id,
		Name:         name,
		Enabled:      true,
		Categories:   []string{},
		Capabilities: []string{},
		Version:      "1.0.0",
		CostPerUse:   1,
		Handler:      handler,
	}
	for _, opt := range opts {
		opt(&tool)
	}
	if tool.Categories == nil {
		tool.Categories = []string{}
	}
	if tool.Capabilities == nil {
		tool.Capabilities = []string{}
	}
	if tool.Version == "" {
		tool.Version = "1.0.0"
	}

	if err := m.registry.Register(tool); err != nil {
		return Tool{}, err
	}
	if m.cfg.TrackToolPerformance {
		m.metrics.Track(id)
	}
	m.logger.Debug("tool registered",
		zap.String("tool_id", id),
		zap.String("version", tool.Version),
		zap.Bool("enabled", tool.Enabled),
	)
	return tool.clone(), nil
}

// UnregisterTool removes a tool and cascades: every fallback rule naming it
// as primary or fallback is deleted, and its metrics record is dropped.
func (m *Manager) UnregisterTool(id string) error {
	if err := m.registry.Unregister(id); err != nil {
		return err
	}
	removed := m.fallbacks.RemoveForTool(id)
	m.metrics.Remove(id)
	m.logger.Debug("tool unregistered",
		zap.String("tool_id", id),
		zap.Int("cascaded_rules", removed),
	)
	return nil
}

// SetToolEnabled enables or disables a tool.
func (m *Manager) SetToolEnabled(id string, enabled bool) error {
	return m.registry.SetEnabled(id, enabled)
}

// GetTool returns a copy of a registered tool.
func (m *Manager) GetTool(id string) (Tool, error) {
	tool, ok := m.registry.Get(id)
	if !ok {
		return Tool{}, errToolNotFound(id)
	}
	return tool, nil
}

// ListTools returns copies of registered tools matching filter, in
// registration order. A nil filter returns every tool.
func (m *Manager) ListTools(filter *ToolFilter) []Tool {
	return m.registry.List(filter)
}

// RegisterFallbackRule declares a substitution edge. Both referenced tools
// must currently exist; the rule starts enabled. The rule ID (generated when
// empty) is returned.
func (m *Manager) RegisterFallbackRule(rule FallbackRule) (string, error) {
	if _, ok := m.registry.Get(rule.PrimaryToolID); !ok {
		return "", NewError(CodeRuleInvalid, "fallback rule references unknown primary tool: "+rule.PrimaryToolID).
			WithDetail("tool_id", rule.PrimaryToolID)
	}
	if _, ok := m.registry.Get(rule.FallbackToolID); !ok {
		return "", NewError(CodeRuleInvalid, "fallback rule references unknown fallback tool: "+rule.FallbackToolID).
			WithDetail("tool_id", rule.FallbackToolID)
	}
	rule.Enabled = true
	id, err := m.fallbacks.Register(rule)
	if err != nil {
		return "", err
	}
	m.logger.Debug("fallback rule registered",
		zap.String("rule_id", id),
		zap.String("primary", rule.PrimaryToolID),
		zap.String("fallback", rule.FallbackToolID),
	)
	return id, nil
}

// SetFallbackRuleEnabled toggles a fallback rule.
func (m *Manager) SetFallbackRuleEnabled(id string, enabled bool) error {
	return m.fallbacks.SetEnabled(id, enabled)
}

// RemoveFallbackRule deletes a fallback rule by ID.
func (m *Manager) RemoveFallbackRule(id string) error {
	return m.fallbacks.Remove(id)
}

// ListFallbackRules returns copies of all rules in registration order.
func (m *Manager) ListFallbackRules() []FallbackRule {
	return m.fallbacks.List()
}

// ToolMetrics returns a snapshot of one tool's usage metrics. The second
// return is false when the tool is not tracked.
func (m *Manager) ToolMetrics(toolID string) (*UsageMetrics, bool) {
	return m.metrics.Get(toolID)
}

// AllToolMetrics returns a snapshot of every tracked tool's metrics.
func (m *Manager) AllToolMetrics() map[string]*UsageMetrics {
	return m.metrics.All()
}

// ResetToolMetrics zeroes a registered tool's counters and clears its trend.
func (m *Manager) ResetToolMetrics(toolID string) error {
	if _, ok := m.registry.Get(toolID); !ok {
		return errToolNotFound(toolID)
	}
	m.metrics.Reset(toolID)
	return nil
}
