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
	"sort"
	"time"
)

// Health statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Degradation thresholds: over degradeMinExecutions total executions with an
// aggregate success rate below degradeSuccessRate reports degraded.
const (
	degradeMinExecutions = 10
	degradeSuccessRate   = 0.5
)

// Health is the manager's operational status.
type Health struct {
	Status    string
	Message   string
	CheckedAt time.Time
}

// Health assesses the manager: unhealthy when administratively disabled,
// degraded before initialization or when aggregate failures dominate,
// healthy otherwise. Degradation derives purely from recorded statistics;
// callers never need to inspect individual results to notice systemic
// failure.
func (m *Manager) Health() Health {
	now := time.Now()
	if !m.cfg.Enabled {
		return Health{Status: StatusUnhealthy, Message: "tool manager is disabled", CheckedAt: now}
	}
	if !m.isInitialized() {
		return Health{Status: StatusDegraded, Message: "tool manager not initialized", CheckedAt: now}
	}

	var total, successes int64
	for _, metrics := range m.metrics.All() {
		total += metrics.TotalExecutions
		successes += metrics.SuccessfulExecutions
	}
	if total > degradeMinExecutions && float64(successes)/float64(total) < degradeSuccessRate {
		return Health{Status: StatusDegraded, Message: "aggregate tool success rate below 50%", CheckedAt: now}
	}
	return Health{Status: StatusHealthy, CheckedAt: now}
}

// ToolCount pairs a tool with its execution count for top-N reporting.
type ToolCount struct {
	ToolID     string
	Executions int64
}

// Stats aggregates registry and metrics state.
type Stats struct {
	TotalTools    int
	EnabledTools  int
	DisabledTools int

	TotalExecutions int64
	TotalSuccesses  int64
	TotalFailures   int64

	// OverallSuccessRate is TotalSuccesses/TotalExecutions, 0 when idle.
	OverallSuccessRate float64

	// AvgDurationMs is the execution-count weighted mean across tools.
	AvgDurationMs float64

	// TopTools lists the 5 most-executed tools, descending.
	TopTools []ToolCount

	FallbackRules int

	// FallbacksTriggered is reserved for fallback-activation accounting.
	// It is reported but not yet populated.
	FallbacksTriggered int64
}

// Stats computes aggregate operational statistics across all tools.
func (m *Manager) Stats() Stats {
	var s Stats
	s.TotalTools, s.EnabledTools = m.registry.countEnabled()
	s.DisabledTools = s.TotalTools - s.EnabledTools
	s.FallbackRules = m.fallbacks.Count()

	var weightedDuration float64
	all := m.metrics.All()
	counts := make([]ToolCount, 0, len(all))
	for id, metrics := range all {
		s.TotalExecutions += metrics.TotalExecutions
		s.TotalSuccesses += metrics.SuccessfulExecutions
		s.TotalFailures += metrics.FailedExecutions
		weightedDuration += metrics.AvgDurationMs * float64(metrics.TotalExecutions)
		counts = append(counts, ToolCount{ToolID: id, Executions: metrics.TotalExecutions})
	}

	if s.TotalExecutions > 0 {
		s.OverallSuccessRate = float64(s.TotalSuccesses) / float64(s.TotalExecutions)
		s.AvgDurationMs = weightedDuration / float64(s.TotalExecutions)
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Executions != counts[j].Executions {
			return counts[i].Executions > counts[j].Executions
		}
		return counts[i].ToolID < counts[j].ToolID
	})
	if len(counts) > 5 {
		counts = counts[:5]
	}
	s.TopTools = counts

	return s
}
