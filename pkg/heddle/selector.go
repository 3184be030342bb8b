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
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/teradata-labs/heddle/pkg/observability"
)

// FindBestTool picks the enabled tool best suited to a task description.
//
// With adaptive selection off, it returns a uniformly random enabled tool.
// With it on, each enabled tool is scored by word overlap with the task
// (name words count double), the score is damped toward 0.5x by a poor
// historical success rate, and the top scorer wins — but only with a
// strictly positive score. Ties keep registration order.
//
// The second return is false when no enabled tool qualifies.
func (m *Manager) FindBestTool(taskDescription string) (Tool, bool) {
	enabled := true
	candidates := m.registry.List(&ToolFilter{Enabled: &enabled})
	if len(candidates) == 0 {
		return Tool{}, false
	}

	_, span := m.tracer.StartSpan(context.Background(), observability.SpanToolSelect, observability.WithSpanKind("selection"))
	defer m.tracer.EndSpan(span)

	if !m.cfg.UseAdaptiveToolSelection {
		m.rndMu.Lock()
		pick := candidates[m.rnd.Intn(len(candidates))]
		m.rndMu.Unlock()
		span.SetAttribute(observability.AttrToolID, pick.ID)
		span.SetAttribute("selection.mode", "random")
		return pick, true
	}

	taskWords := wordSet(taskDescription)

	type scored struct {
		tool  Tool
		score float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, tool := range candidates {
		score := overlapScore(tool, taskWords)
		if metrics, ok := m.metrics.Get(tool.ID); ok && metrics.TotalExecutions > 0 {
			score *= 0.5 + 0.5*metrics.SuccessRate
		}
		ranked = append(ranked, scored{tool: tool, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if ranked[0].score <= 0 {
		return Tool{}, false
	}
	span.SetAttribute(observability.AttrToolID, ranked[0].tool.ID)
	span.SetAttribute("selection.mode", "adaptive")
	span.SetAttribute("selection.score", ranked[0].score)
	return ranked[0].tool, true
}

// overlapScore counts task-word overlap: 2 points per matching name word,
// 1 per matching description word. Case-insensitive, whitespace-tokenized.
func overlapScore(tool Tool, taskWords map[string]struct{}) float64 {
	var score float64
	for _, w := range strings.Fields(strings.ToLower(tool.Name)) {
		if _, ok := taskWords[w]; ok {
			score += 2
		}
	}
	for _, w := range strings.Fields(strings.ToLower(tool.Description)) {
		if _, ok := taskWords[w]; ok {
			score++
		}
	}
	return score
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// toolHaystack adapts a tool list to fuzzy.Source.
type toolHaystack []Tool

func (h toolHaystack) String(i int) string {
	return h[i].Name + " " + h[i].Description
}

func (h toolHaystack) Len() int { return len(h) }

// SearchTools fuzzy-matches query against enabled tool names and
// descriptions, best match first. Unlike FindBestTool it does not consult
// execution history; it is a discovery aid for planners and UIs.
func (m *Manager) SearchTools(query string) []Tool {
	enabled := true
	candidates := toolHaystack(m.registry.List(&ToolFilter{Enabled: &enabled}))

	matches := fuzzy.FindFrom(query, candidates)
	out := make([]Tool, 0, len(matches))
	for _, match := range matches {
		out = append(out, candidates[match.Index])
	}
	return out
}
