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
)

// Registry manages tool registration and lookup. All accessors return
// copies; registry-owned state is only mutated through registry methods.
//
// Registration order is preserved: List and the selection heuristic
// enumerate tools in the order they were registered, which keeps tie-breaks
// and random selection deterministic under test seeds.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register stores a fully populated tool. Duplicate IDs are rejected with
// TOOL_ALREADY_EXISTS and the stored tool is left untouched.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.ID]; exists {
		return errToolExists(tool.ID)
	}
	r.tools[tool.ID] = tool.clone()
	r.order = append(r.order, tool.ID)
	return nil
}

// Get retrieves a copy of a tool by ID.
func (r *Registry) Get(id string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[id]
	if !ok {
		return Tool{}, false
	}
	return tool.clone(), true
}

// SetEnabled replaces the stored tool with a copy carrying the updated
// enabled flag. Returns TOOL_NOT_FOUND for unknown IDs.
func (r *Registry) SetEnabled(id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tool, ok := r.tools[id]
	if !ok {
		return errToolNotFound(id)
	}
	tool.Enabled = enabled
	r.tools[id] = tool
	return nil
}

// Unregister removes a tool. Returns TOOL_NOT_FOUND for unknown IDs.
// Fallback-rule cascade is the Manager's responsibility.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[id]; !ok {
		return errToolNotFound(id)
	}
	delete(r.tools, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// ToolFilter narrows List results. All set fields must match (AND across
// fields); Categories and Capabilities match when any requested value
// matches any of the tool's values.
type ToolFilter struct {
	Enabled      *bool
	Categories   []string
	Capabilities []string
	Experimental *bool
}

func (f *ToolFilter) matches(t Tool) bool {
	if f == nil {
		return true
	}
	if f.Enabled != nil && t.Enabled != *f.Enabled {
		return false
	}
	if f.Experimental != nil && t.Experimental != *f.Experimental {
		return false
	}
	if len(f.Categories) > 0 && !hasAnyTag(t.Categories, f.Categories) {
		return false
	}
	if len(f.Capabilities) > 0 && !hasAnyTag(t.Capabilities, f.Capabilities) {
		return false
	}
	return true
}

// List returns copies of all tools matching filter, in registration order.
// A nil filter returns every tool.
func (r *Registry) List(filter *ToolFilter) []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.order))
	for _, id := range r.order {
		tool := r.tools[id]
		if filter.matches(tool) {
			tools = append(tools, tool.clone())
		}
	}
	return tools
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// countEnabled returns registered and enabled tool counts in one lock hold.
func (r *Registry) countEnabled() (total, enabled int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total = len(r.tools)
	for _, t := range r.tools {
		if t.Enabled {
			enabled++
		}
	}
	return total, enabled
}

// clear removes all tools.
func (r *Registry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools = make(map[string]Tool)
	r.order = nil
}
