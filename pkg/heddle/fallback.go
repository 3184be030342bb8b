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
	"strings"
	"sync"

	"github.com/google/uuid"
)

// FallbackRule declares a directed substitution: when the primary tool fails
// and the failure matches, the fallback tool runs in its place.
//
// A rule matches a failure when it is enabled, its PrimaryToolID matches,
// and either the error message contains one of ErrorPatterns (case-sensitive
// substring) or Matches returns true for the error.
type FallbackRule struct {
	// ID uniquely identifies the rule. Generated when left empty at
	// registration.
	ID string

	// PrimaryToolID is the tool whose failures this rule covers.
	PrimaryToolID string

	// FallbackToolID is the substitute tool.
	FallbackToolID string

	// ErrorPatterns are substrings matched against the failure message.
	ErrorPatterns []string

	// Enabled gates the rule without deleting it. Rules start enabled at
	// registration; toggle via SetFallbackRuleEnabled.
	Enabled bool

	// Matches is an optional custom predicate over the execution failure.
	Matches func(execErr *Error) bool
}

func (r FallbackRule) clone() FallbackRule {
	c := r
	c.ErrorPatterns = append([]string(nil), r.ErrorPatterns...)
	return c
}

// appliesTo reports whether the rule covers this failure of toolID.
func (r FallbackRule) appliesTo(toolID string, execErr *Error) bool {
	if !r.Enabled || r.PrimaryToolID != toolID || execErr == nil {
		return false
	}
	for _, pattern := range r.ErrorPatterns {
		if strings.Contains(execErr.Message, pattern) {
			return true
		}
	}
	return r.Matches != nil && r.Matches(execErr)
}

// FallbackTable owns the ordered set of substitution rules. Rules are
// evaluated in registration order; ordering is what makes "first applicable
// rule wins" deterministic.
type FallbackTable struct {
	mu    sync.RWMutex
	rules []FallbackRule
}

// NewFallbackTable creates an empty rule table.
func NewFallbackTable() *FallbackTable {
	return &FallbackTable{}
}

// Register appends a rule. An empty ID gets a generated UUID; the assigned
// ID is returned. Tool-existence validation happens in the Manager, which
// owns the registry.
func (t *FallbackTable) Register(rule FallbackRule) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rule.ID == "" {
		rule.ID = uuid.New().String()
	} else {
		for _, existing := range t.rules {
			if existing.ID == rule.ID {
				return "", NewError(CodeRuleInvalid, "fallback rule already registered: "+rule.ID).
					WithDetail("rule_id", rule.ID)
			}
		}
	}
	t.rules = append(t.rules, rule.clone())
	return rule.ID, nil
}

// SetEnabled toggles a rule. Returns RULE_NOT_FOUND for unknown IDs.
func (t *FallbackTable) SetEnabled(id string, enabled bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.rules {
		if t.rules[i].ID == id {
			t.rules[i].Enabled = enabled
			return nil
		}
	}
	return errRuleNotFound(id)
}

// Remove deletes a rule by ID. Returns RULE_NOT_FOUND for unknown IDs.
func (t *FallbackTable) Remove(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.rules {
		if t.rules[i].ID == id {
			t.rules = append(t.rules[:i], t.rules[i+1:]...)
			return nil
		}
	}
	return errRuleNotFound(id)
}

// RemoveForTool deletes every rule that references toolID as primary or
// fallback, returning how many were removed. This is the unregister cascade.
func (t *FallbackTable) RemoveForTool(toolID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.rules[:0]
	removed := 0
	for _, r := range t.rules {
		if r.PrimaryToolID == toolID || r.FallbackToolID == toolID {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	t.rules = kept
	return removed
}

// Applicable returns copies of every rule covering this failure, in
// registration order. The orchestrator tries them in order until one
// fallback succeeds.
func (t *FallbackTable) Applicable(toolID string, execErr *Error) []FallbackRule {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []FallbackRule
	for _, r := range t.rules {
		if r.appliesTo(toolID, execErr) {
			out = append(out, r.clone())
		}
	}
	return out
}

// List returns copies of all rules in registration order.
func (t *FallbackTable) List() []FallbackRule {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]FallbackRule, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.clone()
	}
	return out
}

// Count returns the number of registered rules.
func (t *FallbackTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rules)
}

// clear removes all rules.
func (t *FallbackTable) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules = nil
}
