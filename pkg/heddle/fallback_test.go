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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackTable_PatternMatching(t *testing.T) {
	table := NewFallbackTable()
	_, err := table.Register(FallbackRule{
		ID:             "r1",
		PrimaryToolID:  "a",
		FallbackToolID: "b",
		ErrorPatterns:  []string{"rate limit", "quota"},
		Enabled:        true,
	})
	require.NoError(t, err)

	assert.Len(t, table.Applicable("a", NewError(CodeExecutionError, "rate limit exceeded")), 1)
	assert.Len(t, table.Applicable("a", NewError(CodeExecutionError, "quota exhausted")), 1)
	assert.Empty(t, table.Applicable("a", NewError(CodeExecutionError, "connection refused")))
	// Substring match is case-sensitive.
	assert.Empty(t, table.Applicable("a", NewError(CodeExecutionError, "Rate Limit exceeded")))
	// Wrong primary.
	assert.Empty(t, table.Applicable("b", NewError(CodeExecutionError, "rate limit exceeded")))
	// Nil error never matches.
	assert.Empty(t, table.Applicable("a", nil))
}

func TestFallbackTable_CustomPredicate(t *testing.T) {
	table := NewFallbackTable()
	_, err := table.Register(FallbackRule{
		ID:             "r1",
		PrimaryToolID:  "a",
		FallbackToolID: "b",
		Enabled:        true,
		Matches: func(execErr *Error) bool {
			return execErr.Code == CodeTimeout
		},
	})
	require.NoError(t, err)

	assert.Len(t, table.Applicable("a", NewError(CodeTimeout, "timed out")), 1)
	assert.Empty(t, table.Applicable("a", NewError(CodeExecutionError, "boom")))
}

func TestFallbackTable_DisabledRulesSkipped(t *testing.T) {
	table := NewFallbackTable()
	_, err := table.Register(FallbackRule{
		ID: "r1", PrimaryToolID: "a", FallbackToolID: "b",
		ErrorPatterns: []string{"x"}, Enabled: true,
	})
	require.NoError(t, err)

	require.NoError(t, table.SetEnabled("r1", false))
	assert.Empty(t, table.Applicable("a", NewError(CodeExecutionError, "x")))

	require.NoError(t, table.SetEnabled("r1", true))
	assert.Len(t, table.Applicable("a", NewError(CodeExecutionError, "x")), 1)

	assert.Equal(t, CodeRuleNotFound, ErrorCode(table.SetEnabled("missing", true)))
}

func TestFallbackTable_RegistrationOrderPreserved(t *testing.T) {
	table := NewFallbackTable()
	for _, id := range []string{"first", "second", "third"} {
		_, err := table.Register(FallbackRule{
			ID: id, PrimaryToolID: "a", FallbackToolID: "b",
			ErrorPatterns: []string{"boom"}, Enabled: true,
		})
		require.NoError(t, err)
	}

	rules := table.Applicable("a", NewError(CodeExecutionError, "boom"))
	require.Len(t, rules, 3)
	assert.Equal(t, "first", rules[0].ID)
	assert.Equal(t, "second", rules[1].ID)
	assert.Equal(t, "third", rules[2].ID)
}

func TestFallbackTable_GeneratedIDs(t *testing.T) {
	table := NewFallbackTable()
	id, err := table.Register(FallbackRule{PrimaryToolID: "a", FallbackToolID: "b", Enabled: true})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = table.Register(FallbackRule{ID: id, PrimaryToolID: "a", FallbackToolID: "c", Enabled: true})
	assert.Equal(t, CodeRuleInvalid, ErrorCode(err))
}

func TestFallbackTable_RemoveForTool(t *testing.T) {
	table := NewFallbackTable()
	specs := []FallbackRule{
		{ID: "r1", PrimaryToolID: "a", FallbackToolID: "b", Enabled: true},
		{ID: "r2", PrimaryToolID: "b", FallbackToolID: "c", Enabled: true},
		{ID: "r3", PrimaryToolID: "c", FallbackToolID: "a", Enabled: true},
	}
	for _, r := range specs {
		_, err := table.Register(r)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, table.RemoveForTool("a"))
	rules := table.List()
	require.Len(t, rules, 1)
	assert.Equal(t, "r2", rules[0].ID)
}

func TestManager_RegisterFallbackRule_ValidatesTools(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	_, err := m.RegisterTool("a", "A", okExecutable(nil))
	require.NoError(t, err)

	_, err = m.RegisterFallbackRule(FallbackRule{PrimaryToolID: "a", FallbackToolID: "ghost"})
	assert.Equal(t, CodeRuleInvalid, ErrorCode(err))

	_, err = m.RegisterFallbackRule(FallbackRule{PrimaryToolID: "ghost", FallbackToolID: "a"})
	assert.Equal(t, CodeRuleInvalid, ErrorCode(err))
}
