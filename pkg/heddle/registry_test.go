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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okExecutable(data interface{}) Executable {
	return ExecutableFunc(func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		return data, nil
	})
}

func newTestManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	m := NewManager(cfg)
	require.NoError(t, m.Initialize(context.Background()))
	return m
}

func TestRegisterTool_Defaults(t *testing.T) {
	m := newTestManager(t, DefaultConfig())

	tool, err := m.RegisterTool("echo", "Echo", okExecutable("hi"))
	require.NoError(t, err)

	assert.True(t, tool.Enabled)
	assert.Equal(t, "1.0.0", tool.Version)
	assert.Equal(t, float64(1), tool.CostPerUse)
	assert.False(t, tool.Experimental)
	assert.NotNil(t, tool.Categories)
	assert.Empty(t, tool.Categories)
	assert.NotNil(t, tool.Capabilities)
	assert.Empty(t, tool.Capabilities)
	assert.Zero(t, tool.Timeout)
}

func TestRegisterTool_Options(t *testing.T) {
	m := newTestManager(t, DefaultConfig())

	tool, err := m.RegisterTool("sql", "SQL Query", okExecutable(nil),
		WithDescription("runs SQL against the warehouse"),
		WithCategories("database"),
		WithCapabilities("read", "write"),
		WithVersion("2.1.0"),
		WithExperimental(),
		WithCostPerUse(3),
		WithToolTimeout(5*time.Second),
	)
	require.NoError(t, err)

	assert.Equal(t, "runs SQL against the warehouse", tool.Description)
	assert.Equal(t, []string{"database"}, tool.Categories)
	assert.Equal(t, []string{"read", "write"}, tool.Capabilities)
	assert.Equal(t, "2.1.0", tool.Version)
	assert.True(t, tool.Experimental)
	assert.Equal(t, float64(3), tool.CostPerUse)
	assert.Equal(t, 5*time.Second, tool.Timeout)
}

func TestRegisterTool_Duplicate(t *testing.T) {
	m := newTestManager(t, DefaultConfig())

	_, err := m.RegisterTool("echo", "Echo", okExecutable("first"))
	require.NoError(t, err)

	_, err = m.RegisterTool("echo", "Echo Two", okExecutable("second"))
	require.Error(t, err)
	assert.Equal(t, CodeToolAlreadyExists, ErrorCode(err))

	// The first registration must survive.
	stored, err := m.GetTool("echo")
	require.NoError(t, err)
	assert.Equal(t, "Echo", stored.Name)
}

func TestRegisterTool_Invalid(t *testing.T) {
	m := newTestManager(t, DefaultConfig())

	_, err := m.RegisterTool("", "No ID", okExecutable(nil))
	assert.Equal(t, CodeToolInvalid, ErrorCode(err))

	_, err = m.RegisterTool("no-handler", "No Handler", nil)
	assert.Equal(t, CodeToolInvalid, ErrorCode(err))
}

func TestSetToolEnabled(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	_, err := m.RegisterTool("echo", "Echo", okExecutable(nil))
	require.NoError(t, err)

	require.NoError(t, m.SetToolEnabled("echo", false))
	tool, err := m.GetTool("echo")
	require.NoError(t, err)
	assert.False(t, tool.Enabled)

	assert.Equal(t, CodeToolNotFound, ErrorCode(m.SetToolEnabled("missing", true)))
}

func TestListTools_Filters(t *testing.T) {
	m := newTestManager(t, DefaultConfig())

	_, err := m.RegisterTool("a", "A", okExecutable(nil), WithCategories("database"), WithCapabilities("read"))
	require.NoError(t, err)
	_, err = m.RegisterTool("b", "B", okExecutable(nil), WithCategories("filesystem"), WithCapabilities("write"), WithExperimental())
	require.NoError(t, err)
	_, err = m.RegisterTool("c", "C", okExecutable(nil), WithCategories("database", "filesystem"), WithDisabled())
	require.NoError(t, err)

	ids := func(tools []Tool) []string {
		out := make([]string, len(tools))
		for i, tool := range tools {
			out[i] = tool.ID
		}
		return out
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids(m.ListTools(nil)))

	enabled := true
	assert.Equal(t, []string{"a", "b"}, ids(m.ListTools(&ToolFilter{Enabled: &enabled})))

	assert.Equal(t, []string{"a", "c"}, ids(m.ListTools(&ToolFilter{Categories: []string{"database"}})))

	// Conjunctive across fields: enabled AND database.
	assert.Equal(t, []string{"a"}, ids(m.ListTools(&ToolFilter{Enabled: &enabled, Categories: []string{"database"}})))

	// Any-of within a field.
	assert.Equal(t, []string{"a", "b", "c"}, ids(m.ListTools(&ToolFilter{Categories: []string{"database", "filesystem"}})))

	experimental := true
	assert.Equal(t, []string{"b"}, ids(m.ListTools(&ToolFilter{Experimental: &experimental})))

	assert.Equal(t, []string{"b"}, ids(m.ListTools(&ToolFilter{Capabilities: []string{"write"}})))
}

func TestListTools_ReturnsCopies(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	_, err := m.RegisterTool("a", "A", okExecutable(nil), WithCategories("database"))
	require.NoError(t, err)

	tools := m.ListTools(nil)
	tools[0].Categories[0] = "mutated"
	tools[0].Name = "mutated"

	stored, err := m.GetTool("a")
	require.NoError(t, err)
	assert.Equal(t, "A", stored.Name)
	assert.Equal(t, []string{"database"}, stored.Categories)
}

func TestUnregisterTool_CascadesRules(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	for _, id := range []string{"a", "b", "c"} {
		_, err := m.RegisterTool(id, id, okExecutable(nil))
		require.NoError(t, err)
	}

	_, err := m.RegisterFallbackRule(FallbackRule{PrimaryToolID: "a", FallbackToolID: "b", ErrorPatterns: []string{"x"}})
	require.NoError(t, err)
	_, err = m.RegisterFallbackRule(FallbackRule{PrimaryToolID: "c", FallbackToolID: "a", ErrorPatterns: []string{"x"}})
	require.NoError(t, err)
	_, err = m.RegisterFallbackRule(FallbackRule{PrimaryToolID: "b", FallbackToolID: "c", ErrorPatterns: []string{"x"}})
	require.NoError(t, err)

	require.NoError(t, m.UnregisterTool("a"))

	// Rules referencing "a" as primary or fallback are gone.
	rules := m.ListFallbackRules()
	require.Len(t, rules, 1)
	assert.Equal(t, "b", rules[0].PrimaryToolID)

	// Its metrics record is gone too.
	_, ok := m.ToolMetrics("a")
	assert.False(t, ok)

	assert.Equal(t, CodeToolNotFound, ErrorCode(m.UnregisterTool("a")))
}
