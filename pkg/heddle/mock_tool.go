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
	"sync"
)

// MockExecutable is a test implementation of Executable that records calls
// and lets tests control the outcome. Thread-safe for concurrent testing.
type MockExecutable struct {
	mu         sync.Mutex
	calls      int
	lastParams map[string]interface{}

	// MockExecute overrides the default behavior when set.
	MockExecute func(ctx context.Context, params map[string]interface{}) (interface{}, error)
}

// Execute records the call and runs MockExecute, defaulting to a fixed
// success payload.
func (m *MockExecutable) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	m.mu.Lock()
	m.calls++
	m.lastParams = params
	m.mu.Unlock()

	if m.MockExecute != nil {
		return m.MockExecute(ctx, params)
	}
	return "mock result", nil
}

// Calls returns how many times Execute ran.
func (m *MockExecutable) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastParams returns the parameters from the most recent call.
func (m *MockExecutable) LastParams() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastParams
}

// Ensure MockExecutable implements Executable.
var _ Executable = (*MockExecutable)(nil)
