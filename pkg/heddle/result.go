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
	"encoding/json"
	"time"
)

// Result describes one terminal tool invocation outcome, success or failure.
// ExecuteTool always returns a Result for ordinary execution failures; only
// precondition violations (unknown tool, disabled tool) come back as errors.
type Result struct {
	// ToolID identifies the tool that produced this result. When a fallback
	// handled the call, this is the fallback tool's ID.
	ToolID string

	// Success indicates whether the execution succeeded.
	Success bool

	// Data is the tool's result payload. Present only on success.
	Data interface{}

	// Error describes the failure. Present only when Success is false.
	Error *Error

	// DurationMs is the wall-clock execution time in milliseconds.
	DurationMs int64

	// StartedAt is when the attempt began.
	StartedAt time.Time

	// InputBytes is the serialized parameter size.
	InputBytes int

	// OutputBytes is the serialized result payload size. Zero on failure.
	OutputBytes int
}

// finalize stamps timing and size metrics onto the result.
func (r *Result) finalize(start time.Time, params map[string]interface{}) {
	r.StartedAt = start
	r.DurationMs = time.Since(start).Milliseconds()
	r.InputBytes = serializedSize(params)
	if r.Success {
		r.OutputBytes = serializedSize(r.Data)
	}
}

// serializedSize returns the JSON byte length of v, or 0 when v is nil or
// not serializable.
func serializedSize(v interface{}) int {
	if v == nil {
		return 0
	}
	data, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return len(data)
}
