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
	"errors"
	"fmt"
)

// Error codes surfaced by the orchestrator. Precondition codes come back as
// a non-nil error from API calls; execution codes are captured inside
// Result.Error and never returned as Go errors.
const (
	// Precondition violations (usage errors, raised).
	CodeToolNotFound      = "TOOL_NOT_FOUND"
	CodeToolDisabled      = "TOOL_DISABLED"
	CodeToolAlreadyExists = "TOOL_ALREADY_EXISTS"
	CodeToolInvalid       = "TOOL_INVALID"
	CodeRuleNotFound      = "RULE_NOT_FOUND"
	CodeRuleInvalid       = "RULE_INVALID"

	// Execution failures (captured, not raised).
	CodeTimeout        = "TIMEOUT"
	CodeExecutionError = "EXECUTION_ERROR"
	CodeInvalidParams  = "INVALID_PARAMS"
)

// Error is a structured error with a stable machine-readable code. It is
// used both for raised precondition violations and for captured execution
// failures inside a Result.
type Error struct {
	// Code is a stable machine-readable error code.
	Code string

	// Message is a human-readable error message.
	Message string

	// Details carries contextual payload, e.g. the offending tool ID.
	Details map[string]interface{}

	// Retryable hints whether the operation may succeed if attempted again.
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// NewError creates a structured error.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithDetail attaches a contextual detail and returns the error.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ErrorCode extracts the structured code from err, or "" if err is not a
// *Error (including wrapped).
func ErrorCode(err error) string {
	var he *Error
	if errors.As(err, &he) {
		return he.Code
	}
	return ""
}

func errToolNotFound(id string) *Error {
	return NewError(CodeToolNotFound, fmt.Sprintf("tool not found: %s", id)).WithDetail("tool_id", id)
}

func errToolDisabled(id string) *Error {
	return NewError(CodeToolDisabled, fmt.Sprintf("tool is disabled: %s", id)).WithDetail("tool_id", id)
}

func errToolExists(id string) *Error {
	return NewError(CodeToolAlreadyExists, fmt.Sprintf("tool already registered: %s", id)).WithDetail("tool_id", id)
}

func errRuleNotFound(id string) *Error {
	return NewError(CodeRuleNotFound, fmt.Sprintf("fallback rule not found: %s", id)).WithDetail("rule_id", id)
}
