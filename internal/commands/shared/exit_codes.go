// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shared

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for the rory CLI
const (
	ExitSuccess       = 0
	ExitCallFailed    = 1
	ExitInvalidInput  = 2
	ExitRejected      = 3
	ExitMissingConfig = 4
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewCallError creates an error for failed provider calls
func NewCallError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitCallFailed, Message: msg, Cause: cause}
}

// NewInvalidInputError creates an error for inputs that failed validation
func NewInvalidInputError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitInvalidInput, Message: msg, Cause: cause}
}

// NewRejectedError creates an error for requests blocked by the safety gate
func NewRejectedError(msg string) *ExitError {
	return &ExitError{Code: ExitRejected, Message: msg}
}

// NewMissingConfigError creates an error for unusable configuration
func NewMissingConfigError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitMissingConfig, Message: msg, Cause: cause}
}

// HandleExitError prints the error and exits with its code.
// Errors without a code exit with ExitCallFailed.
func HandleExitError(err error) {
	if err == nil {
		os.Exit(ExitSuccess)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}
	os.Exit(ExitCallFailed)
}
