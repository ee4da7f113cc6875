// Copyright (c) 2023 The KBase Project and its Contributors
// Copyright (c) 2023 Cohere Consulting, LLC
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package validation

import (
	"fmt"
	"strings"
)

// a single field that failed validation
type Issue struct {
	// dotted path to the field (e.g. "chromosomes.0.count")
	Field string
	// what's wrong with it
	Message string
}

func (i Issue) String() string {
	if i.Field == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// This error type is returned when a value doesn't conform to its schema. It
// enumerates every offending field.
type Error struct {
	// name of the schema the value was checked against
	Schema string
	// all issues found
	Issues []Issue
}

func (e Error) Error() string {
	noun := "errors"
	if len(e.Issues) == 1 {
		noun = "error"
	}
	issues := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		issues[i] = issue.String()
	}
	return fmt.Sprintf("%d validation %s for %s: %s", len(e.Issues), noun,
		e.Schema, strings.Join(issues, "; "))
}

func (e Error) Kind() string {
	return "ValidationError"
}

// returns the issue for the given field, if any
func (e Error) Field(field string) (Issue, bool) {
	for _, issue := range e.Issues {
		if issue.Field == field {
			return issue, true
		}
	}
	return Issue{}, false
}
