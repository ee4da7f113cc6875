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

package contract

import (
	"fmt"
)

// indicates that a resource named in the contract is not in its data package
type MissingResourceError struct {
	Resource string
}

func (e MissingResourceError) Error() string {
	return fmt.Sprintf("The contract has no resource named '%s'", e.Resource)
}

// indicates that a field was requested from a resource that doesn't have it
type UnknownFieldError struct {
	Resource, Field string
}

func (e UnknownFieldError) Error() string {
	return fmt.Sprintf("The '%s' resource has no field named '%s'", e.Resource, e.Field)
}

// indicates that a field's type has no BigQuery counterpart
type UnsupportedTypeError struct {
	Resource, Field, Type string
}

func (e UnsupportedTypeError) Error() string {
	return fmt.Sprintf("Field '%s' in the '%s' resource has unsupported type '%s'",
		e.Field, e.Resource, e.Type)
}

// indicates that the metrics produced by this module don't match the
// destination contract
type IncompatibleMetricsError struct {
	Field, Message string
}

func (e IncompatibleMetricsError) Error() string {
	return fmt.Sprintf("Assembly metrics field '%s' is incompatible with the contract: %s",
		e.Field, e.Message)
}
