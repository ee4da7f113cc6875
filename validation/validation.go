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

// Package validation checks decoded JSON values against the closed schemas huma
// derives from Go struct tags, collecting every offending field instead of
// stopping at the first one.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humavalidation "github.com/danielgtaylor/huma/v2/validation"
)

// field names are matched exactly: "Title" is not "title"
func init() {
	huma.ValidateStrictCasing = true
}

// messages for the checks huma leaves to us
const (
	msgExpectedInteger = "expected integer"
	msgExpectedFinite  = "expected finite number"
)

// A Schema validates decoded JSON values against the JSON schema huma
// generates for a struct type. Field names come from json tags; constraints
// come from huma's tags (required, nullable, minimum, exclusiveMinimum, enum).
// Structs are closed, so properties they don't declare are rejected. A Schema
// is safe for concurrent use.
type Schema struct {
	name     string
	registry huma.Registry
	schema   *huma.Schema
}

// NewSchema returns the schema for the type of model (a struct value), named
// in validation errors by the given name.
func NewSchema(name string, model any) *Schema {
	registry := huma.NewMapRegistry("#/components/schemas/", huma.DefaultSchemaNamer)
	return &Schema{
		name:     name,
		registry: registry,
		schema:   registry.Schema(reflect.TypeOf(model), true, name),
	}
}

// returns the name of the schema
func (s *Schema) Name() string {
	return s.name
}

// Validate checks a decoded JSON value. Numbers are coerced first: json.Number
// values and numeric strings become int64 or float64 as their fields require.
// Integer fields accept whole numbers only, and number fields accept finite
// numbers only. Validate returns the coerced value or a *Error listing every
// issue. The given value is never modified.
func (s *Schema) Validate(value any) (any, error) {
	pb := huma.NewPathBuffer([]byte{}, 0)
	res := &huma.ValidateResult{}
	coerced := coerce(s.registry, s.schema, pb, value, res)
	huma.Validate(s.registry, s.schema, pb, huma.ModeWriteToServer, coerced, res)
	if len(res.Errors) > 0 {
		return nil, s.err(res.Errors)
	}
	return coerced, nil
}

// Decode validates value and stores the result in target, a pointer to a value
// of the schema's type.
func (s *Schema) Decode(value any, target any) error {
	coerced, err := s.Validate(value)
	if err != nil {
		return err
	}
	data, err := json.Marshal(coerced)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

// converts huma's error details to issues, sorted by field
func (s *Schema) err(errs []error) error {
	issues := make([]Issue, 0, len(errs))
	for _, err := range errs {
		var detail *huma.ErrorDetail
		if !errors.As(err, &detail) {
			issues = append(issues, Issue{Message: err.Error()})
			continue
		}
		field := dotted(detail.Location)

		// huma reports a missing property at its parent
		var property string
		if _, err := fmt.Sscanf(detail.Message, humavalidation.MsgExpectedRequiredProperty, &property); err == nil {
			field = join(field, property)
		}

		issues = append(issues, Issue{
			Field:   field,
			Message: detail.Message,
		})
	}
	slices.SortStableFunc(issues, func(a, b Issue) int {
		return strings.Compare(a.Field, b.Field)
	})
	return &Error{
		Schema: s.name,
		Issues: issues,
	}
}

// coerce walks value alongside its schema, converting numbers to the types
// huma validates and reporting the numbers it can't accept. Objects and
// arrays are copied, never modified in place.
func coerce(r huma.Registry, s *huma.Schema, path *huma.PathBuffer, value any, res *huma.ValidateResult) any {
	for s.Ref != "" {
		s = r.SchemaFromRef(s.Ref)
	}
	switch s.Type {
	case huma.TypeInteger:
		if n, ok := AsInt(value); ok {
			return n
		}
		if x, ok := number(value); ok {
			res.Add(path, value, msgExpectedInteger)
			return x
		}
	case huma.TypeNumber:
		if x, ok := AsFloat(value); ok {
			return x
		}
		if x, ok := number(value); ok {
			res.Add(path, value, msgExpectedFinite)
			return x
		}
	case huma.TypeObject:
		if obj, ok := value.(map[string]any); ok {
			coerced := make(map[string]any, len(obj))
			for key, item := range obj {
				if prop, found := s.Properties[key]; found && item != nil {
					path.Push(key)
					item = coerce(r, prop, path, item, res)
					path.Pop()
				}
				coerced[key] = item
			}
			return coerced
		}
	case huma.TypeArray:
		if items, ok := value.([]any); ok && s.Items != nil {
			coerced := make([]any, len(items))
			for i, item := range items {
				path.PushIndex(i)
				coerced[i] = coerce(r, s.Items, path, item, res)
				path.Pop()
			}
			return coerced
		}
	}
	return value
}

// AsInt converts a decoded JSON value to an integer. JSON integers, integral
// floats, and base-10 integer strings are accepted; booleans are not.
func AsInt(value any) (int64, bool) {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		x, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return integral(x)
	case float64:
		return integral(v)
	case float32:
		return integral(float64(v))
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// AsFloat converts a decoded JSON value to a finite float64. JSON numbers and
// numeric strings are accepted; booleans, NaN and infinities are not.
func AsFloat(value any) (float64, bool) {
	var x float64
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		x = f
	case float64:
		x = v
	case float32:
		x = float64(v)
	case int:
		x = float64(v)
	case int32:
		x = float64(v)
	case int64:
		x = float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		x = f
	default:
		return 0, false
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}
	return x, true
}

// returns the value of a JSON number, whole or not, finite or not
func number(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		x, err := v.Float64()
		return x, err == nil
	case float64:
		return v, true
	case float32:
		return float64(v), true
	}
	return 0, false
}

func integral(x float64) (int64, bool) {
	if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) ||
		x < math.MinInt64 || x > math.MaxInt64 {
		return 0, false
	}
	return int64(x), true
}

// huma locations look like "chromosomes[0].count"; ours are dotted throughout
var brackets = strings.NewReplacer("[", ".", "]", "")

func dotted(location string) string {
	return brackets.Replace(location)
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
