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

// Package contract describes the destination schema that assembly records and
// their metrics are merged into. The contract is a Frictionless data package
// with one tabular resource per record type, which can be rendered as a
// BigQuery schema fragment.
package contract

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/frictionlessdata/datapackage-go/datapackage"
	"github.com/frictionlessdata/datapackage-go/validator"
	"github.com/frictionlessdata/tableschema-go/schema"

	"github.com/kbase/assembly-metrics/frictionless"
	"github.com/kbase/assembly-metrics/metrics"
)

//go:embed datapackage.json
var descriptor string

const (
	// resource holding assembly records (one per assembly per sample)
	AssembliesResource = "assemblies"
	// resource holding the metrics nested in each assembly record
	MetricsResource = "assembly_metrics"
)

// BigQuery column types for Frictionless field types
var bigQueryTypes = map[schema.FieldType]string{
	schema.StringType:  "STRING",
	schema.IntegerType: "INTEGER",
	schema.NumberType:  "FLOAT",
	schema.ObjectType:  "RECORD",
}

// metrics field types for Frictionless field types
var metricsTypes = map[schema.FieldType]metrics.FieldType{
	schema.StringType:  metrics.StringField,
	schema.IntegerType: metrics.IntegerField,
	schema.NumberType:  metrics.FloatField,
}

// A BigQuery table field, as it appears in a JSON table schema
type BigQueryField struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Mode   string          `json:"mode"`
	Fields []BigQueryField `json:"fields,omitempty"`
}

// A Contract is a validated destination data package.
type Contract struct {
	// the validated data package
	Package *datapackage.Package
	// the package's descriptor
	Descriptor frictionless.DataPackage
}

// Load parses and validates the destination contract, checking that it agrees
// with the fields of metrics.AssemblyMetrics.
func Load() (*Contract, error) {
	return parse(descriptor)
}

// returns the contract's descriptor as JSON
func Descriptor() string {
	return descriptor
}

func parse(data string) (*Contract, error) {
	pkg, err := datapackage.FromString(data, "datapackage.json", validator.InMemoryLoader())
	if err != nil {
		return nil, err
	}
	c := Contract{Package: pkg}
	if err := json.Unmarshal([]byte(data), &c.Descriptor); err != nil {
		return nil, err
	}
	for _, name := range []string{AssembliesResource, MetricsResource} {
		if pkg.GetResource(name) == nil {
			return nil, &MissingResourceError{Resource: name}
		}
	}
	if err := c.checkMetrics(metrics.Fields()); err != nil {
		return nil, err
	}
	return &c, nil
}

// returns the table schema for the named resource
func (c Contract) Schema(resource string) (schema.Schema, error) {
	r := c.Package.GetResource(resource)
	if r == nil {
		return schema.Schema{}, &MissingResourceError{Resource: resource}
	}
	return r.GetSchema()
}

// returns the fields of the assembly metrics table
func (c Contract) MetricsFields() ([]schema.Field, error) {
	s, err := c.Schema(MetricsResource)
	if err != nil {
		return nil, err
	}
	return s.Fields, nil
}

// verifies that the given metrics fields are exactly those of the metrics
// table, with matching types
func (c Contract) checkMetrics(fields map[string]metrics.FieldType) error {
	tableFields, err := c.MetricsFields()
	if err != nil {
		return err
	}
	for _, field := range tableFields {
		fieldType, found := fields[field.Name]
		if !found {
			return &IncompatibleMetricsError{
				Field:   field.Name,
				Message: "not produced by the metrics extraction",
			}
		}
		expected, ok := metricsTypes[field.Type]
		if !ok || expected != fieldType {
			return &IncompatibleMetricsError{
				Field:   field.Name,
				Message: fmt.Sprintf("extracted as %s but declared as %s", fieldType, field.Type),
			}
		}
	}
	if len(fields) != len(tableFields) {
		for name := range fields {
			if !slices.ContainsFunc(tableFields, func(f schema.Field) bool { return f.Name == name }) {
				return &IncompatibleMetricsError{
					Field:   name,
					Message: "not declared by the contract",
				}
			}
		}
	}
	return nil
}

// AssembliesField renders the assemblies resource as a REPEATED RECORD
// BigQuery field, with each object field rendered as a nested NULLABLE RECORD
// from the resource it refers to. If field names are given, only those fields
// are included, in the given order.
func (c Contract) AssembliesField(fields ...string) (BigQueryField, error) {
	return c.record(AssembliesResource, AssembliesResource, "REPEATED", fields)
}

// renders the named resource as a BigQuery record
func (c Contract) record(name, resource, mode string, include []string) (BigQueryField, error) {
	s, err := c.Schema(resource)
	if err != nil {
		return BigQueryField{}, err
	}
	res, _ := c.Descriptor.Resource(resource)

	tableFields := s.Fields
	if len(include) > 0 {
		tableFields = make([]schema.Field, 0, len(include))
		for _, fieldName := range include {
			i := slices.IndexFunc(s.Fields, func(f schema.Field) bool { return f.Name == fieldName })
			if i == -1 {
				return BigQueryField{}, &UnknownFieldError{Resource: resource, Field: fieldName}
			}
			tableFields = append(tableFields, s.Fields[i])
		}
	}

	record := BigQueryField{
		Name:   name,
		Type:   bigQueryTypes[schema.ObjectType],
		Mode:   mode,
		Fields: make([]BigQueryField, 0, len(tableFields)),
	}
	for _, field := range tableFields {
		var bqField BigQueryField
		if field.Type == schema.ObjectType {
			// nested records are described by another resource
			nested := field.Name
			if i := slices.IndexFunc(res.Schema.Fields, func(f frictionless.TableField) bool {
				return f.Name == field.Name
			}); i != -1 && res.Schema.Fields[i].Resource != "" {
				nested = res.Schema.Fields[i].Resource
			}
			bqField, err = c.record(field.Name, nested, "NULLABLE", nil)
			if err != nil {
				return BigQueryField{}, err
			}
		} else {
			bqType, ok := bigQueryTypes[field.Type]
			if !ok {
				return BigQueryField{}, &UnsupportedTypeError{
					Resource: resource,
					Field:    field.Name,
					Type:     string(field.Type),
				}
			}
			bqField = BigQueryField{Name: field.Name, Type: bqType, Mode: "NULLABLE"}
		}
		record.Fields = append(record.Fields, bqField)
	}
	return record, nil
}
