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

// Package metrics normalizes validated ENA assembly records into flat assembly
// quality metrics, the record merged into downstream ingestion pipelines.
package metrics

import (
	"github.com/kbase/assembly-metrics/validation"
)

// AssemblyMetrics holds normalized assembly quality metrics derived from an
// ENA assembly record. This is the downstream contract: every field is
// optional (absent fields serialize as null) and its names and types must
// match the destination table schema (see the contract package).
//
// Metrics are grouped into three tiers:
//
//	Tier 1: core usability indicators
//	Tier 2: assembly quality refinement
//	Tier 3: detailed contiguity diagnostics
type AssemblyMetrics struct {
	// Tier 1
	AssemblyLevel  *string `json:"assembly_level" required:"false" nullable:"true" doc:"Assembly level (lowercase, e.g. chromosome)"`
	UngappedLength *int64  `json:"ungapped_length" required:"false" nullable:"true" minimum:"0"`
	ScaffoldN50    *int64  `json:"scaffold_n50" required:"false" nullable:"true" minimum:"0"`
	ScaffoldCount  *int64  `json:"scaffold_count" required:"false" nullable:"true" minimum:"0"`

	// Tier 2
	ContigN50     *int64   `json:"contig_n50" required:"false" nullable:"true" minimum:"0"`
	ContigCount   *int64   `json:"contig_count" required:"false" nullable:"true" minimum:"0"`
	Coverage      *float64 `json:"coverage" required:"false" nullable:"true" exclusiveMinimum:"0"`
	SpannedGaps   *int64   `json:"spanned_gaps" required:"false" nullable:"true" minimum:"0"`
	UnspannedGaps *int64   `json:"unspanned_gaps" required:"false" nullable:"true" minimum:"0"`

	// Tier 3
	ContigL50                  *int64 `json:"contig_l50" required:"false" nullable:"true" minimum:"0"`
	ScaffoldL50                *int64 `json:"scaffold_l50" required:"false" nullable:"true" minimum:"0"`
	ContigN75                  *int64 `json:"contig_n75" required:"false" nullable:"true" minimum:"0"`
	ContigN90                  *int64 `json:"contig_n90" required:"false" nullable:"true" minimum:"0"`
	ScaffoldN75                *int64 `json:"scaffold_n75" required:"false" nullable:"true" minimum:"0"`
	ScaffoldN90                *int64 `json:"scaffold_n90" required:"false" nullable:"true" minimum:"0"`
	RepliconCount              *int64 `json:"replicon_count" required:"false" nullable:"true" minimum:"0"`
	NonChromosomeRepliconCount *int64 `json:"non_chromosome_replicon_count" required:"false" nullable:"true" minimum:"0"`
}

// the kinds of values held by metrics fields
type FieldType int

const (
	StringField FieldType = iota
	IntegerField
	FloatField
)

func (t FieldType) String() string {
	switch t {
	case StringField:
		return "string"
	case IntegerField:
		return "integer"
	case FloatField:
		return "float"
	}
	return "unknown"
}

var metricsSchema = validation.NewSchema("AssemblyMetrics", AssemblyMetrics{})

// every metrics field and its type, as declared on AssemblyMetrics
var fieldTypes = map[string]FieldType{
	"assembly_level":                StringField,
	"ungapped_length":               IntegerField,
	"scaffold_n50":                  IntegerField,
	"scaffold_count":                IntegerField,
	"contig_n50":                    IntegerField,
	"contig_count":                  IntegerField,
	"coverage":                      FloatField,
	"spanned_gaps":                  IntegerField,
	"unspanned_gaps":                IntegerField,
	"contig_l50":                    IntegerField,
	"scaffold_l50":                  IntegerField,
	"contig_n75":                    IntegerField,
	"contig_n90":                    IntegerField,
	"scaffold_n75":                  IntegerField,
	"scaffold_n90":                  IntegerField,
	"replicon_count":                IntegerField,
	"non_chromosome_replicon_count": IntegerField,
}

// returns the names of all metrics fields, mapped to their types
func Fields() map[string]FieldType {
	fields := make(map[string]FieldType, len(fieldTypes))
	for name, fieldType := range fieldTypes {
		fields[name] = fieldType
	}
	return fields
}

// FromMap validates a mapping of metrics field names to values and converts it
// to AssemblyMetrics. Unknown fields, values of the wrong type, negative
// counts/lengths, and coverage that isn't a finite positive number are all
// reported in a single *validation.Error.
func FromMap(data map[string]any) (*AssemblyMetrics, error) {
	var m AssemblyMetrics
	if err := metricsSchema.Decode(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// returns the metrics as a mapping of field names to values, omitting absent
// fields
func (m AssemblyMetrics) Map() map[string]any {
	data := make(map[string]any)
	if m.AssemblyLevel != nil {
		data["assembly_level"] = *m.AssemblyLevel
	}
	if m.Coverage != nil {
		data["coverage"] = *m.Coverage
	}
	for key, value := range m.integers() {
		if value != nil {
			data[key] = *value
		}
	}
	return data
}

// integer fields by name
func (m AssemblyMetrics) integers() map[string]*int64 {
	return map[string]*int64{
		"ungapped_length":               m.UngappedLength,
		"scaffold_n50":                  m.ScaffoldN50,
		"scaffold_count":                m.ScaffoldCount,
		"contig_n50":                    m.ContigN50,
		"contig_count":                  m.ContigCount,
		"spanned_gaps":                  m.SpannedGaps,
		"unspanned_gaps":                m.UnspannedGaps,
		"contig_l50":                    m.ContigL50,
		"scaffold_l50":                  m.ScaffoldL50,
		"contig_n75":                    m.ContigN75,
		"contig_n90":                    m.ContigN90,
		"scaffold_n75":                  m.ScaffoldN75,
		"scaffold_n90":                  m.ScaffoldN90,
		"replicon_count":                m.RepliconCount,
		"non_chromosome_replicon_count": m.NonChromosomeRepliconCount,
	}
}
