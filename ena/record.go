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

package ena

import (
	"maps"
	"strings"

	"github.com/kbase/assembly-metrics/validation"
)

// the only record type we accept from the summary endpoint; keep in sync with
// the enum tag on AssemblyRecord.DataType
const AssemblyDataType = "ASSEMBLY"

// A single ENA assembly attribute. ENA encodes most assembly statistics as a
// list of tag/value pairs of strings, e.g. {"tag": "scaffold-count", "value": "3096"}.
type Attribute struct {
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// A chromosome or other replicon (mitochondrion, plasmid) in an assembly.
type Chromosome struct {
	// INSDC accessions associated with this replicon
	Accession []string `json:"accession" nullable:"false"`
	// human-readable name (e.g. "1", "MT")
	Name string `json:"name"`
	// replicon type (e.g. "Chromosome", "Mitochondrion")
	Type string `json:"type"`
	// number of sequences represented (usually 1)
	Count int64 `json:"count" minimum:"0"`
}

// A downloadable resource associated with an assembly (WGS flatfile, FASTA, ...)
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// AssemblyRecord is a validated ENA genome assembly summary record. It is for
// internal use by the metrics extraction; downstream pipelines consume
// metrics.AssemblyMetrics instead. Its tags define the closed schema raw
// records are checked against.
type AssemblyRecord struct {
	Accession         string  `json:"accession"`
	Title             string  `json:"title"`
	Description       *string `json:"description" required:"false"`
	Name              string  `json:"name"`
	Version           int64   `json:"version"`
	DataType          string  `json:"dataType" enum:"ASSEMBLY"`
	Status            int64   `json:"status"`
	StatusDescription string  `json:"statusDescription"`

	Chromosomes []Chromosome `json:"chromosomes" required:"false"`

	WgsSet           *string  `json:"wgsSet" required:"false"`
	AssemblyType     *string  `json:"assemblyType" required:"false"`
	AssemblyLevel    *string  `json:"assemblyLevel" required:"false"` // lowercase, trimmed
	Platform         *string  `json:"platform" required:"false"`
	Program          *string  `json:"program" required:"false"`
	AssemblyCoverage *float64 `json:"assemblyCoverage" required:"false"`

	Attributes []Attribute `json:"attributes" required:"false"`
	Links      []Link      `json:"links" required:"false"`
}

var assemblyRecordSchema = validation.NewSchema("EnaAssemblyResponse", AssemblyRecord{})

// ParseAssemblyRecord validates a raw summary record (as returned by
// Client.FetchAssembly) and converts it to an AssemblyRecord. The schema is
// closed: unrecognized fields at any level are errors, so drift in the ENA
// API surfaces here. All offending fields are reported in a single
// *validation.Error. The raw record is not modified.
func ParseAssemblyRecord(raw map[string]any) (*AssemblyRecord, error) {
	// canonicalize the assembly level before anything else looks at it
	if level, ok := raw["assemblyLevel"].(string); ok {
		raw = maps.Clone(raw)
		raw["assemblyLevel"] = CanonicalAssemblyLevel(level)
	}

	var record AssemblyRecord
	if err := assemblyRecordSchema.Decode(raw, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ENA may vary the casing of assembly levels or pad them with whitespace; we
// always work with the trimmed, lowercase form (e.g. "chromosome").
func CanonicalAssemblyLevel(level string) string {
	return strings.ToLower(strings.TrimSpace(level))
}
