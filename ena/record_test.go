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
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbase/assembly-metrics/dtstest"
	"github.com/kbase/assembly-metrics/validation"
)

// returns the validation error produced by parsing the given raw record
func parseError(t *testing.T, raw map[string]any) *validation.Error {
	t.Helper()
	record, err := ParseAssemblyRecord(raw)
	assert.Nil(t, record)
	var verr *validation.Error
	require.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)
	return verr
}

func TestParseAssemblyRecord(t *testing.T) {
	assert := assert.New(t)
	record, err := ParseAssemblyRecord(dtstest.AssemblySummary(testAccession))
	require.Nil(t, err)

	assert.Equal(testAccession, record.Accession)
	assert.Equal(int64(1), record.Version)
	assert.Equal("jaPorRusc1.1", record.Name)
	assert.Equal(AssemblyDataType, record.DataType)
	assert.Equal(int64(4), record.Status)
	assert.Equal("public", record.StatusDescription)
	assert.Equal("Chromosome-level genome assembly of the coral Porites rus", *record.Description)
	assert.Equal("CAXIPV01", *record.WgsSet)
	assert.Equal(28.0, *record.AssemblyCoverage)
	assert.Equal([]Chromosome{
		{Accession: []string{"OZ035805"}, Name: "1", Type: "Chromosome", Count: 1},
		{Accession: []string{"OZ035819"}, Name: "MT", Type: "Mitochondrion", Count: 1},
	}, record.Chromosomes)
	assert.Equal(Attribute{Tag: "n50", Value: "38761522"}, record.Attributes[2])
	assert.Equal([]Link{{Label: "WGS Set", URL: "https://www.ebi.ac.uk/ena/browser/api/embl/CAXIPV01"}},
		record.Links)
}

func TestParseAssemblyRecordFromJSON(t *testing.T) {
	// numbers arrive as json.Number from the fetcher
	data := `{
		"accession": "GCA_1", "title": "t", "name": "n", "version": 2,
		"dataType": "ASSEMBLY", "status": 4, "statusDescription": "public",
		"assemblyCoverage": 42.5
	}`
	raw := decode(t, data)
	record, err := ParseAssemblyRecord(raw)
	require.Nil(t, err)
	assert.Equal(t, int64(2), record.Version)
	assert.Equal(t, 42.5, *record.AssemblyCoverage)
	assert.Nil(t, record.AssemblyLevel)
	assert.Nil(t, record.Description)
	assert.Empty(t, record.Chromosomes)
	assert.Empty(t, record.Attributes)
	assert.Empty(t, record.Links)
}

func TestCanonicalAssemblyLevel(t *testing.T) {
	for _, level := range []string{"Chromosome ", "CHROMOSOME", "chromosome", "\tChromosome\n"} {
		raw := dtstest.AssemblySummary(testAccession)
		raw["assemblyLevel"] = level
		record, err := ParseAssemblyRecord(raw)
		require.Nil(t, err)
		assert.Equal(t, "chromosome", *record.AssemblyLevel, "%q", level)
	}

	// canonicalization is idempotent
	once := CanonicalAssemblyLevel(" Scaffold ")
	assert.Equal(t, once, CanonicalAssemblyLevel(once))

	// non-strings are still rejected
	raw := dtstest.AssemblySummary(testAccession)
	raw["assemblyLevel"] = 3
	verr := parseError(t, raw)
	issue, found := verr.Field("assemblyLevel")
	assert.True(t, found)
	assert.Equal(t, "expected string", issue.Message)
}

func TestParseRejectsUnknownTopLevelField(t *testing.T) {
	raw := dtstest.AssemblySummary(testAccession)
	raw["newFangledField"] = "surprise"
	verr := parseError(t, raw)
	assert.Equal(t, []validation.Issue{
		{Field: "newFangledField", Message: "unexpected property"},
	}, verr.Issues)
	assert.Equal(t, "ValidationError", verr.Kind())
}

func TestParseRejectsUnknownNestedFields(t *testing.T) {
	raw := dtstest.AssemblySummary(testAccession)
	raw["chromosomes"].([]any)[1].(map[string]any)["length"] = 16000
	raw["attributes"].([]any)[0].(map[string]any)["unit"] = "bp"
	raw["links"].([]any)[0].(map[string]any)["md5"] = "abc"
	verr := parseError(t, raw)
	assert.Equal(t, []validation.Issue{
		{Field: "attributes.0.unit", Message: "unexpected property"},
		{Field: "chromosomes.1.length", Message: "unexpected property"},
		{Field: "links.0.md5", Message: "unexpected property"},
	}, verr.Issues)
}

func TestParseRejectsWrongDataType(t *testing.T) {
	raw := dtstest.AssemblySummary(testAccession)
	raw["dataType"] = "SEQUENCE"
	verr := parseError(t, raw)
	assert.Equal(t, []validation.Issue{
		{Field: "dataType", Message: `expected value to be one of "ASSEMBLY"`},
	}, verr.Issues)
}

func TestParseReportsEveryOffendingField(t *testing.T) {
	raw := dtstest.AssemblySummary(testAccession)
	delete(raw, "title")
	raw["version"] = "one"
	raw["status"] = true
	raw["assemblyCoverage"] = "lots"
	raw["chromosomes"].([]any)[0].(map[string]any)["count"] = -1
	delete(raw["chromosomes"].([]any)[1].(map[string]any), "accession")
	raw["attributes"] = append(raw["attributes"].([]any), "n50=1")
	raw["links"] = "none"
	verr := parseError(t, raw)
	assert.Equal(t, []validation.Issue{
		{Field: "assemblyCoverage", Message: "expected number"},
		{Field: "attributes.9", Message: "expected object"},
		{Field: "chromosomes.0.count", Message: "expected number >= 0"},
		{Field: "chromosomes.1.accession", Message: "expected required property accession to be present"},
		{Field: "links", Message: "expected array"},
		{Field: "status", Message: "expected number"},
		{Field: "title", Message: "expected required property title to be present"},
		{Field: "version", Message: "expected number"},
	}, verr.Issues)
}

func TestParseRejectsNonFiniteCoverage(t *testing.T) {
	for _, coverage := range []string{"NaN", "Infinity", "inf", "-Inf"} {
		raw := dtstest.AssemblySummary(testAccession)
		raw["assemblyCoverage"] = coverage
		verr := parseError(t, raw)
		assert.Equal(t, []validation.Issue{
			{Field: "assemblyCoverage", Message: "expected number"},
		}, verr.Issues, coverage)
	}
	raw := dtstest.AssemblySummary(testAccession)
	raw["assemblyCoverage"] = math.NaN()
	verr := parseError(t, raw)
	assert.Equal(t, []validation.Issue{
		{Field: "assemblyCoverage", Message: "expected finite number"},
	}, verr.Issues)
}

func TestParseAcceptsNullOptionalFields(t *testing.T) {
	raw := dtstest.AssemblySummary(testAccession)
	raw["description"] = nil
	raw["assemblyCoverage"] = nil
	raw["links"] = nil
	record, err := ParseAssemblyRecord(raw)
	require.Nil(t, err)
	assert.Nil(t, record.Description)
	assert.Nil(t, record.AssemblyCoverage)
	assert.Empty(t, record.Links)
}

func TestParseLeavesRawRecordAlone(t *testing.T) {
	raw := dtstest.AssemblySummary(testAccession)
	raw["assemblyLevel"] = " Chromosome"
	_, err := ParseAssemblyRecord(raw)
	require.Nil(t, err)
	assert.Equal(t, " Chromosome", raw["assemblyLevel"])
}

func TestParseChromosomeAccessionList(t *testing.T) {
	raw := dtstest.AssemblySummary(testAccession)
	raw["chromosomes"].([]any)[0].(map[string]any)["accession"] = "OZ035805"
	verr := parseError(t, raw)
	issue, found := verr.Field("chromosomes.0.accession")
	assert.True(t, found)
	assert.Equal(t, "expected array", issue.Message)
}

// decodes JSON the way the fetcher does
func decode(t *testing.T, data string) map[string]any {
	t.Helper()
	var raw map[string]any
	decoder := json.NewDecoder(strings.NewReader(data))
	decoder.UseNumber()
	require.Nil(t, decoder.Decode(&raw))
	return raw
}
