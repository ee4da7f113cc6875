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

package metrics

import (
	"strconv"
	"strings"

	"github.com/kbase/assembly-metrics/ena"
)

// TagToKey maps ENA assembly attribute tags to metrics field names. Tags not
// listed here are ignored.
var TagToKey = map[string]string{
	"ungapped-length":               "ungapped_length",
	"n50":                           "scaffold_n50",
	"scaffold-count":                "scaffold_count",
	"count-contig":                  "contig_count",
	"contig-n50":                    "contig_n50",
	"contig-L50":                    "contig_l50",
	"contig-n75":                    "contig_n75",
	"contig-n90":                    "contig_n90",
	"scaf-L50":                      "scaffold_l50",
	"scaf-n75":                      "scaffold_n75",
	"scaf-n90":                      "scaffold_n90",
	"spanned-gaps":                  "spanned_gaps",
	"unspanned-gaps":                "unspanned_gaps",
	"replicon-count":                "replicon_count",
	"count-non-chromosome-replicon": "non_chromosome_replicon_count",
}

// mapped keys whose attribute values are parsed as integers
var intKeys = map[string]bool{
	"ungapped_length":               true,
	"scaffold_n50":                  true,
	"scaffold_count":                true,
	"contig_count":                  true,
	"contig_n50":                    true,
	"contig_l50":                    true,
	"contig_n75":                    true,
	"contig_n90":                    true,
	"scaffold_l50":                  true,
	"scaffold_n75":                  true,
	"scaffold_n90":                  true,
	"spanned_gaps":                  true,
	"unspanned_gaps":                true,
	"replicon_count":                true,
	"non_chromosome_replicon_count": true,
}

// Extract normalizes a validated assembly record into AssemblyMetrics. The
// assembly level and coverage come from the record's own fields; everything
// else comes from its attributes. If a tag appears more than once, its last
// value wins. An attribute value that isn't a base-10 integer (surrounding
// whitespace aside) produces a CoercionError, and a metric that violates its
// constraints produces a *validation.Error.
func Extract(record *ena.AssemblyRecord) (*AssemblyMetrics, error) {
	data := make(map[string]any)
	if record.AssemblyLevel != nil {
		data["assembly_level"] = *record.AssemblyLevel
	}
	if record.AssemblyCoverage != nil {
		data["coverage"] = *record.AssemblyCoverage
	}

	for _, attribute := range record.Attributes {
		key, found := TagToKey[attribute.Tag]
		if !found {
			continue
		}
		if !intKeys[key] {
			data[key] = attribute.Value
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(attribute.Value), 10, 64)
		if err != nil {
			return nil, &CoercionError{
				Tag:   attribute.Tag,
				Key:   key,
				Value: attribute.Value,
				Err:   err,
			}
		}
		data[key] = n
	}

	return FromMap(data)
}
