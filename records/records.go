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

// Package records merges ENA assembly metrics into ingestion records without
// ever aborting a batch over bad upstream data: failures to reach ENA are
// returned as errors, and everything else becomes a "fail-soft" record that
// carries a description of the problem.
package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kbase/assembly-metrics/ena"
	"github.com/kbase/assembly-metrics/metrics"
)

// Record is the merge-ready result for a single accession. On success,
// AssemblyMetrics is set and Error is empty. On a data failure,
// AssemblyMetrics is nil and Error holds "<Kind>: <message>".
type Record struct {
	Accession       string                   `json:"accession"`
	AssemblyMetrics *metrics.AssemblyMetrics `json:"assembly_metrics"`
	Error           string                   `json:"assembly_metrics_error,omitempty"`

	// the structured parts of Error
	Kind    string `json:"-"`
	Message string `json:"-"`
}

// returns true if the record was built from a failure
func (r Record) Failed() bool {
	return r.Error != ""
}

// A Fetcher retrieves the raw summary record for an accession.
type Fetcher interface {
	FetchAssembly(ctx context.Context, accession string) (map[string]any, error)
}

// A DataError describes bad upstream data for an accession, as opposed to a
// failure to reach ENA. Its kind names the failure in fail-soft records.
type DataError interface {
	error
	Kind() string
}

// A Builder builds records from summaries retrieved by its Fetcher.
type Builder struct {
	Fetcher Fetcher
}

// Metrics fetches, validates, and normalizes the metrics for the given
// accession, returning any error encountered. Data errors implement
// Kind() string; transport failures are *ena.TransportError.
func (b Builder) Metrics(ctx context.Context, accession string) (*metrics.AssemblyMetrics, error) {
	_, m, err := b.metrics(ctx, accession)
	return m, err
}

// Build returns a merge-ready record for the given accession. Bad data for the
// accession produces a fail-soft record and a nil error; a failure to reach
// ENA (or any other unexpected error) is returned with an empty record.
func (b Builder) Build(ctx context.Context, accession string) (Record, error) {
	validated, m, err := b.metrics(ctx, accession)
	if err != nil {
		var transportErr *ena.TransportError
		if errors.As(err, &transportErr) {
			return Record{}, err
		}
		var dataErr DataError
		if errors.As(err, &dataErr) {
			slog.Warn(fmt.Sprintf("Can't build assembly metrics for %s", accession),
				"kind", dataErr.Kind(),
				"error", dataErr.Error())
			return failSoft(accession, dataErr), nil
		}
		return Record{}, err
	}
	return Record{
		Accession:       validated,
		AssemblyMetrics: m,
	}, nil
}

// Record fetches and validates the summary record for the given accession.
func (b Builder) Record(ctx context.Context, accession string) (*ena.AssemblyRecord, error) {
	raw, err := b.Fetcher.FetchAssembly(ctx, accession)
	if err != nil {
		return nil, err
	}
	return ena.ParseAssemblyRecord(raw)
}

// fetches, validates, and normalizes, returning the validated accession along
// with the metrics
func (b Builder) metrics(ctx context.Context, accession string) (string, *metrics.AssemblyMetrics, error) {
	record, err := b.Record(ctx, accession)
	if err != nil {
		return "", nil, err
	}
	m, err := metrics.Extract(record)
	if err != nil {
		return "", nil, err
	}
	return record.Accession, m, nil
}

func failSoft(accession string, err DataError) Record {
	return Record{
		Accession: accession,
		Error:     fmt.Sprintf("%s: %s", err.Kind(), err.Error()),
		Kind:      err.Kind(),
		Message:   err.Error(),
	}
}

// Build builds a record for the given accession using a client for the public
// ENA summary endpoint.
func Build(ctx context.Context, accession string) (Record, error) {
	return Builder{Fetcher: ena.NewClient(ena.DefaultSummaryURL, ena.DefaultTimeout)}.Build(ctx, accession)
}
