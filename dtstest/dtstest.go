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

// This package contains testing utilities for the assembly metrics service.
package dtstest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
)

// Enables DEBUG log messages for the structured log (slog).
func EnableDebugLogging() {
	logLevel := new(slog.LevelVar)
	logLevel.Set(slog.LevelDebug)
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(h))
}

//-----------------------------
// ENA summary endpoint fixture
//-----------------------------

// the path at which the fixture serves summaries (mirroring ENA)
const SummaryPath = "/ena/browser/api/summary"

type cannedResponse struct {
	Status int
	Body   string
}

// ENAServer is a test fixture standing in for the ENA Browser API summary
// endpoint. Accessions with no registered response get an empty summary list.
type ENAServer struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]cannedResponse
	requests  []string
}

// starts a new ENA summary endpoint fixture. Call Close when finished.
func NewENAServer() *ENAServer {
	s := &ENAServer{
		responses: make(map[string]cannedResponse),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// returns the base URL of the fixture's summary endpoint
func (s *ENAServer) SummaryURL() string {
	return s.URL + SummaryPath
}

// registers the given summary record as the only summary returned for the
// given accession
func (s *ENAServer) AddSummary(accession string, summary map[string]any) {
	body, err := json.Marshal(map[string]any{
		"summaries": []any{summary},
		"total":     "1",
	})
	if err != nil {
		panic(err)
	}
	s.AddResponse(accession, http.StatusOK, string(body))
}

// registers a verbatim response (status code and body) for the given accession
func (s *ENAServer) AddResponse(accession string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[accession] = cannedResponse{Status: status, Body: body}
}

// returns the accessions requested so far, in order
func (s *ENAServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *ENAServer) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || !strings.HasPrefix(r.URL.Path, SummaryPath+"/") {
		http.NotFound(w, r)
		return
	}
	accession := strings.TrimPrefix(r.URL.Path, SummaryPath+"/")

	s.mu.Lock()
	s.requests = append(s.requests, accession)
	response, found := s.responses[accession]
	s.mu.Unlock()

	if !found {
		response = cannedResponse{
			Status: http.StatusOK,
			Body:   `{"summaries": [], "total": "0"}`,
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(response.Status)
	fmt.Fprint(w, response.Body)
}

// returns a complete, valid ENA assembly summary record for the given
// accession, modeled on a real chromosome-level coral assembly. Each call
// returns a fresh copy that may be modified.
func AssemblySummary(accession string) map[string]any {
	return map[string]any{
		"accession":         accession,
		"version":           1,
		"name":              "jaPorRusc1.1",
		"title":             "jaPorRusc1.1, Porites rus, chromosome-level assembly",
		"description":       "Chromosome-level genome assembly of the coral Porites rus",
		"dataType":          "ASSEMBLY",
		"status":            4,
		"statusDescription": "public",
		"chromosomes": []any{
			map[string]any{
				"accession": []any{"OZ035805"},
				"name":      "1",
				"type":      "Chromosome",
				"count":     1,
			},
			map[string]any{
				"accession": []any{"OZ035819"},
				"name":      "MT",
				"type":      "Mitochondrion",
				"count":     1,
			},
		},
		"wgsSet":           "CAXIPV01",
		"assemblyType":     "clone or isolate",
		"assemblyLevel":    "Chromosome",
		"platform":         "PacBio Sequel IIe",
		"program":          "Hifiasm",
		"assemblyCoverage": 28.0,
		"attributes": []any{
			map[string]any{"tag": "ENA-LAST-UPDATED", "value": "2024-06-01"},
			map[string]any{"tag": "ungapped-length", "value": "553271184"},
			map[string]any{"tag": "n50", "value": "38761522"},
			map[string]any{"tag": "scaffold-count", "value": "36"},
			map[string]any{"tag": "count-contig", "value": "103"},
			map[string]any{"tag": "contig-n50", "value": "12403187"},
			map[string]any{"tag": "spanned-gaps", "value": "67"},
			map[string]any{"tag": "unspanned-gaps", "value": "0"},
			map[string]any{"tag": "replicon-count", "value": "15"},
		},
		"links": []any{
			map[string]any{
				"label": "WGS Set",
				"url":   "https://www.ebi.ac.uk/ena/browser/api/embl/CAXIPV01",
			},
		},
	}
}
