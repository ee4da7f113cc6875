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

// Package ena fetches and validates genome assembly summary records from the
// ENA Browser API (https://www.ebi.ac.uk/ena/browser/api/).
package ena

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// the ENA Browser API summary endpoint
	DefaultSummaryURL = "https://www.ebi.ac.uk/ena/browser/api/summary"
	// time allowed for a single summary request
	DefaultTimeout = 30 * time.Second
)

// maximum number of response body bytes included in a TransportError
const maxSnippet = 256

// Client retrieves raw assembly summary records from ENA. Each call to
// FetchAssembly makes exactly one request: there is no retry or caching.
type Client struct {
	// base URL of the summary endpoint (the accession is appended)
	SummaryURL string
	// HTTP client (HSTS-enabled, with a request timeout)
	Client http.Client
	// limits the rate of requests to ENA (nil for no limit)
	Limiter *rate.Limiter
}

// creates a client for the given summary endpoint with the given request
// timeout
func NewClient(summaryURL string, timeout time.Duration) *Client {
	if summaryURL == "" {
		summaryURL = DefaultSummaryURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		SummaryURL: strings.TrimRight(summaryURL, "/"),
		Client:     SecureHttpClient(timeout),
	}
}

// limits the client to the given number of requests per second (0 or less
// removes any limit) and returns the client
func (c *Client) WithRateLimit(requestsPerSecond float64) *Client {
	if requestsPerSecond > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	} else {
		c.Limiter = nil
	}
	return c
}

// FetchAssembly retrieves the summary record for the given accession,
// returning the first element of the response's "summaries" array unmodified
// (numbers are decoded as json.Number). Failures to reach ENA are returned as
// *TransportError; malformed responses are returned as *ShapeError,
// *EmptyResultError, or *AccessionMismatchError.
func (c *Client) FetchAssembly(ctx context.Context, accession string) (map[string]any, error) {
	if strings.TrimSpace(accession) == "" {
		return nil, &InvalidAccessionError{Accession: accession}
	}

	body, err := c.get(ctx, accession)
	if err != nil {
		return nil, err
	}
	return summaryRecord(accession, body)
}

// FetchRecord retrieves and validates the summary record for the given
// accession.
func (c *Client) FetchRecord(ctx context.Context, accession string) (*AssemblyRecord, error) {
	raw, err := c.FetchAssembly(ctx, accession)
	if err != nil {
		return nil, err
	}
	return ParseAssemblyRecord(raw)
}

// performs a GET request for the given accession, returning the response body
func (c *Client) get(ctx context.Context, accession string) ([]byte, error) {
	resource := fmt.Sprintf("%s/%s", c.SummaryURL, url.PathEscape(accession))

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Accession: accession, URL: resource, Err: err}
		}
	}

	requestId := uuid.New()
	slog.Debug(fmt.Sprintf("GET: %s", resource), "request", requestId.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resource, http.NoBody)
	if err != nil {
		return nil, &TransportError{Accession: accession, URL: resource, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &TransportError{Accession: accession, URL: resource, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	slog.Debug("ENA summary response",
		"request", requestId.String(),
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start))
	if err != nil {
		return nil, &TransportError{
			Accession:  accession,
			URL:        resource,
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Accession:  accession,
			URL:        resource,
			StatusCode: resp.StatusCode,
			Snippet:    snippet(body),
			Err:        errors.New(resp.Status),
		}
	}
	return body, nil
}

// extracts the summary record for the given accession from a response body,
// checking the shape of the response envelope
func summaryRecord(accession string, body []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, &ShapeError{
			Accession: accession,
			Message:   fmt.Sprintf("invalid JSON: %s", err),
		}
	}

	envelope, ok := payload.(map[string]any)
	if !ok {
		return nil, &ShapeError{
			Accession: accession,
			Message:   fmt.Sprintf("expected an object, got %s", jsonType(payload)),
		}
	}
	summariesValue, found := envelope["summaries"]
	if !found {
		return nil, &ShapeError{
			Accession: accession,
			Message:   "missing 'summaries'",
		}
	}
	if summariesValue == nil {
		return nil, &EmptyResultError{Accession: accession}
	}
	summaries, ok := summariesValue.([]any)
	if !ok {
		return nil, &ShapeError{
			Accession: accession,
			Message:   fmt.Sprintf("'summaries' should be a list, got %s", jsonType(summariesValue)),
		}
	}
	if len(summaries) == 0 {
		return nil, &EmptyResultError{Accession: accession}
	}

	record, ok := summaries[0].(map[string]any)
	if !ok {
		return nil, &ShapeError{
			Accession: accession,
			Message:   fmt.Sprintf("summary should be an object, got %s", jsonType(summaries[0])),
		}
	}

	// make sure we got the record we asked for
	if returned, found := record["accession"]; found && returned != nil && returned != any(accession) {
		return nil, &AccessionMismatchError{
			Requested: accession,
			Returned:  returned,
		}
	}
	return record, nil
}

// returns the name of the JSON type of a decoded value
func jsonType(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "list"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	}
	return fmt.Sprintf("%T", value)
}

// returns a small, single-line hint from a response body
func snippet(body []byte) string {
	b := body
	if len(b) > maxSnippet {
		b = b[:maxSnippet]
	}
	s := strings.TrimSpace(strings.NewReplacer("\n", " ", "\r", " ").Replace(string(b)))
	if s != "" && len(body) > maxSnippet {
		return s + "..."
	}
	return s
}
