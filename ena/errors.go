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
	"fmt"
)

// This error type is returned when the ENA summary endpoint can't be reached
// or responds with a non-2xx status. It is the only error returned by the
// fetcher that doesn't describe bad data for an accession.
type TransportError struct {
	// the accession requested
	Accession string
	// the URL requested
	URL string
	// HTTP status code (0 if no response was received)
	StatusCode int
	// a short, truncated hint from the response body (if any)
	Snippet string
	// the underlying error (if any)
	Err error
}

func (e TransportError) Error() string {
	if e.StatusCode != 0 {
		if e.Snippet != "" {
			return fmt.Sprintf("ENA request for accession %s failed (%d): %s",
				e.Accession, e.StatusCode, e.Snippet)
		}
		return fmt.Sprintf("ENA request for accession %s failed (%d)",
			e.Accession, e.StatusCode)
	}
	return fmt.Sprintf("Can't reach ENA for accession %s: %s", e.Accession, e.Err)
}

func (e TransportError) Unwrap() error {
	return e.Err
}

// indicates that the requested accession is not a usable identifier
type InvalidAccessionError struct {
	Accession string
}

func (e InvalidAccessionError) Error() string {
	return fmt.Sprintf("Invalid accession: '%s'", e.Accession)
}

func (e InvalidAccessionError) Kind() string {
	return "InvalidAccessionError"
}

// indicates that the ENA summary response isn't shaped the way we expect
type ShapeError struct {
	Accession, Message string
}

func (e ShapeError) Error() string {
	return fmt.Sprintf("Unexpected ENA summary response shape for accession %s: %s",
		e.Accession, e.Message)
}

func (e ShapeError) Kind() string {
	return "ShapeError"
}

// indicates that ENA returned no summaries for the requested accession
type EmptyResultError struct {
	Accession string
}

func (e EmptyResultError) Error() string {
	return fmt.Sprintf("No summaries returned for accession %s", e.Accession)
}

func (e EmptyResultError) Kind() string {
	return "EmptyResultError"
}

// indicates that ENA returned a record for an accession other than the one
// requested
type AccessionMismatchError struct {
	Requested string
	Returned  any
}

func (e AccessionMismatchError) Error() string {
	return fmt.Sprintf("ENA returned accession %v for requested %s", e.Returned, e.Requested)
}

func (e AccessionMismatchError) Kind() string {
	return "AccessionMismatchError"
}

// this error type is emitted if an endpoint redirects an HTTPS request to an
// HTTP endpoint
type DowngradedRedirectError struct {
	Endpoint string
}

func (e DowngradedRedirectError) Error() string {
	return fmt.Sprintf("The endpoint %s is attempting to downgrade an HTTPS request to HTTP",
		e.Endpoint)
}
