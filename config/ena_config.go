package config

import (
	"fmt"
	"net/url"
	"time"
)

const (
	defaultSummaryURL = "https://www.ebi.ac.uk/ena/browser/api/summary"
	defaultTimeout    = 30
)

// ENA Browser API parameters
type enaConfig struct {
	// base URL of the assembly summary endpoint
	SummaryURL string `json:"summaryUrl" yaml:"summary_url"`
	// time allowed for each summary request (seconds)
	Timeout int `json:"timeout" yaml:"timeout"`
	// maximum rate of summary requests (0 for no limit)
	RequestsPerSecond float64 `json:"requestsPerSecond" yaml:"requests_per_second"`
}

// returns the summary request timeout as a duration
func (c enaConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func validateENAParameters(params enaConfig) error {
	summaryURL, err := url.Parse(params.SummaryURL)
	if err != nil || (summaryURL.Scheme != "http" && summaryURL.Scheme != "https") ||
		summaryURL.Host == "" {
		return fmt.Errorf("Invalid ENA summary_url: '%s' (must be an http(s) URL)",
			params.SummaryURL)
	}
	if params.Timeout <= 0 {
		return fmt.Errorf("Invalid ENA timeout: %d (must be positive)", params.Timeout)
	}
	if params.RequestsPerSecond < 0 {
		return fmt.Errorf("Invalid ENA requests_per_second: %g (must be non-negative)",
			params.RequestsPerSecond)
	}
	return nil
}
