package services

import (
	"context"

	"github.com/kbase/assembly-metrics/contract"
	"github.com/kbase/assembly-metrics/ena"
	"github.com/kbase/assembly-metrics/records"
)

// this type encodes a JSON object for responding to root queries
type ServiceInfoResponse struct {
	Name          string `json:"name" example:"assembly-metrics" doc:"The name of the service API"`
	Version       string `json:"version" example:"1.0.0" doc:"The version string (major.minor.patch)"`
	Uptime        int    `json:"uptime" example:"345600" doc:"The time the service has been up (seconds)"`
	Documentation string `json:"documentation" example:"/docs" doc:"The OpenAPI documentation endpoint"`
}

type ServiceInfoOutput struct {
	Body ServiceInfoResponse `doc:"information about the service itself"`
}

type AssemblyInput struct {
	Accession string `path:"accession" example:"GCA_964035705" doc:"an INSDC assembly accession"`
}

type RecordOutput struct {
	Body records.Record `doc:"a record ready to be merged into an ingestion pipeline record"`
}

type AssemblyRecordOutput struct {
	Body *ena.AssemblyRecord `doc:"the validated ENA summary record for the assembly"`
}

type SchemaInput struct {
	Fields []string `query:"fields" example:"accession,description,assembly_metrics" doc:"(Optional) the assembly fields to include, in order"`
}

type SchemaOutput struct {
	Body contract.BigQueryField `doc:"the BigQuery schema fragment for the assemblies field"`
}

// MetricsService defines the interface for our assembly metrics service.
type MetricsService interface {
	// Starts the service on the selected port, returning an error that indicates
	// success or failure.
	Start(port int) error
	// Gracefully shuts down the service without interrupting active connections.
	Shutdown(ctx context.Context) error
	// Closes down the service, freeing all resources.
	Close()
}
