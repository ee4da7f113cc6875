package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humamux"
	"github.com/gorilla/mux"
	"golang.org/x/net/netutil"

	"github.com/kbase/assembly-metrics/config"
	"github.com/kbase/assembly-metrics/contract"
	"github.com/kbase/assembly-metrics/ena"
	"github.com/kbase/assembly-metrics/records"
	"github.com/kbase/assembly-metrics/validation"
)

// Version numbers
var majorVersion = 0
var minorVersion = 1
var patchVersion = 0

// Version string
var version = fmt.Sprintf("%d.%d.%d", majorVersion, minorVersion, patchVersion)

// This type implements the MetricsService interface, serving normalized
// assembly metrics retrieved from ENA.
type metricsService struct {
	// name of the service
	Name string
	// service version identifier
	Version string
	// time which the service was started
	StartTime time.Time
	// port on which the service currently runs
	Port int
	// router for REST endpoints
	Router *mux.Router
	// API wrapper
	API huma.API
	// HTTP server.
	Server *http.Server
	// builds records for requested accessions
	Builder records.Builder
	// destination schema
	Contract *contract.Contract
}

// handler method for root
func (service *metricsService) getRoot(ctx context.Context,
	input *struct{}) (*ServiceInfoOutput, error) {

	slog.Info("Querying root endpoint...")
	return &ServiceInfoOutput{
		Body: ServiceInfoResponse{
			Name:          service.Name,
			Version:       service.Version,
			Uptime:        int(service.uptime()),
			Documentation: "/docs",
		},
	}, nil
}

// handler method for building a merge-ready metrics record for an assembly
func (service *metricsService) getMetrics(ctx context.Context,
	input *AssemblyInput) (*RecordOutput, error) {

	slog.Info(fmt.Sprintf("Building assembly metrics record for %s...", input.Accession))
	record, err := service.Builder.Build(ctx, input.Accession)
	if err != nil {
		return nil, upstreamError(err)
	}
	return &RecordOutput{
		Body: record,
	}, nil
}

// handler method for retrieving the validated ENA record for an assembly
func (service *metricsService) getAssembly(ctx context.Context,
	input *AssemblyInput) (*AssemblyRecordOutput, error) {

	slog.Info(fmt.Sprintf("Fetching assembly record for %s...", input.Accession))
	record, err := service.Builder.Record(ctx, input.Accession)
	if err != nil {
		var dataErr records.DataError
		if errors.As(err, &dataErr) {
			return nil, huma.Error422UnprocessableEntity(
				fmt.Sprintf("%s: %s", dataErr.Kind(), dataErr.Error()), details(err)...)
		}
		return nil, upstreamError(err)
	}
	return &AssemblyRecordOutput{
		Body: record,
	}, nil
}

// handler method for retrieving the destination schema fragment
func (service *metricsService) getSchema(ctx context.Context,
	input *SchemaInput) (*SchemaOutput, error) {

	field, err := service.Contract.AssembliesField(input.Fields...)
	if err != nil {
		var unknown *contract.UnknownFieldError
		if errors.As(err, &unknown) {
			return nil, huma.Error400BadRequest(err.Error())
		}
		return nil, err
	}
	return &SchemaOutput{
		Body: field,
	}, nil
}

// converts a failure to retrieve data from ENA to an HTTP error
func upstreamError(err error) error {
	var transportErr *ena.TransportError
	if errors.As(err, &transportErr) {
		return huma.Error502BadGateway(err.Error())
	}
	return huma.Error500InternalServerError(err.Error())
}

// returns error details for each field of a record that failed validation
func details(err error) []error {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		return nil
	}
	errs := make([]error, len(verr.Issues))
	for i, issue := range verr.Issues {
		errs[i] = &huma.ErrorDetail{
			Message:  issue.Message,
			Location: issue.Field,
		}
	}
	return errs
}

// returns the uptime for the service in seconds
func (service *metricsService) uptime() float64 {
	return time.Since(service.StartTime).Seconds()
}

// constructs an assembly metrics service given our configuration
func NewMetricsService() (MetricsService, error) {
	c, err := contract.Load()
	if err != nil {
		return nil, err
	}
	client := ena.NewClient(config.ENA.SummaryURL, config.ENA.TimeoutDuration()).
		WithRateLimit(config.ENA.RequestsPerSecond)

	service := new(metricsService)
	service.Name = "assembly-metrics"
	service.Version = version
	service.Port = -1
	service.Builder = records.Builder{Fetcher: client}
	service.Contract = c

	// set up routing
	service.Router = mux.NewRouter()
	service.API = humamux.New(service.Router, huma.DefaultConfig(service.Name, service.Version))
	huma.Get(service.API, "/", service.getRoot)

	// API v1
	huma.Get(service.API, "/api/v1/assemblies/{accession}", service.getAssembly)
	huma.Get(service.API, "/api/v1/assemblies/{accession}/metrics", service.getMetrics)
	huma.Get(service.API, "/api/v1/schema", service.getSchema)

	return service, nil
}

// starts the assembly metrics service
func (service *metricsService) Start(port int) error {
	slog.Info(fmt.Sprintf("Starting %s service on port %d...", service.Name, port))
	slog.Info(fmt.Sprintf("(Accepting up to %d connections)", config.Service.MaxConnections))

	service.StartTime = time.Now()

	// create a listener that limits the number of incoming connections
	service.Port = port
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return err
	}
	defer listener.Close()
	listener = netutil.LimitListener(listener, config.Service.MaxConnections)

	// start the server
	service.Server = &http.Server{
		Handler: service.Router}
	err = service.Server.Serve(listener)

	// we don't report the server closing as an error
	if err != http.ErrServerClosed {
		return err
	}
	return nil
}

// gracefully shuts down the service without interrupting active connections
func (service *metricsService) Shutdown(ctx context.Context) error {
	if service.Server != nil {
		return service.Server.Shutdown(ctx)
	}
	return nil
}

// closes down the service abruptly, freeing all resources
func (service *metricsService) Close() {
	if service.Server != nil {
		service.Server.Close()
	}
}
