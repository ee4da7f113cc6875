package ena

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbase/assembly-metrics/dtstest"
)

const testAccession = "GCA_964035705"

// fake ENA summary endpoint shared by all tests
var enaServer *dtstest.ENAServer

// this function gets called at the begіnning of a test session
func setup() {
	dtstest.EnableDebugLogging()
	enaServer = dtstest.NewENAServer()
	enaServer.AddSummary(testAccession, dtstest.AssemblySummary(testAccession))
}

// this function gets called after all tests have been run
func breakdown() {
	enaServer.Close()
}

func newTestClient() *Client {
	return NewClient(enaServer.SummaryURL(), 5*time.Second)
}

func TestNewClientDefaults(t *testing.T) {
	assert := assert.New(t)
	client := NewClient("", 0)
	assert.Equal(DefaultSummaryURL, client.SummaryURL)
	assert.Equal(DefaultTimeout, client.Client.Timeout)
	assert.Nil(client.Limiter)

	client = NewClient("https://example.com/summary/", time.Second)
	assert.Equal("https://example.com/summary", client.SummaryURL)
	assert.Equal(time.Second, client.Client.Timeout)
}

func TestFetchAssembly(t *testing.T) {
	assert := assert.New(t)
	record, err := newTestClient().FetchAssembly(context.Background(), testAccession)
	require.Nil(t, err)
	assert.Equal(testAccession, record["accession"])
	assert.Equal("Chromosome", record["assemblyLevel"], "raw record should be unmodified")
	assert.Contains(enaServer.Requests(), testAccession)
}

func TestFetchAssemblyRejectsBlankAccession(t *testing.T) {
	before := len(enaServer.Requests())
	_, err := newTestClient().FetchAssembly(context.Background(), "  ")
	var accErr *InvalidAccessionError
	assert.True(t, errors.As(err, &accErr))
	assert.Equal(t, before, len(enaServer.Requests()), "no request should be made")
}

func TestFetchAssemblyShapeErrors(t *testing.T) {
	bodies := map[string]string{
		"GCA_SHAPE1": `["not", "an", "object"]`,
		"GCA_SHAPE2": `{"total": "1"}`,
		"GCA_SHAPE3": `{"summaries": "GCA_SHAPE3"}`,
		"GCA_SHAPE4": `{"summaries": ["GCA_SHAPE4"]}`,
		"GCA_SHAPE5": `<html>not json</html>`,
	}
	client := newTestClient()
	for accession, body := range bodies {
		enaServer.AddResponse(accession, http.StatusOK, body)
		_, err := client.FetchAssembly(context.Background(), accession)
		var shapeErr *ShapeError
		assert.True(t, errors.As(err, &shapeErr), "%s: %v", accession, err)
		assert.Equal(t, "ShapeError", shapeErr.Kind())
	}
}

func TestFetchAssemblyEmptyResults(t *testing.T) {
	client := newTestClient()
	enaServer.AddResponse("GCA_NULL", http.StatusOK, `{"summaries": null, "total": "0"}`)
	for _, accession := range []string{"GCA_NULL", "GCA_000000000"} { // the latter is unregistered
		_, err := client.FetchAssembly(context.Background(), accession)
		var emptyErr *EmptyResultError
		assert.True(t, errors.As(err, &emptyErr), "%s: %v", accession, err)
		assert.Equal(t, "No summaries returned for accession "+accession, err.Error())
	}
}

func TestFetchAssemblyAccessionMismatch(t *testing.T) {
	assert := assert.New(t)
	enaServer.AddSummary("GCA_REQUESTED", dtstest.AssemblySummary("GCA_OTHER"))
	_, err := newTestClient().FetchAssembly(context.Background(), "GCA_REQUESTED")
	var mismatch *AccessionMismatchError
	assert.True(errors.As(err, &mismatch))
	assert.Equal("ENA returned accession GCA_OTHER for requested GCA_REQUESTED", err.Error())

	// a summary without an accession (or with a null one) is accepted as is
	summary := dtstest.AssemblySummary("")
	summary["accession"] = nil
	enaServer.AddSummary("GCA_NOACC", summary)
	record, err := newTestClient().FetchAssembly(context.Background(), "GCA_NOACC")
	assert.Nil(err)
	assert.Nil(record["accession"])
}

func TestFetchAssemblyTransportErrors(t *testing.T) {
	assert := assert.New(t)
	enaServer.AddResponse("GCA_BROKEN", http.StatusInternalServerError, "upstream exploded")
	_, err := newTestClient().FetchAssembly(context.Background(), "GCA_BROKEN")
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(http.StatusInternalServerError, transportErr.StatusCode)
	assert.Equal("ENA request for accession GCA_BROKEN failed (500): upstream exploded", err.Error())

	// nobody home
	server := dtstest.NewENAServer()
	url := server.SummaryURL()
	server.Close()
	_, err = NewClient(url, time.Second).FetchAssembly(context.Background(), testAccession)
	assert.True(errors.As(err, &transportErr))
	assert.Equal(0, transportErr.StatusCode)
	assert.NotNil(transportErr.Unwrap())
}

func TestFetchRecord(t *testing.T) {
	assert := assert.New(t)
	record, err := newTestClient().FetchRecord(context.Background(), testAccession)
	require.Nil(t, err)
	assert.Equal(testAccession, record.Accession)
	assert.Equal("chromosome", *record.AssemblyLevel)
	assert.Equal(9, len(record.Attributes))
}

func TestRateLimit(t *testing.T) {
	assert := assert.New(t)
	client := newTestClient().WithRateLimit(10)
	assert.NotNil(client.Limiter)

	// a canceled context stops a rate-limited request before it's sent
	client.Limiter.Allow() // use up the burst
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.FetchAssembly(ctx, testAccession)
	var transportErr *TransportError
	assert.True(errors.As(err, &transportErr))

	assert.Nil(client.WithRateLimit(0).Limiter)
}

func TestSnippet(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("", snippet(nil))
	assert.Equal("a b", snippet([]byte("a\nb\n")))
	long := make([]byte, 2*maxSnippet)
	for i := range long {
		long[i] = 'x'
	}
	assert.Equal(maxSnippet+3, len(snippet(long)))
}

// this runs setup, runs all tests, and does breakdown
func TestMain(m *testing.M) {
	setup()
	status := m.Run()
	breakdown()
	os.Exit(status)
}
