package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbase/assembly-metrics/contract"
	"github.com/kbase/assembly-metrics/dtstest"
	"github.com/kbase/assembly-metrics/ena"
)

const testAccession = "GCA_964035705"

// temporary testing directory
var TESTING_DIR string

// configuration file pointing at the fake ENA endpoint
var configFile string

var enaServer *dtstest.ENAServer

// this function gets called at the begіnning of a test session
func setup() {
	dtstest.EnableDebugLogging()
	enaServer = dtstest.NewENAServer()
	enaServer.AddSummary(testAccession, dtstest.AssemblySummary(testAccession))
	enaServer.AddResponse("GCA_DOWN", http.StatusInternalServerError, "oops")

	var err error
	TESTING_DIR, err = os.MkdirTemp(os.TempDir(), "assembly-metrics-tests-")
	if err != nil {
		panic(err)
	}
	configFile = filepath.Join(TESTING_DIR, "config.yaml")
	yaml := fmt.Sprintf("ena:\n  summary_url: %s\n  timeout: 5\nlogging:\n  level: debug\n",
		enaServer.SummaryURL())
	if err := os.WriteFile(configFile, []byte(yaml), 0600); err != nil {
		panic(err)
	}
}

// this function gets called after all tests have been run
func breakdown() {
	enaServer.Close()
	if TESTING_DIR != "" {
		os.RemoveAll(TESTING_DIR)
	}
}

// runs the CLI with the given arguments, returning its output
func run(args ...string) (string, error) {
	var out bytes.Buffer
	app := newCLIApp(&out)
	err := app.Run(append([]string{"assembly-metrics", "--config", configFile}, args...))
	return out.String(), err
}

func TestFetch(t *testing.T) {
	assert := assert.New(t)
	out, err := run("fetch", testAccession, "GCA_NOTFOUND")
	require.Nil(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, 2, len(lines))

	var record map[string]any
	require.Nil(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(testAccession, record["accession"])
	metrics := record["assembly_metrics"].(map[string]any)
	assert.Equal("chromosome", metrics["assembly_level"])
	assert.Equal(38761522.0, metrics["scaffold_n50"])

	require.Nil(t, json.Unmarshal([]byte(lines[1]), &record))
	assert.Equal("GCA_NOTFOUND", record["accession"])
	assert.Nil(record["assembly_metrics"])
	assert.Equal("EmptyResultError: No summaries returned for accession GCA_NOTFOUND",
		record["assembly_metrics_error"])
}

func TestFetchStopsOnTransportError(t *testing.T) {
	out, err := run("fetch", testAccession, "GCA_DOWN", testAccession)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "(500)")
	assert.Equal(t, 1, strings.Count(out, "\n"), "only the first record should be printed")
}

func TestFetchRequiresAccession(t *testing.T) {
	_, err := run("fetch")
	assert.NotNil(t, err)
}

func TestRaw(t *testing.T) {
	out, err := run("raw", testAccession)
	require.Nil(t, err)
	var record ena.AssemblyRecord
	require.Nil(t, json.Unmarshal([]byte(out), &record))
	assert.Equal(t, testAccession, record.Accession)
	assert.Equal(t, "chromosome", *record.AssemblyLevel)

	_, err = run("raw", "GCA_NOTFOUND")
	assert.NotNil(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "EmptyResultError: "), err.Error())
}

func TestSchema(t *testing.T) {
	assert := assert.New(t)
	out, err := run("schema")
	require.Nil(t, err)
	var field contract.BigQueryField
	require.Nil(t, json.Unmarshal([]byte(out), &field))
	assert.Equal("assemblies", field.Name)
	assert.Equal(8, len(field.Fields))

	out, err = run("schema", "--fields", "accession", "--fields", "assembly_metrics")
	require.Nil(t, err)
	require.Nil(t, json.Unmarshal([]byte(out), &field))
	assert.Equal(2, len(field.Fields))

	_, err = run("schema", "--fields", "species")
	assert.NotNil(err)

	out, err = run("schema", "--descriptor")
	require.Nil(t, err)
	assert.Equal(contract.Descriptor(), out)
}

func TestBadConfiguration(t *testing.T) {
	var out bytes.Buffer
	err := newCLIApp(&out).Run([]string{"assembly-metrics", "-c",
		filepath.Join(TESTING_DIR, "nonexistent.yaml"), "schema"})
	assert.NotNil(t, err)

	bad := filepath.Join(TESTING_DIR, "bad.yaml")
	require.Nil(t, os.WriteFile(bad, []byte("ena:\n  timeout: -1\n"), 0600))
	err = newCLIApp(&out).Run([]string{"assembly-metrics", "-c", bad, "schema"})
	assert.NotNil(t, err)
	assert.Empty(t, out.String())
}

// this runs setup, runs all tests, and does breakdown
func TestMain(m *testing.M) {
	setup()
	status := m.Run()
	breakdown()
	os.Exit(status)
}
