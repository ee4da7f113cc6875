package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kbase/assembly-metrics/config"
	"github.com/kbase/assembly-metrics/contract"
	"github.com/kbase/assembly-metrics/ena"
	"github.com/kbase/assembly-metrics/records"
	"github.com/kbase/assembly-metrics/services"
)

// Version of the command line tool
const Version = "0.1.0"

// newCLIApp creates the CLI application with all commands, writing results
// to the given output.
func newCLIApp(out io.Writer) *cli.App {
	app := &cli.App{
		Name:    "assembly-metrics",
		Usage:   "Normalized genome assembly metrics from the ENA Browser API",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML configuration file"},
		},
		Before: initialize,
		Commands: []*cli.Command{
			fetchCmd(out),
			rawCmd(out),
			schemaCmd(out),
			serveCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// reads the configuration (if any) and sets up logging
func initialize(c *cli.Context) error {
	var data []byte
	if configFile := c.String("config"); configFile != "" {
		var err error
		data, err = os.ReadFile(configFile)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Couldn't read configuration data: %s", err), 1)
		}
	}
	if err := config.Init(data); err != nil {
		return cli.Exit(fmt.Sprintf("Couldn't initialize the configuration: %s", err), 1)
	}

	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: config.Logging.SlogLevel()})
	slog.SetDefault(slog.New(h))
	return nil
}

// returns a record builder for the configured ENA endpoint
func newBuilder() records.Builder {
	client := ena.NewClient(config.ENA.SummaryURL, config.ENA.TimeoutDuration()).
		WithRateLimit(config.ENA.RequestsPerSecond)
	return records.Builder{Fetcher: client}
}

// fetchCmd creates the fetch command.
func fetchCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Print a merge-ready metrics record (JSON lines) for each accession",
		ArgsUsage: "ACCESSION...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("at least one accession is required", 1)
			}
			builder := newBuilder()
			enc := json.NewEncoder(out)
			for _, accession := range c.Args().Slice() {
				record, err := builder.Build(c.Context, accession)
				if err != nil {
					return outputError(err)
				}
				if err := enc.Encode(record); err != nil {
					return outputError(err)
				}
			}
			return nil
		},
	}
}

// rawCmd creates the raw command.
func rawCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "raw",
		Usage:     "Print the validated ENA summary record for an accession",
		ArgsUsage: "ACCESSION",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("exactly one accession is required", 1)
			}
			record, err := newBuilder().Record(c.Context, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(out, record)
		},
	}
}

// schemaCmd creates the schema command.
func schemaCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the BigQuery schema fragment for the assemblies field",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "fields", Aliases: []string{"f"}, Usage: "Assembly fields to include, in order"},
			&cli.BoolFlag{Name: "descriptor", Usage: "Print the Frictionless data package descriptor instead"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("descriptor") {
				_, err := io.WriteString(out, contract.Descriptor())
				return err
			}
			destination, err := contract.Load()
			if err != nil {
				return outputError(err)
			}
			field, err := destination.AssembliesField(c.StringSlice("fields")...)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(out, field)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the assembly metrics REST service",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port to listen on (overrides the configuration)"},
		},
		Action: func(c *cli.Context) error {
			port := config.Service.Port
			if c.IsSet("port") {
				port = c.Int("port")
			}
			service, err := services.NewMetricsService()
			if err != nil {
				return cli.Exit(fmt.Sprintf("Couldn't create the service: %s", err), 1)
			}

			// Start the service in a goroutine so it doesn't block.
			errChan := make(chan error, 1)
			go func() {
				errChan <- service.Start(port)
			}()

			// Intercept the SIGINT, SIGHUP, SIGTERM, and SIGQUIT signals, shutting down
			// the service as gracefully as possible if they are encountered.
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan,
				syscall.SIGINT,
				syscall.SIGHUP,
				syscall.SIGTERM,
				syscall.SIGQUIT)
			defer signal.Stop(sigChan)

			// Block till we receive one of the above signals (or the service fails).
			select {
			case <-sigChan:
			case err := <-errChan:
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}
				return nil
			}

			// Create a deadline to wait for.
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			// Wait for connections to close until the deadline elapses.
			slog.Info("Shutting down")
			return service.Shutdown(ctx)
		},
	}
}

// outputJSON writes indented JSON to the given output.
func outputJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var dataErr records.DataError
	if errors.As(err, &dataErr) {
		return cli.Exit(fmt.Sprintf("%s: %s", dataErr.Kind(), dataErr.Error()), 1)
	}
	return cli.Exit(err.Error(), 1)
}

func main() {
	if err := newCLIApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
