package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fitglue/bike-miles/pkg/bootstrap"
	"github.com/fitglue/bike-miles/pkg/domain/yearrange"
	"github.com/fitglue/bike-miles/pkg/integrations/strava"
	"github.com/fitglue/bike-miles/pkg/report"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bike-miles", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "print the report as JSON")
	configPath := fs.String("config", "", "path to a YAML config file (default $CONFIG_PATH or ./bike-miles.yaml)")
	verbose := fs.Bool("v", false, "narrate progress on stderr")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "\nUsage: bike-miles [flags] <access-token> <year>\n\n")
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output())
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if fs.NArg() < 2 {
		fmt.Fprint(stderr, "\nYou must specify the year and a valid access token.\n\n")
		fmt.Fprint(stderr, report.TokenHelp)
		fs.Usage()
		return exitUsage
	}
	token := fs.Arg(0)

	year, err := yearrange.ParseYear(fs.Arg(1))
	if err != nil {
		fmt.Fprintln(stderr, "Year must be an integer.")
		return exitError
	}

	cfg, err := bootstrap.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "An unexpected error occurred: %v\n", err)
		return exitError
	}

	logger := bootstrap.DiscardLogger()
	if *verbose {
		logger = bootstrap.NewConsoleLogger(stderr, cfg.LogLevel)
	}

	svc, err := bootstrap.NewService(cfg, logger, nil)
	if err != nil {
		fmt.Fprintf(stderr, "An unexpected error occurred: %v\n", err)
		return exitError
	}

	result, err := svc.Miles.BikeMiles(ctx, token, year)
	switch {
	case errors.Is(err, strava.ErrInvalidAccessToken):
		fmt.Fprint(stderr, "\nAccess token is invalid.\n\n")
		fmt.Fprint(stderr, report.TokenHelp)
		fmt.Fprintln(stderr)
		return exitError
	case errors.Is(err, yearrange.ErrInvalidYear):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	case err != nil:
		fmt.Fprintf(stderr, "An unexpected error occurred: %v\n", err)
		return exitError
	}

	format := report.FormatText
	if *asJSON {
		format = report.FormatJSON
	}
	if err := report.Write(stdout, result, format); err != nil {
		fmt.Fprintf(stderr, "An unexpected error occurred: %v\n", err)
		return exitError
	}
	return exitOK
}
