// Package main implements the threadsafety demonstration.
//
// The program runs four fixed scenarios that contrast a stateless calculator
// with a calculator that keeps its input in a field shared by all callers:
//
//  1. Two workers on the stateless calculator
//  2. Two workers on the shared calculator (the classic servlet problem)
//  3. One hundred workers on the stateless calculator
//  4. One hundred workers on the shared calculator
//
// Progress goes to stdout. Wrong calculations and the data race report of the
// built-in race witness go to stderr.
//
// Usage:
//
//	threadsafety            # Run all scenarios
//	threadsafety version    # Show version information
//	threadsafety help       # Show usage
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sean-/seed"
	"github.com/sean-/sysexits"

	"github.com/kolkov/threadsafety/internal/buildinfo"
	"github.com/kolkov/threadsafety/internal/console"
	"github.com/kolkov/threadsafety/internal/scenario"
)

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

func realMain(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Fprintln(stdout, buildinfo.Get())
			return sysexits.OK
		case "help", "--help", "-h":
			printUsage(stdout)
			return sysexits.OK
		default:
			fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
			printUsage(stderr)
			return sysexits.Usage
		}
	}

	seed.MustInit()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return runScenarios(ctx, scenario.DefaultConfig(), stdout, stderr)
}

func runScenarios(ctx context.Context, cfg scenario.Config, stdout, stderr io.Writer) int {
	log := console.New(stdout, stderr)

	d, err := scenario.NewDriver(cfg, log, scenario.WithErrorOutput(stderr))
	if err != nil {
		fmt.Fprintf(stderr, "%+v\n", err)
		return sysexits.Software
	}

	reports, err := d.Run(ctx)
	for _, r := range reports {
		log.Info().EmbedObject(r).Msg("Scenario summary")
	}
	if err != nil {
		fmt.Fprintf(stderr, "%+v\n", err)
		return sysexits.Software
	}
	return sysexits.OK
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `threadsafety - Thread safety demonstration

USAGE:
    threadsafety [command]

COMMANDS:
    (none)     Run the four scenarios
    version    Show version information
    help       Show this help message

SCENARIOS:
    1. single instance, thread safe
    2. single instance, NOT thread safe, classic Servlet problem
    3. exhaustive single instance, thread safe
    4. exhaustive single instance, NOT thread safe

Scenarios 2 and 4 run with a race witness that reports the data race on the
shared value in the format of Go's race detector.

EXIT CODES:
    0     All scenarios completed (wrong calculations in 2 and 4 are expected)
    64    Unknown command
    70    A calculation that cannot fail did, or the run was interrupted
`)
}
