// main is the entry point of the smsplus command.
//
// STARTUP SEQUENCE (per invocation):
//  1. Parse flags and pick the sub-command
//  2. Load configuration (YAML file, .env, environment)
//  3. Initialise the logger
//  4. Open (and set up) the SQLite database
//  5. Run the sub-command against the record service
//  6. Close the database and exit with a code that reflects the error kind
//
// RUNNING:
//
//	go run ./cmd/smsplus --config=config/local.yaml list
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/smsplus list
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/FrederickAmakye/SMSPlus/internal/apperr"
	"github.com/FrederickAmakye/SMSPlus/internal/utils/response"
)

// Exit codes. Scripts can tell a bad record from a broken database.
const (
	exitOK         = 0
	exitFailure    = 1
	exitUsage      = 2
	exitValidation = 3
	exitDB         = 4
	exitIO         = 5
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	// Ctrl+C cancels the context, which aborts an in-flight query or import.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := a.close(); cerr != nil && err == nil {
		err = cerr
	}
	if err == nil {
		return exitOK
	}

	if a.jsonOut {
		_ = response.WriteJSON(stdout, response.GeneralError(err))
	} else {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	switch apperr.KindOf(err) {
	case apperr.Validation, apperr.DuplicateKey:
		return exitValidation
	case apperr.Persistence:
		return exitDB
	case apperr.IO:
		return exitIO
	case apperr.InvalidArgument:
		return exitUsage
	default:
		return exitFailure
	}
}
