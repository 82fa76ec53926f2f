// Command gophrase rewrites phrases between neurotypical and neurodivergent
// communication styles, caching every answer.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaguanLabs/gophrase"
	"github.com/ZaguanLabs/gophrase/provider"
)

// Exit codes.
const (
	exitOK          = 0
	exitUsage       = 1 // usage, configuration or invalid input
	exitUnavailable = 2 // no translation available
	exitCacheWrite  = 3 // cache could not be persisted
)

// ProviderFactory builds the AI provider from configuration.
type ProviderFactory func(provider.Config) (gophrase.AIProvider, error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, provider.NewProvider))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, newProvider ProviderFactory) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli := newCLI(newProvider)
	root := cli.newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			_, _ = fmt.Fprintln(stderr, "Error: "+exitErr.err.Error())
		}
		return exitErr.code
	}

	_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
	return exitUsage
}

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// cacheExit maps a persistence failure to its exit code.
func cacheExit(err error) error {
	if gophrase.IsCacheError(err) {
		return withCode(exitCacheWrite, err)
	}
	return err
}
