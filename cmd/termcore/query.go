package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/termcore/internal/ansi"
	"github.com/dshills/termcore/internal/driver"
)

var queryTimeout time.Duration

var queryCmd = &cobra.Command{
	Use:   "query [da|da2|cursor|size]...",
	Short: "Query the terminal",
	Long: `Send escape-sequence queries to the controlling terminal and print the
decoded replies. With no arguments the primary device attributes are
requested. Queries sharing a reply terminator are paced by the scheduler.`,
	ValidArgs: queryNames(),
	Args:      cobra.OnlyValidArgs,
	RunE:      runQuery,
}

func init() {
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 2*time.Second, "Time to wait for each reply")
}

func queryNames() []string {
	names := make([]string, 0, len(ansi.WellKnown))
	for name := range ansi.WellKnown {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

type queryResult struct {
	spec ansi.RequestSpec
	resp string
	err  error
}

func runQuery(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{ansi.RequestDeviceAttributes.Name}
	}

	tty, err := driver.OpenTTY()
	if err != nil {
		return fmt.Errorf("open tty: %w", err)
	}

	results := queryTTY(cmd.Context(), tty, args)
	if err := tty.Close(); err != nil {
		logger.Warn("close tty: %v", err)
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
		}
		printResult(out, r)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d queries failed", failed, len(results))
	}
	return nil
}

// queryTTY runs the named queries over rw and collects the replies. Input
// that is not a reply is discarded.
func queryTTY(ctx context.Context, rw io.ReadWriter, names []string) []queryResult {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d := driver.New(rw, driver.FromConfig(cfg), driver.WithLogger(logger))
	go func() {
		if err := d.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("driver: %v", err)
		}
	}()
	go func() {
		for {
			select {
			case <-d.Input():
			case <-ctx.Done():
				return
			}
		}
	}()

	results := make([]queryResult, 0, len(names))
	for _, name := range names {
		spec := ansi.WellKnown[name]
		qctx, qcancel := context.WithTimeout(ctx, queryTimeout)
		resp, err := d.QueryWait(qctx, spec)
		qcancel()
		results = append(results, queryResult{spec: spec, resp: resp, err: err})
	}
	return results
}

func printResult(w io.Writer, r queryResult) {
	if r.err != nil {
		fmt.Fprintf(w, "%-7s error: %v\n", r.spec.Name, r.err)
		return
	}
	desc, err := describe(r.spec, r.resp)
	if err != nil {
		fmt.Fprintf(w, "%-7s %q (%v)\n", r.spec.Name, r.resp, err)
		return
	}
	fmt.Fprintf(w, "%-7s %s\n", r.spec.Name, desc)
}

// describe decodes a reply for display.
func describe(spec ansi.RequestSpec, resp string) (string, error) {
	switch spec.Name {
	case ansi.RequestDeviceAttributes.Name, ansi.RequestSecondaryDeviceAttributes.Name:
		da, err := ansi.ParseDeviceAttributes(resp)
		if err != nil {
			return "", err
		}
		params := make([]string, len(da.Params))
		for i, p := range da.Params {
			params[i] = fmt.Sprint(p)
		}
		return strings.Join(params, ";"), nil
	case ansi.RequestCursorPosition.Name:
		row, col, err := ansi.ParseCursorPosition(resp)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("row %d, column %d", row, col), nil
	case ansi.RequestTerminalSizeChars.Name:
		rows, cols, err := ansi.ParseTerminalSizeChars(resp)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d rows, %d columns", rows, cols), nil
	}
	return fmt.Sprintf("%q", resp), nil
}
