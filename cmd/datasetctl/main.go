// Command datasetctl normalizes a dataset file offline.
//
// It reads a dataset from -in (or stdin), runs the ingestion pipeline and
// writes the accepted rows to -out (or stdout). A summary and every
// rejected line are reported on stderr.
//
//	datasetctl -in words.csv -out words_normalized.csv
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JonMunkholm/textnorm/internal/core"
	"github.com/JonMunkholm/textnorm/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("datasetctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	in := fs.String("in", "", "input dataset file (default stdin)")
	out := fs.String("out", "", "output file for accepted rows (default stdout)")
	maxSize := fs.Int64("max-size", 0, "maximum input size in bytes (0 = unlimited)")
	dryRun := fs.Bool("dry-run", false, "report only, do not write rows")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	logFormat := fs.String("log-format", "text", "log format: text or json")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	logging.SetupWriter(stderr, *logLevel, *logFormat)

	src := stdin
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			slog.Error("failed to open input", "path", *in, "error", err)
			return 1
		}
		defer f.Close()
		src = f
	}

	text, err := core.ReadDataset(src, *maxSize)
	if err != nil {
		slog.Error("failed to read dataset", "error", err)
		return 1
	}

	batch, err := core.ProcessDataset(text)
	if err != nil {
		slog.Error("dataset rejected", "error", err, "detail", core.FormatUserError(err))
		return 1
	}

	for _, rej := range batch.Rejected {
		slog.Warn("row rejected", "line", rej.Line, "reason", rej.Reason)
	}
	slog.Info("dataset processed",
		"total_rows", batch.TotalRows,
		"valid_rows", batch.ValidRows,
		"corrected_rows", batch.CorrectedRows,
		"rejected_rows", len(batch.Rejected),
	)

	if batch.NoValidRows() {
		slog.Error("nothing to write", "error", core.ErrNoValidRows)
		return 1
	}
	if *dryRun {
		return 0
	}

	if err := writeRows(*out, stdout, batch.AcceptedRows); err != nil {
		slog.Error("failed to write output", "error", err)
		return 1
	}
	return 0
}

// writeRows writes rows to path, or to stdout when path is empty.
func writeRows(path string, stdout io.Writer, rows []core.Row) (err error) {
	if path == "" {
		return core.WriteDataset(stdout, rows)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	return core.WriteDataset(f, rows)
}
