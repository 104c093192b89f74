package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/reoring/transpose"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "transpose CLI\n\nUsage:\n  transpose lint [-format json|yaml] [-dup ignore|warn|error] [-max-depth N] [-max-bytes N] [file ...]\n\nNotes:\n  - lint checks that each document decodes to an object within the limits. Without files it reads stdin.")
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "lint":
		return lintCmd(args[1:], stdin, stdout, stderr)
	default:
		usage(stderr)
		return 2
	}
}

func lintCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var format, dup string
	var maxDepth int
	var maxBytes int64
	fs.StringVar(&format, "format", "json", "document format: json or yaml")
	fs.StringVar(&dup, "dup", "error", "duplicate key handling: ignore, warn or error")
	fs.IntVar(&maxDepth, "max-depth", transpose.DefaultMaxDepth, "maximum nesting below the top-level object")
	fs.Int64Var(&maxBytes, "max-bytes", 0, "maximum document size in bytes, 0 for no limit")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	sev, ok := parseSeverity(dup)
	if !ok || (format != "json" && format != "yaml") {
		fs.Usage()
		return 2
	}

	warn := func(is transpose.Issue) {
		fmt.Fprintf(stdout, "warning: %s at %s\n", is.Message, is.Path)
	}
	// the top-level object counts as one level while decoding
	opt := transpose.LoadOptions{
		OnDuplicateKey: sev,
		MaxDepth:       maxDepth + 1,
		MaxBytes:       maxBytes,
		OnIssue:        warn,
	}

	files := fs.Args()
	if len(files) == 0 {
		files = []string{"-"}
	}
	failed := 0
	for _, name := range files {
		if err := lintOne(name, format, opt, stdin); err != nil {
			fmt.Fprintf(stdout, "%s: %v\n", name, err)
			failed++
			continue
		}
		fmt.Fprintf(stdout, "%s: ok\n", name)
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func lintOne(name, format string, opt transpose.LoadOptions, stdin io.Reader) error {
	var b []byte
	var err error
	if name == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(name)
	}
	if err != nil {
		return err
	}
	var src transpose.Source
	switch format {
	case "yaml":
		src = transpose.YAMLBytes(b)
	default:
		src = transpose.JSONReader(bytes.NewReader(b))
	}
	v, err := src.Load(context.Background(), opt)
	if err != nil {
		var re *transpose.RecursionError
		if errors.As(err, &re) {
			return fmt.Errorf("nesting exceeds %d levels at %s", re.Limit, re.Path)
		}
		return err
	}
	if _, ok := v.(map[string]any); !ok {
		return fmt.Errorf("%w, got %T", transpose.ErrNotObject, v)
	}
	return nil
}

func parseSeverity(s string) (transpose.Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ignore":
		return transpose.Ignore, true
	case "warn":
		return transpose.Warn, true
	case "error":
		return transpose.Error, true
	}
	return 0, false
}
