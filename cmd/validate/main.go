package main

import (
	"fmt"
	"io"
	"os"

	"github.com/tendant/storage-catalog/pkg/catalog"
)

const usage = `Storage service validator

Checks storage service JSON documents against the catalog contract.

Usage:
  validate <file> [file...]
  validate -            read a single document from stdin

Exit status is 1 when any document is invalid.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(stderr, usage)
		return 2
	}

	failed := 0
	for _, arg := range args {
		data, err := readInput(arg, stdin)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", arg, err)
			failed++
			continue
		}

		svc, err := catalog.Decode(data)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", arg, err)
			failed++
			continue
		}

		version := "-"
		if svc.Version != nil {
			version = fmt.Sprintf("%.1f", *svc.Version)
		}
		fmt.Fprintf(stdout, "%s: ok (%s %s version %s)\n", arg, svc.ServiceType, svc.Name, version)
	}

	if failed > 0 {
		return 1
	}
	return 0
}

func readInput(arg string, stdin io.Reader) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(arg)
}
