// Package main writes the JSON schema of grammar specifications to disk.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/grammargen/pkg/grammar"
	"github.com/Sumatoshi-tech/grammargen/pkg/sink"
)

const schemaFile = "grammar-spec.schema.json"

var outputDir string

func main() {
	flag.StringVar(&outputDir, "o", "docs/schemas", "Output directory for schemas")
	flag.Parse()

	path, err := sink.Write(outputDir, schemaFile, grammar.SpecSchema())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing schema: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated: %s\n", path)
}
