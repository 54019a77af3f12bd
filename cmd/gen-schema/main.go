// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

// Command gen-schema writes the login response JSON Schema so server
// implementers can validate against the same contract the client enforces.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quizrush/quizrush/internal/authclient"
)

func main() {
	outPath := flag.String("out", filepath.Join("schemas", "login-response.schema.json"), "output file")
	flag.Parse()

	if err := generate(*outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated %s\n", *outPath)
}

func generate(outPath string) error {
	schema, err := authclient.ResponseSchema()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(outPath, schema, 0o600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
