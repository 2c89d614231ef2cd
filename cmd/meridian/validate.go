package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tessera-hq/meridian/pkg/cli"
	"tessera-hq/meridian/pkg/scope/parser"
	"tessera-hq/meridian/pkg/scope/validator"
)

var validateFlags struct {
	file   string
	dir    string
	strict bool
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate scope definition files",
	Long: `Validate scope definition files for syntax and semantic errors.

The validate command parses scope files and performs full validation:
  - YAML syntax validation
  - Scope structure validation (guardrails, boundaries, guidelines)
  - Dataset filter validation (patterns, admission rules)
  - Guardrail conflict detection (allowed vs forbidden topic overlap)

Conflict findings are advisory warnings: a scope with overlapping topics
still loads, and the forbidden topic wins at enforcement time.

Examples:
  # Validate a single file
  meridian validate --file scopes/support.yaml

  # Validate a directory
  meridian validate --dir scopes/

  # Strict mode (warnings as errors)
  meridian validate --dir scopes/ --strict

  # JSON output for CI/CD
  meridian validate --dir scopes/ --format json`,
	RunE: validateScopes,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.file, "file", "f", "", "scope file to validate")
	validateCmd.Flags().StringVarP(&validateFlags.dir, "dir", "d", "", "directory of scope files")
	validateCmd.Flags().BoolVar(&validateFlags.strict, "strict", false, "treat warnings as errors")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// ScopeValidationResult is the validation outcome for a single scope file.
type ScopeValidationResult struct {
	File     string   `json:"file"`
	ScopeID  string   `json:"scope_id,omitempty"`
	Name     string   `json:"name,omitempty"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func validateScopes(cmd *cobra.Command, args []string) error {
	if validateFlags.file == "" && validateFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string

	if validateFlags.file != "" {
		files = append(files, validateFlags.file)
	}

	if validateFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(validateFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list scope files: %w", err)
			}
			files = append(files, matches...)
		}
	}

	if len(files) == 0 {
		return fmt.Errorf("no scope files found")
	}

	p := parser.NewParser()
	v := validator.New()

	results := make([]ScopeValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateScopeFile(p, v, file))
	}

	if validateFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		if err := formatter.FormatTo(os.Stdout, results); err != nil {
			return err
		}
	} else {
		printValidationResults(results)
	}

	for _, r := range results {
		if !r.Valid || (validateFlags.strict && len(r.Warnings) > 0) {
			return cli.NewCommandErrorWithCode("validate",
				fmt.Errorf("validation failed"), cli.ExitValidationFailed)
		}
	}
	return nil
}

func validateScopeFile(p *parser.Parser, v *validator.Validator, path string) ScopeValidationResult {
	result := ScopeValidationResult{File: path, Valid: true}

	sc, err := p.Parse(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.ScopeID = sc.ID
	result.Name = sc.Name

	report := v.ValidateScope(sc)
	result.Valid = report.IsValid
	result.Errors = append(result.Errors, report.Errors...)
	result.Warnings = append(result.Warnings, report.Warnings...)

	return result
}

func printValidationResults(results []ScopeValidationResult) {
	valid := 0
	for _, r := range results {
		status := "OK"
		if !r.Valid {
			status = "FAIL"
		} else if len(r.Warnings) > 0 {
			status = "WARN"
		}
		fmt.Printf("%-4s %s", status, r.File)
		if r.Name != "" {
			fmt.Printf(" (%s)", r.Name)
		}
		fmt.Println()

		for _, e := range r.Errors {
			fmt.Printf("     error: %s\n", e)
		}
		for _, w := range r.Warnings {
			fmt.Printf("     warning: %s\n", w)
		}
		if r.Valid {
			valid++
		}
	}
	fmt.Printf("\n%d/%d scope files valid\n", valid, len(results))
}
