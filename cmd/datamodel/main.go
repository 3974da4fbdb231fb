// Package main implements the datamodel CLI tool: it lints schema files,
// describes registered record types and checks YAML record documents.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gofhir/datamodel"
	"github.com/gofhir/datamodel/internal/config"
	"github.com/gofhir/datamodel/pkg/logger"
)

// errFailed signals a non-zero exit whose details were already printed.
var errFailed = errors.New("check failed")

// app carries what every command needs once flags are parsed.
type app struct {
	configFile string
	cfg        *config.Config
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "datamodel",
		Short:         "Schema-driven validation for FHIR-like clinical records",
		Version:       datamodel.UserAgent(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			logger.SetOutput(cmd.ErrOrStderr())
			logger.SetLevel(cfg.Level())
			return nil
		},
	}

	root.SetVersionTemplate("{{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (default ./datamodel.yaml if present)")
	flags.String("log-level", "warn", "Log level: debug, info, warn, error, none")
	flags.String("output", config.OutputText, "Output format: text, json")
	flags.Bool("builtin", true, "Register the built-in R5 schemas")
	flags.StringSlice("schema-dir", nil, "Directories of schema files to register")
	flags.StringSlice("skip-constraint", nil, "Constraint keys to drop when converting StructureDefinitions")

	root.AddCommand(
		newLintCommand(a),
		newDescribeCommand(a),
		newCheckCommand(a),
	)
	return root
}
