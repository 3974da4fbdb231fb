package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/gofhir/datamodel/pkg/builder"
	"github.com/gofhir/datamodel/pkg/issue"
	"github.com/gofhir/datamodel/pkg/logger"
	"github.com/gofhir/datamodel/pkg/schema"
	"github.com/gofhir/datamodel/pkg/validator"
	"github.com/gofhir/datamodel/pkg/value"
	"github.com/gofhir/datamodel/pkg/worker"
)

func newCheckCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <record.yaml>...",
		Short: "Build and validate YAML record documents",
		Long: `Each YAML document names its type with a resourceType key; the other
keys are fields. Choice fields take either a suffixed key such as
measureScoreQuantity or a single-key map such as {Quantity: {...}}.
References are "Type/id" strings or maps with reference and display keys.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.check(cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.Bool("strict", false, "Treat warnings as errors")
	flags.Int("workers", 0, "Documents validated in parallel (0 = number of CPUs)")
	flags.Bool("constraints", true, "Evaluate cross-field constraints")
	flags.Int("max-depth", validator.DefaultMaxDepth, "Maximum record nesting")
	flags.Bool("stats", false, "Print per-type validation statistics to stderr")
	return cmd
}

// buildCheck validates a decoded record by passing it through a builder,
// so records are accepted exactly when Build would accept them.
type buildCheck struct {
	reg *schema.Registry
	v   *validator.Validator
}

func (c buildCheck) ValidateRecord(rec *value.Record) (*issue.Result, error) {
	b, err := builder.FromExisting(c.reg, rec, builder.WithValidator(c.v))
	if err != nil {
		return nil, err
	}
	if _, err := b.Build(); err != nil {
		if _, ok := issue.AsIssues(err); !ok {
			return nil, err
		}
	}
	return b.Report(), nil
}

func (a *app) check(cmd *cobra.Command, files []string) error {
	reg, _, err := buildRegistry(a.cfg, nil)
	if err != nil {
		return err
	}
	v := validator.New(reg,
		validator.WithStrictMode(a.cfg.Strict),
		validator.WithConstraints(a.cfg.Constraints),
		validator.WithMaxDepth(a.cfg.MaxDepth),
	)

	dec := &decoder{reg: reg}
	var docs []document
	for _, name := range files {
		docs = append(docs, dec.readDocuments(name)...)
	}

	records := make([]*value.Record, 0, len(docs))
	positions := make([]int, 0, len(docs))
	outputs := make([]ValidationOutput, len(docs))
	for i, d := range docs {
		if d.Err != nil {
			outputs[i] = failedOutput(d.Name, d.Err)
			continue
		}
		records = append(records, d.Record)
		positions = append(positions, i)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	batch := worker.ValidateAll(ctx, buildCheck{reg: reg, v: v}, records, a.cfg.Workers)
	logger.Info("Checked %d documents: %d failed", batch.CompletedJobs, batch.FailedJobs)

	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		m := worker.NewMetrics()
		for j, res := range batch.Results {
			m.RecordResult(records[j].TypeName(), res)
		}
		printStats(cmd.ErrOrStderr(), m.Snapshot())
	}

	for j, res := range batch.Results {
		d := docs[positions[j]]
		switch {
		case res == nil:
			outputs[positions[j]] = failedOutput(d.Name, context.Canceled)
		case res.Error != nil:
			outputs[positions[j]] = failedOutput(d.Name, res.Error)
		default:
			outputs[positions[j]] = resultOutput(d.Name, d.Record.TypeName(), res.Result, a.cfg.Strict, time.Duration(res.Duration))
		}
	}

	w := cmd.OutOrStdout()
	if a.cfg.JSON() {
		if err := printJSON(w, outputs); err != nil {
			return err
		}
	} else {
		for _, out := range outputs {
			printTextResult(w, out)
		}
	}

	for _, out := range outputs {
		if !out.Valid {
			return errFailed
		}
	}
	return nil
}
