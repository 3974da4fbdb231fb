package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gofhir/datamodel/pkg/schema"
)

func newDescribeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <type>",
		Short: "Print the fields and constraints of a registered type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.describe(cmd, args[0])
		},
	}
}

type fieldOutput struct {
	Name        string `json:"name"`
	Cardinality string `json:"cardinality"`
	Type        string `json:"type"`
	Short       string `json:"short,omitempty"`
}

type constraintOutput struct {
	ID          string `json:"id"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Expression  string `json:"expression,omitempty"`
}

type describeOutput struct {
	Type        string             `json:"type"`
	Kind        string             `json:"kind"`
	Description string             `json:"description,omitempty"`
	Fields      []fieldOutput      `json:"fields"`
	Constraints []constraintOutput `json:"constraints,omitempty"`
}

func describeEntry(e *schema.Entry) describeOutput {
	out := describeOutput{
		Type:        e.TypeName,
		Kind:        e.Kind.String(),
		Description: e.Description,
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, fieldOutput{
			Name:        f.Name,
			Cardinality: f.Cardinality.Range(),
			Type:        f.Type.String(),
			Short:       f.Short,
		})
	}
	for _, c := range e.Constraints {
		expr := c.Expression
		if expr == "" && c.Check != nil {
			expr = "(native)"
		}
		out.Constraints = append(out.Constraints, constraintOutput{
			ID:          c.ID,
			Severity:    c.Severity.String(),
			Description: c.Description,
			Expression:  expr,
		})
	}
	return out
}

func (a *app) describe(cmd *cobra.Command, typeName string) error {
	reg, _, err := buildRegistry(a.cfg, nil)
	if err != nil {
		return err
	}
	e, err := reg.Resolve(typeName)
	if err != nil {
		return err
	}
	out := describeEntry(e)

	w := cmd.OutOrStdout()
	if a.cfg.JSON() {
		return printJSON(w, out)
	}

	fmt.Fprintf(w, "%s (%s)\n", out.Type, out.Kind)
	if out.Description != "" {
		fmt.Fprintln(w, out.Description)
	}
	fmt.Fprintln(w, "\nFields:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, f := range out.Fields {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", f.Name, f.Cardinality, f.Type, f.Short)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(out.Constraints) > 0 {
		fmt.Fprintln(w, "\nConstraints:")
		for _, c := range out.Constraints {
			fmt.Fprintf(w, "  %s [%s] %s\n", c.ID, c.Severity, c.Description)
			if c.Expression != "" {
				fmt.Fprintf(w, "      %s\n", c.Expression)
			}
		}
	}
	return nil
}
