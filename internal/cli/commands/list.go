package commands

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/workloadgen/internal/cli/output"
	"github.com/leapstack-labs/workloadgen/internal/engine"
	"github.com/spf13/cobra"
)

// ListOptions holds options for the list command.
type ListOptions struct {
	All bool
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the queries selected for test generation",
		Long: `List the queries of the graph that get a generated test, with the
reason each one was selected, its test name and its number of fixtures.

Use --all to include the excluded queries and the reason they were skipped.

Output adapts to environment:
  - Terminal: Table output
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # List selected queries
  workloadgen list

  # Include excluded queries
  workloadgen list --all

  # Output as JSON
  workloadgen list --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "Include excluded queries")

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	eng := cmdCtx.Engine
	r := cmdCtx.Renderer

	g, err := eng.Load(cmd.Context())
	if err != nil {
		return err
	}
	plan, err := eng.Plan(cmd.Context(), g)
	if err != nil {
		return err
	}

	decisions := plan.Decisions
	if !opts.All {
		decisions = make([]engine.Decision, 0, len(plan.Units))
		for _, d := range plan.Decisions {
			if d.Classification.Included {
				decisions = append(decisions, d)
			}
		}
	}

	summary := output.ListSummary{
		Total:    len(plan.Decisions),
		Included: len(plan.Units),
		Excluded: plan.Excluded(),
	}

	if r.EffectiveMode() == output.ModeJSON {
		return listJSON(r, decisions, summary)
	}
	return listTable(r, decisions, summary, opts.All)
}

func listTable(r *output.Renderer, decisions []engine.Decision, summary output.ListSummary, all bool) error {
	r.Header(1, fmt.Sprintf("Queries (%d selected of %d)", summary.Included, summary.Total))

	if len(decisions) == 0 {
		r.Muted("No queries selected")
		return nil
	}

	headers := []string{"Query", "Reason", "Test", "Fixtures"}
	if all {
		headers = []string{"Query", "Status", "Reason", "Test", "Fixtures"}
	}

	rows := make([][]string, 0, len(decisions))
	for _, d := range decisions {
		fixtures := ""
		if d.Classification.Included {
			fixtures = strconv.Itoa(len(d.Fixtures))
		}
		row := []string{d.Query, string(d.Classification.Reason), d.Function, fixtures}
		if all {
			status := "excluded"
			if d.Classification.Included {
				status = "included"
			}
			row = []string{d.Query, status, string(d.Classification.Reason), d.Function, fixtures}
		}
		rows = append(rows, row)
	}
	r.Table(headers, rows)

	r.Println()
	r.Muted(fmt.Sprintf("%d included, %d excluded", summary.Included, summary.Excluded))
	return nil
}

func listJSON(r *output.Renderer, decisions []engine.Decision, summary output.ListSummary) error {
	queries := make([]output.QueryInfo, 0, len(decisions))
	for _, d := range decisions {
		info := output.QueryInfo{
			Name:     d.Query,
			Included: d.Classification.Included,
			Reason:   string(d.Classification.Reason),
			Function: d.Function,
		}
		for _, f := range d.Fixtures {
			info.Fixtures = append(info.Fixtures, f.Name)
		}
		queries = append(queries, info)
	}

	return r.JSON(output.ListOutput{Queries: queries, Summary: summary})
}
