package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/workloadgen/internal/cli/output"
	"github.com/leapstack-labs/workloadgen/internal/codegen"
	"github.com/leapstack-labs/workloadgen/internal/engine"
	"github.com/spf13/cobra"
)

// GenerateOptions holds options for the generate command.
type GenerateOptions struct {
	DryRun bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate disabled test stubs from the query graph",
		Long: `Generate one disabled test per complex query of the graph.

Trivial queries (a bare SELECT * over one table) and short queries without
joins, grouping, CTEs, unions or CASE expressions are skipped. Every table
reference of a selected query is replaced by a dummy CTE fixture so the test
runs without the source tables.

The artifact is written atomically and left untouched when its content is
already up to date.`,
		Example: `  # Generate Rust tests from bigquery-graph.json
  workloadgen generate

  # Read another graph and write elsewhere
  workloadgen generate -i graph.json --out tests/workloads.rs

  # Generate Go tests in package workloads
  workloadgen generate --target go --package workloads

  # Print the artifact without writing it
  workloadgen generate --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().String("out", "", "Path of the generated artifact")
	cmd.Flags().String("target", "", fmt.Sprintf("Output target (%s)", strings.Join(codegen.Targets(), "|")))
	cmd.Flags().String("package", "", "Package name of the go target")
	cmd.Flags().String("executor-import", "", "Import path providing CreateExecutor for the go target")
	cmd.Flags().Int("hash-width", 0, "Initial hex width of fixture collision suffixes")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the artifact instead of writing it")

	_ = cmd.RegisterFlagCompletionFunc("target", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return codegen.Targets(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	eng := cmdCtx.Engine
	r := cmdCtx.Renderer

	res, err := eng.Generate(cmd.Context(), engine.GenerateOptions{DryRun: opts.DryRun})
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		out := output.GenerateOutput{
			RunID:     res.RunID,
			Path:      res.Path,
			Target:    string(eng.Target()),
			Tests:     res.Tests,
			Excluded:  res.Plan.Excluded(),
			DryRun:    opts.DryRun,
			Unchanged: res.Unchanged,
		}
		if opts.DryRun {
			out.Content = string(res.Content)
		}
		return r.JSON(out)
	}

	if opts.DryRun {
		_, err := r.Writer().Write(res.Content)
		return err
	}

	msg := fmt.Sprintf("Generated %d tests to %s", res.Tests, res.Path)
	if res.Unchanged {
		msg += " " + r.Styles().Muted.Render("(unchanged)")
	}
	r.Success(msg)
	return nil
}
