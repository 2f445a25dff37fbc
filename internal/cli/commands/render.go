package commands

import (
	"fmt"

	"github.com/leapstack-labs/workloadgen/internal/cli/output"
	"github.com/leapstack-labs/workloadgen/internal/engine"
	"github.com/spf13/cobra"
)

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <query>",
		Short: "Show the SQL of a query rewritten against fixtures",
		Long: `Show the SQL of one query with every table reference replaced by its
dummy CTE fixture, exactly as it would be embedded in the generated test.

Excluded queries are rendered too; the output says why they get no test.

Output adapts to environment:
  - Terminal: Plain SQL (suitable for syntax highlighting)
  - Piped/Scripted: Markdown with code block`,
		Example: `  # Render one query
  workloadgen render proj.analytics.daily_orders

  # Render as JSON
  workloadgen render proj.analytics.daily_orders --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0])
		},
	}

	return cmd
}

func runRender(cmd *cobra.Command, name string) error {
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
	q, ok := g.Get(name)
	if !ok {
		return fmt.Errorf("query %q not found in %s", name, cmdCtx.Cfg.Input)
	}
	plan, err := eng.Plan(cmd.Context(), g)
	if err != nil {
		return err
	}

	var decision engine.Decision
	for _, d := range plan.Decisions {
		if d.Query == name {
			decision = d
			break
		}
	}
	rewritten := eng.Rewrite(q.SQL)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		out := output.RenderOutput{
			Query:    name,
			Included: decision.Classification.Included,
			Reason:   string(decision.Classification.Reason),
			Function: decision.Function,
			SQL:      rewritten.SQL,
			Fixtures: make([]output.FixtureInfo, 0, len(rewritten.Fixtures)),
		}
		for _, f := range rewritten.Fixtures {
			out.Fixtures = append(out.Fixtures, output.FixtureInfo{Table: f.Reference, Name: f.Name})
		}
		return r.JSON(out)

	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Query: "+name))
		r.Println()
		status := "excluded"
		if decision.Classification.Included {
			status = "included"
		}
		r.Println(output.FormatKeyValue("Status", status))
		r.Println(output.FormatKeyValue("Reason", string(decision.Classification.Reason)))
		if decision.Function != "" {
			r.Println(output.FormatKeyValue("Test", decision.Function))
		}
		r.Println()
		if len(rewritten.Fixtures) > 0 {
			r.Println(output.FormatHeader(2, "Fixtures"))
			r.Println()
			for _, f := range rewritten.Fixtures {
				r.Println(output.FormatKeyValue(f.Reference, f.Name))
			}
			r.Println()
		}
		r.Println(output.FormatCodeBlock("sql", rewritten.SQL))
		return nil

	default:
		if !decision.Classification.Included {
			r.Warning(fmt.Sprintf("%s is excluded (%s) and gets no test", name, decision.Classification.Reason))
		}
		r.Println(rewritten.SQL)
		return nil
	}
}
