// Package engine drives a generation run: it loads the query graph, selects
// the queries worth testing, rewrites them against fixtures and writes the
// rendered artifact.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/leapstack-labs/workloadgen/internal/codegen"
	"github.com/leapstack-labs/workloadgen/internal/dag"
	"github.com/leapstack-labs/workloadgen/internal/fixture"
	"github.com/leapstack-labs/workloadgen/internal/lineage"
	"github.com/leapstack-labs/workloadgen/internal/loader"
	"github.com/leapstack-labs/workloadgen/internal/naming"
)

// Engine generates test stubs from a query graph.
type Engine struct {
	input     string
	out       string
	hashWidth int
	gen       *codegen.Generator
	writer    Writer
	logger    *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// Input is the path of the JSON query graph.
	Input string
	// Out is the path of the generated artifact.
	Out string
	// Codegen selects the target and its options.
	Codegen codegen.Options
	// HashWidth is the initial width of fixture collision suffixes.
	HashWidth int
	// Writer persists the artifact (optional, atomic OS writes if nil)
	Writer Writer
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	writer := cfg.Writer
	if writer == nil {
		writer = FileWriter{}
	}

	gen, err := codegen.New(cfg.Codegen)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	logger.Debug("initializing engine", "input", cfg.Input, "out", cfg.Out, "target", gen.Target())

	return &Engine{
		input:     cfg.Input,
		out:       cfg.Out,
		hashWidth: cfg.HashWidth,
		gen:       gen,
		writer:    writer,
		logger:    logger,
	}, nil
}

// Target returns the output target of the engine.
func (e *Engine) Target() codegen.Target {
	return e.gen.Target()
}

// OutputPath returns the path the artifact is written to.
func (e *Engine) OutputPath() string {
	return e.out
}

// Load reads the query graph from the configured input.
func (e *Engine) Load(ctx context.Context) (*loader.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g, err := loader.Load(e.input)
	if err != nil {
		return nil, err
	}
	e.logger.Info("loaded query graph", "path", e.input, "queries", g.Len())
	return g, nil
}

// Decision records what happened to one query of the graph.
type Decision struct {
	Query          string
	Classification Classification
	// Function is the generated test name; empty for excluded queries.
	Function string
	Fixtures []fixture.Fixture
}

// Plan is the outcome of selecting and rewriting every query of a graph.
type Plan struct {
	Decisions []Decision
	Units     []codegen.Unit
}

// Excluded returns the number of queries left without a test.
func (p *Plan) Excluded() int {
	return len(p.Decisions) - len(p.Units)
}

// Plan classifies every query in graph order and builds a test unit for each
// included one. Function names are unique across the plan.
func (e *Engine) Plan(ctx context.Context, g *loader.Graph) (*Plan, error) {
	return e.plan(ctx, g, e.logger)
}

func (e *Engine) plan(ctx context.Context, g *loader.Graph, logger *slog.Logger) (*Plan, error) {
	names := naming.NewAllocator()
	plan := &Plan{Decisions: make([]Decision, 0, g.Len())}

	for _, q := range g.Queries() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		d := Decision{Query: q.Name, Classification: Classify(q.SQL)}
		if !d.Classification.Included {
			logger.Debug("skipping query", "query", q.Name, "reason", d.Classification.Reason)
			plan.Decisions = append(plan.Decisions, d)
			continue
		}

		rewritten := e.Rewrite(q.SQL)
		d.Function = names.Allocate(naming.BaseName(q.Name))
		d.Fixtures = rewritten.Fixtures
		plan.Decisions = append(plan.Decisions, d)
		plan.Units = append(plan.Units, codegen.Unit{
			Name:     d.Function,
			Query:    q.Name,
			SQL:      rewritten.SQL,
			Fixtures: rewritten.Fixtures,
		})
		logger.Debug("planned test",
			"query", q.Name,
			"function", d.Function,
			"reason", d.Classification.Reason,
			"fixtures", len(rewritten.Fixtures))
	}

	logger.Info("selected queries", "included", len(plan.Units), "excluded", plan.Excluded())
	return plan, nil
}

// Rewrite replaces the table references of one query with fixtures.
func (e *Engine) Rewrite(sql string) fixture.Result {
	return fixture.Rewrite(sql, lineage.ExtractReferences(sql), fixture.Options{HashWidth: e.hashWidth})
}

// Render produces the artifact for a plan.
func (e *Engine) Render(plan *Plan) ([]byte, error) {
	data, err := e.gen.Render(plan.Units)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s artifact: %w", e.gen.Target(), err)
	}
	return data, nil
}

// Result summarizes a generation run.
type Result struct {
	RunID string
	Path  string
	Tests int
	// Unchanged is set when the artifact on disk already held the output.
	Unchanged bool
	Plan      *Plan
	Content   []byte
}

// GenerateOptions controls Generate.
type GenerateOptions struct {
	// DryRun renders the artifact without writing it.
	DryRun bool
}

// Generate runs the whole pipeline. Nothing is written unless every step
// before the write succeeded.
func (e *Engine) Generate(ctx context.Context, opts GenerateOptions) (*Result, error) {
	runID := uuid.NewString()
	logger := e.logger.With("run_id", runID)

	g, err := e.Load(ctx)
	if err != nil {
		return nil, err
	}
	plan, err := e.plan(ctx, g, logger)
	if err != nil {
		return nil, err
	}
	content, err := e.Render(plan)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:   runID,
		Path:    e.out,
		Tests:   len(plan.Units),
		Plan:    plan,
		Content: content,
	}
	if opts.DryRun {
		logger.Info("dry run, artifact not written", "path", e.out, "bytes", len(content))
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	changed, err := e.writer.WriteFile(e.out, content)
	if err != nil {
		return nil, &WriteError{Path: e.out, Err: err}
	}
	if !changed {
		res.Unchanged = true
		logger.Info("artifact up to date", "path", e.out, "tests", res.Tests)
		return res, nil
	}
	logger.Info("wrote artifact", "path", e.out, "tests", res.Tests, "bytes", len(content))
	return res, nil
}

// Graph builds the dependency graph between queries of g that reference each
// other.
func (e *Engine) Graph(g *loader.Graph) *dag.Graph {
	return dag.FromLineage(lineage.Resolve(g))
}
