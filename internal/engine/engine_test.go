package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/workloadgen/internal/codegen"
	"github.com/leapstack-labs/workloadgen/internal/loader"
	"github.com/leapstack-labs/workloadgen/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGraph = `{
  "tables": {
    "proj.a.orders": {"sql": "SELECT a, b FROM ` + "`p.d.t1`" + ` JOIN ` + "`p.d.t2`" + ` ON a=b"},
    "proj.c.raw": {"sql": "SELECT * FROM ` + "`p.d.raw`" + `"},
    "proj.b.orders": {"sql": "WITH x AS (SELECT 1) SELECT * FROM ` + "`p.d.t`" + `, x"},
    "proj.c.raw_except": {"sql": "SELECT * EXCEPT(a) FROM ` + "`p.d.raw`" + `"},
    "proj.d.self_join": {"sql": "SELECT * FROM ` + "`p.d.t`" + ` a JOIN ` + "`p.d.t`" + ` b ON a.id = b.id"},
    "proj.d.simple": {"sql": "SELECT a FROM ` + "`p.d.t`" + `"}
  }
}`

const dummy = " AS (SELECT 1 AS id, 'dummy' AS name)"

type memWriter struct {
	files map[string][]byte
	err   error
	calls int
}

func (w *memWriter) WriteFile(path string, data []byte) (bool, error) {
	w.calls++
	if w.err != nil {
		return false, w.err
	}
	if old, ok := w.files[path]; ok && bytes.Equal(old, data) {
		return false, nil
	}
	if w.files == nil {
		w.files = make(map[string][]byte)
	}
	w.files[path] = append([]byte(nil), data...)
	return true, nil
}

func writeGraph(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = testutil.NewTestLogger(t)
	}
	eng, err := New(cfg)
	require.NoError(t, err)
	return eng
}

func TestEngine_Plan(t *testing.T) {
	eng := newTestEngine(t, Config{Input: writeGraph(t, sampleGraph), Out: "out.rs"})

	g, err := eng.Load(context.Background())
	require.NoError(t, err)
	plan, err := eng.Plan(context.Background(), g)
	require.NoError(t, err)

	require.Len(t, plan.Decisions, 6)
	assert.Equal(t, 3, plan.Excluded())

	reasons := make(map[string]Reason)
	for _, d := range plan.Decisions {
		reasons[d.Query] = d.Classification.Reason
	}
	assert.Equal(t, map[string]Reason{
		"proj.a.orders":     ReasonJoin,
		"proj.c.raw":        ReasonTrivialSelect,
		"proj.b.orders":     ReasonWith,
		"proj.c.raw_except": ReasonTrivialSelectExcept,
		"proj.d.self_join":  ReasonJoin,
		"proj.d.simple":     ReasonSimple,
	}, reasons)

	require.Len(t, plan.Units, 3)

	join := plan.Units[0]
	assert.Equal(t, "test_orders", join.Name)
	assert.Equal(t, "proj.a.orders", join.Query)
	assert.Equal(t, "WITH\nd_t1"+dummy+",\nd_t2"+dummy+"\nSELECT a, b FROM d_t1 JOIN d_t2 ON a=b", join.SQL)

	merged := plan.Units[1]
	assert.Equal(t, "test_orders_1", merged.Name)
	assert.Equal(t, "WITH\nd_t"+dummy+",\nx AS (SELECT 1) SELECT * FROM d_t, x", merged.SQL)

	self := plan.Units[2]
	assert.Equal(t, "test_self_join", self.Name)
	require.Len(t, self.Fixtures, 1)
	assert.Equal(t, "d_t", self.Fixtures[0].Name)
	assert.Equal(t, 3, strings.Count(self.SQL, "d_t"))

	assert.Equal(t, "test_orders", plan.Decisions[0].Function)
	assert.Empty(t, plan.Decisions[1].Function)
}

func TestEngine_PlanUniqueNames(t *testing.T) {
	queries := []loader.Query{
		{Name: "a.orders", SQL: "SELECT 1 UNION ALL SELECT 2"},
		{Name: "b.orders", SQL: "SELECT 1 UNION ALL SELECT 2"},
		{Name: "x.orders_1", SQL: "SELECT 1 UNION ALL SELECT 2"},
		{Name: "c.orders", SQL: "SELECT 1 UNION ALL SELECT 2"},
		{Name: "d.Orders", SQL: "SELECT 1 UNION ALL SELECT 2"},
	}
	eng := newTestEngine(t, Config{})

	plan, err := eng.Plan(context.Background(), loader.NewGraph(queries...))
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, u := range plan.Units {
		assert.False(t, seen[u.Name], "duplicate function name %s", u.Name)
		seen[u.Name] = true
	}
	assert.Len(t, seen, len(queries))
}

func TestEngine_PlanCancelled(t *testing.T) {
	eng := newTestEngine(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Plan(ctx, loader.NewGraph(loader.Query{Name: "q", SQL: "SELECT 1"}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Generate(t *testing.T) {
	w := &memWriter{}
	eng := newTestEngine(t, Config{Input: writeGraph(t, sampleGraph), Out: "tests/out.rs", Writer: w})

	res, err := eng.Generate(context.Background(), GenerateOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Tests)
	assert.Equal(t, "tests/out.rs", res.Path)
	assert.NotEmpty(t, res.RunID)
	assert.False(t, res.Unchanged)
	assert.Equal(t, 1, w.calls)

	out := string(w.files["tests/out.rs"])
	assert.Equal(t, string(res.Content), out)
	assert.True(t, strings.HasPrefix(out, "use crate::common::create_executor;\n\n#[test]\n"))
	assert.Equal(t, 3, strings.Count(out, "#[ignore = \"Implement me!\"]"))
	assert.Contains(t, out, "fn test_orders() {")
	assert.Contains(t, out, "fn test_orders_1() {")
	assert.Contains(t, out, "fn test_self_join() {")
	assert.NotContains(t, out, "`")
}

func TestEngine_GenerateIdempotent(t *testing.T) {
	input := writeGraph(t, sampleGraph)
	first := newTestEngine(t, Config{Input: input, Out: "a.rs", Writer: &memWriter{}})
	second := newTestEngine(t, Config{Input: input, Out: "a.rs", Writer: &memWriter{}})

	r1, err := first.Generate(context.Background(), GenerateOptions{DryRun: true})
	require.NoError(t, err)
	r2, err := second.Generate(context.Background(), GenerateOptions{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, r1.Content, r2.Content)
	assert.NotEqual(t, r1.RunID, r2.RunID)
}

func TestEngine_GenerateDryRun(t *testing.T) {
	w := &memWriter{}
	eng := newTestEngine(t, Config{Input: writeGraph(t, sampleGraph), Out: "a.rs", Writer: w})

	res, err := eng.Generate(context.Background(), GenerateOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Tests)
	assert.NotEmpty(t, res.Content)
	assert.Zero(t, w.calls)
}

func TestEngine_GenerateUnchangedSkipsWrite(t *testing.T) {
	w := &memWriter{}
	eng := newTestEngine(t, Config{Input: writeGraph(t, sampleGraph), Out: "a.rs", Writer: w})

	first, err := eng.Generate(context.Background(), GenerateOptions{})
	require.NoError(t, err)
	assert.False(t, first.Unchanged)

	second, err := eng.Generate(context.Background(), GenerateOptions{})
	require.NoError(t, err)
	assert.True(t, second.Unchanged)
	assert.Equal(t, 2, w.calls)
	assert.Equal(t, first.Content, w.files["a.rs"])
}

func TestEngine_GenerateWritesAtomically(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "dir", "real_sql_workloads.rs")
	eng := newTestEngine(t, Config{Input: writeGraph(t, sampleGraph), Out: out})

	res, err := eng.Generate(context.Background(), GenerateOptions{})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, res.Content, data)

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	again, err := eng.Generate(context.Background(), GenerateOptions{})
	require.NoError(t, err)
	assert.True(t, again.Unchanged)
}

func TestEngine_GenerateGoTarget(t *testing.T) {
	w := &memWriter{}
	eng := newTestEngine(t, Config{
		Input:   writeGraph(t, sampleGraph),
		Out:     "queries_test.go",
		Codegen: codegen.Options{Target: codegen.TargetGo},
		Writer:  w,
	})
	assert.Equal(t, codegen.TargetGo, eng.Target())

	_, err := eng.Generate(context.Background(), GenerateOptions{})
	require.NoError(t, err)

	out := string(w.files["queries_test.go"])
	assert.Contains(t, out, "package queries")
	assert.Contains(t, out, "func Test_orders_1(t *testing.T) {")
}

func TestEngine_GenerateErrors(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		w := &memWriter{}
		eng := newTestEngine(t, Config{Input: filepath.Join(t.TempDir(), "nope.json"), Out: "a.rs", Writer: w})

		_, err := eng.Generate(context.Background(), GenerateOptions{})
		var loadErr *loader.LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Zero(t, w.calls)
	})

	t.Run("missing tables", func(t *testing.T) {
		w := &memWriter{}
		eng := newTestEngine(t, Config{Input: writeGraph(t, `{"views": {}}`), Out: "a.rs", Writer: w})

		_, err := eng.Generate(context.Background(), GenerateOptions{})
		assert.ErrorIs(t, err, loader.ErrMissingTables)
		assert.Zero(t, w.calls)
	})

	t.Run("write failure", func(t *testing.T) {
		boom := errors.New("disk full")
		w := &memWriter{err: boom}
		eng := newTestEngine(t, Config{Input: writeGraph(t, sampleGraph), Out: "a.rs", Writer: w})

		_, err := eng.Generate(context.Background(), GenerateOptions{})
		var writeErr *WriteError
		require.ErrorAs(t, err, &writeErr)
		assert.Equal(t, "a.rs", writeErr.Path)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, "write a.rs: disk full", err.Error())
	})

	t.Run("cancelled", func(t *testing.T) {
		w := &memWriter{}
		eng := newTestEngine(t, Config{Input: writeGraph(t, sampleGraph), Out: "a.rs", Writer: w})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := eng.Generate(ctx, GenerateOptions{})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, w.calls)
	})
}

func TestEngine_EmptyGraph(t *testing.T) {
	w := &memWriter{}
	eng := newTestEngine(t, Config{Input: writeGraph(t, `{"tables": {}}`), Out: "a.rs", Writer: w})

	res, err := eng.Generate(context.Background(), GenerateOptions{})
	require.NoError(t, err)
	assert.Zero(t, res.Tests)
	assert.Equal(t, "use crate::common::create_executor;\n\n", string(w.files["a.rs"]))
}

func TestNew_InvalidCodegen(t *testing.T) {
	_, err := New(Config{Codegen: codegen.Options{Target: "cobol"}})
	assert.ErrorContains(t, err, "failed to create generator")
}

func TestEngine_Graph(t *testing.T) {
	g := loader.NewGraph(
		loader.Query{Name: "p.d.base", SQL: "SELECT 1"},
		loader.Query{Name: "p.d.mid", SQL: "SELECT * FROM `p.d.base` JOIN `ext.x.y` USING (k)"},
		loader.Query{Name: "p.d.top", SQL: "SELECT * FROM `p.d.mid`"},
	)
	eng := newTestEngine(t, Config{})

	levels, err := eng.Graph(g).Levels()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"p.d.base"}, {"p.d.mid"}, {"p.d.top"}}, levels)
}

func TestEngine_GenerateLogsRunID(t *testing.T) {
	logger, logs := testutil.NewCaptureLogger()
	eng := newTestEngine(t, Config{
		Input:  writeGraph(t, sampleGraph),
		Out:    "a.rs",
		Writer: &memWriter{},
		Logger: logger,
	})

	res, err := eng.Generate(context.Background(), GenerateOptions{})
	require.NoError(t, err)

	out := logs.String()
	assert.Contains(t, out, "run_id="+res.RunID)
	assert.Contains(t, out, "msg=\"selected queries\" run_id="+res.RunID+" included=3 excluded=3")
	assert.Contains(t, out, "reason=trivial-select")
	assert.Contains(t, out, "msg=\"wrote artifact\"")
}
