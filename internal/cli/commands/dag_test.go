package commands

import (
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/workloadgen/internal/cli/output"
	"github.com/leapstack-labs/workloadgen/internal/cli/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDAG_Markdown(t *testing.T) {
	setupProject(t)

	stdout, _, err := runCommand(t, NewDAGCommand())
	require.NoError(t, err)

	testutil.AssertValidMarkdown(t, stdout)
	assert.Contains(t, stdout, "## Level 0 (Sources)\n- proj.raw.orders\n  - used by: proj.sales.daily_orders\n- proj.misc.simple\n")
	assert.Contains(t, stdout, "## Level 1\n- proj.sales.daily_orders\n  - depends on: proj.raw.orders\n  - used by: proj.sales.top_days\n")
	assert.Contains(t, stdout, "## Level 2\n- proj.sales.top_days\n")
	assert.Contains(t, stdout, "- **Total Queries:** 4\n")
	assert.Contains(t, stdout, "- **Total Dependencies:** 2\n")
}

func TestDAG_JSON(t *testing.T) {
	setupProject(t)
	t.Setenv("WORKLOADGEN_OUTPUT", "json")

	stdout, _, err := runCommand(t, NewDAGCommand())
	require.NoError(t, err)

	var out output.DAGOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, 4, out.TotalQueries)
	assert.Equal(t, 2, out.TotalEdges)
	require.Len(t, out.Levels, 3)
	assert.Equal(t, []output.DAGNode{
		{Name: "proj.sales.top_days", DependsOn: []string{"proj.sales.daily_orders"}},
	}, out.Levels[2].Queries)
}

func TestDAG_Cycle(t *testing.T) {
	graph := `{"tables": {
  "a.b.x": {"sql": "SELECT * FROM ` + "`a.b.y`" + `"},
  "a.b.y": {"sql": "SELECT * FROM ` + "`a.b.x`" + `"}
}}`
	t.Chdir(testutil.SetupTestProjectWithGraph(t, graph))
	setupConfigReset(t)

	_, _, err := runCommand(t, NewDAGCommand())
	assert.ErrorContains(t, err, "cycle detected")
}
