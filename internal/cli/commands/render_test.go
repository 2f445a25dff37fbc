package commands

import (
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/workloadgen/internal/cli/output"
	"github.com/leapstack-labs/workloadgen/internal/cli/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dailyOrdersRewritten = "WITH\n" +
	"raw_orders AS (SELECT 1 AS id, 'dummy' AS name),\n" +
	"raw_customers AS (SELECT 1 AS id, 'dummy' AS name)\n" +
	"SELECT o.day FROM raw_orders o JOIN raw_customers c ON o.cid = c.id"

func TestRender_Markdown(t *testing.T) {
	setupProject(t)

	stdout, _, err := runCommand(t, NewRenderCommand(), "proj.sales.daily_orders")
	require.NoError(t, err)

	testutil.AssertValidMarkdown(t, stdout)
	assert.Contains(t, stdout, "# Query: proj.sales.daily_orders\n")
	assert.Contains(t, stdout, "- **Status:** included\n")
	assert.Contains(t, stdout, "- **Test:** test_daily_orders\n")
	assert.Contains(t, stdout, "- **proj.raw.orders:** raw_orders\n")
	assert.Contains(t, stdout, "- **src.raw.customers:** raw_customers\n")
	assert.Contains(t, stdout, "```sql\n"+dailyOrdersRewritten+"\n```")
}

func TestRender_JSON(t *testing.T) {
	setupProject(t)
	t.Setenv("WORKLOADGEN_OUTPUT", "json")

	stdout, _, err := runCommand(t, NewRenderCommand(), "proj.sales.daily_orders")
	require.NoError(t, err)

	var out output.RenderOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, output.RenderOutput{
		Query:    "proj.sales.daily_orders",
		Included: true,
		Reason:   "join",
		Function: "test_daily_orders",
		SQL:      dailyOrdersRewritten,
		Fixtures: []output.FixtureInfo{
			{Table: "proj.raw.orders", Name: "raw_orders"},
			{Table: "src.raw.customers", Name: "raw_customers"},
		},
	}, out)
}

func TestRender_TextExcludedQuery(t *testing.T) {
	setupProject(t)
	t.Setenv("WORKLOADGEN_OUTPUT", "text")

	stdout, stderr, err := runCommand(t, NewRenderCommand(), "proj.misc.simple")
	require.NoError(t, err)

	assert.Equal(t, "WITH\nraw_items AS (SELECT 1 AS id, 'dummy' AS name)\nSELECT id FROM raw_items\n", stdout)
	assert.Contains(t, stderr, "proj.misc.simple is excluded (simple)")
}

func TestRender_UnknownQuery(t *testing.T) {
	setupProject(t)

	_, _, err := runCommand(t, NewRenderCommand(), "proj.nope")
	assert.ErrorContains(t, err, `query "proj.nope" not found`)
}
